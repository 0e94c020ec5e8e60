package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecLookPath allows us to mock exec.LookPath in tests
var ExecLookPath = exec.LookPath

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateAudioFile checks that the path exists, is a regular file, and has
// a supported audio extension.
func ValidateAudioFile(audioFile string) error {
	if audioFile == "" {
		return &ValidationError{
			Field:   "input",
			Message: "audio file path is required",
		}
	}

	fileInfo, err := os.Stat(audioFile)
	if err != nil {
		return &ValidationError{
			Field:   "input",
			Message: fmt.Sprintf("audio file does not exist: %s", audioFile),
			Err:     err,
		}
	}
	if fileInfo.IsDir() {
		return &ValidationError{
			Field:   "input",
			Message: fmt.Sprintf("input must be a file, not a directory: %s", audioFile),
		}
	}

	return ValidateFileExtension(audioFile, []string{".wav", ".mp3", ".m4a", ".aac", ".ogg", ".webm", ".flac"})
}

// ValidateOutputPath validates an output path, creating the directory if needed
func ValidateOutputPath(output string) error {
	if output == "" {
		return &ValidationError{
			Field:   "output",
			Message: "output path is required",
		}
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return &ValidationError{
			Field:   "output",
			Message: "failed to create output directory",
			Err:     err,
		}
	}

	return nil
}

// ValidateRequiredDependency checks if a required command is available
func ValidateRequiredDependency(cmd string) error {
	if _, err := ExecLookPath(cmd); err != nil {
		return &ValidationError{
			Field:   cmd,
			Message: fmt.Sprintf("%s not found in PATH", cmd),
			Err:     err,
		}
	}
	return nil
}

// ValidateFileExtension checks if a file has one of the allowed extensions
func ValidateFileExtension(filePath string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			return nil
		}
	}
	return &ValidationError{
		Field:   "extension",
		Message: fmt.Sprintf("file extension %s not allowed. Allowed extensions: %v", ext, allowedExts),
	}
}
