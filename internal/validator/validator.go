// Package validator checks that the external tools the transcription
// pipeline shells out to are actually installed.
package validator

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/voxlog/voxlog/internal/utils"
)

// ExternalTool represents an external command-line tool requirement
type ExternalTool struct {
	Name        string
	VersionArgs []string
	Validate    func(output string) bool
}

// requiredTools is a list of external tools that must be installed
var requiredTools = []ExternalTool{
	{
		Name:        "ffmpeg",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffmpeg version")
		},
	},
	{
		Name:        "ffprobe",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffprobe version")
		},
	},
}

// optionalTools lists tools that are checked but not required. Local
// transcription needs python3 with faster-whisper; without it the remote
// API path is the only option.
var optionalTools = []ExternalTool{
	{
		Name:        "python3",
		VersionArgs: []string{"--version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "Python 3")
		},
	},
}

// ValidateExternalTools checks if all required external tools are installed
func ValidateExternalTools() error {
	for _, tool := range requiredTools {
		path, err := exec.LookPath(tool.Name)
		if err != nil {
			return fmt.Errorf("tool %s not found in PATH: %w", tool.Name, err)
		}

		cmd := exec.Command(path, tool.VersionArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", tool.Name, err)
		}

		if !tool.Validate(string(output)) {
			return fmt.Errorf("invalid version of %s detected", tool.Name)
		}

		utils.LogVerbose("✓ %s found at %s", tool.Name, path)
	}

	for _, tool := range optionalTools {
		path, err := exec.LookPath(tool.Name)
		if err != nil {
			utils.LogVerbose("ℹ️ Optional tool %s not found: %v", tool.Name, err)
			continue
		}

		cmd := exec.Command(path, tool.VersionArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil || !tool.Validate(string(output)) {
			utils.LogVerbose("ℹ️ Optional tool %s found but couldn't verify version", tool.Name)
			continue
		}

		utils.LogVerbose("✓ Optional tool %s found at %s", tool.Name, path)
	}

	return nil
}

// ValidateLocalTranscription checks that the Python environment can run the
// faster-whisper worker.
func ValidateLocalTranscription() error {
	python := os.Getenv("VOXLOG_PYTHON")
	if python == "" {
		python = "python3"
	}

	path, err := exec.LookPath(python)
	if err != nil {
		return fmt.Errorf("python interpreter %s not found in PATH: %w", python, err)
	}

	cmd := exec.Command(path, "-c", "import faster_whisper")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("faster-whisper is not importable: %s", strings.TrimSpace(string(output)))
	}

	utils.LogVerbose("✓ faster-whisper available via %s", path)
	return nil
}

// ValidateAPIKey reports whether the remote fallback is configured
func ValidateAPIKey() error {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	utils.LogVerbose("✓ OPENAI_API_KEY is set")
	return nil
}
