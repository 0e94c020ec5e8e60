package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// FileSizeBytes returns the size of a file in bytes
func FileSizeBytes(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.IsDir() {
		return 0, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return fileInfo.Size(), nil
}

// WriteTextFile writes text to a file, ensuring it's written as text
func WriteTextFile(filePath string, content string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			LogWarning("Failed to close file: %v", err)
		}
	}()

	writer := bufio.NewWriter(f)
	if _, err := writer.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	LogDebug("Successfully wrote content to %s", filePath)
	return nil
}

// ExpandHomeDir expands a path if it starts with "~/"
func ExpandHomeDir(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
