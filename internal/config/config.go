// Package config loads the optional voxlog settings file.
package config

import (
	"fmt"
	"os"

	"github.com/voxlog/voxlog/internal/model"
	"github.com/voxlog/voxlog/internal/utils"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the settings file is looked up when no path is given
const DefaultPath = "voxlog.yaml"

// Settings are the persistent transcription defaults. Command-line flags
// override anything set here.
type Settings struct {
	Model        string  `yaml:"model"`
	Language     string  `yaml:"language"`
	Format       string  `yaml:"format"`
	Temperature  float64 `yaml:"temperature"`
	BeamSize     int     `yaml:"beamSize"`
	ComputeType  string  `yaml:"computeType"`
	OnChunkError string  `yaml:"onChunkError"`
	Summarize    bool    `yaml:"summarize"`
}

// Defaults returns the settings used when no file exists
func Defaults() Settings {
	return Settings{
		Model:        model.DefaultModelID,
		Language:     "auto",
		Format:       "txt",
		OnChunkError: "degrade",
	}
}

// Load reads settings from path, falling back to defaults when the file
// does not exist. A malformed file is an error; silently ignoring it would
// hide typos in the user's configuration.
func Load(path string) (Settings, error) {
	settings := Defaults()

	if path == "" {
		path = DefaultPath
	}
	expanded, err := utils.ExpandHomeDir(path)
	if err != nil {
		return settings, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file %s: %w", expanded, err)
	}

	if err := settings.validate(); err != nil {
		return settings, fmt.Errorf("invalid settings in %s: %w", expanded, err)
	}

	utils.LogVerbose("Loaded settings from %s", expanded)
	return settings, nil
}

func (s Settings) validate() error {
	if s.Model != "" {
		if _, err := model.Lookup(s.Model); err != nil {
			return err
		}
	}
	switch s.Format {
	case "", "txt", "srt", "json":
	default:
		return fmt.Errorf("unsupported output format: %s", s.Format)
	}
	switch s.OnChunkError {
	case "", "degrade", "fail":
	default:
		return fmt.Errorf("onChunkError must be \"degrade\" or \"fail\", got %q", s.OnChunkError)
	}
	return nil
}
