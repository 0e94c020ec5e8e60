// Package model holds the static registry of supported faster-whisper model
// presets along with the operational limits derived from their size.
package model

import (
	"fmt"
	"sort"
	"time"
)

// Performance holds the recommended runtime parameters for a model
type Performance struct {
	ThreadsRecommended int
	BatchSize          int
}

// Config describes one faster-whisper model preset
type Config struct {
	ID          string
	FileSizeMB  int
	Performance Performance
}

// heavyModelSizeMB is the cutoff above which a model is treated as heavy.
// Heavy models get fewer concurrent workers, longer process timeouts and
// shorter audio chunks to bound per-chunk latency and peak memory.
const heavyModelSizeMB = 1000

// registry is the static lookup table of supported models, loaded once.
var registry = map[string]Config{
	"tiny": {
		ID:          "tiny",
		FileSizeMB:  75,
		Performance: Performance{ThreadsRecommended: 4, BatchSize: 16},
	},
	"base": {
		ID:          "base",
		FileSizeMB:  145,
		Performance: Performance{ThreadsRecommended: 4, BatchSize: 16},
	},
	"small": {
		ID:          "small",
		FileSizeMB:  484,
		Performance: Performance{ThreadsRecommended: 6, BatchSize: 8},
	},
	"medium": {
		ID:          "medium",
		FileSizeMB:  1530,
		Performance: Performance{ThreadsRecommended: 8, BatchSize: 4},
	},
	"large-v3": {
		ID:          "large-v3",
		FileSizeMB:  3090,
		Performance: Performance{ThreadsRecommended: 8, BatchSize: 2},
	},
}

// DefaultModelID is the model used when the caller does not pick one.
const DefaultModelID = "base"

// Lookup returns the configuration for a model ID
func Lookup(id string) (Config, error) {
	cfg, ok := registry[id]
	if !ok {
		return Config{}, fmt.Errorf("unknown model: %s", id)
	}
	return cfg, nil
}

// Default returns the default model configuration
func Default() Config {
	return registry[DefaultModelID]
}

// List returns all registered model configurations sorted by size
func List() []Config {
	configs := make([]Config, 0, len(registry))
	for _, cfg := range registry {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].FileSizeMB < configs[j].FileSizeMB
	})
	return configs
}

// IsHeavy reports whether the model needs the conservative resource limits
func (c Config) IsHeavy() bool {
	return c.FileSizeMB >= heavyModelSizeMB
}

// MaxConcurrency returns the worker pool size for chunked transcription.
// Heavy models are capped at 2 concurrent worker processes because each
// worker holds a full copy of the model in memory; unconstrained
// concurrency exhausted RAM on large models.
func (c Config) MaxConcurrency() int {
	if c.IsHeavy() {
		return 2
	}
	return 4
}

// ProcessTimeout returns the hard wall-clock limit for one worker process
func (c Config) ProcessTimeout() time.Duration {
	if c.IsHeavy() {
		return 30 * time.Minute
	}
	return 15 * time.Minute
}

// ChunkDuration returns the audio chunk length used when splitting large
// inputs for this model
func (c Config) ChunkDuration() time.Duration {
	if c.IsHeavy() {
		return 3 * time.Minute
	}
	return 5 * time.Minute
}
