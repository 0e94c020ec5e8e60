// Package worker runs the faster-whisper Python worker process: job
// configuration, process execution with a hard timeout, and output parsing.
package worker

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/voxlog/voxlog/internal/model"
	"github.com/voxlog/voxlog/internal/transcriber"
)

// Job is the full parameterization of one worker process. It is serialized
// to a JSON file and handed to the static embedded Python script, so the
// worker contract is a plain data format rather than generated code.
type Job struct {
	AudioPath   string  `json:"audio_path"`
	Model       string  `json:"model"`
	ComputeType string  `json:"compute_type"`
	Language    string  `json:"language,omitempty"`
	Temperature float64 `json:"temperature"`
	BeamSize    int     `json:"beam_size"`
	VADFilter   bool    `json:"vad_filter"`
	Threads     int     `json:"threads"`
	BatchSize   int     `json:"batch_size"`
}

// ResolveJob builds a job from the model's base configuration, then applies
// caller-supplied options on top. Caller options always win.
func ResolveJob(cfg model.Config, opts transcriber.Options) Job {
	job := Job{
		Model:       cfg.ID,
		ComputeType: "int8",
		Temperature: 0,
		BeamSize:    5,
		VADFilter:   true,
		Threads:     cfg.Performance.ThreadsRecommended,
		BatchSize:   cfg.Performance.BatchSize,
	}

	if opts.Language != "" {
		job.Language = opts.Language
	}
	if opts.Temperature != 0 {
		job.Temperature = opts.Temperature
	}
	if opts.BeamSize > 0 {
		job.BeamSize = opts.BeamSize
	}
	if opts.ComputeType != "" {
		job.ComputeType = opts.ComputeType
	}
	if opts.VADFilter != nil {
		job.VADFilter = *opts.VADFilter
	}

	return job
}

// WriteJobFile serializes the job to a temp file and returns its path along
// with a cleanup function.
func WriteJobFile(job Job) (string, func(), error) {
	f, err := os.CreateTemp("", "voxlog-job-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create job file: %w", err)
	}

	enc := json.NewEncoder(f)
	if err := enc.Encode(job); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write job file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to close job file: %w", err)
	}

	path := f.Name()
	return path, func() { _ = os.Remove(path) }, nil
}
