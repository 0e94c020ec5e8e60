package worker

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/voxlog/voxlog/internal/model"
	"github.com/voxlog/voxlog/internal/transcriber"
	"github.com/voxlog/voxlog/internal/utils"
)

//go:embed assets/transcribe_worker.py
var workerScript []byte

// Worker exit codes, mirrored from assets/transcribe_worker.py.
// exitBadInvocation means the worker could not read its job file or was
// called with the wrong arguments; since the engine writes both, the usual
// cause in practice is a full or unwritable temp filesystem, so it is
// reported as a storage failure.
const (
	exitBadInvocation   = 2
	exitNoFasterWhisper = 3
	exitModelLoadFailed = 4
)

// Engine transcribes audio files by spawning the embedded faster-whisper
// Python worker, one process per file. It implements transcriber.ChunkEngine.
type Engine struct {
	python     string
	OnProgress func(percent int)
}

// NewEngine creates an engine using the interpreter from VOXLOG_PYTHON, or
// python3 when unset.
func NewEngine() *Engine {
	python := os.Getenv("VOXLOG_PYTHON")
	if python == "" {
		python = "python3"
	}
	return &Engine{python: python}
}

// TranscribeFile runs one worker process over audioPath and returns the
// parsed result. The process gets the model's hard timeout and is killed on
// context cancellation.
func (e *Engine) TranscribeFile(ctx context.Context, audioPath string, opts transcriber.Options) (*transcriber.TranscriptionResult, error) {
	modelID := opts.Model
	if modelID == "" {
		modelID = model.DefaultModelID
	}
	cfg, err := model.Lookup(modelID)
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryTranscription, "resolve model", err)
	}

	scriptPath, cleanupScript, err := writeWorkerScript()
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryStorage, "write worker script", err)
	}
	defer cleanupScript()

	job := ResolveJob(cfg, opts)
	job.AudioPath = audioPath
	jobPath, cleanupJob, err := WriteJobFile(job)
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryStorage, "write job file", err)
	}
	defer cleanupJob()

	runner := &Runner{Timeout: cfg.ProcessTimeout()}
	utils.LogVerbose("Running worker for %s (model %s, timeout %s)", filepath.Base(audioPath), cfg.ID, cfg.ProcessTimeout())

	stdout, stderr, err := runner.Run(ctx, e.python, []string{scriptPath, jobPath}, e.scrapeProgress)
	if err != nil {
		return nil, e.classifyRunError(err)
	}

	return ParseOutput(stdout, stderr)
}

// classifyRunError maps process failures onto error categories using the
// worker's exit-code contract.
func (e *Engine) classifyRunError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode {
		case exitNoFasterWhisper:
			return transcriber.E(transcriber.CategoryPythonEnvironment, "run worker", exitErr)
		case exitModelLoadFailed:
			return transcriber.E(transcriber.CategoryModelLoading, "run worker", exitErr)
		case exitBadInvocation:
			return transcriber.E(transcriber.CategoryStorage, "run worker", exitErr)
		default:
			return transcriber.E(transcriber.CategoryTranscription, "run worker", exitErr)
		}
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return transcriber.E(transcriber.CategoryTranscription, "run worker", timeoutErr)
	}

	if strings.Contains(err.Error(), "failed to start") {
		// The interpreter itself could not be spawned.
		return transcriber.E(transcriber.CategoryPythonEnvironment, "spawn worker", err)
	}
	return transcriber.E(transcriber.CategoryTranscription, "run worker", err)
}

// scrapeProgress extracts "progress: NN%" lines from worker stderr
func (e *Engine) scrapeProgress(line string) {
	utils.LogDebug("worker: %s", line)
	if e.OnProgress == nil {
		return
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "progress: ")
	if !ok {
		return
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(rest, "%"))
	if err == nil {
		e.OnProgress(pct)
	}
}

// writeWorkerScript materializes the embedded Python worker in a temp file
func writeWorkerScript() (string, func(), error) {
	f, err := os.CreateTemp("", "voxlog-worker-*.py")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create script file: %w", err)
	}
	if _, err := f.Write(workerScript); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to close script file: %w", err)
	}

	path := f.Name()
	return path, func() { _ = os.Remove(path) }, nil
}

// Compile-time check that Engine satisfies the orchestrator's contract
var _ transcriber.ChunkEngine = (*Engine)(nil)
