package transcriber

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/voxlog/voxlog/internal/chunker"
	"github.com/voxlog/voxlog/internal/model"
	"github.com/voxlog/voxlog/internal/utils"
)

// DefaultChunkThresholdBytes is the input size above which the orchestrator
// switches from whole-file transcription to chunked parallel processing.
const DefaultChunkThresholdBytes = 15 * 1024 * 1024

// defaultInterBatchDelay is the pause between worker batches so the OS can
// reclaim memory released by the previous wave of worker processes.
const defaultInterBatchDelay = 2 * time.Second

// Splitter produces and disposes of audio chunks for one request
type Splitter interface {
	Split(ctx context.Context, audioPath string, cfg chunker.Config) ([]chunker.Chunk, error)
	Cleanup(chunks []chunker.Chunk)
}

// Orchestrator decides the transcription strategy for an input, runs it and
// merges per-chunk results into one contiguous transcript.
type Orchestrator struct {
	splitter        Splitter
	engine          ChunkEngine
	thresholdBytes  int64
	interBatchDelay time.Duration
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithChunkThreshold overrides the chunking size threshold
func WithChunkThreshold(bytes int64) OrchestratorOption {
	return func(o *Orchestrator) {
		o.thresholdBytes = bytes
	}
}

// WithInterBatchDelay overrides the pause between worker batches
func WithInterBatchDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.interBatchDelay = d
	}
}

// NewOrchestrator creates an orchestrator over the given splitter and engine
func NewOrchestrator(splitter Splitter, engine ChunkEngine, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		splitter:        splitter,
		engine:          engine,
		thresholdBytes:  DefaultChunkThresholdBytes,
		interBatchDelay: defaultInterBatchDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// chunkFailure marks a chunk error that aborted the request under the
// ChunkErrorFail policy. It is terminal: no sequential retry.
type chunkFailure struct {
	index int
	err   error
}

func (e *chunkFailure) Error() string {
	return fmt.Sprintf("chunk %d failed: %v", e.index, e.err)
}

func (e *chunkFailure) Unwrap() error {
	return e.err
}

// workerPanic marks a panic inside the parallel worker pool. The
// orchestrator responds by retrying the whole chunk set sequentially.
type workerPanic struct {
	index int
	value interface{}
}

func (e *workerPanic) Error() string {
	return fmt.Sprintf("worker for chunk %d panicked: %v", e.index, e.value)
}

// Transcribe transcribes the audio file at audioPath. Inputs above the size
// threshold are split into chunks and fanned out across a bounded pool of
// worker processes; smaller inputs go through a single worker directly.
func (o *Orchestrator) Transcribe(ctx context.Context, audioPath string, opts Options) (*TranscriptionResult, error) {
	modelID := opts.Model
	if modelID == "" {
		modelID = model.DefaultModelID
	}
	cfg, err := model.Lookup(modelID)
	if err != nil {
		return nil, E(CategoryTranscription, "resolve model", err)
	}
	opts.Model = cfg.ID

	size, err := utils.FileSizeBytes(audioPath)
	if err != nil {
		return nil, E(CategoryStorage, "stat input audio", err)
	}

	if size < o.thresholdBytes {
		utils.LogVerbose("Input is %d bytes, transcribing directly", size)
		return o.engine.TranscribeFile(ctx, audioPath, opts)
	}

	utils.LogInfo("Input is %.1f MB, splitting into chunks for model %s", float64(size)/(1024*1024), cfg.ID)
	chunks, err := o.splitter.Split(ctx, audioPath, chunker.Config{ChunkDuration: cfg.ChunkDuration()})
	if err != nil {
		return nil, E(CategoryStorage, "split audio", err)
	}
	// Cleanup runs on every exit path; chunk files never outlive the request.
	defer o.splitter.Cleanup(chunks)

	results, err := o.runParallel(ctx, chunks, cfg, opts)
	if err != nil {
		var wp *workerPanic
		if !errors.As(err, &wp) {
			return nil, err
		}
		utils.LogWarning("Parallel chunk processing failed (%v), retrying sequentially", err)
		results, err = o.runSequential(ctx, chunks, opts)
		if err != nil {
			return nil, err
		}
	}

	merged := MergeChunkResults(results)
	utils.LogSuccess("Merged %d chunks into %d segments", len(chunks), len(merged.Segments))
	return merged, nil
}

// runParallel processes chunks in batches of the model's concurrency cap.
// Every batch is awaited in full before the next one starts. Results are
// stored by chunk ordinal so completion order inside a batch never affects
// merge order.
func (o *Orchestrator) runParallel(ctx context.Context, chunks []chunker.Chunk, cfg model.Config, opts Options) ([]*TranscriptionResult, error) {
	results := make([]*TranscriptionResult, len(chunks))
	concurrency := cfg.MaxConcurrency()

	for batchStart := 0; batchStart < len(chunks); batchStart += concurrency {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batchEnd := batchStart + concurrency
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		utils.LogVerbose("Processing chunks %d-%d of %d (concurrency %d)", batchStart+1, batchEnd, len(chunks), concurrency)

		errs := make([]error, batchEnd-batchStart)
		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						errs[i-batchStart] = &workerPanic{index: chunks[i].Index, value: r}
					}
				}()
				res, err := o.engine.TranscribeFile(ctx, chunks[i].Path, opts)
				if err != nil {
					errs[i-batchStart] = err
					return
				}
				results[i] = res
			}(i)
		}
		wg.Wait()

		for j, err := range errs {
			if err == nil {
				continue
			}
			var wp *workerPanic
			if errors.As(err, &wp) {
				return nil, err
			}
			res, herr := o.resolveChunkFailure(opts, chunks[batchStart+j].Index, err)
			if herr != nil {
				return nil, herr
			}
			results[batchStart+j] = res
		}

		if batchEnd < len(chunks) && o.interBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.interBatchDelay):
			}
		}
	}

	return results, nil
}

// runSequential processes chunks one at a time with the same per-chunk
// failure policy as the parallel path.
func (o *Orchestrator) runSequential(ctx context.Context, chunks []chunker.Chunk, opts Options) ([]*TranscriptionResult, error) {
	results := make([]*TranscriptionResult, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := o.engine.TranscribeFile(ctx, chunk.Path, opts)
		if err != nil {
			res, err = o.resolveChunkFailure(opts, chunk.Index, err)
			if err != nil {
				return nil, err
			}
		}
		results[i] = res
	}
	return results, nil
}

// resolveChunkFailure applies the per-chunk error policy: degrade replaces
// the failed chunk with an empty contribution so the surrounding time ranges
// survive; fail aborts the request.
func (o *Orchestrator) resolveChunkFailure(opts Options, index int, err error) (*TranscriptionResult, error) {
	if opts.OnChunkError == ChunkErrorFail {
		return nil, E(CategoryTranscription, "transcribe chunk", &chunkFailure{index: index, err: err})
	}
	utils.LogWarning("Chunk %d failed, continuing with degraded output: %v", index, err)
	return &TranscriptionResult{Text: "", Segments: []Segment{}}, nil
}
