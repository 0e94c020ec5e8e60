package transcriber

import (
	"context"
	"fmt"

	"github.com/voxlog/voxlog/internal/utils"
)

// Stage identifies where a request is in its lifecycle. Stages exist for
// progress reporting only; they carry no correctness weight.
type Stage string

const (
	StagePreparing        Stage = "preparing"
	StageTranscribing     Stage = "transcribing"
	StageFallingBackToAPI Stage = "falling-back-to-api"
	StageSummarizing      Stage = "summarizing"
	StageComplete         Stage = "complete"
)

// ProgressFunc receives stage transitions and free-text progress messages
type ProgressFunc func(stage Stage, message string)

// LocalEngine is the chunked local transcription path
type LocalEngine interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*TranscriptionResult, error)
}

// RemoteEngine is the hosted speech-to-text API path
type RemoteEngine interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*TranscriptionResult, error)
}

// Summarizer produces a text summary of a transcript
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Result is the tagged outcome of a transcription request. TranscribeAudio
// never panics and never returns a bare error; callers branch on Success.
type Result struct {
	Success  bool
	Data     *TranscriptionResult
	Summary  string
	Err      error
	Category Category
}

// Service chooses between the local orchestrator and the remote API,
// normalizes both into one result shape and optionally attaches a summary.
type Service struct {
	local      LocalEngine
	remote     RemoteEngine // nil when no API credential is configured
	summarizer Summarizer   // nil when no API credential is configured
	progress   ProgressFunc
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithRemoteEngine enables the remote fallback path
func WithRemoteEngine(remote RemoteEngine) ServiceOption {
	return func(s *Service) {
		s.remote = remote
	}
}

// WithSummarizer enables summary generation
func WithSummarizer(summarizer Summarizer) ServiceOption {
	return func(s *Service) {
		s.summarizer = summarizer
	}
}

// WithProgress registers a progress callback
func WithProgress(progress ProgressFunc) ServiceOption {
	return func(s *Service) {
		s.progress = progress
	}
}

// NewService creates the transcription abstraction layer over a local engine
func NewService(local LocalEngine, opts ...ServiceOption) *Service {
	s := &Service{local: local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) report(stage Stage, message string) {
	if s.progress != nil {
		s.progress(stage, message)
	}
}

// TranscribeAudio runs one transcription request end to end. On local
// failure with a remote engine configured, the whole request is retried
// against the remote API exactly once. The fallback is one-directional by
// construction: the remote path can never re-enter the local path.
func (s *Service) TranscribeAudio(ctx context.Context, audioPath string, opts Options) Result {
	s.report(StagePreparing, "Preparing transcription")
	if opts.OnChunkError == "" {
		opts.OnChunkError = ChunkErrorDegrade
	}

	s.report(StageTranscribing, "Transcribing audio")
	data, err := s.local.Transcribe(ctx, audioPath, opts)
	if err != nil {
		if s.remote == nil || ctx.Err() != nil {
			return Result{Success: false, Err: err, Category: Categorize(err)}
		}
		utils.LogWarning("Local transcription failed (%v), falling back to API", err)
		s.report(StageFallingBackToAPI, "Local transcription failed, trying the API")
		data, err = s.remote.Transcribe(ctx, audioPath, opts)
		if err != nil {
			return Result{Success: false, Err: err, Category: Categorize(err)}
		}
	}

	data.SRTData = FormatSRT(data.Segments)

	result := Result{Success: true, Data: data}
	if opts.Summarize {
		result.Summary = s.summarize(ctx, data)
	}

	s.report(StageComplete, "Transcription complete")
	return result
}

// summarize requests a summary and, on any failure, substitutes a
// deterministic fallback derived from word count and duration. Summary
// problems never fail the transcription.
func (s *Service) summarize(ctx context.Context, data *TranscriptionResult) string {
	if s.summarizer == nil {
		return fallbackSummary(data)
	}

	s.report(StageSummarizing, "Generating summary")
	summary, err := s.summarizer.Summarize(ctx, data.Text)
	if err != nil || summary == "" {
		utils.LogWarning("Summary generation failed, using fallback: %v", err)
		return fallbackSummary(data)
	}
	return summary
}

// fallbackSummary is the deterministic summary used when the summarizer is
// unavailable or fails.
func fallbackSummary(data *TranscriptionResult) string {
	return fmt.Sprintf("<h3>Voice Log</h3><ul><li>%d words recorded</li><li>%.0f seconds of audio</li></ul>",
		data.WordCount(), data.Duration())
}
