// Package transcriber contains the transcription result model, the chunked
// orchestrator and the local/remote abstraction layer.
package transcriber

import "context"

// Word is a single transcribed word with timing and confidence
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Segment is a transcribed phrase with start/end timestamps in seconds.
// After merging, timestamps are relative to the original unchunked audio.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// TranscriptionResult is the final output of one transcription request.
// It is immutable once returned to the caller.
type TranscriptionResult struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
	SRTData  string    `json:"srtData,omitempty"`
}

// Duration returns the end timestamp of the last segment, in seconds
func (r *TranscriptionResult) Duration() float64 {
	if len(r.Segments) == 0 {
		return 0
	}
	return r.Segments[len(r.Segments)-1].End
}

// WordCount returns the number of whitespace-separated words in the text
func (r *TranscriptionResult) WordCount() int {
	count := 0
	inWord := false
	for _, ch := range r.Text {
		if ch == ' ' || ch == '\t' || ch == '\n' {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}

// ChunkErrorPolicy decides what happens when one chunk of a large input
// fails to transcribe.
type ChunkErrorPolicy string

const (
	// ChunkErrorDegrade replaces the failed chunk with an empty result, so
	// the request succeeds with degraded content for that time range.
	ChunkErrorDegrade ChunkErrorPolicy = "degrade"
	// ChunkErrorFail aborts the whole request on the first chunk failure.
	ChunkErrorFail ChunkErrorPolicy = "fail"
)

// Options are the caller-supplied transcription parameters. Model is an
// explicit parameter on every request; there is no process-wide current
// model, so concurrent requests with different models do not race.
type Options struct {
	Model        string
	Language     string
	Temperature  float64
	BeamSize     int
	ComputeType  string
	VADFilter    *bool
	Summarize    bool
	OnChunkError ChunkErrorPolicy
}

// ChunkEngine transcribes one audio file with one worker process.
// Implemented by the Python faster-whisper worker; replaced by fakes in tests.
type ChunkEngine interface {
	TranscribeFile(ctx context.Context, audioPath string, opts Options) (*TranscriptionResult, error)
}
