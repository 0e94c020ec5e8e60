package worker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voxlog/voxlog/internal/transcriber"
)

// workerOutput is the JSON shape the Python worker prints on stdout
type workerOutput struct {
	Text     string                `json:"text"`
	Segments []transcriber.Segment `json:"segments"`
	Language string                `json:"language"`
}

// ParseOutput locates the single JSON result line within the worker's
// stdout and decodes it. The worker keeps diagnostics on stderr, but model
// runtimes occasionally leak log lines onto stdout, so the result line is
// identified by shape: it starts with '{' and carries a "text" key. A
// missing result line is a hard failure with stderr attached for diagnosis.
func ParseOutput(stdout, stderr string) (*transcriber.TranscriptionResult, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"text"`) {
			continue
		}

		var out workerOutput
		if err := json.Unmarshal([]byte(line), &out); err != nil {
			return nil, transcriber.E(transcriber.CategoryTranscription, "parse worker output",
				fmt.Errorf("invalid JSON from worker: %w; raw output: %s", err, truncate(line, 2000)))
		}
		return &transcriber.TranscriptionResult{
			Text:     out.Text,
			Segments: out.Segments,
			Language: out.Language,
		}, nil
	}

	return nil, transcriber.E(transcriber.CategoryTranscription, "parse worker output",
		fmt.Errorf("no JSON result line in worker output; stderr: %s", truncate(strings.TrimSpace(stderr), 2000)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
