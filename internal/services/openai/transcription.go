package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/voxlog/voxlog/internal/transcriber"
)

// transcriptionModel is the hosted speech-to-text model
const transcriptionModel = "whisper-1"

// transcriptionPrompt nudges the API toward the transcription style used
// for voice logs: verbatim, with punctuation.
const transcriptionPrompt = "This is a spoken personal log entry. Transcribe it verbatim with punctuation."

// verboseResponse is the verbose_json response shape of the audio API
type verboseResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file as a multipart form and normalizes the
// verbose_json response into the shared TranscriptionResult shape. It
// implements transcriber.RemoteEngine.
func (c *Client) Transcribe(ctx context.Context, audioPath string, opts transcriber.Options) (*transcriber.TranscriptionResult, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryStorage, "open audio file", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":           transcriptionModel,
		"response_format": "verbose_json",
		"temperature":     strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
		"prompt":          transcriptionPrompt,
	}
	if opts.Language != "" && opts.Language != "auto" {
		fields["language"] = opts.Language
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, transcriber.E(transcriber.CategoryAPI, "build request", err)
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryAPI, "build request", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, transcriber.E(transcriber.CategoryStorage, "read audio file", err)
	}
	if err := mw.Close(); err != nil {
		return nil, transcriber.E(transcriber.CategoryAPI, "build request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryAPI, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryAPI, "transcription request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transcriber.E(transcriber.CategoryAPI, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transcriber.E(transcriber.CategoryAPI, "transcription request",
			fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	var parsed verboseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, transcriber.E(transcriber.CategoryAPI, "parse response", err)
	}

	result := &transcriber.TranscriptionResult{
		Text:     parsed.Text,
		Language: parsed.Language,
	}
	for _, seg := range parsed.Segments {
		result.Segments = append(result.Segments, transcriber.Segment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return result, nil
}

// Compile-time check that Client satisfies the service's remote contract
var _ transcriber.RemoteEngine = (*Client)(nil)
