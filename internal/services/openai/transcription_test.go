package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/voxlog/voxlog/internal/transcriber"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake audio"), 0644))
	return path
}

func TestTranscribe(t *testing.T) {
	audioPath := writeAudioFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.NotEmpty(t, r.FormValue("prompt"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "log.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"text": "remote transcript",
			"language": "english",
			"segments": [
				{"id": 0, "start": 0.0, "end": 2.0, "text": "remote"},
				{"id": 1, "start": 2.0, "end": 4.0, "text": "transcript"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	result, err := client.Transcribe(context.Background(), audioPath, transcriber.Options{Language: "en"})

	require.NoError(t, err)
	assert.Equal(t, "remote transcript", result.Text)
	assert.Equal(t, "english", result.Language)
	require.Len(t, result.Segments, 2)
	assert.InDelta(t, 2.0, result.Segments[1].Start, 1e-9)
}

func TestTranscribe_AutoLanguageOmitted(t *testing.T) {
	audioPath := writeAudioFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, hasLanguage := r.MultipartForm.Value["language"]
		assert.False(t, hasLanguage, "auto language detection must not send a language field")
		_, _ = w.Write([]byte(`{"text": "ok", "language": "en", "segments": []}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	_, err := client.Transcribe(context.Background(), audioPath, transcriber.Options{Language: "auto"})

	require.NoError(t, err)
}

func TestTranscribe_APIError(t *testing.T) {
	audioPath := writeAudioFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("wrong", server.URL)
	_, err := client.Transcribe(context.Background(), audioPath, transcriber.Options{})

	require.Error(t, err)
	assert.Equal(t, transcriber.CategoryAPI, transcriber.Categorize(err))
	assert.Contains(t, err.Error(), "status 401")
}

func TestTranscribe_MissingFile(t *testing.T) {
	client := NewClientWithBaseURL("test-key", "http://unused")

	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.wav"), transcriber.Options{})

	require.Error(t, err)
	assert.Equal(t, transcriber.CategoryStorage, transcriber.Categorize(err))
}
