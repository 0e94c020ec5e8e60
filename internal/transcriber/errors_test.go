package transcriber

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{
			name: "nil error",
			err:  nil,
			want: CategoryUnknown,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: CategoryUnknown,
		},
		{
			name: "categorized error",
			err:  E(CategoryStorage, "stat input", errors.New("no such file")),
			want: CategoryStorage,
		},
		{
			name: "wrapped categorized error",
			err:  fmt.Errorf("request failed: %w", E(CategoryAPI, "transcription request", errors.New("status 500"))),
			want: CategoryAPI,
		},
		{
			name: "innermost category wins",
			err: E(CategoryTranscription, "transcribe chunk",
				E(CategoryPythonEnvironment, "spawn worker", errors.New("python3: not found"))),
			want: CategoryPythonEnvironment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	// Every category has a fixed user-facing message.
	for _, category := range []Category{
		CategoryPythonEnvironment,
		CategoryModelLoading,
		CategoryTranscription,
		CategoryStorage,
		CategoryAPI,
		CategoryUnknown,
	} {
		assert.NotEmpty(t, UserMessage(category))
	}

	// An unregistered category falls back to the unknown message.
	assert.Equal(t, UserMessage(CategoryUnknown), UserMessage(Category("bogus")))
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := E(CategoryModelLoading, "load model", inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "load model")
	assert.Contains(t, err.Error(), "inner")
}
