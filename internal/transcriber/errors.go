package transcriber

import (
	"errors"
	"fmt"
)

// Category classifies a transcription failure for user-facing reporting.
// Each failure site constructs its own typed error, so categorization is a
// property of the error value rather than a parse of its message text.
type Category string

const (
	CategoryPythonEnvironment Category = "python_environment"
	CategoryModelLoading      Category = "model_loading"
	CategoryTranscription     Category = "transcription"
	CategoryStorage           Category = "storage"
	CategoryAPI               Category = "api"
	CategoryUnknown           Category = "unknown"
)

// userMessages maps each category to one fixed user-facing message.
var userMessages = map[Category]string{
	CategoryPythonEnvironment: "The local transcription environment is not set up. Install Python 3 and faster-whisper, or configure an API key.",
	CategoryModelLoading:      "The speech model could not be loaded. Try a smaller model or re-download it.",
	CategoryTranscription:     "Transcription failed. The recording may be corrupted or in an unsupported format.",
	CategoryStorage:           "A temporary file could not be created or read. Check disk space and permissions.",
	CategoryAPI:               "The transcription API request failed. Check your network connection and API key.",
	CategoryUnknown:           "An unexpected error occurred during transcription.",
}

// Error is a categorized transcription error
type Error struct {
	Category Category
	Op       string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a category and the operation that failed
func E(category Category, op string, err error) *Error {
	return &Error{Category: category, Op: op, Err: err}
}

// Categorize walks the error chain and returns the innermost category.
// Errors without a category are reported as unknown.
func Categorize(err error) Category {
	var category Category
	for err != nil {
		var te *Error
		if !errors.As(err, &te) {
			break
		}
		category = te.Category
		err = te.Err
	}
	if category == "" {
		return CategoryUnknown
	}
	return category
}

// UserMessage returns the fixed user-facing message for a category
func UserMessage(category Category) string {
	if msg, ok := userMessages[category]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}
