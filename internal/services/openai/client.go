// Package openai provides the remote speech-to-text and summarization
// clients backed by the OpenAI HTTP API.
package openai

import (
	"errors"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is a thin OpenAI API client shared by the transcription and
// summarization endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client from the OPENAI_API_KEY environment variable
func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is not set")
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}, nil
}

// NewClientWithBaseURL creates a client pointed at a custom endpoint,
// primarily for tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

// IsAPIKeySet checks if the OpenAI API key is set in the environment
func IsAPIKeySet() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}
