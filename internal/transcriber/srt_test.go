package transcriber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSRT(t *testing.T) {
	segments := []Segment{
		{ID: 0, Start: 0, End: 2.5, Text: " Hello there. "},
		{ID: 1, Start: 3661.25, End: 3663.75, Text: "One hour in."},
	}

	srt := FormatSRT(segments)

	expected := "1\n00:00:00,000 --> 00:00:02,500\nHello there.\n\n" +
		"2\n01:01:01,250 --> 01:01:03,750\nOne hour in.\n\n"
	assert.Equal(t, expected, srt)
}

func TestFormatSRT_Empty(t *testing.T) {
	assert.Equal(t, "", FormatSRT(nil))
}

func TestFormatSRTTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00,000"},
		{name: "milliseconds rounded", seconds: 1.2345, want: "00:00:01,235"},
		{name: "minute boundary", seconds: 60, want: "00:01:00,000"},
		{name: "hours", seconds: 7384.5, want: "02:03:04,500"},
		{name: "negative clamped", seconds: -5, want: "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSRTTimestamp(tt.seconds))
		})
	}
}
