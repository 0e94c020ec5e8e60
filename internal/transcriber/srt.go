package transcriber

import (
	"fmt"
	"strings"
)

// FormatSRT renders segments as SubRip subtitle data
func FormatSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTimestamp(seg.Start), formatSRTTimestamp(seg.End))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// formatSRTTimestamp formats seconds as an SRT HH:MM:SS,mmm timestamp
func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(seconds*1000 + 0.5)

	hours := totalMs / (3600 * 1000)
	totalMs %= 3600 * 1000
	minutes := totalMs / (60 * 1000)
	totalMs %= 60 * 1000
	secs := totalMs / 1000
	milliseconds := totalMs % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, milliseconds)
}
