package transcriber

import "strings"

// MergeChunkResults concatenates per-chunk results, in chunk order, into one
// contiguous transcript. A running time offset is added to every segment and
// nested word so that all timestamps are expressed in the original file's
// timeline. The offset advances by each chunk's last segment end rather than
// the nominal chunk duration, which tolerates chunks whose speech ends
// before the boundary. A chunk with zero segments leaves the offset
// unchanged.
func MergeChunkResults(results []*TranscriptionResult) *TranscriptionResult {
	merged := &TranscriptionResult{}

	var texts []string
	var timeOffset float64
	segmentID := 0

	for _, res := range results {
		if res == nil {
			continue
		}
		if text := strings.TrimSpace(res.Text); text != "" {
			texts = append(texts, text)
		}
		if merged.Language == "" {
			merged.Language = res.Language
		}

		for _, seg := range res.Segments {
			shifted := Segment{
				ID:    segmentID,
				Start: seg.Start + timeOffset,
				End:   seg.End + timeOffset,
				Text:  seg.Text,
			}
			if len(seg.Words) > 0 {
				shifted.Words = make([]Word, len(seg.Words))
				for i, w := range seg.Words {
					shifted.Words[i] = Word{
						Word:        w.Word,
						Start:       w.Start + timeOffset,
						End:         w.End + timeOffset,
						Probability: w.Probability,
					}
				}
			}
			merged.Segments = append(merged.Segments, shifted)
			segmentID++
		}

		if len(res.Segments) > 0 {
			timeOffset += res.Segments[len(res.Segments)-1].End
		}
	}

	merged.Text = strings.Join(texts, " ")
	return merged
}
