package transcriber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeChunkResults_OffsetInvariant(t *testing.T) {
	// Three chunks whose speech ends before the nominal boundary. The offset
	// applied to chunk k must equal the sum of the last segment ends of
	// chunks 0..k-1.
	results := []*TranscriptionResult{
		{
			Text: "first chunk",
			Segments: []Segment{
				{ID: 0, Start: 0.0, End: 2.5, Text: "first"},
				{ID: 1, Start: 2.5, End: 4.8, Text: "chunk"},
			},
		},
		{
			Text: "second chunk",
			Segments: []Segment{
				{ID: 0, Start: 0.2, End: 3.0, Text: "second"},
				{ID: 1, Start: 3.0, End: 5.5, Text: "chunk"},
			},
		},
		{
			Text: "third",
			Segments: []Segment{
				{ID: 0, Start: 0.1, End: 2.0, Text: "third"},
			},
		},
	}

	merged := MergeChunkResults(results)

	assert.Equal(t, "first chunk second chunk third", merged.Text)
	require.Len(t, merged.Segments, 5)

	// Chunk 1 is shifted by 4.8, chunk 2 by 4.8+5.5.
	assert.InDelta(t, 0.2+4.8, merged.Segments[2].Start, 1e-9)
	assert.InDelta(t, 3.0+4.8, merged.Segments[3].Start, 1e-9)
	assert.InDelta(t, 0.1+4.8+5.5, merged.Segments[4].Start, 1e-9)

	// Merged timestamps are monotonically non-decreasing across boundaries.
	for i := 1; i < len(merged.Segments); i++ {
		assert.GreaterOrEqual(t, merged.Segments[i].Start, merged.Segments[i-1].Start,
			"segment %d starts before segment %d", i, i-1)
		assert.GreaterOrEqual(t, merged.Segments[i].End, merged.Segments[i].Start)
	}

	// Segment IDs are renumbered across the merged list.
	for i, seg := range merged.Segments {
		assert.Equal(t, i, seg.ID)
	}
}

func TestMergeChunkResults_WordsShifted(t *testing.T) {
	results := []*TranscriptionResult{
		{
			Text: "hello world",
			Segments: []Segment{
				{
					ID: 0, Start: 0, End: 2, Text: "hello world",
					Words: []Word{
						{Word: "hello", Start: 0.1, End: 0.8, Probability: 0.98},
						{Word: "world", Start: 1.0, End: 1.9, Probability: 0.95},
					},
				},
			},
		},
		{
			Text: "again",
			Segments: []Segment{
				{
					ID: 0, Start: 0, End: 1, Text: "again",
					Words: []Word{
						{Word: "again", Start: 0.2, End: 0.9, Probability: 0.9},
					},
				},
			},
		},
	}

	merged := MergeChunkResults(results)

	require.Len(t, merged.Segments, 2)
	require.Len(t, merged.Segments[1].Words, 1)
	assert.InDelta(t, 2.2, merged.Segments[1].Words[0].Start, 1e-9)
	assert.InDelta(t, 2.9, merged.Segments[1].Words[0].End, 1e-9)
	assert.InDelta(t, 0.9, merged.Segments[1].Words[0].Probability, 1e-9)
}

func TestMergeChunkResults_EmptyChunkLeavesOffsetUnchanged(t *testing.T) {
	results := []*TranscriptionResult{
		{
			Text:     "before",
			Segments: []Segment{{ID: 0, Start: 0, End: 3, Text: "before"}},
		},
		// A failed chunk degraded to an empty contribution.
		{Text: "", Segments: []Segment{}},
		{
			Text:     "after",
			Segments: []Segment{{ID: 0, Start: 0, End: 2, Text: "after"}},
		},
	}

	merged := MergeChunkResults(results)

	assert.Equal(t, "before after", merged.Text)
	require.Len(t, merged.Segments, 2)
	// The empty chunk must not advance the offset.
	assert.InDelta(t, 3.0, merged.Segments[1].Start, 1e-9)
}

func TestMergeChunkResults_NilAndEmptyInput(t *testing.T) {
	merged := MergeChunkResults(nil)
	assert.Equal(t, "", merged.Text)
	assert.Empty(t, merged.Segments)

	merged = MergeChunkResults([]*TranscriptionResult{nil, nil})
	assert.Equal(t, "", merged.Text)
	assert.Empty(t, merged.Segments)
}

func TestMergeChunkResults_LanguageFromFirstChunk(t *testing.T) {
	results := []*TranscriptionResult{
		{Text: "hola", Language: "es", Segments: []Segment{{End: 1, Text: "hola"}}},
		{Text: "adios", Language: "en", Segments: []Segment{{End: 1, Text: "adios"}}},
	}

	merged := MergeChunkResults(results)
	assert.Equal(t, "es", merged.Language)
}
