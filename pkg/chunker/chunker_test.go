package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkFixedWindows(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxy" // 25 runes
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 10, ChunkOverlap: 2})

	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0].Content)
	assert.Equal(t, "ijklmnopqr", chunks[1].Content)
	assert.Equal(t, "qrstuvwxy", chunks[2].Content)
	assert.Equal(t, "y", chunks[3].Content)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkOverlapSharesTail(t *testing.T) {
	text := strings.Repeat("0123456789", 5)
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 20, ChunkOverlap: 5})

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		cur := []rune(chunks[i].Content)
		overlap := 5
		if len(cur) < overlap {
			overlap = len(cur)
		}
		assert.Equal(t, string(prev[len(prev)-overlap:]), string(cur[:overlap]),
			"chunk %d should start with the previous chunk's tail", i)
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	opts := ChunkOptions{ChunkSize: 100, ChunkOverlap: 20}

	first := New().Chunk(text, opts)
	second := New().Chunk(text, opts)
	assert.Equal(t, first, second)
}

func TestChunkEmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, New().Chunk("", DefaultOptions()))
	assert.Empty(t, New().Chunk("   \n\t  ", ChunkOptions{ChunkSize: 3}))
}

func TestChunkOverlapAtLeastSize(t *testing.T) {
	// Overlap >= size must not stall the window.
	text := strings.Repeat("x", 30)
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 10, ChunkOverlap: 10})
	require.Len(t, chunks, 3)
}

func TestChunkSentenceStrategy(t *testing.T) {
	text := "First sentence here. Second one follows. Third is the last."
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 45, ChunkOverlap: 0, Strategy: "sentence"})

	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0].Content, "First sentence")
	assert.Contains(t, chunks[1].Content, "Third is the last")
}
