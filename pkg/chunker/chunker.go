// Package chunker splits extracted document text into the windows that get
// embedded and indexed. Chunk order is stable: the i-th chunk of a given
// text with the same options is always the same, which downstream code
// relies on for positional chunk identifiers.
package chunker

import (
	"strings"
	"unicode/utf8"
)

type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

type ChunkOptions struct {
	ChunkSize    int    // target chunk size in characters
	ChunkOverlap int    // characters shared between consecutive chunks
	Strategy     string // "fixed" or "sentence"
}

type TextChunk struct {
	Content string
	Index   int
	Start   int // rune offset
	End     int
}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Strategy:     "fixed",
	}
}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}

	switch opts.Strategy {
	case "sentence":
		return chunkBySentence(text, opts)
	default:
		return chunkFixed(text, opts)
	}
}

func chunkFixed(text string, opts ChunkOptions) []TextChunk {
	var chunks []TextChunk
	runes := []rune(text)
	idx := 0

	for start := 0; start < len(runes); {
		end := start + opts.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		content := string(runes[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, TextChunk{
				Content: content,
				Index:   idx,
				Start:   start,
				End:     end,
			})
			idx++
		}

		step := opts.ChunkSize - opts.ChunkOverlap
		if step <= 0 {
			step = opts.ChunkSize
		}
		start += step
	}

	return chunks
}

func chunkBySentence(text string, opts ChunkOptions) []TextChunk {
	sentences := splitSentences(text)

	var chunks []TextChunk
	var current strings.Builder
	idx := 0

	for _, s := range sentences {
		if current.Len() > 0 && utf8.RuneCountInString(current.String()+s) > opts.ChunkSize {
			chunks = append(chunks, TextChunk{
				Content: strings.TrimSpace(current.String()),
				Index:   idx,
			})
			idx++
			current.Reset()
		}
		current.WriteString(s)
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, TextChunk{
			Content: strings.TrimSpace(current.String()),
			Index:   idx,
		})
	}

	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}
