package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/Aireenelz/rag-employee-learning-system/pkg/textextract"
)

// TextExtractor converts uploaded file bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return &extractor{}
}

func (e *extractor) Extract(_ context.Context, data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	result, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), ext)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return result.Content, nil
}
