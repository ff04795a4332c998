package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aireenelz/rag-employee-learning-system/internal/llm"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

func newTestGenerator(store *fakeVectorStore, gw *fakeGateway) *Generator {
	retriever := NewRetriever(store, &fakeEmbedder{vector: []float32{1}}, nil, RetrieverOptions{})
	return NewGenerator(retriever, gw, GeneratorOptions{Model: "gpt-4o-mini"})
}

func TestAnswerWithContext(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		result(docA, 0, "leave policy says 20 days", "hr, policy", "internal", 2, 0.1),
		result(docA, 1, "carry over max 5 days", "hr, policy", "internal", 2, 0.2),
		result(docB, 0, "partners accrue differently", "hr", "partner", 1, 0.3),
	}}
	gw := &fakeGateway{response: &llm.ChatResponse{Content: "You get 20 days."}}

	answer := newTestGenerator(store, gw).Answer(context.Background(), "how many leave days?", 2)

	assert.Equal(t, "You get 20 days.", answer.Text)
	assert.True(t, answer.UsedContext)

	// Chunks from the same document collapse into one source, retrieval
	// order preserved.
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, docA.String(), answer.Sources[0].DocumentID)
	assert.Equal(t, docB.String(), answer.Sources[1].DocumentID)
	assert.Equal(t, []string{"hr", "policy"}, answer.Sources[0].Tags)
	assert.Equal(t, 0.1, answer.Sources[0].Score)

	// The prompt carries the chunk text.
	require.Len(t, gw.lastRequest.Messages, 2)
	assert.Equal(t, contextSystemPrompt, gw.lastRequest.Messages[0].Content)
	assert.Contains(t, gw.lastRequest.Messages[1].Content, "Context:")
	assert.Contains(t, gw.lastRequest.Messages[1].Content, "leave policy says 20 days")
	assert.Contains(t, gw.lastRequest.Messages[1].Content, "how many leave days?")
}

func TestAnswerGeneralMode(t *testing.T) {
	store := &fakeVectorStore{} // nothing relevant in the index
	gw := &fakeGateway{response: &llm.ChatResponse{Content: "In general..."}}

	answer := newTestGenerator(store, gw).Answer(context.Background(), "what is Go?", 1)

	assert.Equal(t, "In general...", answer.Text)
	assert.False(t, answer.UsedContext)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, generalSystemPrompt, gw.lastRequest.Messages[0].Content)
	assert.NotContains(t, gw.lastRequest.Messages[1].Content, "Context:")
}

func TestAnswerRetrievalFailureDegradesToGeneral(t *testing.T) {
	store := &fakeVectorStore{searchErr: errors.New("index down")}
	gw := &fakeGateway{response: &llm.ChatResponse{Content: "best effort"}}

	answer := newTestGenerator(store, gw).Answer(context.Background(), "anything", 3)

	assert.Equal(t, "best effort", answer.Text)
	assert.False(t, answer.UsedContext)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, generalSystemPrompt, gw.lastRequest.Messages[0].Content)
}

func TestAnswerChatFailureFallsBack(t *testing.T) {
	store := &fakeVectorStore{}
	gw := &fakeGateway{chatErr: errors.New("provider down")}

	answer := newTestGenerator(store, gw).Answer(context.Background(), "anything", 1)

	assert.Equal(t, fallbackAnswer, answer.Text)
	assert.False(t, answer.UsedContext)
	assert.Empty(t, answer.Sources)
}

func TestDedupSources(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()

	sources := DedupSources([]vectorstore.SearchResult{
		result(docA, 0, "a0", "x, y", "internal", 2, 0.10),
		result(docB, 0, "b0", "", "public", 0, 0.15),
		result(docA, 3, "a3", "x, y", "internal", 2, 0.20),
	})

	require.Len(t, sources, 2)
	assert.Equal(t, docA.String(), sources[0].DocumentID)
	assert.Equal(t, 0.10, sources[0].Score)
	assert.Equal(t, docB.String(), sources[1].DocumentID)
	assert.Equal(t, []string{}, sources[1].Tags)

	assert.Empty(t, DedupSources(nil))
}
