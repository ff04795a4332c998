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

func collect(t *testing.T, ch <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestAnswerStreamTokensThenSources(t *testing.T) {
	docID := uuid.New()
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		result(docID, 0, "relevant chunk", "eng", "internal", 2, 0.2),
	}}
	gw := &fakeGateway{streamChunks: []llm.StreamChunk{
		{Content: "Hel"},
		{Content: "lo"},
		{Done: true},
	}}

	events := collect(t, newTestGenerator(store, gw).AnswerStream(context.Background(), "q", 2))

	require.Len(t, events, 3)
	assert.Equal(t, "Hel", events[0].Content)
	assert.False(t, events[0].Done)
	assert.Empty(t, events[0].Sources, "sources must not appear before the token stream ends")
	assert.Equal(t, "lo", events[1].Content)

	last := events[2]
	assert.True(t, last.Done)
	assert.True(t, last.UsedContext)
	require.Len(t, last.Sources, 1)
	assert.Equal(t, docID.String(), last.Sources[0].DocumentID)
}

func TestAnswerStreamProviderErrorIsTerminal(t *testing.T) {
	store := &fakeVectorStore{}
	gw := &fakeGateway{streamChunks: []llm.StreamChunk{
		{Content: "partial"},
		{Error: errors.New("connection reset"), Done: true},
	}}

	events := collect(t, newTestGenerator(store, gw).AnswerStream(context.Background(), "q", 1))

	require.Len(t, events, 2)
	assert.Equal(t, "partial", events[0].Content)

	last := events[1]
	assert.True(t, last.Done)
	assert.NotEmpty(t, last.Error)
	assert.Empty(t, last.Sources)
}

func TestAnswerStreamStartFailureFallsBack(t *testing.T) {
	store := &fakeVectorStore{}
	gw := &fakeGateway{streamErr: errors.New("provider down")}

	events := collect(t, newTestGenerator(store, gw).AnswerStream(context.Background(), "q", 1))

	require.Len(t, events, 2)
	assert.Equal(t, fallbackAnswer, events[0].Content)
	assert.True(t, events[1].Done)
	assert.False(t, events[1].UsedContext)
	assert.Empty(t, events[1].Error)
}

func TestAnswerStreamGeneralMode(t *testing.T) {
	store := &fakeVectorStore{}
	gw := &fakeGateway{streamChunks: []llm.StreamChunk{
		{Content: "general answer"},
		{Done: true},
	}}

	events := collect(t, newTestGenerator(store, gw).AnswerStream(context.Background(), "q", 1))

	last := events[len(events)-1]
	assert.True(t, last.Done)
	assert.False(t, last.UsedContext)
	assert.Empty(t, last.Sources)
}
