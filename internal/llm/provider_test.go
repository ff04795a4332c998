package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendChunkDelivers(t *testing.T) {
	ch := make(chan StreamChunk, 1)
	ok := sendChunk(context.Background(), ch, StreamChunk{Content: "token"})

	assert.True(t, ok)
	assert.Equal(t, "token", (<-ch).Content)
}

func TestSendChunkReturnsWhenConsumerGone(t *testing.T) {
	// Full buffer and nobody draining: the producer must not block past
	// context cancellation.
	ch := make(chan StreamChunk, 1)
	ch <- StreamChunk{Content: "pending"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan bool, 1)
	go func() {
		done <- sendChunk(ctx, ch, StreamChunk{Content: "stuck"})
	}()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send blocked after context cancellation")
	}
}
