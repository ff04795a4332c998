package rag

import (
	"context"
	"log/slog"

	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
)

// StreamEvent is one frame of a streamed answer. The channel carries zero
// or more content frames, then exactly one terminal frame: either the
// sources frame (Done=true) or an error frame (Error set, Done=true).
// Sources are never emitted before the token stream has finished.
type StreamEvent struct {
	Content     string              `json:"content,omitempty"`
	Sources     []models.SourceInfo `json:"sources,omitempty"`
	UsedContext bool                `json:"used_context,omitempty"`
	Error       string              `json:"error,omitempty"`
	Done        bool                `json:"done,omitempty"`
}

// AnswerStream streams a generated answer. Retrieval and prompt failures
// degrade to a non-streamed fallback answer, the same as the synchronous
// path; only a mid-stream provider error produces an error frame. The
// returned channel is closed after the terminal frame.
func (g *Generator) AnswerStream(ctx context.Context, question string, accessRank int) <-chan StreamEvent {
	out := make(chan StreamEvent, 16)

	go func() {
		defer close(out)

		results, err := g.retriever.Retrieve(ctx, question, accessRank)
		if err != nil {
			slog.Error("retrieval failed, streaming without context", "error", err)
			results = nil
		}

		// Sources are assembled while tokens stream but held back until
		// the token stream ends.
		sourcesCh := make(chan []models.SourceInfo, 1)
		go func() {
			sourcesCh <- DedupSources(results)
		}()

		chunks, err := g.gateway.ChatStream(ctx, g.chatRequest(question, results))
		if err != nil {
			slog.Error("chat stream failed", "error", err)
			emit(ctx, out, StreamEvent{Content: fallbackAnswer})
			emit(ctx, out, StreamEvent{Sources: []models.SourceInfo{}, UsedContext: false, Done: true})
			return
		}

		for chunk := range chunks {
			if chunk.Error != nil {
				slog.Error("stream interrupted", "error", chunk.Error)
				emit(ctx, out, StreamEvent{Error: "generation failed, please try again later", Done: true})
				return
			}
			if chunk.Content != "" {
				if !emit(ctx, out, StreamEvent{Content: chunk.Content}) {
					return
				}
			}
			if chunk.Done {
				break
			}
		}

		emit(ctx, out, StreamEvent{
			Sources:     <-sourcesCh,
			UsedContext: len(results) > 0,
			Done:        true,
		})
	}()

	return out
}

func emit(ctx context.Context, out chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
