package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Aireenelz/rag-employee-learning-system/internal/apperr"
	"github.com/Aireenelz/rag-employee-learning-system/internal/auth"
	"github.com/Aireenelz/rag-employee-learning-system/internal/rag"
)

type ChatHandler struct {
	generator *rag.Generator
}

func NewChatHandler(g *rag.Generator) *ChatHandler {
	return &ChatHandler{generator: g}
}

type chatRequest struct {
	Question string `json:"question"`
}

// Chat answers a question at the caller's access rank. The generation path
// degrades to a fallback answer instead of erroring, so a well-formed
// request always gets 200.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Question == "" {
		writeAppError(w, apperr.Validation("question required"))
		return
	}

	answer := h.generator.Answer(r.Context(), req.Question, auth.RankFromContext(r.Context()))
	writeJSON(w, http.StatusOK, answer)
}

// ChatStream answers over SSE. Frames are the stream events verbatim:
// content frames, then one terminal frame carrying sources (or an error).
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Question == "" {
		writeAppError(w, apperr.Validation("question required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.generator.AnswerStream(r.Context(), req.Question, auth.RankFromContext(r.Context()))
	for ev := range events {
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		if ev.Done {
			return
		}
	}
}
