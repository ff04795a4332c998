package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aireenelz/rag-employee-learning-system/internal/llm"
	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

const (
	contextSystemPrompt = "You are an AI assistant for an employee learning system in ThinkCodex Sdn Bhd. " +
		"Answer the question based on the provided context from company documents. " +
		"If the context does not contain enough information, you may fall back on general knowledge."

	generalSystemPrompt = "You are an AI assistant for an employee learning system in ThinkCodex Sdn Bhd. " +
		"The question does not match any company documents, so provide a helpful general answer."

	// Returned whenever the model cannot be reached. The answer path never
	// surfaces an error to the caller.
	fallbackAnswer = "Sorry, I ran into an issue while generating a response. Please try again later."
)

type GeneratorOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator produces answers grounded in retrieved chunks. When retrieval
// yields nothing above the relevance threshold it answers from general
// knowledge and reports used_context=false.
type Generator struct {
	retriever *Retriever
	gateway   llm.Gateway
	opts      GeneratorOptions
}

func NewGenerator(retriever *Retriever, gateway llm.Gateway, opts GeneratorOptions) *Generator {
	if opts.Temperature <= 0 {
		opts.Temperature = 0.2
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	return &Generator{
		retriever: retriever,
		gateway:   gateway,
		opts:      opts,
	}
}

// Answer holds a generated response plus the documents that informed it.
type Answer struct {
	Text        string              `json:"response"`
	Sources     []models.SourceInfo `json:"sources"`
	UsedContext bool                `json:"used_context"`
}

// Answer generates a response for the question at the caller's access rank.
// It never returns an error: any dependency failure degrades to a fallback
// answer with no sources.
func (g *Generator) Answer(ctx context.Context, question string, accessRank int) *Answer {
	results, err := g.retriever.Retrieve(ctx, question, accessRank)
	if err != nil {
		slog.Error("retrieval failed, answering without context", "error", err)
		results = nil
	}

	req := g.chatRequest(question, results)

	resp, err := g.gateway.Chat(ctx, req)
	if err != nil {
		slog.Error("chat completion failed", "error", err)
		return &Answer{Text: fallbackAnswer, Sources: []models.SourceInfo{}, UsedContext: false}
	}

	return &Answer{
		Text:        resp.Content,
		Sources:     DedupSources(results),
		UsedContext: len(results) > 0,
	}
}

// chatRequest builds the prompt. Context mode stitches the retained chunks
// into a single context block; general mode sends the bare question.
func (g *Generator) chatRequest(question string, results []vectorstore.SearchResult) llm.ChatRequest {
	var messages []llm.Message
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, res := range results {
			parts[i] = res.Content
		}
		messages = []llm.Message{
			{Role: "system", Content: contextSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(parts, "\n\n"), question)},
		}
	} else {
		messages = []llm.Message{
			{Role: "system", Content: generalSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Question: %s", question)},
		}
	}

	return llm.ChatRequest{
		Model:       g.opts.Model,
		Messages:    messages,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	}
}

// DedupSources collapses chunk hits to one source per document, keeping the
// first (best-ranked) hit's score and preserving retrieval order.
func DedupSources(results []vectorstore.SearchResult) []models.SourceInfo {
	sources := make([]models.SourceInfo, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		docID := res.DocumentID.String()
		if _, ok := seen[docID]; ok {
			continue
		}
		seen[docID] = struct{}{}
		sources = append(sources, models.SourceInfo{
			DocumentID:  docID,
			Tags:        splitTags(res.Tags),
			AccessLevel: res.AccessLevel,
			Score:       res.Score,
		})
	}
	return sources
}

func splitTags(joined string) []string {
	if joined == "" {
		return []string{}
	}
	parts := strings.Split(joined, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
