// Package retrieval finds the compliance rules most relevant to a video's
// extracted content by embedding a query and searching a vector knowledge
// store.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

const (
	// DefaultTopK bounds how many rule snippets a single audit retrieves.
	DefaultTopK = 8

	// maxQueryRunes caps the query text handed to the embedding model.
	// Transcripts of long videos can run to tens of thousands of characters;
	// the opening of the content carries enough signal for rule matching.
	maxQueryRunes = 6000

	// maxSnippetRunes caps each retrieved rule's text before it is handed to
	// the auditor prompt.
	maxSnippetRunes = 1200
)

// Embedder turns text into a vector suitable for similarity search.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeStore is a read-only vector index over compliance rule chunks.
type KnowledgeStore interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]types.RuleSnippet, error)
}

// Client performs RAG retrieval: build query, embed, search, trim.
type Client struct {
	embedder Embedder
	store    KnowledgeStore
	topK     int
}

// NewClient creates a retrieval client. A non-positive topK falls back to
// DefaultTopK.
func NewClient(embedder Embedder, store KnowledgeStore, topK int) *Client {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Client{embedder: embedder, store: store, topK: topK}
}

// Retrieve returns the rule snippets most relevant to the state's extracted
// content, ordered by descending relevance. An empty query (no extracted
// content) returns an empty slice without touching the store.
func (c *Client) Retrieve(ctx context.Context, state *types.AuditState) ([]types.RuleSnippet, error) {
	query := BuildQuery(state)
	if query == "" {
		return []types.RuleSnippet{}, nil
	}

	embedding, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding retrieval query: %w", err)
	}

	return c.search(ctx, embedding, c.topK)
}

// Search runs an ad-hoc query against the knowledge store, bypassing the
// content-derived query. A non-positive topK uses the client's default.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]types.RuleSnippet, error) {
	query = truncateRunes(strings.TrimSpace(query), maxQueryRunes)
	if query == "" {
		return []types.RuleSnippet{}, nil
	}
	if topK <= 0 {
		topK = c.topK
	}

	embedding, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding retrieval query: %w", err)
	}
	return c.search(ctx, embedding, topK)
}

func (c *Client) search(ctx context.Context, embedding []float32, topK int) ([]types.RuleSnippet, error) {
	snippets, err := c.store.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("searching rule store: %w", err)
	}

	for i := range snippets {
		snippets[i].Text = truncateRunes(snippets[i].Text, maxSnippetRunes)
	}
	return snippets, nil
}

// BuildQuery derives the retrieval query text from the state's transcript and
// OCR text. The derivation is deterministic: identical inputs always produce
// the identical query.
func BuildQuery(state *types.AuditState) string {
	var parts []string
	if state.Transcript != nil && strings.TrimSpace(*state.Transcript) != "" {
		parts = append(parts, "Transcript: "+strings.TrimSpace(*state.Transcript))
	}
	if state.OCRText != nil && strings.TrimSpace(*state.OCRText) != "" {
		parts = append(parts, "On-screen text: "+strings.TrimSpace(*state.OCRText))
	}
	if len(parts) == 0 {
		return ""
	}
	return truncateRunes(strings.Join(parts, "\n\n"), maxQueryRunes)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
