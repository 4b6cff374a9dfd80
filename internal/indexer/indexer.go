// Package indexer builds the compliance rule knowledge base: it fetches rule
// pages, splits them into chunks, embeds each chunk, and upserts the result
// into the vector store that retrieval searches at audit time.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nagakninja/Compliance-Guardian/internal/db"
	"github.com/Nagakninja/Compliance-Guardian/internal/fetch"
)

const (
	// embedConcurrency bounds parallel embedding calls per source.
	embedConcurrency = 4

	// browserTimeout bounds rendering of JavaScript-heavy rule pages.
	browserTimeout = 30 * time.Second
)

// Embedder turns rule text into a vector for the knowledge store.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Store receives the indexed chunks.
type Store interface {
	UpsertRuleChunk(ctx context.Context, chunk db.RuleChunk) error
	DeleteRuleSource(ctx context.Context, source string) error
}

// Indexer ingests rule pages into the knowledge store.
type Indexer struct {
	embedder   Embedder
	store      Store
	useBrowser bool
	verbose    bool
}

// New creates an indexer. useBrowser enables a headless-browser fallback for
// pages whose static HTML yields too little text.
func New(embedder Embedder, store Store, useBrowser, verbose bool) *Indexer {
	return &Indexer{embedder: embedder, store: store, useBrowser: useBrowser, verbose: verbose}
}

// IndexSource fetches one rule page, replaces its previous chunks, and
// returns how many chunks were indexed.
func (ix *Indexer) IndexSource(ctx context.Context, sourceURL string) (int, error) {
	text, err := ix.fetchRuleText(ctx, sourceURL)
	if err != nil {
		return 0, fmt.Errorf("fetching rule page %s: %w", sourceURL, err)
	}

	chunks := ChunkText(text, DefaultChunkRunes)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("rule page %s yielded no indexable text", sourceURL)
	}

	// Re-indexing a source replaces it wholesale so stale chunks never
	// survive a rule revision.
	if err := ix.store.DeleteRuleSource(ctx, sourceURL); err != nil {
		return 0, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for i, chunkText := range chunks {
		g.Go(func() error {
			embedding, err := ix.embedder.EmbedText(gCtx, chunkText)
			if err != nil {
				return fmt.Errorf("embedding chunk %d of %s: %w", i, sourceURL, err)
			}
			return ix.store.UpsertRuleChunk(gCtx, db.RuleChunk{
				RuleID:     ruleID(sourceURL),
				Source:     sourceURL,
				ChunkIndex: i,
				Text:       chunkText,
				Embedding:  embedding,
			})
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// IndexSources indexes several rule pages and returns per-source chunk
// counts. The first failure aborts the remaining sources.
func (ix *Indexer) IndexSources(ctx context.Context, sourceURLs []string) (map[string]int, error) {
	counts := make(map[string]int, len(sourceURLs))
	for _, sourceURL := range sourceURLs {
		n, err := ix.IndexSource(ctx, sourceURL)
		if err != nil {
			return counts, err
		}
		counts[sourceURL] = n
		if ix.verbose {
			fmt.Printf("[VERBOSE] Indexed %d chunks from %s\n", n, sourceURL)
		}
	}
	return counts, nil
}

// fetchRuleText retrieves a rule page and extracts its main text, falling
// back to a headless browser when the static HTML is too thin.
func (ix *Indexer) fetchRuleText(ctx context.Context, sourceURL string) (string, error) {
	result, err := fetch.URL(ctx, sourceURL, nil)
	if err != nil {
		return "", err
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.RulePageSelectors())
	if err != nil {
		return "", err
	}

	if ix.useBrowser && fetch.ShouldUseBrowser(text) {
		if ix.verbose {
			fmt.Printf("[VERBOSE] Static HTML too thin for %s, rendering with browser...\n", sourceURL)
		}
		html, err := fetch.WithBrowser(ctx, sourceURL, browserTimeout, ix.verbose)
		if err != nil {
			return "", err
		}
		text, err = fetch.ExtractMainText(html, fetch.RulePageSelectors())
		if err != nil {
			return "", err
		}
	}

	return text, nil
}

// ruleID derives a stable identifier for chunks of one source.
func ruleID(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return "rule-" + hex.EncodeToString(sum[:8])
}
