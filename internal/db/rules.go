package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// RuleChunk is one embeddable slice of a compliance rule document.
type RuleChunk struct {
	RuleID     string
	Source     string
	ChunkIndex int
	Text       string
	Embedding  []float32
}

// UpsertRuleChunk inserts or replaces a rule chunk and its embedding.
// Requires the pgvector extension; embeddings are stored in a vector column.
func (db *DB) UpsertRuleChunk(ctx context.Context, chunk RuleChunk) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO rule_chunks (rule_id, source, chunk_index, text, embedding)
		 VALUES ($1, $2, $3, $4, $5::vector)
		 ON CONFLICT (rule_id, chunk_index) DO UPDATE
		 SET source = $2, text = $4, embedding = $5::vector, updated_at = NOW()`,
		chunk.RuleID, chunk.Source, chunk.ChunkIndex, chunk.Text, vectorLiteral(chunk.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rule chunk %s/%d: %w", chunk.RuleID, chunk.ChunkIndex, err)
	}
	return nil
}

// DeleteRuleSource removes every chunk indexed from a source, used when a
// rule page is re-indexed from scratch.
func (db *DB) DeleteRuleSource(ctx context.Context, source string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM rule_chunks WHERE source = $1`, source)
	if err != nil {
		return fmt.Errorf("failed to delete rule chunks for %s: %w", source, err)
	}
	return nil
}

// Search returns the topK rule chunks nearest to the embedding by cosine
// distance, best match first. Score is cosine similarity in [0, 1].
func (db *DB) Search(ctx context.Context, embedding []float32, topK int) ([]types.RuleSnippet, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT rule_id, source, text, 1 - (embedding <=> $1::vector) AS score
		 FROM rule_chunks
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`,
		vectorLiteral(embedding), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search rule chunks: %w", err)
	}
	defer rows.Close()

	var snippets []types.RuleSnippet
	for rows.Next() {
		var s types.RuleSnippet
		if err := rows.Scan(&s.RuleID, &s.Source, &s.Text, &s.Score); err != nil {
			return nil, fmt.Errorf("failed to scan rule chunk: %w", err)
		}
		snippets = append(snippets, s)
	}
	return snippets, nil
}

// vectorLiteral renders an embedding in pgvector's input syntax.
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
