package main

import (
	"context"
	"fmt"

	"github.com/Nagakninja/Compliance-Guardian/internal/audit"
	"github.com/Nagakninja/Compliance-Guardian/internal/config"
	"github.com/Nagakninja/Compliance-Guardian/internal/db"
	"github.com/Nagakninja/Compliance-Guardian/internal/extraction"
	"github.com/Nagakninja/Compliance-Guardian/internal/fetch"
	"github.com/Nagakninja/Compliance-Guardian/internal/llm"
	"github.com/Nagakninja/Compliance-Guardian/internal/pipeline"
	"github.com/Nagakninja/Compliance-Guardian/internal/retrieval"
)

// components bundles everything a command needs to run audits. Close
// releases the model clients and the database connection.
type components struct {
	pipeline  *pipeline.Pipeline
	retriever *retrieval.Client
	llmClient llm.Client
	service   *extraction.GeminiService
	database  *db.DB
}

// buildComponents wires the full audit pipeline from configuration: video
// acquisition, the Gemini extraction service, vector rule retrieval over
// Postgres, and the violation auditor.
func buildComponents(ctx context.Context, cfg config.Config) (*components, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	modelConfig := llm.DefaultConfig()

	llmClient, err := llm.NewClient(ctx, modelConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	service, err := extraction.NewGeminiService(ctx, modelConfig, cfg.APIKey)
	if err != nil {
		_ = llmClient.Close()
		return nil, fmt.Errorf("failed to create extraction service: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = llmClient.Close()
		_ = service.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	stage := extraction.NewStage(fetch.NewVideoAcquirer(), service, extraction.PollPolicy{
		Interval:    cfg.PollInterval(),
		MaxInterval: cfg.PollMaxInterval(),
		MaxWait:     cfg.MaxWait(),
	})

	retriever := retrieval.NewClient(llmClient, database, cfg.TopK())
	auditor := audit.NewAuditor(llmClient, retriever)

	return &components{
		pipeline:  pipeline.New(stage, auditor),
		retriever: retriever,
		llmClient: llmClient,
		service:   service,
		database:  database,
	}, nil
}

func (c *components) Close() {
	_ = c.llmClient.Close()
	_ = c.service.Close()
	c.database.Close()
}
