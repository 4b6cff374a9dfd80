package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nagakninja/Compliance-Guardian/internal/db"
	"github.com/Nagakninja/Compliance-Guardian/internal/indexer"
	"github.com/Nagakninja/Compliance-Guardian/internal/llm"
)

var (
	indexConfigPath string
	indexUseBrowser bool
	indexVerbose    bool
)

var indexRulesCmd = &cobra.Command{
	Use:   "index-rules [url...]",
	Short: "Index compliance rule pages into the vector knowledge base",
	Long: `Fetches each rule page, chunks its main text, embeds every chunk, and stores the vectors in PostgreSQL for audit-time retrieval.

Re-indexing a URL replaces all of its previously stored chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexRules,
}

func init() {
	indexRulesCmd.Flags().StringVar(&indexConfigPath, "config", "", "Path to config.json file")
	indexRulesCmd.Flags().BoolVar(&indexUseBrowser, "use-browser", false, "Use headless browser for JavaScript-rendered pages (requires Chrome)")
	indexRulesCmd.Flags().BoolVarP(&indexVerbose, "verbose", "v", false, "Print per-source progress")
	rootCmd.AddCommand(indexRulesCmd)
}

func runIndexRules(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadCommandConfig(indexConfigPath)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer llmClient.Close()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	ix := indexer.New(llmClient, database, indexUseBrowser, indexVerbose)
	counts, err := ix.IndexSources(ctx, args)
	if err != nil {
		return err
	}

	total := 0
	for source, count := range counts {
		fmt.Printf("Indexed %d chunk(s) from %s\n", count, source)
		total += count
	}
	fmt.Printf("Done: %d chunk(s) across %d source(s)\n", total, len(counts))
	return nil
}
