package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nagakninja/Compliance-Guardian/internal/config"
	"github.com/Nagakninja/Compliance-Guardian/internal/pipeline"
	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

var auditCommand = &cobra.Command{
	Use:   "audit",
	Short: "Run a full compliance audit for one video",
	Long: `Runs the two-stage audit end-to-end: extract transcript and on-screen text from the video, retrieve the relevant compliance rules, and produce a PASS/FAIL/ERROR verdict with a markdown report.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runAuditCmd,
}

var (
	auditConfigPath  string
	auditVideoURL    string
	auditVideoID     string
	auditAPIKey      string
	auditDatabaseURL string
	auditTopK        int
	auditJSONOutput  bool
	auditReportPath  string
	auditVerbose     bool
)

func init() {
	auditCommand.Flags().StringVar(&auditConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	auditCommand.Flags().StringVarP(&auditVideoURL, "video-url", "u", "", "Video URL or local file path to audit")
	auditCommand.Flags().StringVar(&auditVideoID, "video-id", "", "Caller-supplied video identifier (generated if omitted)")
	auditCommand.Flags().IntVar(&auditTopK, "top-k", 0, "Number of rule snippets to retrieve per audit")
	auditCommand.Flags().BoolVar(&auditJSONOutput, "json", false, "Print the full result as JSON instead of the report")
	auditCommand.Flags().StringVarP(&auditReportPath, "output", "o", "", "Write the markdown report to a file")
	auditCommand.Flags().BoolVarP(&auditVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	auditCommand.Flags().StringVar(&auditAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for rule retrieval and run persistence
	auditCommand.Flags().StringVar(&auditDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(auditCommand)
}

// loadCommandConfig loads the optional config file and backfills unset
// values from the environment. Flag overrides are applied by each command
// after loading, so flags win over the file and the file wins over env.
func loadCommandConfig(configPath string) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.FromEnv())
	return cfg, nil
}

func runAuditCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadCommandConfig(auditConfigPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = auditAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = auditDatabaseURL
	}
	if cmd.Flags().Changed("top-k") {
		cfg.RetrievalTopK = auditTopK
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = auditVerbose
	}

	if auditVideoURL == "" {
		return fmt.Errorf("--video-url is required")
	}

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	state := comps.pipeline.Run(ctx, pipeline.RunOptions{
		VideoURL:    auditVideoURL,
		VideoID:     auditVideoID,
		DatabaseURL: cfg.DatabaseURL,
		Verbose:     cfg.Verbose,
	})

	if auditReportPath != "" {
		if err := os.WriteFile(auditReportPath, []byte(state.FinalReport), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to: %s\n", auditReportPath)
	}

	if auditJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(state.Result()); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		fmt.Println(state.FinalReport)
	}

	if state.FinalStatus == types.StatusError {
		return fmt.Errorf("audit ended in ERROR: %d error(s) recorded", len(state.Errors))
	}
	return nil
}
