// Package main provides the entry point for the Compliance Guardian CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guardian",
	Short: "Compliance Guardian video audit pipeline",
	Long:  "Compliance Guardian extracts transcript and on-screen text from short videos and audits the content against a compliance rule knowledge base, producing a PASS/FAIL/ERROR verdict and a markdown report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
