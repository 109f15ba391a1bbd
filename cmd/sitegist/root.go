// Package main provides the entry point for the sitegist CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitegist.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegist",
		Short: "AI-assisted website scraping and analysis tool",
		Long: `Sitegist scrapes websites intelligently and distills what it finds.

It reads robots.txt and sitemaps to discover pages, prioritizes the ones
most likely to carry real content, scrapes them politely, and produces
LLM summaries, content quality scores, and business insights.

Set the LLAMA_API_KEY environment variable (or put it in a .env file)
to enable AI summarization. Without a key, scraping still works but
summaries are skipped.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
