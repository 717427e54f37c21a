// Package main provides the entry point for the webtoon agent CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "webtoon_agent",
	Short: "Webtoon content pipeline",
	Long:  "Webtoon agent turns community posts into webtoon stories and panel scripts through bounded write-evaluate-rewrite workflows, served over REST or run from the command line.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
