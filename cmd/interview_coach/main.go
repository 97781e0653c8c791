// Package main provides the entry point for the Interview Coach CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_coach",
	Short: "AI Interview Coach",
	Long:  "Interview Coach runs practice interviews: it generates questions with Gemini, collects typed or spoken answers, scores each one, and produces a final performance report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
