package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resuai/internal/flows"
	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/types"
)

var extractConcurrency int

var extractCmd = &cobra.Command{
	Use:   "extract <resume-file>...",
	Short: "Extract portfolio documents from resume files",
	Long: `Analyzes each resume with the model and prints a JSON array with one
result per file, in argument order. Files that fail carry an error message
instead of a portfolio; the command exits non-zero if any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVarP(&extractConcurrency, "concurrency", "c", 4, "Maximum files analyzed at once")
	rootCmd.AddCommand(extractCmd)
}

// extractResult is the outcome for one file.
type extractResult struct {
	File         string                   `json:"file"`
	Portfolio    *types.PortfolioDocument `json:"portfolio,omitempty"`
	AvatarPrompt string                   `json:"avatarPrompt,omitempty"`
	ShapeVersion int                      `json:"shapeVersion,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := llm.NewClient(cmd.Context(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	results, err := extractFiles(cmd.Context(), client, args, extractConcurrency)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// extractFiles analyzes paths with at most concurrency calls in flight.
// Per-file failures are recorded in the results; only cancellation aborts.
func extractFiles(ctx context.Context, client llm.Client, paths []string, concurrency int) ([]extractResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]extractResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = extractFile(ctx, client, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extractFile(ctx context.Context, client llm.Client, path string) extractResult {
	result := extractResult{File: filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer f.Close()

	upload, err := intake.Read(f, path, intake.KindResume)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	analysis, err := flows.AnalyzeResume(ctx, client, upload)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Portfolio = analysis.Document
	result.AvatarPrompt = analysis.AvatarPrompt
	result.ShapeVersion = analysis.ShapeVersion
	return result
}
