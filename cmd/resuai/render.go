package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resuai/internal/rendering"
)

var (
	renderOutput string
	renderTitle  string
)

var renderCmd = &cobra.Command{
	Use:   "render <html-file>",
	Short: "Render an HTML resume fragment to PDF",
	Long:  "Sanitizes the HTML, wraps it in the print stylesheet and prints it to an A4 PDF with a headless Chrome.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output PDF file (required)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Document title (defaults to the input file name)")

	if err := renderCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	renderer := rendering.NewRenderer(cfg.ChromePath, cfg.RenderTimeoutDuration())
	if err := renderFile(cmd.Context(), renderer, args[0], renderOutput, renderTitle); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", renderOutput)
	return nil
}

// renderFile renders the HTML fragment at in and writes the PDF to out.
func renderFile(ctx context.Context, renderer rendering.Renderer, in, out, title string) error {
	html, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}

	pdf, err := rendering.RenderFragment(ctx, renderer, string(html), title)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
