package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resuai/internal/rendering"
)

// capturePDF records the document it was asked to print.
type capturePDF struct {
	html string
}

func (c *capturePDF) RenderPDF(_ context.Context, html string) ([]byte, error) {
	c.html = html
	return []byte("%PDF-1.7 test"), nil
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "jane.html")
	require.NoError(t, os.WriteFile(in, []byte(`<h1>Jane Doe</h1><script>alert(1)</script>`), 0o600))
	out := filepath.Join(dir, "out", "jane.pdf")

	renderer := &capturePDF{}
	require.NoError(t, renderFile(context.Background(), renderer, in, out, ""))

	pdf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 test", string(pdf))
	assert.Contains(t, renderer.html, "<h1>Jane Doe</h1>")
	assert.Contains(t, renderer.html, "<title>jane</title>")
	assert.NotContains(t, renderer.html, "<script>")
}

func TestRenderFile_Errors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pdf")

	err := renderFile(context.Background(), &capturePDF{}, filepath.Join(dir, "missing.html"), out, "")
	assert.Error(t, err)

	in := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(in, []byte("<p>hi</p>"), 0o600))
	err = renderFile(context.Background(), rendering.Unavailable{}, in, out, "Doc")
	assert.ErrorIs(t, err, rendering.ErrRendererUnavailable)
	assert.NoFileExists(t, out)
}
