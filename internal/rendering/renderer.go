package rendering

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 paper and margins in inches (40pt top/bottom, 30pt left/right).
const (
	paperWidthIn   = 8.27
	paperHeightIn  = 11.69
	marginTopIn    = 40.0 / 72.0
	marginSideIn   = 30.0 / 72.0
	defaultTimeout = 60 * time.Second
)

// DisabledPath turns PDF rendering off when used as the browser path.
const DisabledPath = "off"

// browserNames are looked up on PATH when no explicit browser is configured.
var browserNames = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"}

// Renderer converts a complete HTML document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer prints HTML to PDF with a headless Chrome.
type ChromeRenderer struct {
	ExecPath string
	Timeout  time.Duration
}

// NewRenderer returns a ChromeRenderer for execPath, or for the first
// browser found on PATH when execPath is empty. It returns an unavailable
// renderer when no browser can be found or execPath is DisabledPath.
func NewRenderer(execPath string, timeout time.Duration) Renderer {
	if execPath == DisabledPath {
		return Unavailable{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if execPath == "" {
		for _, name := range browserNames {
			if found, err := exec.LookPath(name); err == nil {
				execPath = found
				break
			}
		}
		if execPath == "" {
			return Unavailable{}
		}
	}
	return &ChromeRenderer{ExecPath: execPath, Timeout: timeout}
}

// RenderPDF loads the document from a temporary file and prints it to an
// A4 PDF with backgrounds.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resuai-render-")
	if err != nil {
		return nil, &RenderError{Stage: "prepare", Cause: err}
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, &RenderError{Stage: "prepare", Cause: err}
	}

	docURL := "file://" + htmlPath
	blockSubresources(browserCtx, docURL)

	var pdf []byte
	err = chromedp.Run(browserCtx,
		fetch.Enable(),
		chromedp.Navigate(docURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginTopIn).
				WithMarginBottom(marginTopIn).
				WithMarginLeft(marginSideIn).
				WithMarginRight(marginSideIn).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Stage: "print", Cause: err}
	}
	return pdf, nil
}

// blockSubresources fails every request the page makes except loading the
// document itself. Inline data URLs never reach the network layer.
func blockSubresources(ctx context.Context, docURL string) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(ctx)
			if c == nil || c.Target == nil {
				return
			}
			execCtx := cdp.WithExecutor(ctx, c.Target)
			if allowRequest(paused.Request.URL, docURL) {
				_ = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
				return
			}
			_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
		}()
	})
}

func allowRequest(requestURL, docURL string) bool {
	return requestURL == docURL || strings.HasPrefix(strings.ToLower(requestURL), "data:")
}

// Unavailable is the Renderer used when no browser is configured.
type Unavailable struct{}

// RenderPDF always fails with ErrRendererUnavailable.
func (Unavailable) RenderPDF(context.Context, string) ([]byte, error) {
	return nil, ErrRendererUnavailable
}

// RenderFragment sanitizes a fragment, wraps it in a printable document and
// renders it.
func RenderFragment(ctx context.Context, r Renderer, fragment, title string) ([]byte, error) {
	clean, err := Sanitize(fragment)
	if err != nil {
		return nil, &RenderError{Stage: "sanitize", Cause: err}
	}
	return r.RenderPDF(ctx, Document(clean, title))
}
