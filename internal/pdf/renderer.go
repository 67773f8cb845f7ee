package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/nimbusworks/opsdesk/internal/config"
)

// Renderer converts HTML documents to PDF using a headless browser. Each
// render launches its own browser process and tears it down on every exit
// path, including errors and timeouts.
type Renderer struct {
	execPath string
	timeout  time.Duration
}

// NewRenderer builds a renderer from config. An empty exec path lets
// chromedp locate the browser on PATH.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		execPath: cfg.ChromePath,
		timeout:  cfg.RenderTimeout,
	}
}

// RenderHTML renders the given HTML document to PDF bytes.
func (r *Renderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, r.timeout)
	defer cancelRun()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return buf, nil
}
