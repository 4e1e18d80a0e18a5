// Package pagemeta resolves page metadata for web previews with a
// headless browser. The probe is optional: preview loads never block on
// it, and a missing browser degrades to the bare URL as caption.
package pagemeta

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultTimeout = 8 * time.Second

// Prober resolves the <title> of a page.
type Prober struct {
	timeout time.Duration
}

// New constructs a Prober. A zero timeout uses the default.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Prober{timeout: timeout}
}

// Title navigates to pageURL headless and returns the document title.
func (p *Prober) Title(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, p.timeout)
	defer cancelRun()

	var title string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Title(&title),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}
