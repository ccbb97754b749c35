// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/pdiddy/rol-export/internal/logger"
	"github.com/pdiddy/rol-export/pkg/types"
)

// consentLabels identify the cookie banner button, matched against the
// lower-cased button text.
var consentLabels = []string{"aceitar", "concordo"}

const collectAnchorsJS = `Array.from(document.querySelectorAll('a[href]')).map(a => ({href: a.href, text: a.innerText || a.textContent || ''}))`

// BrowserFinder renders the page in headless Chrome so links added by
// scripts are visible. It dismisses the cookie banner before reading the
// anchors.
type BrowserFinder struct {
	cfg       types.BrowserConfig
	userAgent string
}

// NewBrowserFinder returns a finder for cfg. The browser is started per
// call to FindLinks.
func NewBrowserFinder(cfg types.BrowserConfig, userAgent string) *BrowserFinder {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 20 * time.Second
	}
	return &BrowserFinder{cfg: cfg, userAgent: userAgent}
}

// FindLinks implements LinkFinder.
func (b *BrowserFinder) FindLinks(ctx context.Context, pageURL string) ([]Link, error) {
	execPath, err := b.execPath()
	if err != nil {
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.ExecPath(execPath),
	)
	if b.cfg.NoSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	if b.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()
	tabCtx, tabCancel := context.WithTimeout(browserCtx, b.cfg.WaitTimeout)
	defer tabCancel()

	logger.Debug("browser: navigating to %s", pageURL)
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("loading %s: %w", pageURL, err)
	}

	if err := acceptCookies(tabCtx); err != nil {
		logger.Warn("no cookie banner accepted: %v", err)
	}

	var links []Link
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(collectAnchorsJS, &links)); err != nil {
		return nil, fmt.Errorf("reading anchors: %w", err)
	}
	logger.Debug("browser: %d anchors on page", len(links))
	return links, nil
}

// acceptCookies clicks the first button whose text names a consent label.
// A page without such a button is not an error.
func acceptCookies(ctx context.Context) error {
	var buttons []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes("button", &buttons, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return fmt.Errorf("listing buttons: %w", err)
	}

	for _, n := range buttons {
		var text string
		if err := chromedp.Run(ctx, chromedp.TextContent([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID)); err != nil {
			continue
		}
		if !isConsentText(text) {
			continue
		}
		if err := chromedp.Run(ctx, chromedp.MouseClickNode(n)); err != nil {
			return fmt.Errorf("clicking %q: %w", collapse(text), err)
		}
		logger.Info("cookies accepted (%s)", collapse(text))
		return chromedp.Run(ctx, chromedp.Sleep(500*time.Millisecond))
	}
	logger.Debug("browser: no consent button among %d buttons", len(buttons))
	return nil
}

func isConsentText(text string) bool {
	t := strings.ToLower(text)
	for _, label := range consentLabels {
		if strings.Contains(t, label) {
			return true
		}
	}
	return false
}

// execPath returns the configured Chrome binary, one found on the system,
// or a Chromium downloaded into the rod cache.
func (b *BrowserFinder) execPath() (string, error) {
	if b.cfg.ChromePath != "" {
		return b.cfg.ChromePath, nil
	}
	if p, ok := launcher.LookPath(); ok {
		return p, nil
	}
	p, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("downloading browser: %w", err)
	}
	return p, nil
}
