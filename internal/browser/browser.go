// Package browser provides the headless Chrome fetch capability for the crawl.
//
// The agenda listing renders client-side, so plain HTTP GET returns an empty
// shell. One Chrome context is acquired per run and released on every exit
// path; image, stylesheet, font and media requests are failed at the
// interception layer to speed up rendering.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/agenda-ics/internal/config"
	"github.com/pfrederiksen/agenda-ics/internal/logger"
)

// WaitPolicy selects how long a fetch waits before snapshotting the DOM.
type WaitPolicy int

const (
	// WaitNetworkIdle waits for the listing cards to render; used on the
	// listing pages where content arrives asynchronously.
	WaitNetworkIdle WaitPolicy = iota
	// WaitDOMContentLoaded returns as soon as the document body is ready;
	// faster, used on detail pages.
	WaitDOMContentLoaded
)

// Fetcher is the single capability the crawl needs from the browser.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, wait WaitPolicy) (string, error)
}

// Browser owns one headless Chrome context for the lifetime of a run.
type Browser struct {
	cfg          *config.Config
	ctx          context.Context
	cancel       context.CancelFunc
	allocCancel  context.CancelFunc
	cardSelector string
}

// New launches headless Chrome and enables request interception. The caller
// must Close the returned Browser on every exit path.
func New(ctx context.Context, cfg *config.Config) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(config.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	b := &Browser{
		cfg:          cfg,
		ctx:          browserCtx,
		cancel:       cancel,
		allocCancel:  allocCancel,
		cardSelector: strings.Join(cfg.CardSelectors, ", "),
	}
	b.blockSubresources()

	if err := chromedp.Run(browserCtx, fetch.Enable()); err != nil {
		b.Close()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}
	return b, nil
}

// Close releases the Chrome context and the allocator.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}

// Fetch navigates to pageURL, applies the wait policy, and returns the
// rendered HTML.
func (b *Browser) Fetch(ctx context.Context, pageURL string, wait WaitPolicy) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tctx, cancel := context.WithTimeout(b.ctx, b.cfg.NavTimeout)
	defer cancel()

	var page string
	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	switch wait {
	case WaitNetworkIdle:
		actions = append(actions, b.waitForCards(pageURL))
	default:
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}
	actions = append(actions, chromedp.OuterHTML("html", &page, chromedp.ByQuery))

	if err := chromedp.Run(tctx, actions...); err != nil {
		return "", fmt.Errorf("loading %s: %w", pageURL, err)
	}
	return page, nil
}

// waitForCards waits for any card container to become visible. A timeout is
// logged and tolerated: the snapshot still happens, extraction decides what
// it can use.
func (b *Browser) waitForCards(pageURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		wctx, cancel := context.WithTimeout(ctx, b.cfg.CardWaitTimeout)
		defer cancel()
		if err := chromedp.WaitVisible(b.cardSelector, chromedp.ByQuery).Do(wctx); err != nil {
			logger.Warn("no cards rendered before timeout", logger.Fields{
				"url": pageURL,
			})
		}
		return nil
	})
}

// blockSubresources fails image, stylesheet, font and media requests and
// continues everything else.
func (b *Browser) blockSubresources() {
	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		req, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(b.ctx)
			ectx := cdp.WithExecutor(b.ctx, c.Target)
			switch req.ResourceType {
			case network.ResourceTypeImage,
				network.ResourceTypeStylesheet,
				network.ResourceTypeFont,
				network.ResourceTypeMedia:
				_ = fetch.FailRequest(req.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
			default:
				_ = fetch.ContinueRequest(req.RequestID).Do(ectx)
			}
		}()
	})
}
