// Package crawl drives the bounded walk across listing and detail pages.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/agenda-ics/internal/browser"
	"github.com/pfrederiksen/agenda-ics/internal/config"
	"github.com/pfrederiksen/agenda-ics/internal/event"
	"github.com/pfrederiksen/agenda-ics/internal/extract"
	"github.com/pfrederiksen/agenda-ics/internal/logger"
)

// DebugSink receives the first listing page's raw HTML, verbatim, on every
// run. A sink failure is logged, never fatal.
type DebugSink func(html string) error

// Crawler walks the agenda listing, bounded by the page and event caps, and
// accumulates raw records. Execution is sequential: one page is fully
// processed before the next is fetched.
type Crawler struct {
	cfg       *config.Config
	fetcher   browser.Fetcher
	extractor *extract.Extractor
	links     *extract.LinkDiscoverer
}

// New creates a Crawler.
func New(cfg *config.Config, fetcher browser.Fetcher, extractor *extract.Extractor, links *extract.LinkDiscoverer) *Crawler {
	return &Crawler{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		links:     links,
	}
}

// Run crawls from the configured agenda URL until the frontier is exhausted
// or a cap is reached. Per-page failures are logged and skipped; only a
// failure to fetch the seed listing aborts the run.
func (c *Crawler) Run(ctx context.Context, debug DebugSink) ([]*event.Record, error) {
	seed, err := url.Parse(c.cfg.AgendaURL)
	if err != nil {
		return nil, fmt.Errorf("parsing agenda url: %w", err)
	}

	firstHTML, err := c.fetcher.Fetch(ctx, seed.String(), browser.WaitNetworkIdle)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	if debug != nil {
		if err := debug(firstHTML); err != nil {
			logger.Warn("writing debug artifact", logger.Fields{"error": err.Error()})
		}
	}

	scheduled := map[string]bool{seed.String(): true}
	queue := []*url.URL{seed}
	var records []*event.Record
	page := 0

	for len(queue) > 0 {
		pageURL := queue[0]
		queue = queue[1:]
		page++

		var doc *goquery.Document
		if page == 1 {
			doc, err = goquery.NewDocumentFromReader(strings.NewReader(firstHTML))
			if err != nil {
				return nil, fmt.Errorf("parsing listing: %w", err)
			}
		} else {
			doc = c.fetchListing(ctx, pageURL)
			if doc == nil {
				continue
			}
		}
		logger.Incr("pages_crawled")

		// Extend the frontier while under the page cap.
		for _, u := range c.links.PaginationLinks(doc, pageURL) {
			if len(scheduled) >= c.cfg.MaxPages {
				break
			}
			if scheduled[u.String()] {
				continue
			}
			scheduled[u.String()] = true
			queue = append(queue, u)
		}

		before := len(records)
		records = c.collect(ctx, doc, pageURL, records)
		logger.Info("listing page processed", logger.Fields{
			"page":   page,
			"url":    pageURL.String(),
			"events": len(records) - before,
		})
	}

	return records, nil
}

// fetchListing fetches and parses one listing page, returning nil on any
// failure so the crawl continues with the next URL.
func (c *Crawler) fetchListing(ctx context.Context, pageURL *url.URL) *goquery.Document {
	page, err := c.fetcher.Fetch(ctx, pageURL.String(), browser.WaitNetworkIdle)
	if err != nil {
		logger.Warn("skipping listing page", logger.Fields{
			"url":   pageURL.String(),
			"error": err.Error(),
		})
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		logger.Warn("skipping unparseable listing page", logger.Fields{
			"url":   pageURL.String(),
			"error": err.Error(),
		})
		return nil
	}
	return doc
}

// collect appends the page's records, honoring the event cap. Listing mode
// extracts from the cards directly; detail mode follows each discovered
// event link.
func (c *Crawler) collect(ctx context.Context, doc *goquery.Document, pageURL *url.URL, records []*event.Record) []*event.Record {
	if c.cfg.DetailMode {
		return c.collectFromDetails(ctx, doc, pageURL, records)
	}
	return c.collectFromCards(doc, pageURL, records)
}

func (c *Crawler) collectFromCards(doc *goquery.Document, pageURL *url.URL, records []*event.Record) []*event.Record {
	doc.Find(strings.Join(c.cfg.CardSelectors, ", ")).Each(func(_ int, card *goquery.Selection) {
		if len(records) >= c.cfg.MaxEvents {
			return
		}
		logger.Incr("cards_seen")
		rec, ok := c.extractor.FromCard(card, pageURL)
		if !ok {
			logger.Incr("records_dropped")
			return
		}
		logger.Debug("event found", logger.Fields{
			"title": rec.Title,
			"start": rec.Start,
		})
		records = append(records, rec)
	})
	return records
}

func (c *Crawler) collectFromDetails(ctx context.Context, doc *goquery.Document, pageURL *url.URL, records []*event.Record) []*event.Record {
	for _, u := range c.links.EventLinks(doc, pageURL) {
		if len(records) >= c.cfg.MaxEvents {
			logger.Info("event cap reached", logger.Fields{"cap": c.cfg.MaxEvents})
			break
		}
		page, err := c.fetcher.Fetch(ctx, u.String(), browser.WaitDOMContentLoaded)
		if err != nil {
			logger.Warn("skipping event page", logger.Fields{
				"url":   u.String(),
				"error": err.Error(),
			})
			continue
		}
		detail, err := goquery.NewDocumentFromReader(strings.NewReader(page))
		if err != nil {
			logger.Warn("skipping unparseable event page", logger.Fields{
				"url":   u.String(),
				"error": err.Error(),
			})
			continue
		}
		rec, ok := c.extractor.FromDetail(detail, u)
		if !ok {
			logger.Incr("records_dropped")
			continue
		}
		records = append(records, rec)
	}
	return records
}
