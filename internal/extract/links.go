package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/agenda-ics/internal/config"
)

// LinkDiscoverer enumerates event and pagination links on a listing page.
// Discovery order is preserved and duplicates keep their first occurrence.
type LinkDiscoverer struct {
	cfg *config.Config
}

// NewLinkDiscoverer creates a LinkDiscoverer.
func NewLinkDiscoverer(cfg *config.Config) *LinkDiscoverer {
	return &LinkDiscoverer{cfg: cfg}
}

// EventLinks returns same-domain links that plausibly point to individual
// event pages. Anchors inside card containers are preferred; when none
// qualify, every anchor on the page is considered. Pagination URLs, the
// listing page itself, fragment links, and shallow paths are rejected.
func (d *LinkDiscoverer) EventLinks(doc *goquery.Document, base *url.URL) []*url.URL {
	seen := make(map[string]bool)
	var out []*url.URL

	add := func(_ int, a *goquery.Selection) {
		u, ok := d.resolve(a, base)
		if !ok {
			return
		}
		if u.Fragment != "" {
			return
		}
		if isPaginationURL(u) {
			return
		}
		if samePage(u, base) {
			return
		}
		if pathDepth(u.Path) < d.cfg.MinPathDepth {
			return
		}
		k := u.String()
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, u)
	}

	doc.Find(strings.Join(d.cfg.CardSelectors, ", ")).Find("a[href]").Each(add)
	if len(out) == 0 {
		doc.Find("a[href]").Each(add)
	}
	return out
}

// PaginationLinks returns links carrying a page-index query parameter or a
// rel="next" marker, resolved and restricted to the seed domain.
func (d *LinkDiscoverer) PaginationLinks(doc *goquery.Document, base *url.URL) []*url.URL {
	seen := make(map[string]bool)
	var out []*url.URL

	doc.Find("a[href*='?page='], a[rel='next']").Each(func(_ int, a *goquery.Selection) {
		u, ok := d.resolve(a, base)
		if !ok {
			return
		}
		k := u.String()
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, u)
	})
	return out
}

// resolve turns an anchor's href into an absolute same-domain HTTP URL.
func (d *LinkDiscoverer) resolve(a *goquery.Selection, base *url.URL) (*url.URL, bool) {
	raw, ok := a.Attr("href")
	if !ok {
		return nil, false
	}
	u, err := base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host != base.Host {
		return nil, false
	}
	return u, true
}

func isPaginationURL(u *url.URL) bool {
	return u.Query().Has("page")
}

func samePage(u, base *url.URL) bool {
	return strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(base.Path, "/") &&
		u.RawQuery == base.RawQuery
}

func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}
