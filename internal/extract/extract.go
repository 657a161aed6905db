package extract

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/agenda-ics/internal/config"
	"github.com/pfrederiksen/agenda-ics/internal/datetime"
	"github.com/pfrederiksen/agenda-ics/internal/event"
)

var (
	dateTokenRe = regexp.MustCompile(`(?i)\d{1,2}\s+de\s+[a-záéíóúñ]+\s+de\s+\d{4}`)
	timeTokenRe = regexp.MustCompile(`\d{1,2}:\d{2}`)
	letterRe    = regexp.MustCompile(`\p{L}`)
)

// Extractor locates title, start, venue and description in one HTML fragment.
type Extractor struct {
	cfg      *config.Config
	resolver *datetime.Resolver
}

// New creates an Extractor using the given resolver for date text.
func New(cfg *config.Config, resolver *datetime.Resolver) *Extractor {
	return &Extractor{cfg: cfg, resolver: resolver}
}

// FromCard extracts a record from one listing card. The second return is
// false when the card has no visible text or no resolvable start time.
func (e *Extractor) FromCard(card *goquery.Selection, base *url.URL) (*event.Record, bool) {
	lines := visibleLines(card)
	if len(lines) == 0 {
		return nil, false
	}
	block := strings.Join(lines, " ")

	start, ok := e.resolveStart(card, block)
	if !ok {
		return nil, false
	}

	return &event.Record{
		Title:       e.title(card, lines),
		URL:         e.cardLink(card, base),
		Start:       start,
		Location:    e.venue(card, lines),
		Description: e.description(card, block),
	}, true
}

// FromDetail extracts a record from a full event page. The page's own URL is
// the record's canonical link.
func (e *Extractor) FromDetail(doc *goquery.Document, pageURL *url.URL) (*event.Record, bool) {
	scope := doc.Find("body")
	if scope.Length() == 0 {
		scope = doc.Selection
	}
	lines := visibleLines(scope)
	if len(lines) == 0 {
		return nil, false
	}
	block := strings.Join(lines, " ")

	start, ok := e.resolveStart(doc.Selection, block)
	if !ok {
		return nil, false
	}

	return &event.Record{
		Title:       e.title(doc.Selection, lines),
		URL:         pageURL.String(),
		Start:       start,
		Location:    e.venue(doc.Selection, lines),
		Description: e.description(doc.Selection, block),
	}, true
}

// resolveStart feeds date-ish selector text to the resolver first, then the
// whole visible text capped to a bounded prefix.
func (e *Extractor) resolveStart(sel *goquery.Selection, block string) (time.Time, bool) {
	for _, s := range e.cfg.DateSelectors {
		txt := cleanLine(sel.Find(s).First().Text())
		if txt == "" {
			continue
		}
		if t, ok := e.resolver.Resolve(txt); ok {
			return t, true
		}
	}
	return e.resolver.Resolve(truncate(block, e.cfg.DateTextLimit))
}

func (e *Extractor) title(sel *goquery.Selection, lines []string) string {
	for _, s := range e.cfg.TitleSelectors {
		txt := cleanLine(sel.Find(s).First().Text())
		if txt == "" || e.looksLikeNoise(txt) || e.looksLikeVenue(txt) {
			continue
		}
		return txt
	}
	if t := e.firstTitleLine(lines); t != "" {
		return t
	}
	return e.cfg.DefaultTitle
}

// firstTitleLine returns the first visible line that could plausibly be a
// title: not noise, not the venue, not just a date or time, and containing at
// least one letter.
func (e *Extractor) firstTitleLine(lines []string) string {
	for _, line := range lines {
		if e.looksLikeNoise(line) || e.looksLikeVenue(line) {
			continue
		}
		if dateTokenRe.MatchString(line) {
			continue
		}
		if timeTokenRe.MatchString(line) && len(line) <= 8 {
			continue
		}
		if !letterRe.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

func (e *Extractor) venue(sel *goquery.Selection, lines []string) string {
	for _, s := range e.cfg.VenueSelectors {
		if txt := cleanLine(sel.Find(s).First().Text()); txt != "" {
			return txt
		}
	}
	for _, line := range lines {
		if e.looksLikeVenue(line) {
			return line
		}
	}
	return e.cfg.DefaultVenue
}

func (e *Extractor) description(sel *goquery.Selection, block string) string {
	for _, s := range e.cfg.BodySelectors {
		if txt := cleanLine(sel.Find(s).First().Text()); txt != "" {
			return truncate(txt, e.cfg.DescriptionLimit)
		}
	}
	return truncate(block, e.cfg.DescriptionLimit)
}

// cardLink returns the first href in the card resolved against the page URL,
// or the page URL itself when the card carries no link.
func (e *Extractor) cardLink(card *goquery.Selection, base *url.URL) string {
	raw, ok := card.Find("a[href]").First().Attr("href")
	if !ok {
		return base.String()
	}
	u, err := base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return base.String()
	}
	return u.String()
}

func (e *Extractor) looksLikeNoise(line string) bool {
	t := strings.ToLower(strings.TrimSpace(line))
	if t == "" {
		return true
	}
	for _, p := range e.cfg.NoisePrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	for _, p := range e.cfg.CookiePhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func (e *Extractor) looksLikeVenue(line string) bool {
	t := strings.ToLower(strings.TrimSpace(line))
	for _, v := range e.cfg.VenueWords {
		if strings.Contains(t, v) {
			return true
		}
	}
	return false
}

// visibleLines walks the fragment's text nodes in document order, skipping
// script/style subtrees, and returns each whitespace-normalized non-empty
// chunk as one line.
func visibleLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if s := cleanLine(n.Data); s != "" {
				lines = append(lines, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return lines
}

// cleanLine collapses all whitespace runs to single spaces.
func cleanLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s to limit runes.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
