package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/agenda-ics/internal/config"
)

func newTestDiscoverer(t *testing.T) *LinkDiscoverer {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default failed: %v", err)
	}
	return NewLinkDiscoverer(cfg)
}

func TestEventLinksFromCards(t *testing.T) {
	d := newTestDiscoverer(t)
	doc := loadFixture(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	links := d.EventLinks(doc, base)

	want := []string{
		"https://palausantjordi.barcelona/es/agenda/concierto-x",
		"https://palausantjordi.barcelona/es/agenda/festival-y",
		"https://palausantjordi.barcelona/es/agenda/misterio",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i, w := range want {
		if links[i].String() != w {
			t.Errorf("link %d: got %s, want %s", i, links[i], w)
		}
	}
}

func TestEventLinksDocumentOrder(t *testing.T) {
	d := newTestDiscoverer(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	// The first card matches a selector listed after the one the second card
	// matches; discovery must still follow the page, not the selector list.
	page := `<html><body>
	  <div class="teaser"><a href="/es/agenda/primero">1</a></div>
	  <article><a href="/es/agenda/segundo">2</a></article>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	links := d.EventLinks(doc, base)

	want := []string{
		"https://palausantjordi.barcelona/es/agenda/primero",
		"https://palausantjordi.barcelona/es/agenda/segundo",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i, w := range want {
		if links[i].String() != w {
			t.Errorf("link %d: got %s, want %s", i, links[i], w)
		}
	}
}

func TestEventLinksFiltering(t *testing.T) {
	d := newTestDiscoverer(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	// No card containers: the discoverer falls back to every anchor and the
	// filters do the work.
	page := `<html><body>
	  <a href="/es/agenda/evento-a">A</a>
	  <a href="/es/agenda?page=3">paginación</a>
	  <a href="/es/agenda">el propio listado</a>
	  <a href="/es/agenda/">listado con barra</a>
	  <a href="/es/agenda/evento-b#entradas">fragmento</a>
	  <a href="https://otra.example.com/es/agenda/evento-c">otro dominio</a>
	  <a href="/es">poco profundo</a>
	  <a href="/es/agenda/evento-a">duplicado</a>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	links := d.EventLinks(doc, base)

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d: %v", len(links), links)
	}
	if links[0].String() != "https://palausantjordi.barcelona/es/agenda/evento-a" {
		t.Errorf("unexpected link %s", links[0])
	}

	for _, u := range links {
		if u.String() == base.String() {
			t.Error("event links must never include the listing URL")
		}
		if u.Query().Has("page") {
			t.Error("event links must never include pagination URLs")
		}
		if u.Host != base.Host {
			t.Error("event links must stay on the seed domain")
		}
	}
}

func TestPaginationLinks(t *testing.T) {
	d := newTestDiscoverer(t)
	doc := loadFixture(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	links := d.PaginationLinks(doc, base)

	// ?page=1 appears twice in the fixture (numbered pager and rel=next);
	// first occurrence wins.
	if len(links) != 2 {
		t.Fatalf("expected 2 pagination links, got %d: %v", len(links), links)
	}
	if got := links[0].Query().Get("page"); got != "1" {
		t.Errorf("expected first pagination link page=1, got %q", got)
	}
	if got := links[1].Query().Get("page"); got != "2" {
		t.Errorf("expected second pagination link page=2, got %q", got)
	}
}
