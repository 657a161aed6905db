package extract

import (
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/agenda-ics/internal/config"
	"github.com/pfrederiksen/agenda-ics/internal/datetime"
	"github.com/pfrederiksen/agenda-ics/internal/event"
)

func loadFixture(t *testing.T) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/agenda.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func newTestExtractor(t *testing.T) (*Extractor, *config.Config) {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default failed: %v", err)
	}
	return New(cfg, datetime.NewResolver(cfg)), cfg
}

func extractAllCards(t *testing.T, e *Extractor, cfg *config.Config, doc *goquery.Document, base *url.URL) []*event.Record {
	t.Helper()
	var records []*event.Record
	doc.Find(strings.Join(cfg.CardSelectors, ", ")).Each(func(_ int, card *goquery.Selection) {
		if rec, ok := e.FromCard(card, base); ok {
			records = append(records, rec)
		}
	})
	return records
}

func TestFromCardListing(t *testing.T) {
	e, cfg := newTestExtractor(t)
	doc := loadFixture(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	records := extractAllCards(t, e, cfg, doc, base)

	// Four cards in the fixture; the "Próximamente" one has no resolvable
	// date and must be dropped.
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if !strings.Contains(first.Title, "Concierto X") {
		t.Errorf("expected title containing 'Concierto X', got %q", first.Title)
	}
	want := time.Date(2026, time.March, 15, 20, 0, 0, 0, cfg.Timezone)
	if !first.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, first.Start)
	}
	if first.Location != "Palau Sant Jordi, Barcelona" {
		t.Errorf("expected venue 'Palau Sant Jordi, Barcelona', got %q", first.Location)
	}
	if first.URL != "https://palausantjordi.barcelona/es/agenda/concierto-x" {
		t.Errorf("unexpected resolved URL %q", first.URL)
	}
	if first.Description == "" {
		t.Error("expected non-empty description")
	}
}

func TestFromCardTitleSkipsNoiseLines(t *testing.T) {
	e, cfg := newTestExtractor(t)
	doc := loadFixture(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	records := extractAllCards(t, e, cfg, doc, base)

	second := records[1]
	if second.Title != "Festival Y" {
		t.Errorf("expected title 'Festival Y' (noise lines skipped), got %q", second.Title)
	}
	want := time.Date(2026, time.April, 22, 18, 30, 0, 0, cfg.Timezone)
	if !second.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, second.Start)
	}
	if second.Location != "Sant Jordi Club" {
		t.Errorf("expected venue from line scan, got %q", second.Location)
	}
}

func TestFromCardDefaults(t *testing.T) {
	e, cfg := newTestExtractor(t)
	doc := loadFixture(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	records := extractAllCards(t, e, cfg, doc, base)

	// Last card has no venue markup and no link.
	last := records[len(records)-1]
	if last.Title != "Obra Z" {
		t.Errorf("expected title 'Obra Z', got %q", last.Title)
	}
	if last.Location != cfg.DefaultVenue {
		t.Errorf("expected default venue, got %q", last.Location)
	}
	if last.URL != base.String() {
		t.Errorf("expected listing URL for linkless card, got %q", last.URL)
	}
}

func TestFromCardUnresolvableDateYieldsNothing(t *testing.T) {
	e, _ := newTestExtractor(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<article><h2>Evento misterioso</h2><span>Próximamente</span></article>`))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := e.FromCard(doc.Find("article"), base); ok {
		t.Error("card with no resolvable date should produce no record")
	}
}

func TestFromDetail(t *testing.T) {
	e, cfg := newTestExtractor(t)
	pageURL, _ := url.Parse("https://palausantjordi.barcelona/es/agenda/concierto-x")

	page := `<!DOCTYPE html>
<html><head><title>Concierto X | Palau Sant Jordi</title></head>
<body>
  <h1>Concierto X</h1>
  <time>15 de marzo de 2026 21:00</time>
  <div class="field--name-field-location">Palau Sant Jordi</div>
  <div class="field--name-body">Gira mundial 2026. Entradas disponibles.</div>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	rec, ok := e.FromDetail(doc, pageURL)
	if !ok {
		t.Fatal("expected detail page to yield a record")
	}
	if rec.Title != "Concierto X" {
		t.Errorf("expected h1 title, got %q", rec.Title)
	}
	if rec.URL != pageURL.String() {
		t.Errorf("expected canonical page URL, got %q", rec.URL)
	}
	want := time.Date(2026, time.March, 15, 21, 0, 0, 0, cfg.Timezone)
	if !rec.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, rec.Start)
	}
	if rec.Location != "Palau Sant Jordi" {
		t.Errorf("expected selector venue, got %q", rec.Location)
	}
	if !strings.Contains(rec.Description, "Gira mundial") {
		t.Errorf("expected body description, got %q", rec.Description)
	}
}

func TestDescriptionTruncated(t *testing.T) {
	e, cfg := newTestExtractor(t)
	base, _ := url.Parse("https://palausantjordi.barcelona/es/agenda")

	long := strings.Repeat("palabras y más palabras ", 60)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<article><h2>Concierto Largo</h2><span>15 de marzo de 2026</span><p>` + long + `</p></article>`))
	if err != nil {
		t.Fatal(err)
	}

	rec, ok := e.FromCard(doc.Find("article"), base)
	if !ok {
		t.Fatal("expected record")
	}
	if n := len([]rune(rec.Description)); n > cfg.DescriptionLimit {
		t.Errorf("description not truncated: %d runes", n)
	}
}
