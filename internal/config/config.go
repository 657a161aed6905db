// Package config holds the immutable run configuration for agenda-ics.
//
// Everything that tunes the extraction pipeline (the agenda URL, crawl caps,
// timezone, selector lists, and the word lists driving the heuristics) lives
// in one Config value built at startup and passed to components explicitly.
package config

import (
	"fmt"
	"time"
)

const (
	// AgendaURL is the venue's public agenda listing.
	AgendaURL = "https://palausantjordi.barcelona/es/agenda"

	// UserAgent is sent by the headless browser. The agenda site serves the
	// rendered listing to desktop Chrome, so we identify as one.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	// TimezoneName is applied to any ambiguous local date/time in the listing.
	TimezoneName = "Europe/Madrid"
)

// Config is the run configuration. Built once by Default, optionally adjusted
// by CLI flags, then treated as read-only.
type Config struct {
	AgendaURL string
	OutputDir string

	// CalendarName becomes the X-WR-CALNAME of the generated calendar.
	CalendarName string
	// UIDSuffix is appended to every event identifier.
	UIDSuffix string

	// MaxPages bounds the number of listing pages visited.
	MaxPages int
	// MaxEvents bounds the total number of records collected.
	MaxEvents int
	// DetailMode fetches each event's own page instead of extracting from
	// the listing cards.
	DetailMode bool

	Timezone      *time.Location
	DefaultHour   int
	DefaultMinute int

	NavTimeout      time.Duration
	CardWaitTimeout time.Duration

	DescriptionLimit int
	DateTextLimit    int
	// MinPathDepth rejects event links whose path has fewer segments,
	// which filters out top-level navigation.
	MinPathDepth int

	CardSelectors  []string
	TitleSelectors []string
	DateSelectors  []string
	VenueSelectors []string
	BodySelectors  []string

	// VenueWords are lowercase substrings identifying the venue's halls.
	VenueWords []string
	// NoisePrefixes mark lines that are calls to action, not titles.
	NoisePrefixes []string
	// CookiePhrases mark consent-banner text leaking into cards.
	CookiePhrases []string

	DefaultVenue string
	DefaultTitle string

	// Months maps lowercase Spanish month names to months.
	Months map[string]time.Month
}

// Default builds the configuration for the Palau Sant Jordi agenda.
func Default() (*Config, error) {
	loc, err := time.LoadLocation(TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %w", TimezoneName, err)
	}

	return &Config{
		AgendaURL:    AgendaURL,
		OutputDir:    "public",
		CalendarName: "Agenda Palau Sant Jordi",
		UIDSuffix:    "palausantjordi",

		MaxPages:  4,
		MaxEvents: 120,

		Timezone:      loc,
		DefaultHour:   20,
		DefaultMinute: 0,

		NavTimeout:      60 * time.Second,
		CardWaitTimeout: 15 * time.Second,

		DescriptionLimit: 500,
		DateTextLimit:    2000,
		MinPathDepth:     2,

		CardSelectors: []string{
			"article", ".views-row", ".event", ".node--type-event",
			".card", ".node", ".teaser",
		},
		TitleSelectors: []string{"h1", "h2", "h3", ".title", "title"},
		DateSelectors: []string{
			"time", ".date", ".datetime", ".field--name-field-date",
		},
		VenueSelectors: []string{
			".location", ".venue", ".field--name-field-location",
		},
		BodySelectors: []string{
			".description", ".body", ".field--name-body", ".summary",
		},

		VenueWords: []string{
			"palau sant jordi", "sant jordi club",
			"estadi olímpic", "estadi olimpic", "olímpic", "olimpic",
		},
		NoisePrefixes: []string{
			"+ info", "+info", "comprar tickets", "entradas",
			"gratut", "gratis", "image", "ticket", "agotadas",
		},
		CookiePhrases: []string{
			"aceptar todas", "personalizar", "rechazar", "uso de cookies",
		},

		DefaultVenue: "Palau Sant Jordi, Barcelona",
		DefaultTitle: "Evento",

		Months: map[string]time.Month{
			"enero": time.January, "febrero": time.February,
			"marzo": time.March, "abril": time.April,
			"mayo": time.May, "junio": time.June,
			"julio": time.July, "agosto": time.August,
			"septiembre": time.September, "setiembre": time.September,
			"octubre": time.October, "noviembre": time.November,
			"diciembre": time.December,
		},
	}, nil
}
