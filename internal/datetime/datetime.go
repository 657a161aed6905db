// Package datetime resolves free-form Spanish date text into timezone-aware
// instants.
package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/pfrederiksen/agenda-ics/internal/config"
)

var (
	// "15 de marzo de 2026"
	dateRe = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-záéíóúñ]+)\s+de\s+(\d{4})`)
	// "20:00" anywhere in the text
	timeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	yearRe = regexp.MustCompile(`\b\d{4}\b`)
)

// Resolver turns date-ish text into an instant in the configured timezone.
type Resolver struct {
	loc           *time.Location
	defaultHour   int
	defaultMinute int
	months        map[string]time.Month
	now           func() time.Time
}

// NewResolver builds a resolver from the run configuration.
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		loc:           cfg.Timezone,
		defaultHour:   cfg.DefaultHour,
		defaultMinute: cfg.DefaultMinute,
		months:        cfg.Months,
		now:           time.Now,
	}
}

// Resolve attempts, in order: a lenient machine-format parse of the whole
// text, then a regex search for "<day> de <month> de <year>" with an
// independent HH:MM search. A date match without a time gets the default
// evening time. The second return is false when neither layer succeeds; the
// caller must drop the record.
//
// When the text contains several date-like substrings, the first match of
// each pattern wins. Known limitation, accepted: the listing's cards lead
// with the event date.
func (r *Resolver) Resolve(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if t, err := dateparse.ParseIn(text, r.loc); err == nil {
		// Listings describe upcoming events: a date without an explicit
		// year resolves forward, not backward. dateparse leaves the year
		// at zero for such text, so rebuild the instant in the current
		// year before rolling forward.
		if !yearRe.MatchString(text) {
			now := r.now()
			t = time.Date(now.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, r.loc)
			if t.Before(now) {
				t = t.AddDate(1, 0, 0)
			}
		}
		return t, true
	}

	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := r.months[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[3])

	hour, minute := r.defaultHour, r.defaultMinute
	if tm := timeRe.FindStringSubmatch(text); tm != nil {
		h, _ := strconv.Atoi(tm[1])
		min, _ := strconv.Atoi(tm[2])
		if h <= 23 && min <= 59 {
			hour, minute = h, min
		}
	}

	return time.Date(year, month, day, hour, minute, 0, 0, r.loc), true
}
