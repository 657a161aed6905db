package event

import "time"

// Mode selects the identity key used when collapsing duplicates.
//
// In listing mode cards often share a generic "+ info" link, so identity is
// (title, start). In detail mode the event page URL is authoritative and
// titles drift between card and page, so identity is (url, start). A run uses
// exactly one mode, so the key is consistent within any deduplicated set.
type Mode int

const (
	ListingMode Mode = iota
	DetailMode
)

func (m Mode) key(r *Record) string {
	start := r.Start.UTC().Format(time.RFC3339)
	if m == DetailMode {
		return r.URL + "|" + start
	}
	return r.Title + "|" + start
}

// Dedupe collapses records sharing an identity key, keeping the first-seen
// record and preserving discovery order. Pure function; the input slice is
// not modified.
func Dedupe(records []*Record, mode Mode) []*Record {
	seen := make(map[string]bool, len(records))
	unique := make([]*Record, 0, len(records))
	for _, r := range records {
		k := mode.key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, r)
	}
	return unique
}
