package event

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Record is one extracted agenda event. All string fields are always set by
// the time a Record leaves the extractor: Title falls back to a placeholder,
// URL to the listing page, Location to the default venue. Start is always
// timezone-aware; text without a resolvable start never becomes a Record.
type Record struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Start       time.Time `json:"start"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
}

// UID returns the deterministic calendar identifier for the record: the SHA1
// of the source URL (or title+start when no URL was found), with the given
// suffix. The same logical event yields the same UID across runs.
func (r *Record) UID(suffix string) string {
	src := r.URL
	if src == "" {
		src = r.Title + r.Start.UTC().Format(time.RFC3339)
	}
	h := sha1.Sum([]byte(src))
	return fmt.Sprintf("%x@%s", h, suffix)
}
