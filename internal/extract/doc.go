// Package extract pulls event fields and links out of loosely structured
// agenda HTML.
//
// The listing's markup family is Drupal-like but not stable, so every field is
// located by an ordered list of probes evaluated in sequence: structural
// selectors first, then heuristics over the fragment's visible text lines.
// The first probe that yields something usable wins. A fragment whose date
// text cannot be resolved produces no record at all; that is the expected
// rejection path, not an error.
package extract
