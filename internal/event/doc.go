// Package event provides the agenda event record, its deterministic calendar
// identifier, and deduplication.
//
// A Record is created once by the extractor, never mutated afterwards, and
// carries a stable SHA1-derived UID so downstream calendar clients can update
// entries across runs instead of duplicating them.
package event
