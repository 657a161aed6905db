// Package cli implements the command-line interface for agenda-ics.
//
// The cli package provides the Cobra-based CLI that wires the browser,
// crawler, deduplicator, calendar builder and storage into one run: fetch the
// agenda listing, extract and dedupe events, and write events.ics. When
// nothing was found the write is skipped entirely.
package cli
