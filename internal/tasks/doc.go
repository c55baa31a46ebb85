// Package tasks runs bulk menu operations against a store with real-time progress reporting.
//
// # Menu Import
//
// [ParseImport] reads a JSON file, with comments and trailing commas allowed, holding an
// optional dailyMenu section keyed by date id and an optional settings section:
//
//	{
//	  // next week
//	  "dailyMenu": {
//	    "2025-06-02": {"starter": "Suppe", "main": "Laks"},
//	  },
//	  "settings": {"dessert": "Is"},
//	}
//
// [Importer.Import] validates the whole file first, so a bad entry writes nothing. Each date is
// then written as its own merge patch by a small worker pool sharing one rate limiter. The settings
// patch is written last.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters and a message.
// Updates use select with default to prevent blocking.
package tasks
