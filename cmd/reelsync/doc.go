// Package main hosts the reelsync CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the update pipeline end to end or one
// step at a time: catalog refresh, country classification, review scraping,
// weighted rating aggregation, and spreadsheet export. It centralizes
// configuration resolution, run locking, and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
