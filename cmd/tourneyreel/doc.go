// Package main hosts the tourneyreel CLI entrypoint and command graph.
//
// The Cobra command tree covers the two batch stages (organize, assemble),
// the playoff and raw-footage helpers (playoff, concat, snippet,
// watermark), ledger and environment inspection (status, doctor), and
// configuration scaffolding. It centralizes configuration resolution, run
// IDs, and logging setup so subcommands only wire internal packages
// together.
package main
