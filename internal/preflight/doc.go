// Package preflight provides readiness checks for the binaries, directories,
// and schedule exports that tourneyreel depends on.
//
// The CLI "doctor" command runs RunAll and prints one row per check. Checks
// for optional features (logos, card assets, bracket schedule) are skipped
// when the feature is not configured.
package preflight
