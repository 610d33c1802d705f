// Package schedule reads tournament schedules exported from the league
// spreadsheet.
//
// Round-robin sheets list each round as three rows (home, away, referee) with
// one column per court; bracket sheets list one playoff game per row and are
// ordered by a configured round sequence. Both are fetched through a Source,
// either the sheet's CSV export URL or a local file, and validated into typed
// Game records before anything downstream sees them.
package schedule
