// Package ledger records game assembly attempts in a SQLite database under
// the state directory, so re-running assemble skips games that already
// produced a video and retries the ones that failed.
package ledger
