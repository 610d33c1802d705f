package testsupport

import (
	"testing"

	"tourneyreel/internal/config"
	"tourneyreel/internal/ledger"
)

// MustOpenLedger opens the assembly ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
