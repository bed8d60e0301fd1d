package testsupport

import (
	"testing"

	"ripline/internal/config"
	"ripline/internal/history"
)

// NewHistory opens the run ledger configured for cfg and closes it when the
// test finishes.
func NewHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
