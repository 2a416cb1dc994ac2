package testsupport

import (
	"context"
	"testing"

	"reelsync/internal/config"
	"reelsync/internal/media"
	"reelsync/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

// SeedTitles inserts the provided titles, failing the test on error.
func SeedTitles(t testing.TB, st *store.Store, titles ...media.Title) {
	t.Helper()

	if err := st.UpsertTitles(context.Background(), titles); err != nil {
		t.Fatalf("seed titles: %v", err)
	}
}
