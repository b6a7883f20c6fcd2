package testsupport

import (
	"net/http/httptest"
	"testing"
	"time"

	"mediastudio/internal/config"
	"mediastudio/internal/demo"
	"mediastudio/internal/journal"
)

// MustOpenJournal opens a journal.Store for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// StartDemoBackend serves the demo backend on a loopback port. The periodic
// emitter is not started, so telemetry only carries events triggered by
// requests.
func StartDemoBackend(t testing.TB) (*demo.Server, string) {
	t.Helper()

	server := demo.NewServer(demo.Options{EventInterval: time.Hour})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts.URL
}
