package repositories_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vetta-app/vetta/internal/sqlite"
)

// newTestDB creates a fresh in-memory database with the schema applied.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbs, err := sqlite.NewDatabase(":memory:", logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})
	return dbs
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
