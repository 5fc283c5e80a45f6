package sqlite_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetta-app/vetta/internal/sqlite"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDatabase(t *testing.T) {
	t.Parallel()

	t.Run("schema is applied and both pools see the same data", func(t *testing.T) {
		t.Parallel()
		dbs, err := sqlite.NewDatabase(":memory:", newTestLogger())
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, dbs.Close())
		}()

		_, err = dbs.ReadWrite.Exec(
			`INSERT INTO dealers (id, name, slug, api_key) VALUES ('d1', 'Sunrise Auto', 'sunrise-auto', 'key')`)
		require.NoError(t, err)

		var name string
		require.NoError(t, dbs.ReadOnly.Get(&name, `SELECT name FROM dealers WHERE id = 'd1'`))
		assert.Equal(t, "Sunrise Auto", name)
	})

	t.Run("read-only pool rejects writes", func(t *testing.T) {
		t.Parallel()
		dbs, err := sqlite.NewDatabase(":memory:", newTestLogger())
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, dbs.Close())
		}()

		_, err = dbs.ReadOnly.Exec(
			`INSERT INTO dealers (id, name, slug, api_key) VALUES ('d2', 'x', 'x', 'x')`)
		assert.Error(t, err)
	})

	t.Run("parallel in-memory databases are isolated", func(t *testing.T) {
		t.Parallel()
		first, err := sqlite.NewDatabase(":memory:", newTestLogger())
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, first.Close())
		}()
		second, err := sqlite.NewDatabase(":memory:", newTestLogger())
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, second.Close())
		}()

		_, err = first.ReadWrite.Exec(
			`INSERT INTO dealers (id, name, slug, api_key) VALUES ('d3', 'x', 'x', 'x')`)
		require.NoError(t, err)

		var count int
		require.NoError(t, second.ReadOnly.Get(&count, `SELECT COUNT(*) FROM dealers`))
		assert.Zero(t, count)
	})
}
