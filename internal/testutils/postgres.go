package testutils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"net/url"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/database"
	"github.com/stretchr/testify/require"
)

// PostgresURLEnvVars are checked in order for a PostgreSQL test database.
var PostgresURLEnvVars = []string{"TASKFLOW_TEST_DATABASE_URL", "DATABASE_URL"}

// PostgresURL returns the first configured test database URL, or "".
func PostgresURL() string {
	for _, name := range PostgresURLEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// OpenPostgres opens a migrated PostgreSQL database isolated in a fresh
// schema, which is dropped when the test ends. The test is skipped when no
// database URL is configured.
func OpenPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	baseURL := PostgresURL()
	if baseURL == "" {
		t.Skip("no PostgreSQL test database configured; set TASKFLOW_TEST_DATABASE_URL")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	schema := newSchemaName(t)

	admin, err := database.Open(ctx, config.DatabaseConfig{
		Driver:       database.DriverPostgres,
		URL:          baseURL,
		MaxOpenConns: 2,
	}, logger)
	require.NoError(t, err, "failed to connect to PostgreSQL test database")
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err, "failed to create test schema")
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close()
	})

	schemaURL, err := withSearchPath(baseURL, schema)
	require.NoError(t, err)

	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver:       database.DriverPostgres,
		URL:          schemaURL,
		MaxOpenConns: 4,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = database.Migrate(ctx, db.DB, database.DriverPostgres, "up", logger)
	require.NoError(t, err, "failed to migrate PostgreSQL test schema")
	return db
}

func newSchemaName(t *testing.T) string {
	t.Helper()
	b := make([]byte, 6)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return "taskflow_test_" + hex.EncodeToString(b)
}

// withSearchPath sets the search_path runtime parameter on a URL style DSN.
func withSearchPath(dsn, schema string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
