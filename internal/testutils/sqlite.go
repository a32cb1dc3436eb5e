package testutils

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/database"
	"github.com/stretchr/testify/require"
)

// OpenSQLite opens a migrated SQLite database in a temporary directory. The
// database is closed when the test ends.
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver:       database.DriverSQLite,
		URL:          filepath.Join(t.TempDir(), "taskflow.db"),
		MaxOpenConns: 1,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(ctx, cfg, logger)
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	err = database.Migrate(ctx, db.DB, database.DriverSQLite, "up", logger)
	require.NoError(t, err, "failed to migrate sqlite database")
	return db
}

// NewSQLiteRepository returns a repository over a fresh migrated database.
func NewSQLiteRepository(t *testing.T) (*database.Repository, *sqlx.DB) {
	t.Helper()

	db := OpenSQLite(t)
	return database.NewRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

// SQLSeeder writes fixture rows through a database.Repository and fails the
// test on any error.
type SQLSeeder struct {
	t    *testing.T
	repo *database.Repository
}

// NewSQLSeeder wraps repo for use with Workspace.Seed.
func NewSQLSeeder(t *testing.T, repo *database.Repository) *SQLSeeder {
	return &SQLSeeder{t: t, repo: repo}
}

// SeedWorkspace creates the workspace row and then the rest of ws.
func (s *SQLSeeder) SeedWorkspace(ws Workspace) {
	s.t.Helper()
	require.NoError(s.t, s.repo.CreateWorkspace(context.Background(), &ws.Workspace))
	ws.Seed(s)
}

func (s *SQLSeeder) AddProject(p domain.Project) {
	s.t.Helper()
	require.NoError(s.t, s.repo.CreateProject(context.Background(), &p))
}

func (s *SQLSeeder) AddStatus(st domain.ProjectStatus) {
	s.t.Helper()
	require.NoError(s.t, s.repo.CreateStatus(context.Background(), &st))
}

func (s *SQLSeeder) AddSection(sec domain.ProjectSection) {
	s.t.Helper()
	require.NoError(s.t, s.repo.CreateSection(context.Background(), &sec))
}

func (s *SQLSeeder) AddMember(m domain.WorkspaceMember) {
	s.t.Helper()
	require.NoError(s.t, s.repo.AddWorkspaceMember(context.Background(), &m))
}

func (s *SQLSeeder) AddRecurrence(rec domain.Recurrence) {
	s.t.Helper()
	require.NoError(s.t, s.repo.CreateRecurrence(context.Background(), &rec))
}

func (s *SQLSeeder) AddTask(task domain.Task) {
	s.t.Helper()
	require.NoError(s.t, s.repo.InsertTask(context.Background(), &task))
}
