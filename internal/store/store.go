// Package store implements the workspace-scoped persistence layer using
// SQLite. Four base tables (sources, companies, artifacts, claims) carry a
// workspace_id column, and a denormalized search_index projection of their
// text columns is kept in step with every insert. The index is derived
// state: it can be rebuilt from the base tables at any time and is never
// the sole source of truth. Every read and write is bound to the workspace
// the store was opened for; the workspace filter lives in the SQL itself,
// not in an application-side post-filter.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"groundwork/internal/logging"

	_ "modernc.org/sqlite"
)

// Store is a handle on one workspace's database. All operations are scoped
// to the workspace ID it was opened with.
type Store struct {
	db          *sql.DB
	mu          sync.RWMutex
	dbPath      string
	workspaceID string
}

// Open initializes the SQLite database at the given path, bound to the
// given workspace ID. If the database was previously initialized for a
// different workspace, Open refuses with a WorkspaceMismatchError rather
// than risk mixing data.
func Open(path, workspaceID, workspaceName string) (*Store, error) {
	if workspaceID == "" {
		return nil, &MissingWorkspaceError{Operation: "store.Open"}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path, workspaceID: workspaceID}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.claimWorkspace(workspaceID, workspaceName); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Opened store at %s for workspace %s", path, workspaceID)
	return s, nil
}

// WorkspaceID returns the workspace this store is bound to.
func (s *Store) WorkspaceID() string {
	return s.workspaceID
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	workspaceTable := `
	CREATE TABLE IF NOT EXISTS workspace_meta (
		id TEXT PRIMARY KEY,
		name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	sourcesTable := `
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_sources_workspace ON sources(workspace_id);
	`

	companiesTable := `
	CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id TEXT NOT NULL,
		name TEXT NOT NULL,
		domain TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(workspace_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_companies_workspace ON companies(workspace_id);
	`

	artifactsTable := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		run_id TEXT NOT NULL,
		step_id TEXT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_workspace ON artifacts(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`

	claimsTable := `
	CREATE TABLE IF NOT EXISTS claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id TEXT NOT NULL,
		artifact_id TEXT,
		text TEXT NOT NULL,
		kind TEXT NOT NULL,
		sources TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_claims_workspace ON claims(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_claims_artifact ON claims(artifact_id);
	`

	indexTable := `
	CREATE TABLE IF NOT EXISTS search_index (
		workspace_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		title TEXT,
		content TEXT NOT NULL,
		PRIMARY KEY (kind, ref_id)
	);
	CREATE INDEX IF NOT EXISTS idx_search_workspace ON search_index(workspace_id);
	`

	for _, table := range []string{workspaceTable, sourcesTable, companiesTable, artifactsTable, claimsTable, indexTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// claimWorkspace records the owning workspace on first open and verifies
// it on every subsequent open.
func (s *Store) claimWorkspace(id, name string) error {
	var existing string
	err := s.db.QueryRow("SELECT id FROM workspace_meta LIMIT 1").Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec("INSERT INTO workspace_meta (id, name) VALUES (?, ?)", id, name)
		if err != nil {
			return fmt.Errorf("failed to record workspace identity: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read workspace identity: %w", err)
	case existing != id:
		return &WorkspaceMismatchError{Expected: existing, Got: id, Path: s.dbPath}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats returns row counts per table for diagnostics.
func (s *Store) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{"sources", "companies", "artifacts", "claims", "search_index"} {
		var count int64
		err := s.db.QueryRow(
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE workspace_id = ?", table),
			s.workspaceID,
		).Scan(&count)
		if err != nil {
			continue
		}
		stats[table] = count
	}
	return stats, nil
}
