package store

import (
	"database/sql"
	"fmt"
	"strings"

	"groundwork/internal/logging"
)

// Index entry kinds. Only text-bearing rows are projected.
const (
	kindSource   = "source"
	kindArtifact = "artifact"
)

// SearchHit is a ranked match from the search index.
type SearchHit struct {
	RefID   string
	Kind    string
	Title   string
	Content string
}

// indexRow upserts one search index entry. Callers hold the write lock.
func (s *Store) indexRow(kind, refID, title, content string) error {
	return s.indexRowOn(s.db, kind, refID, title, content)
}

// execer covers *sql.DB and *sql.Tx so index writes can join a transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) indexRowOn(e execer, kind, refID, title, content string) error {
	_, err := e.Exec(
		`INSERT INTO search_index (workspace_id, kind, ref_id, title, content)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(kind, ref_id) DO UPDATE SET
		 workspace_id = excluded.workspace_id,
		 title = excluded.title,
		 content = excluded.content`,
		s.workspaceID, kind, refID, title, content,
	)
	return err
}

// Search performs keyword matching over the index, restricted to this
// store's workspace. The workspace predicate is part of the SQL itself so
// a cross-workspace row can never surface, regardless of what callers do
// with the results. kind may be "source", "artifact", or "" for both.
func (s *Store) Search(kind, query string, limit int) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.workspaceID == "" {
		return nil, &MissingWorkspaceError{Operation: "store.Search"}
	}
	if limit <= 0 {
		limit = 10
	}

	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(keywords))
	args := []interface{}{s.workspaceID}
	for _, kw := range keywords {
		conditions = append(conditions, "(LOWER(content) LIKE ? OR LOWER(title) LIKE ?)")
		args = append(args, "%"+kw+"%", "%"+kw+"%")
	}

	sqlQuery := fmt.Sprintf(
		"SELECT ref_id, kind, title, content FROM search_index WHERE workspace_id = ? AND (%s)",
		strings.Join(conditions, " OR "),
	)
	if kind != "" {
		sqlQuery += " AND kind = ?"
		args = append(args, kind)
	}
	sqlQuery += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.RefID, &h.Kind, &h.Title, &h.Content); err != nil {
			continue
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// RebuildIndex drops this workspace's index entries and regenerates them
// from the base tables. The index is derived state; this is the recovery
// path whenever the two representations diverge, and it is safe to run at
// any time.
func (s *Store) RebuildIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryStore, "RebuildIndex")
	defer timer.Stop()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM search_index WHERE workspace_id = ?", s.workspaceID); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO search_index (workspace_id, kind, ref_id, title, content)
		 SELECT workspace_id, 'source', id, COALESCE(title, ''), content
		 FROM sources WHERE workspace_id = ?`,
		s.workspaceID,
	); err != nil {
		return fmt.Errorf("failed to reindex sources: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO search_index (workspace_id, kind, ref_id, title, content)
		 SELECT workspace_id, 'artifact', id, name, content
		 FROM artifacts WHERE workspace_id = ?`,
		s.workspaceID,
	); err != nil {
		return fmt.Errorf("failed to reindex artifacts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}

	logging.Store("Search index rebuilt for workspace %s", s.workspaceID)
	return nil
}
