package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"groundwork/internal/evidence"
	"groundwork/internal/logging"
)

// Source is an ingested unit of raw information. Immutable once written
// except for re-ingestion under the same identifier (upsert semantics).
type Source struct {
	ID        string              `json:"id"`
	Type      evidence.SourceType `json:"type"`
	Title     string              `json:"title,omitempty"`
	Content   string              `json:"content"`
	Metadata  map[string]string   `json:"metadata,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// InsertSource writes a source row, replacing any prior row with the same
// identifier, and syncs the search index entry in the same call.
func (s *Store) InsertSource(src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if src.ID == "" {
		return fmt.Errorf("source id required")
	}

	metaJSON, _ := json.Marshal(src.Metadata)

	_, err := s.db.Exec(
		`INSERT INTO sources (id, workspace_id, type, title, content, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 type = excluded.type,
		 title = excluded.title,
		 content = excluded.content,
		 metadata = excluded.metadata`,
		src.ID, s.workspaceID, string(src.Type), src.Title, src.Content, string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert source %s: %w", src.ID, err)
	}

	if err := s.indexRow(kindSource, src.ID, src.Title, src.Content); err != nil {
		// Index divergence is recoverable via RebuildIndex; the base row
		// is already durable.
		logging.Get(logging.CategoryStore).Warn("search index sync failed for source %s: %v", src.ID, err)
	}

	logging.StoreDebug("Inserted source %s (%s)", src.ID, src.Type)
	return nil
}

// GetSource retrieves one source by identifier within this workspace.
func (s *Store) GetSource(id string) (*Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, type, title, content, metadata, created_at
		 FROM sources WHERE id = ? AND workspace_id = ?`,
		id, s.workspaceID,
	)

	src, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source %s not found in workspace %s", id, s.workspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", id, err)
	}
	return src, nil
}

// GetSources lists all sources in this workspace, newest first.
func (s *Store) GetSources() ([]Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, type, title, content, metadata, created_at
		 FROM sources WHERE workspace_id = ? ORDER BY created_at DESC`,
		s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			continue
		}
		out = append(out, *src)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(r rowScanner) (*Source, error) {
	var src Source
	var typ, metaJSON string
	var title sql.NullString
	if err := r.Scan(&src.ID, &typ, &title, &src.Content, &metaJSON, &src.CreatedAt); err != nil {
		return nil, err
	}
	src.Type = evidence.SourceType(typ)
	src.Title = title.String
	if metaJSON != "" && metaJSON != "null" {
		json.Unmarshal([]byte(metaJSON), &src.Metadata)
	}
	return &src, nil
}
