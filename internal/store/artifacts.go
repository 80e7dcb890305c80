package store

import (
	"database/sql"
	"fmt"
	"time"

	"groundwork/internal/evidence"
	"groundwork/internal/logging"
)

// Artifact is a persisted rendering of a skill's output, immutable once
// written. Later runs supersede it under a new run identifier rather than
// overwriting.
type Artifact struct {
	ID        string                `json:"id"`
	RunID     string                `json:"run_id"`
	StepID    string                `json:"step_id,omitempty"`
	Name      string                `json:"name"`
	Type      evidence.ArtifactType `json:"type"`
	Content   string                `json:"content"`
	CreatedAt time.Time             `json:"created_at"`
}

// InsertArtifact persists an artifact and syncs its search index entry.
func (s *Store) InsertArtifact(a Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		return fmt.Errorf("artifact id required")
	}

	_, err := s.db.Exec(
		`INSERT INTO artifacts (id, workspace_id, run_id, step_id, name, type, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, s.workspaceID, a.RunID, a.StepID, a.Name, string(a.Type), a.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert artifact %s: %w", a.ID, err)
	}

	if err := s.indexRow(kindArtifact, a.ID, a.Name, a.Content); err != nil {
		logging.Get(logging.CategoryStore).Warn("search index sync failed for artifact %s: %v", a.ID, err)
	}

	logging.StoreDebug("Inserted artifact %s (%s/%s)", a.ID, a.Name, a.Type)
	return nil
}

// GetArtifact retrieves one artifact by identifier within this workspace.
func (s *Store) GetArtifact(id string) (*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a Artifact
	var typ string
	var stepID sql.NullString
	err := s.db.QueryRow(
		`SELECT id, run_id, step_id, name, type, content, created_at
		 FROM artifacts WHERE id = ? AND workspace_id = ?`,
		id, s.workspaceID,
	).Scan(&a.ID, &a.RunID, &stepID, &a.Name, &typ, &a.Content, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifact %s not found in workspace %s", id, s.workspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", id, err)
	}
	a.StepID = stepID.String
	a.Type = evidence.ArtifactType(typ)
	return &a, nil
}

// GetArtifacts lists every artifact in this workspace, oldest first.
func (s *Store) GetArtifacts() ([]Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, run_id, step_id, name, type, content, created_at
		 FROM artifacts WHERE workspace_id = ? ORDER BY created_at`,
		s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var typ string
		var stepID sql.NullString
		if err := rows.Scan(&a.ID, &a.RunID, &stepID, &a.Name, &typ, &a.Content, &a.CreatedAt); err != nil {
			continue
		}
		a.StepID = stepID.String
		a.Type = evidence.ArtifactType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetArtifactsByRun lists artifacts persisted during one run.
func (s *Store) GetArtifactsByRun(runID string) ([]Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, run_id, step_id, name, type, content, created_at
		 FROM artifacts WHERE run_id = ? AND workspace_id = ? ORDER BY created_at`,
		runID, s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var typ string
		var stepID sql.NullString
		if err := rows.Scan(&a.ID, &a.RunID, &stepID, &a.Name, &typ, &a.Content, &a.CreatedAt); err != nil {
			continue
		}
		a.StepID = stepID.String
		a.Type = evidence.ArtifactType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}
