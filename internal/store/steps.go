package store

import (
	"encoding/json"
	"fmt"

	"groundwork/internal/evidence"
	"groundwork/internal/logging"
)

// InsertStepOutput persists one step's artifacts and claims in a single
// transaction: either every row lands or none do. A failure mid-write rolls
// the whole step back, so durable storage never holds half of a step's
// evidence chain. Claims attach to the given artifact ID; the artifacts'
// search index entries ride in the same transaction.
func (s *Store) InsertStepOutput(artifacts []Artifact, artifactID string, claims []evidence.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin step write: %w", err)
	}
	defer tx.Rollback()

	for _, a := range artifacts {
		if a.ID == "" {
			return fmt.Errorf("artifact id required")
		}
		if _, err := tx.Exec(
			`INSERT INTO artifacts (id, workspace_id, run_id, step_id, name, type, content)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, s.workspaceID, a.RunID, a.StepID, a.Name, string(a.Type), a.Content,
		); err != nil {
			return fmt.Errorf("failed to insert artifact %s: %w", a.ID, err)
		}
		if err := s.indexRowOn(tx, kindArtifact, a.ID, a.Name, a.Content); err != nil {
			return fmt.Errorf("failed to index artifact %s: %w", a.ID, err)
		}
	}

	for _, c := range claims {
		srcJSON, err := json.Marshal(c.Sources)
		if err != nil {
			return fmt.Errorf("failed to encode claim sources: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO claims (workspace_id, artifact_id, text, kind, sources)
			 VALUES (?, ?, ?, ?, ?)`,
			s.workspaceID, artifactID, c.Text, string(c.Kind), string(srcJSON),
		); err != nil {
			return fmt.Errorf("failed to insert claim: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit step write: %w", err)
	}

	logging.StoreDebug("Inserted step output: %d artifacts, %d claims", len(artifacts), len(claims))
	return nil
}
