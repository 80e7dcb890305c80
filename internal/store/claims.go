package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"groundwork/internal/evidence"
)

// ClaimRow is a persisted claim with its normalized evidence list.
type ClaimRow struct {
	ID         int64                `json:"id"`
	ArtifactID string               `json:"artifact_id,omitempty"`
	Text       string               `json:"text"`
	Kind       evidence.ClaimKind   `json:"kind"`
	Sources    []evidence.SourceRef `json:"sources,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// InsertClaim persists a claim against an artifact. Evidence source IDs
// are stored as written; insert-time foreign-key enforcement is relaxed
// because claims and the sources they cite may land in either order across
// a multi-step run. CheckEvidence catches dangling references afterward.
func (s *Store) InsertClaim(artifactID string, c evidence.Claim) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcJSON, err := json.Marshal(c.Sources)
	if err != nil {
		return 0, fmt.Errorf("failed to encode claim sources: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO claims (workspace_id, artifact_id, text, kind, sources)
		 VALUES (?, ?, ?, ?, ?)`,
		s.workspaceID, artifactID, c.Text, string(c.Kind), string(srcJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert claim: %w", err)
	}
	return res.LastInsertId()
}

// GetClaim retrieves one claim by row ID within this workspace.
func (s *Store) GetClaim(id int64) (*ClaimRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, artifact_id, text, kind, sources, created_at
		 FROM claims WHERE id = ? AND workspace_id = ?`,
		id, s.workspaceID,
	)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("claim %d not found in workspace %s", id, s.workspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read claim %d: %w", id, err)
	}
	return c, nil
}

// GetClaims lists every claim in this workspace.
func (s *Store) GetClaims() ([]ClaimRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, artifact_id, text, kind, sources, created_at
		 FROM claims WHERE workspace_id = ? ORDER BY id`,
		s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var out []ClaimRow
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			continue
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetClaimsByArtifact lists claims attached to one artifact.
func (s *Store) GetClaimsByArtifact(artifactID string) ([]ClaimRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, artifact_id, text, kind, sources, created_at
		 FROM claims WHERE artifact_id = ? AND workspace_id = ? ORDER BY id`,
		artifactID, s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for artifact %s: %w", artifactID, err)
	}
	defer rows.Close()

	var out []ClaimRow
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			continue
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// EvidenceDefect reports a claim citing a source absent from the sources
// table.
type EvidenceDefect struct {
	ClaimID  int64
	SourceID string
}

// CheckEvidence scans every claim in the workspace and reports citations
// of source identifiers that do not exist. An empty result means the
// evidence chain is intact.
func (s *Store) CheckEvidence() ([]EvidenceDefect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, sources FROM claims WHERE workspace_id = ?`, s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan claims: %w", err)
	}
	defer rows.Close()

	type pending struct {
		claimID  int64
		sourceID string
	}
	var refs []pending
	for rows.Next() {
		var id int64
		var srcJSON string
		if err := rows.Scan(&id, &srcJSON); err != nil {
			continue
		}
		var srcs []evidence.SourceRef
		if err := json.Unmarshal([]byte(srcJSON), &srcs); err != nil {
			continue
		}
		for _, ref := range srcs {
			refs = append(refs, pending{claimID: id, sourceID: ref.SourceID})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var defects []EvidenceDefect
	for _, ref := range refs {
		var exists int
		err := s.db.QueryRow(
			"SELECT 1 FROM sources WHERE id = ? AND workspace_id = ?",
			ref.sourceID, s.workspaceID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			defects = append(defects, EvidenceDefect{ClaimID: ref.claimID, SourceID: ref.sourceID})
		}
	}
	return defects, nil
}

func scanClaim(r rowScanner) (*ClaimRow, error) {
	var c ClaimRow
	var artifactID sql.NullString
	var kind, srcJSON string
	if err := r.Scan(&c.ID, &artifactID, &c.Text, &kind, &srcJSON, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ArtifactID = artifactID.String
	c.Kind = evidence.ClaimKind(kind)
	if srcJSON != "" {
		json.Unmarshal([]byte(srcJSON), &c.Sources)
	}
	return &c, nil
}
