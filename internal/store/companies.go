package store

import (
	"fmt"
	"time"
)

// Company is a tracked account within a workspace.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertCompany records a company. Duplicate names within a workspace are
// a no-op (first writer wins) so re-runs stay idempotent; the returned
// bool reports whether a new row was written.
func (s *Store) InsertCompany(name, domain, notes string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return false, fmt.Errorf("company name required")
	}

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO companies (workspace_id, name, domain, notes) VALUES (?, ?, ?, ?)`,
		s.workspaceID, name, domain, notes,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert company %s: %w", name, err)
	}

	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// GetCompanies lists all companies in this workspace.
func (s *Store) GetCompanies() ([]Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, name, domain, notes, created_at FROM companies
		 WHERE workspace_id = ? ORDER BY name`,
		s.workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.Notes, &c.CreatedAt); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
