package store

import (
	"database/sql"
	"fmt"

	"groundwork/internal/logging"
)

// Migration defines a column-level schema migration.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists schema migrations for databases created before
// newer columns existed. CREATE TABLE IF NOT EXISTS covers fresh installs;
// these handle tables that already exist but lack a column.
var pendingMigrations = []Migration{
	// Company enrichment columns (added after the initial schema)
	{"companies", "domain", "TEXT"},
	{"companies", "notes", "TEXT"},
	// Artifact step linkage (added when runs gained step-level tracking)
	{"artifacts", "step_id", "TEXT"},
	// Source metadata bag
	{"sources", "metadata", "TEXT"},
}

// RunMigrations applies schema migrations for existing databases.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	applied := 0
	skipped := 0

	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			skipped++
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			skipped++
			continue
		}

		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			logging.Get(logging.CategoryStore).Warn("Migration failed (may already exist): %s.%s: %v", m.Table, m.Column, err)
			skipped++
			continue
		}
		logging.Store("Migration applied: added %s.%s", m.Table, m.Column)
		applied++
	}

	logging.StoreDebug("Schema migrations complete: applied=%d, skipped=%d", applied, skipped)
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// tableExists checks for a table in sqlite_master.
func tableExists(db *sql.DB, table string) bool {
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table,
	).Scan(&name)
	return err == nil
}
