// Package manifest handles versioned workspace export and import. A
// manifest wraps one workspace's sources, artifacts, and claims together
// with a schema version; import refuses incompatible major versions and
// warns on newer minor versions.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"groundwork/internal/evidence"
	"groundwork/internal/logging"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

// CurrentVersion is the manifest schema version this build writes.
const CurrentVersion = "1.0"

// Manifest is the on-disk export format.
type Manifest struct {
	Version       string           `json:"version"`
	WorkspaceID   string           `json:"workspace_id"`
	WorkspaceName string           `json:"workspace_name"`
	ExportedAt    time.Time        `json:"exported_at"`
	Sources       []store.Source   `json:"sources,omitempty"`
	Artifacts     []store.Artifact `json:"artifacts,omitempty"`
	Claims        []store.ClaimRow `json:"claims,omitempty"`
}

// VersionError reports an incompatible manifest major version.
type VersionError struct {
	Found   string
	Current string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("manifest version %s is incompatible with supported version %s (major versions differ)", e.Found, e.Current)
}

// CheckVersion compares a manifest version against the current one. A
// differing major version is fatal; a newer minor version returns a
// warning message and no error; anything else is silently compatible.
func CheckVersion(found, current string) (string, error) {
	fMajor, fMinor, err := parseVersion(found)
	if err != nil {
		return "", fmt.Errorf("invalid manifest version %q: %w", found, err)
	}
	cMajor, cMinor, err := parseVersion(current)
	if err != nil {
		return "", fmt.Errorf("invalid current version %q: %w", current, err)
	}

	if fMajor != cMajor {
		return "", &VersionError{Found: found, Current: current}
	}
	if fMinor > cMinor {
		return fmt.Sprintf("manifest version %s is newer than supported %s; some fields may be ignored", found, current), nil
	}
	return "", nil
}

func parseVersion(v string) (major, minor int, err error) {
	parts := strings.SplitN(v, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected major.minor")
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

// Export writes the workspace's evidence state to a manifest file.
func Export(s *store.Store, ws *workspace.Context, path string) error {
	sources, err := s.GetSources()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	artifacts, err := s.GetArtifacts()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	claims, err := s.GetClaims()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	m := Manifest{
		Version:       CurrentVersion,
		WorkspaceID:   ws.ID,
		WorkspaceName: ws.Name,
		ExportedAt:    time.Now().UTC(),
		Sources:       sources,
		Artifacts:     artifacts,
		Claims:        claims,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	logging.Store("Exported workspace %s: %d sources, %d artifacts, %d claims",
		ws.ID, len(sources), len(artifacts), len(claims))
	return nil
}

// Import loads a manifest into the store after the version gate. Sources
// land before claims so most evidence references resolve immediately; the
// relaxed insert-time checking covers the rest, and the returned warning
// (if any) is the minor-version notice from CheckVersion.
func Import(s *store.Store, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("import: failed to parse manifest: %w", err)
	}

	warning, err := CheckVersion(m.Version, CurrentVersion)
	if err != nil {
		return "", err
	}
	if warning != "" {
		logging.Get(logging.CategoryStore).Warn("%s", warning)
	}

	for _, src := range m.Sources {
		if err := s.InsertSource(src); err != nil {
			return warning, fmt.Errorf("import source %s: %w", src.ID, err)
		}
	}
	for _, a := range m.Artifacts {
		if err := s.InsertArtifact(a); err != nil {
			return warning, fmt.Errorf("import artifact %s: %w", a.ID, err)
		}
	}
	for _, c := range m.Claims {
		// Re-validate through the evidence constructor so a corrupt
		// manifest cannot smuggle in a sourceless fact.
		claim, err := evidence.NewClaim(c.Text, c.Kind, c.Sources)
		if err != nil {
			return warning, fmt.Errorf("import claim %d: %w", c.ID, err)
		}
		if _, err := s.InsertClaim(c.ArtifactID, claim); err != nil {
			return warning, fmt.Errorf("import claim %d: %w", c.ID, err)
		}
	}

	logging.Store("Imported manifest %s: %d sources, %d artifacts, %d claims",
		path, len(m.Sources), len(m.Artifacts), len(m.Claims))
	return warning, nil
}
