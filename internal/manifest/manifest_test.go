package manifest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwork/internal/evidence"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name      string
		found     string
		wantWarn  bool
		wantFatal bool
	}{
		{name: "exact match", found: "1.0"},
		{name: "newer minor warns", found: "1.3", wantWarn: true},
		{name: "newer major fatal", found: "2.0", wantFatal: true},
		{name: "older major fatal", found: "0.9", wantFatal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning, err := CheckVersion(tt.found, "1.0")
			if tt.wantFatal {
				var vErr *VersionError
				require.Error(t, err)
				require.True(t, errors.As(err, &vErr), "expected VersionError, got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.wantWarn {
				assert.NotEmpty(t, warning)
			} else {
				assert.Empty(t, warning)
			}
		})
	}
}

func TestCheckVersion_Malformed(t *testing.T) {
	_, err := CheckVersion("banana", "1.0")
	require.Error(t, err)
	var vErr *VersionError
	assert.False(t, errors.As(err, &vErr), "malformed version is a parse error, not a compatibility error")
}

func TestExportImport_RoundTrip(t *testing.T) {
	srcWS := workspace.New("origin", t.TempDir())
	src, err := store.Open(srcWS.DBPath(), srcWS.ID, srcWS.Name)
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.InsertSource(store.Source{ID: "src_1", Type: evidence.SourceText, Content: "exported content"}))
	require.NoError(t, src.InsertArtifact(store.Artifact{ID: "art_1", RunID: "run_1", Name: "research_brief", Type: evidence.ArtifactMarkdown, Content: "# brief"}))
	fact, err := evidence.NewFact("statement", evidence.SourceRef{SourceID: "src_1", Type: evidence.SourceText})
	require.NoError(t, err)
	_, err = src.InsertClaim("art_1", fact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, Export(src, srcWS, path))

	dstWS := workspace.New("destination", t.TempDir())
	dst, err := store.Open(dstWS.DBPath(), dstWS.ID, dstWS.Name)
	require.NoError(t, err)
	defer dst.Close()

	warning, err := Import(dst, path)
	require.NoError(t, err)
	assert.Empty(t, warning)

	got, err := dst.GetSource("src_1")
	require.NoError(t, err)
	assert.Equal(t, "exported content", got.Content)

	claims, err := dst.GetClaims()
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, evidence.KindFact, claims[0].Kind)

	// Imported sources are searchable in the destination workspace.
	hits, err := dst.Search("source", "exported", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	defects, err := dst.CheckEvidence()
	require.NoError(t, err)
	assert.Empty(t, defects, "round-tripped evidence chain should be intact")
}

func TestImport_IncompatibleMajor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	writeManifest(t, path, `{"version": "2.0", "workspace_id": "ws_x"}`)

	ws := workspace.New("dst", t.TempDir())
	s, err := store.Open(ws.DBPath(), ws.ID, ws.Name)
	require.NoError(t, err)
	defer s.Close()

	_, err = Import(s, path)
	var vErr *VersionError
	require.True(t, errors.As(err, &vErr), "expected VersionError, got %v", err)
}

func TestImport_NewerMinorWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `{"version": "1.3", "workspace_id": "ws_x"}`)

	ws := workspace.New("dst", t.TempDir())
	s, err := store.Open(ws.DBPath(), ws.ID, ws.Name)
	require.NoError(t, err)
	defer s.Close()

	warning, err := Import(s, path)
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
}
