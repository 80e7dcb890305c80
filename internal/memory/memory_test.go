package memory

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"groundwork/internal/evidence"
	"groundwork/internal/store"
)

func setup(t *testing.T) (*API, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "memory.db"), "ws_mem", "memtest")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func TestSearchSources_RequiresWorkspace(t *testing.T) {
	api, _ := setup(t)

	_, err := api.SearchSources("", "anything", 10)
	var missing *store.MissingWorkspaceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingWorkspaceError, got %v", err)
	}
}

func TestSearchSources_RejectsForeignWorkspace(t *testing.T) {
	api, _ := setup(t)

	_, err := api.SearchSources("ws_other", "anything", 10)
	var mismatch *store.WorkspaceMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected WorkspaceMismatchError, got %v", err)
	}
}

func TestSearchSources_ReturnsExcerpts(t *testing.T) {
	api, s := setup(t)

	long := strings.Repeat("padding words here ", 30) + "the zanzibar detail" + strings.Repeat(" trailing text", 30)
	if err := s.InsertSource(store.Source{ID: "src_1", Type: evidence.SourceText, Title: "notes", Content: long}); err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}

	hits, err := api.SearchSources("ws_mem", "zanzibar", 10)
	if err != nil {
		t.Fatalf("SearchSources failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if !strings.Contains(hits[0].Excerpt, "zanzibar") {
		t.Errorf("excerpt should contain the match, got %q", hits[0].Excerpt)
	}
	if len(hits[0].Excerpt) > 200 {
		t.Errorf("excerpt too long: %d chars", len(hits[0].Excerpt))
	}
}

func TestMakeExcerpt_RuneSafe(t *testing.T) {
	// The excerpt window opens and closes mid-rune for this content; both
	// cut points must move to boundaries.
	content := strings.Repeat("é", 100) + " zanzibar " + strings.Repeat("é", 100)

	got := makeExcerpt(content, "zanzibar")
	if !utf8.ValidString(got) {
		t.Errorf("excerpt split a rune: %q", got)
	}
	if !strings.Contains(got, "zanzibar") {
		t.Errorf("excerpt should contain the match, got %q", got)
	}
}

func TestSearchArtifacts(t *testing.T) {
	api, s := setup(t)

	a := store.Artifact{ID: "art_1", RunID: "run_1", Name: "outreach", Type: evidence.ArtifactMarkdown, Content: "# Draft\nmentions xylophone strategy"}
	if err := s.InsertArtifact(a); err != nil {
		t.Fatalf("InsertArtifact failed: %v", err)
	}

	hits, err := api.SearchArtifacts("ws_mem", "xylophone", 5)
	if err != nil {
		t.Fatalf("SearchArtifacts failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "art_1" {
		t.Errorf("expected artifact hit, got %+v", hits)
	}
}

func TestRetrieveContext_ResolvesSources(t *testing.T) {
	api, s := setup(t)

	if err := s.InsertSource(store.Source{ID: "src_cited", Type: evidence.SourceURL, Title: "press release", Content: "full press release text"}); err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}

	claim, err := evidence.NewFact("they announced a launch",
		evidence.SourceRef{SourceID: "src_cited", Type: evidence.SourceURL},
		evidence.SourceRef{SourceID: "src_gone", Type: evidence.SourceURL},
	)
	if err != nil {
		t.Fatalf("NewFact failed: %v", err)
	}
	claimID, err := s.InsertClaim("", claim)
	if err != nil {
		t.Fatalf("InsertClaim failed: %v", err)
	}

	bundle, err := api.RetrieveContext("ws_mem", claimID)
	if err != nil {
		t.Fatalf("RetrieveContext failed: %v", err)
	}
	if bundle.Assumption {
		t.Error("fact claim should not be flagged as assumption")
	}
	if len(bundle.Sources) != 1 || bundle.Sources[0].Content != "full press release text" {
		t.Errorf("expected resolved source content, got %+v", bundle.Sources)
	}
	if len(bundle.Missing) != 1 || bundle.Missing[0] != "src_gone" {
		t.Errorf("expected src_gone reported missing, got %v", bundle.Missing)
	}
}

func TestRetrieveArtifactContext(t *testing.T) {
	api, s := setup(t)

	if err := s.InsertArtifact(store.Artifact{ID: "art_1", RunID: "run_1", Name: "research", Type: evidence.ArtifactMarkdown, Content: "# r"}); err != nil {
		t.Fatalf("InsertArtifact failed: %v", err)
	}
	if _, err := s.InsertClaim("art_1", evidence.NewAssumption("probably mid-market")); err != nil {
		t.Fatalf("InsertClaim failed: %v", err)
	}

	bundles, err := api.RetrieveArtifactContext("ws_mem", "art_1")
	if err != nil {
		t.Fatalf("RetrieveArtifactContext failed: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(bundles))
	}
	if !bundles[0].Assumption {
		t.Error("assumption claim should set the assumption flag")
	}
}
