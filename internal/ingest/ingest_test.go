package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"groundwork/internal/evidence"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

func setup(t *testing.T) (*Ingestor, *store.Store) {
	t.Helper()
	ws := workspace.New("ingest-test", t.TempDir())
	s, err := store.Open(ws.DBPath(), ws.ID, ws.Name)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func TestIngestText(t *testing.T) {
	ing, s := setup(t)

	id, err := ing.IngestText("meeting notes", "discussed pricing with Acme", map[string]string{"company": "Acme"})
	if err != nil {
		t.Fatalf("IngestText failed: %v", err)
	}

	src, err := s.GetSource(id)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if src.Type != evidence.SourceText {
		t.Errorf("expected type=text, got %s", src.Type)
	}
	if src.Metadata["company"] != "Acme" {
		t.Errorf("metadata lost: %+v", src.Metadata)
	}
}

func TestIngestText_SameTitleUpserts(t *testing.T) {
	ing, s := setup(t)

	id1, err := ing.IngestText("notes", "first version", nil)
	if err != nil {
		t.Fatalf("IngestText failed: %v", err)
	}
	id2, err := ing.IngestText("notes", "second version", nil)
	if err != nil {
		t.Fatalf("IngestText failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("same title should derive the same source ID: %s vs %s", id1, id2)
	}

	all, err := s.GetSources()
	if err != nil {
		t.Fatalf("GetSources failed: %v", err)
	}
	if len(all) != 1 || all[0].Content != "second version" {
		t.Errorf("expected single upserted row with second content, got %+v", all)
	}
}

func TestIngestText_RejectsEmpty(t *testing.T) {
	ing, _ := setup(t)
	if _, err := ing.IngestText("title", "   ", nil); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestIngestFile_HTMLStripped(t *testing.T) {
	ing, s := setup(t)

	path := filepath.Join(t.TempDir(), "page.html")
	body := `<html><head><title>Acme</title><style>.x{}</style></head><body><p>visible words</p><script>var hidden=1;</script></body></html>`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	id, err := ing.IngestFile(path, nil)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
	src, err := s.GetSource(id)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if !strings.Contains(src.Content, "visible words") {
		t.Errorf("visible text missing: %q", src.Content)
	}
	if strings.Contains(src.Content, "hidden") || strings.Contains(src.Content, ".x{}") {
		t.Errorf("script/style content leaked: %q", src.Content)
	}
}

func TestIngestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Press Release</title></head><body>Acme ships new product</body></html>`))
	}))
	defer srv.Close()

	ing, s := setup(t)
	id, err := ing.IngestURL(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("IngestURL failed: %v", err)
	}

	src, err := s.GetSource(id)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if src.Title != "Press Release" {
		t.Errorf("expected title from html, got %q", src.Title)
	}
	if src.Type != evidence.SourceURL {
		t.Errorf("expected type=url, got %s", src.Type)
	}
	if src.Metadata["url"] != srv.URL {
		t.Errorf("expected url metadata, got %+v", src.Metadata)
	}
}

func TestIngestURL_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ing, _ := setup(t)
	if _, err := ing.IngestURL(context.Background(), srv.URL, nil); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestIngestURLs_Concurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>page ` + r.URL.Path + `</body></html>`))
	}))
	defer srv.Close()

	ing, s := setup(t)
	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}

	ids, err := ing.IngestURLs(context.Background(), urls, nil)
	if err != nil {
		t.Fatalf("IngestURLs failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}

	all, err := s.GetSources()
	if err != nil {
		t.Fatalf("GetSources failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 sources, got %d", len(all))
	}
}

func TestSourceID_Stable(t *testing.T) {
	a := SourceID(evidence.SourceURL, "https://example.com")
	b := SourceID(evidence.SourceURL, "https://example.com")
	c := SourceID(evidence.SourceFile, "https://example.com")
	if a != b {
		t.Error("same locator must derive the same ID")
	}
	if a == c {
		t.Error("different types must derive different IDs")
	}
}

func TestExtractText(t *testing.T) {
	got := extractText(strings.NewReader(`<div>hello <b>world</b></div>`))
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("unexpected extraction: %q", got)
	}
}
