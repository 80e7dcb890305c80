// Package ingest produces Source rows for the workspace store from text,
// files, and URLs. Source identifiers are derived from the locator, so
// re-ingesting the same document updates the existing row instead of
// accumulating duplicates.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"groundwork/internal/evidence"
	"groundwork/internal/logging"
	"groundwork/internal/store"
)

// Ingestor writes sources into one workspace's store.
type Ingestor struct {
	store       *store.Store
	httpClient  *http.Client
	maxParallel int
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithHTTPClient overrides the fetch client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Ingestor) { i.httpClient = c }
}

// WithMaxParallel bounds concurrent URL fetches.
func WithMaxParallel(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.maxParallel = n
		}
	}
}

// New creates an ingestor over the given store.
func New(s *store.Store, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:       s,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxParallel: 4,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SourceID derives a stable identifier from a source type and locator.
func SourceID(typ evidence.SourceType, locator string) string {
	sum := sha256.Sum256([]byte(string(typ) + ":" + locator))
	return "src_" + hex.EncodeToString(sum[:6])
}

// IngestText stores a pasted text snippet. The title doubles as the
// locator so re-pasting under the same title upserts.
func (i *Ingestor) IngestText(title, content string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty text content")
	}

	id := SourceID(evidence.SourceText, title)
	src := store.Source{
		ID:       id,
		Type:     evidence.SourceText,
		Title:    title,
		Content:  content,
		Metadata: metadata,
	}
	if err := i.store.InsertSource(src); err != nil {
		return "", err
	}
	logging.Get(logging.CategoryIngest).Info("ingested text %s (%d bytes)", id, len(content))
	return id, nil
}

// IngestFile reads a file from disk and stores it as a source.
func (i *Ingestor) IngestFile(path string, metadata map[string]string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	content := string(data)
	if strings.EqualFold(filepath.Ext(path), ".html") || strings.EqualFold(filepath.Ext(path), ".htm") {
		content = extractText(strings.NewReader(content))
	}

	id := SourceID(evidence.SourceFile, abs)
	src := store.Source{
		ID:       id,
		Type:     evidence.SourceFile,
		Title:    filepath.Base(path),
		Content:  content,
		Metadata: metadata,
	}
	if err := i.store.InsertSource(src); err != nil {
		return "", err
	}
	logging.Get(logging.CategoryIngest).Info("ingested file %s as %s", path, id)
	return id, nil
}

// IngestURL fetches one URL, strips it to text, and stores it.
func (i *Ingestor) IngestURL(ctx context.Context, url string, metadata map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("bad url %s: %w", url, err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	title, text := extractTitled(resp.Body)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("fetch %s: no textual content", url)
	}
	if title == "" {
		title = url
	}

	if metadata == nil {
		metadata = make(map[string]string)
	}
	metadata["url"] = url

	id := SourceID(evidence.SourceURL, url)
	src := store.Source{
		ID:       id,
		Type:     evidence.SourceURL,
		Title:    title,
		Content:  text,
		Metadata: metadata,
	}
	if err := i.store.InsertSource(src); err != nil {
		return "", err
	}
	logging.Get(logging.CategoryIngest).Info("ingested url %s as %s (%d bytes)", url, id, len(text))
	return id, nil
}

// IngestURLs fetches several URLs concurrently. One failed URL fails the
// batch; already-stored sources from other URLs remain (upserts make
// retries harmless).
func (i *Ingestor) IngestURLs(ctx context.Context, urls []string, metadata map[string]string) ([]string, error) {
	ids := make([]string, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.maxParallel)

	for idx, url := range urls {
		idx, url := idx, url
		g.Go(func() error {
			id, err := i.IngestURL(gctx, url, metadata)
			if err != nil {
				return err
			}
			ids[idx] = id
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}
