// Package memory is the read side of the workspace store: scoped full-text
// search over sources and artifacts, and evidence-bundle assembly joining
// claims to the full content of the sources they cite. Skills use it to
// ground new generation in prior evidence.
package memory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"groundwork/internal/logging"
	"groundwork/internal/store"
)

// API wraps a workspace store for retrieval.
type API struct {
	store *store.Store
}

// New creates a memory API over the given store.
func New(s *store.Store) *API {
	return &API{store: s}
}

// Hit is a ranked search result.
type Hit struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Excerpt string `json:"excerpt"`
}

// SearchSources returns sources in the given workspace matching the query.
// An empty workspace ID is a programming error and fails loudly rather
// than degrading to an unscoped search.
func (a *API) SearchSources(workspaceID, query string, limit int) ([]Hit, error) {
	return a.search(workspaceID, "source", query, limit)
}

// SearchArtifacts returns artifacts in the given workspace matching the
// query, under the same scoping rules as SearchSources.
func (a *API) SearchArtifacts(workspaceID, query string, limit int) ([]Hit, error) {
	return a.search(workspaceID, "artifact", query, limit)
}

func (a *API) search(workspaceID, kind, query string, limit int) ([]Hit, error) {
	if workspaceID == "" {
		return nil, &store.MissingWorkspaceError{Operation: "memory.Search"}
	}
	if workspaceID != a.store.WorkspaceID() {
		// The store is physically bound to one workspace; asking it for
		// another workspace's rows is the same scoping bug.
		return nil, &store.WorkspaceMismatchError{Expected: a.store.WorkspaceID(), Got: workspaceID}
	}

	hits, err := a.store.Search(kind, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		out = append(out, Hit{ID: h.RefID, Title: h.Title, Excerpt: makeExcerpt(h.Content, query)})
	}

	logging.Get(logging.CategoryMemory).Debug("search %s %q: %d hits", kind, query, len(out))
	return out, nil
}

// EvidenceBundle is the resolved evidence backing one claim: its text, its
// assumption flag, and the full content of every source it cites.
type EvidenceBundle struct {
	ClaimID    int64            `json:"claim_id"`
	ClaimText  string           `json:"claim_text"`
	Kind       string           `json:"kind"`
	Assumption bool             `json:"assumption"`
	Sources    []ResolvedSource `json:"sources,omitempty"`
	Missing    []string         `json:"missing,omitempty"` // Cited IDs with no source row
}

// ResolvedSource is a cited source with its content inlined.
type ResolvedSource struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// RetrieveContext assembles the evidence bundle for one claim.
func (a *API) RetrieveContext(workspaceID string, claimID int64) (*EvidenceBundle, error) {
	if workspaceID == "" {
		return nil, &store.MissingWorkspaceError{Operation: "memory.RetrieveContext"}
	}
	if workspaceID != a.store.WorkspaceID() {
		return nil, &store.WorkspaceMismatchError{Expected: a.store.WorkspaceID(), Got: workspaceID}
	}

	claim, err := a.store.GetClaim(claimID)
	if err != nil {
		return nil, err
	}

	bundle := &EvidenceBundle{
		ClaimID:    claim.ID,
		ClaimText:  claim.Text,
		Kind:       string(claim.Kind),
		Assumption: claim.Kind == "assumption",
	}

	for _, ref := range claim.Sources {
		src, err := a.store.GetSource(ref.SourceID)
		if err != nil {
			bundle.Missing = append(bundle.Missing, ref.SourceID)
			continue
		}
		bundle.Sources = append(bundle.Sources, ResolvedSource{
			ID:      src.ID,
			Type:    string(src.Type),
			Title:   src.Title,
			Content: src.Content,
		})
	}

	return bundle, nil
}

// RetrieveArtifactContext assembles bundles for every claim attached to an
// artifact.
func (a *API) RetrieveArtifactContext(workspaceID, artifactID string) ([]EvidenceBundle, error) {
	if workspaceID == "" {
		return nil, &store.MissingWorkspaceError{Operation: "memory.RetrieveArtifactContext"}
	}

	claims, err := a.store.GetClaimsByArtifact(artifactID)
	if err != nil {
		return nil, err
	}

	bundles := make([]EvidenceBundle, 0, len(claims))
	for _, c := range claims {
		b, err := a.RetrieveContext(workspaceID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve claim %d: %w", c.ID, err)
		}
		bundles = append(bundles, *b)
	}
	return bundles, nil
}

// makeExcerpt returns a short window of content centered on the first
// matching query token, or the head of the content if nothing matches.
func makeExcerpt(content, query string) string {
	const window = 160

	lower := strings.ToLower(content)
	pos := -1
	for _, kw := range strings.Fields(strings.ToLower(query)) {
		if i := strings.Index(lower, kw); i >= 0 {
			pos = i
			break
		}
	}
	if pos < 0 {
		pos = 0
	}

	// Both cut points move to rune boundaries so the window never splits
	// a character.
	start := pos - window/4
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	end := start + window
	if end > len(content) {
		end = len(content)
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	excerpt := strings.TrimSpace(content[start:end])
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(content) {
		excerpt += "..."
	}
	return excerpt
}
