// Package evidence defines the claim/source data model that ties every
// generated statement to its provenance. A claim is either a fact backed by
// at least one source, an assumption backed by nothing, or an inference
// derived from prior material. The fact/source pairing is enforced at
// construction time; a violating claim can never be built, so it can never
// be persisted.
package evidence

import (
	"fmt"
	"unicode/utf8"
)

// SourceType tags where a source came from.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// ClaimKind classifies the evidentiary standing of a claim.
type ClaimKind string

const (
	KindFact       ClaimKind = "fact"       // Backed by at least one source
	KindAssumption ClaimKind = "assumption" // Explicitly unverified
	KindInference  ClaimKind = "inference"  // Derived judgment, sources optional
)

// SourceRef points at an ingested source row.
type SourceRef struct {
	SourceID string     `json:"source_id"`
	Type     SourceType `json:"type"`
}

// Claim is a single statement produced by a skill, write-once.
type Claim struct {
	Text    string      `json:"text"`
	Kind    ClaimKind   `json:"kind"`
	Sources []SourceRef `json:"sources,omitempty"`
}

// ArtifactType tags the rendering of an artifact.
type ArtifactType string

const (
	ArtifactMarkdown ArtifactType = "markdown"
	ArtifactJSON     ArtifactType = "json"
)

// ArtifactRef is a named, typed rendering of a skill's output. A skill run
// typically yields a markdown/JSON pair sharing the same logical name.
type ArtifactRef struct {
	Name    string       `json:"name"`
	Type    ArtifactType `json:"type"`
	Content string       `json:"content"`
}

// EvidenceError reports a fact/source pairing violation at claim
// construction time.
type EvidenceError struct {
	Kind    ClaimKind
	Reason  string
	Excerpt string
}

func (e *EvidenceError) Error() string {
	return fmt.Sprintf("evidence violation for %s claim: %s (%q)", e.Kind, e.Reason, e.Excerpt)
}

// NewClaim constructs a claim, enforcing the evidence invariant:
// a fact must cite at least one non-empty source, an assumption must cite
// none. Inferences may carry sources but are not required to.
func NewClaim(text string, kind ClaimKind, sources []SourceRef) (Claim, error) {
	refs := compactRefs(sources)

	switch kind {
	case KindFact:
		if len(refs) == 0 {
			return Claim{}, &EvidenceError{Kind: kind, Reason: "fact requires at least one source", Excerpt: excerpt(text)}
		}
	case KindAssumption:
		if len(refs) > 0 {
			return Claim{}, &EvidenceError{Kind: kind, Reason: "assumption must not cite sources", Excerpt: excerpt(text)}
		}
	case KindInference:
		// No source requirement either way.
	default:
		return Claim{}, &EvidenceError{Kind: kind, Reason: "unknown claim kind", Excerpt: excerpt(text)}
	}

	return Claim{Text: text, Kind: kind, Sources: refs}, nil
}

// NewFact builds a fact claim. Fails if no usable source is given.
func NewFact(text string, sources ...SourceRef) (Claim, error) {
	return NewClaim(text, KindFact, sources)
}

// NewAssumption builds an assumption claim. Cannot fail: assumptions carry
// no sources by definition.
func NewAssumption(text string) Claim {
	return Claim{Text: text, Kind: KindAssumption}
}

// NewInference builds an inference claim with optional supporting sources.
func NewInference(text string, sources ...SourceRef) Claim {
	return Claim{Text: text, Kind: KindInference, Sources: compactRefs(sources)}
}

// IsAssumption reports whether the claim is unverified.
func (c Claim) IsAssumption() bool {
	return c.Kind == KindAssumption
}

// compactRefs drops refs with empty source IDs so a fact cannot be
// "backed" by a blank citation.
func compactRefs(refs []SourceRef) []SourceRef {
	var out []SourceRef
	for _, r := range refs {
		if r.SourceID != "" {
			out = append(out, r)
		}
	}
	return out
}

func excerpt(text string) string {
	const max = 60
	if len(text) <= max {
		return text
	}
	// Back off to a rune boundary so the cut never splits a character.
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
