package evidence

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewFact_RequiresSource(t *testing.T) {
	_, err := NewFact("Acme raised a Series B in 2024")
	if err == nil {
		t.Fatal("expected EvidenceError for fact without sources")
	}
	var evErr *EvidenceError
	if !errors.As(err, &evErr) {
		t.Fatalf("expected *EvidenceError, got %T", err)
	}
	if evErr.Kind != KindFact {
		t.Errorf("expected kind=fact, got %s", evErr.Kind)
	}
}

func TestNewFact_EmptySourceIDDoesNotCount(t *testing.T) {
	_, err := NewFact("claim", SourceRef{SourceID: "", Type: SourceText})
	if err == nil {
		t.Fatal("blank source ID must not satisfy the fact requirement")
	}
}

func TestNewFact_WithSource(t *testing.T) {
	c, err := NewFact("Acme has 200 employees", SourceRef{SourceID: "src_1", Type: SourceURL})
	if err != nil {
		t.Fatalf("NewFact failed: %v", err)
	}
	if c.Kind != KindFact {
		t.Errorf("expected kind=fact, got %s", c.Kind)
	}
	if len(c.Sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(c.Sources))
	}
}

func TestNewClaim_AssumptionRejectsSources(t *testing.T) {
	_, err := NewClaim("probably enterprise-focused", KindAssumption, []SourceRef{
		{SourceID: "src_1", Type: SourceText},
	})
	if err == nil {
		t.Fatal("expected EvidenceError for assumption with sources")
	}
}

func TestNewAssumption(t *testing.T) {
	c := NewAssumption("likely expanding into EMEA")
	if c.Kind != KindAssumption {
		t.Errorf("expected kind=assumption, got %s", c.Kind)
	}
	if len(c.Sources) != 0 {
		t.Errorf("assumption must carry no sources, got %d", len(c.Sources))
	}
	if !c.IsAssumption() {
		t.Error("IsAssumption should be true")
	}
}

func TestNewInference_SourcesOptional(t *testing.T) {
	bare := NewInference("their hiring suggests a platform push")
	if bare.Kind != KindInference {
		t.Errorf("expected kind=inference, got %s", bare.Kind)
	}

	cited := NewInference("growth implies new funding",
		SourceRef{SourceID: "src_2", Type: SourceURL})
	if len(cited.Sources) != 1 {
		t.Errorf("expected 1 source on cited inference, got %d", len(cited.Sources))
	}
}

func TestEvidenceError_ExcerptKeepsRunesWhole(t *testing.T) {
	// The 60-byte cut lands mid-rune for this text; the excerpt must back
	// off to the previous boundary instead of emitting a broken character.
	text := "ab" + strings.Repeat("€", 30)
	_, err := NewFact(text)
	if err == nil {
		t.Fatal("expected EvidenceError for fact without sources")
	}
	if !utf8.ValidString(err.Error()) {
		t.Errorf("error message split a rune: %q", err.Error())
	}
}

func TestNewClaim_UnknownKind(t *testing.T) {
	_, err := NewClaim("text", ClaimKind("opinion"), nil)
	if err == nil {
		t.Fatal("expected error for unknown claim kind")
	}
}
