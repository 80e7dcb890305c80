package builtin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"groundwork/internal/evidence"
	"groundwork/internal/memory"
	"groundwork/internal/skill"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

type mockLLM struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "generated body", nil
}

func runtimeWithStore(t *testing.T) *skill.RuntimeContext {
	t.Helper()
	ws := workspace.New("builtin-test", t.TempDir())
	s, err := store.Open(ws.DBPath(), ws.ID, ws.Name)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return &skill.RuntimeContext{
		Workspace: ws,
		RunID:     "run_test",
		Store:     s,
		Memory:    memory.New(s),
		LLM:       &mockLLM{},
	}
}

func TestRegisterAll(t *testing.T) {
	reg := skill.NewRegistry()
	RegisterAll(reg)

	for _, name := range []string{"research", "targets", "outreach", "meeting-prep", "followup"} {
		if !reg.Has(name) {
			t.Errorf("expected %s registered", name)
		}
	}
}

func TestStage_UngroundedEmitsAssumption(t *testing.T) {
	rc := runtimeWithStore(t)

	res, err := Research().Run(context.Background(), skill.Inputs{"company": "Acme"}, rc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Artifacts) != 2 {
		t.Fatalf("expected markdown/json pair, got %d artifacts", len(res.Artifacts))
	}
	if res.Artifacts[0].Type != evidence.ArtifactMarkdown || res.Artifacts[1].Type != evidence.ArtifactJSON {
		t.Errorf("unexpected artifact types: %s, %s", res.Artifacts[0].Type, res.Artifacts[1].Type)
	}
	if len(res.Claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(res.Claims))
	}
	if res.Claims[0].Kind != evidence.KindAssumption {
		t.Errorf("ungrounded run should emit an assumption, got %s", res.Claims[0].Kind)
	}
}

func TestStage_GroundedEmitsFact(t *testing.T) {
	rc := runtimeWithStore(t)
	err := rc.Store.InsertSource(store.Source{
		ID:      "src_acme",
		Type:    evidence.SourceURL,
		Title:   "Acme press page",
		Content: "Acme Corporation announced record growth",
	})
	if err != nil {
		t.Fatalf("InsertSource failed: %v", err)
	}

	var sawContext bool
	rc.LLM = &mockLLM{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		sawContext = strings.Contains(prompt, "src_acme")
		return "brief citing context", nil
	}}

	res, err := Research().Run(context.Background(), skill.Inputs{"company": "Acme"}, rc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !sawContext {
		t.Error("prompt should include the matching source context")
	}
	if len(res.Claims) != 1 || res.Claims[0].Kind != evidence.KindFact {
		t.Fatalf("grounded run should emit a fact, got %+v", res.Claims)
	}
	if len(res.Claims[0].Sources) != 1 || res.Claims[0].Sources[0].SourceID != "src_acme" {
		t.Errorf("fact should cite src_acme, got %+v", res.Claims[0].Sources)
	}
}

func TestStage_RequiresLLM(t *testing.T) {
	rc := runtimeWithStore(t)
	rc.LLM = nil

	if _, err := Outreach().Run(context.Background(), skill.Inputs{"company": "Acme"}, rc); err == nil {
		t.Fatal("expected error without an LLM adapter")
	}
}

func TestStage_RequiresTopic(t *testing.T) {
	rc := runtimeWithStore(t)

	if _, err := Targets().Run(context.Background(), skill.Inputs{}, rc); err == nil {
		t.Fatal("expected error without company or topic input")
	}
}

func TestStage_GenerationErrorPropagates(t *testing.T) {
	rc := runtimeWithStore(t)
	rc.LLM = &mockLLM{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}}

	_, err := Followup().Run(context.Background(), skill.Inputs{"company": "Acme"}, rc)
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected wrapped generation error, got %v", err)
	}
}
