package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreatePlan_PipelineShape(t *testing.T) {
	p := NewPlanner(nil)

	plan, err := p.CreatePlan(TaskSpec{Type: TaskPipeline, WorkspaceID: "ws_1"})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	wantSkills := []string{"research", "targets", "outreach", "meeting-prep", "followup"}
	if len(plan.Steps) != len(wantSkills) {
		t.Fatalf("expected %d steps, got %d", len(wantSkills), len(plan.Steps))
	}

	var gotSkills []string
	for _, s := range plan.Steps {
		gotSkills = append(gotSkills, s.Skill)
	}
	if diff := cmp.Diff(wantSkills, gotSkills); diff != "" {
		t.Errorf("skill order mismatch (-want +got):\n%s", diff)
	}

	// First step has no dependencies; each later step depends on exactly
	// the previous one.
	if len(plan.Steps[0].DependsOn) != 0 {
		t.Errorf("first step should have no deps, got %v", plan.Steps[0].DependsOn)
	}
	for i := 1; i < len(plan.Steps); i++ {
		want := []string{plan.Steps[i-1].ID}
		if diff := cmp.Diff(want, plan.Steps[i].DependsOn); diff != "" {
			t.Errorf("step %d deps mismatch (-want +got):\n%s", i, diff)
		}
	}

	if plan.Steps[0].ID != "step_0_research" {
		t.Errorf("unexpected step id: %s", plan.Steps[0].ID)
	}
	for _, s := range plan.Steps {
		if s.Status != StatusPending {
			t.Errorf("step %s should start pending, got %s", s.ID, s.Status)
		}
	}
}

func TestCreatePlan_Deterministic(t *testing.T) {
	p := NewPlanner(nil)
	spec := TaskSpec{Type: TaskPipeline, WorkspaceID: "ws_1"}

	a, err := p.CreatePlan(spec)
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	b, err := p.CreatePlan(spec)
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	for i := range a.Steps {
		if a.Steps[i].ID != b.Steps[i].ID || a.Steps[i].Skill != b.Steps[i].Skill {
			t.Errorf("plans differ at step %d: %s vs %s", i, a.Steps[i].ID, b.Steps[i].ID)
		}
	}
}

func TestCreatePlan_ArtifactFilter(t *testing.T) {
	p := NewPlanner(nil)

	plan, err := p.CreatePlan(TaskSpec{
		Type:               TaskPipeline,
		WorkspaceID:        "ws_1",
		RequestedArtifacts: []string{"outreach_sequence"},
	})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Skill != "outreach" {
		t.Fatalf("expected only the outreach stage, got %+v", plan.Steps)
	}
	// A filtered single step keeps its pipeline index in the ID and has
	// no dependencies since its predecessors were filtered out.
	if plan.Steps[0].ID != "step_2_outreach" {
		t.Errorf("unexpected step id: %s", plan.Steps[0].ID)
	}
	if len(plan.Steps[0].DependsOn) != 0 {
		t.Errorf("sole step should have no deps, got %v", plan.Steps[0].DependsOn)
	}
}

func TestCreatePlan_FilterFailOpen(t *testing.T) {
	p := NewPlanner(nil)

	plan, err := p.CreatePlan(TaskSpec{
		Type:               TaskPipeline,
		WorkspaceID:        "ws_1",
		RequestedArtifacts: []string{"no_such_artifact"},
	})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if len(plan.Steps) != 5 {
		t.Errorf("filter matching nothing should keep the full pipeline, got %d steps", len(plan.Steps))
	}
}

func TestCreatePlan_StepInputsSelfContained(t *testing.T) {
	p := NewPlanner(nil)

	plan, err := p.CreatePlan(TaskSpec{
		Type:        TaskPipeline,
		WorkspaceID: "ws_1",
		Inputs:      map[string]interface{}{"company": "Acme"},
	})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	for _, s := range plan.Steps {
		if s.Inputs["company"] != "Acme" {
			t.Errorf("step %s missing task input", s.ID)
		}
		if s.Inputs["workspace_id"] != "ws_1" {
			t.Errorf("step %s missing workspace id", s.ID)
		}
		if _, ok := s.Inputs["constraints"].(string); !ok {
			t.Errorf("step %s missing serialized constraints", s.ID)
		}
	}
}

func TestCreatePlan_UnknownTaskType(t *testing.T) {
	p := NewPlanner(nil)
	if _, err := p.CreatePlan(TaskSpec{Type: "bogus", WorkspaceID: "ws_1"}); err == nil {
		t.Fatal("expected error for unknown task type")
	}
}

func TestCreatePlan_RequiresWorkspace(t *testing.T) {
	p := NewPlanner(nil)
	if _, err := p.CreatePlan(TaskSpec{Type: TaskPipeline}); err == nil {
		t.Fatal("expected error for missing workspace")
	}
}

func TestCreatePlan_MeetingPrepChain(t *testing.T) {
	p := NewPlanner(nil)

	plan, err := p.CreatePlan(TaskSpec{Type: TaskMeetingPrep, WorkspaceID: "ws_1"})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[1].Skill != "meeting-prep" {
		t.Errorf("expected meeting-prep second, got %s", plan.Steps[1].Skill)
	}
}
