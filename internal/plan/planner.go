package plan

import (
	"encoding/json"
	"fmt"
	"time"

	"groundwork/internal/logging"
	"groundwork/internal/skill"
)

// stage pairs a skill name with the artifacts it is expected to produce.
// The table is the single source of truth for pipeline shape; planning
// never consults an LLM or any other nondeterministic input.
type stage struct {
	Skill     string
	Artifacts []string
}

var pipelines = map[TaskType][]stage{
	TaskPipeline: {
		{Skill: "research", Artifacts: []string{"research_brief"}},
		{Skill: "targets", Artifacts: []string{"target_list"}},
		{Skill: "outreach", Artifacts: []string{"outreach_sequence"}},
		{Skill: "meeting-prep", Artifacts: []string{"meeting_prep"}},
		{Skill: "followup", Artifacts: []string{"followup_plan"}},
	},
	TaskResearch: {
		{Skill: "research", Artifacts: []string{"research_brief"}},
	},
	TaskMeetingPrep: {
		{Skill: "research", Artifacts: []string{"research_brief"}},
		{Skill: "meeting-prep", Artifacts: []string{"meeting_prep"}},
	},
}

// Planner maps task specs to plans. It consults the registry only to warn
// about skill names with no registered implementation; an unregistered
// skill still gets a step and fails at execution time.
type Planner struct {
	registry *skill.Registry
}

// NewPlanner creates a planner over the given registry.
func NewPlanner(registry *skill.Registry) *Planner {
	return &Planner{registry: registry}
}

// CreatePlan deterministically expands a task spec into a plan. Each
// step's dependency is exactly the previous step, forming a strict linear
// chain: pipeline stages in this domain consume the prior stage's
// artifacts as context, so there is nothing to parallelize.
func (p *Planner) CreatePlan(spec TaskSpec) (*Plan, error) {
	if spec.WorkspaceID == "" {
		return nil, fmt.Errorf("task spec has no workspace")
	}

	stages, ok := pipelines[spec.Type]
	if !ok {
		return nil, fmt.Errorf("unknown task type %q", spec.Type)
	}

	selected := filterStages(stages, spec.RequestedArtifacts)

	log := logging.Get(logging.CategoryPlanner)
	plan := &Plan{
		ID:          newPlanID(),
		TaskType:    spec.Type,
		WorkspaceID: spec.WorkspaceID,
		CreatedAt:   time.Now().UTC(),
	}

	var prevID string
	for i, st := range stages {
		if !selected[st.Skill] {
			continue
		}
		if p.registry != nil && !p.registry.Has(st.Skill) {
			log.Warn("plan %s references unregistered skill %q", plan.ID, st.Skill)
		}

		step := &Step{
			ID:                fmt.Sprintf("step_%d_%s", i, st.Skill),
			Skill:             st.Skill,
			Inputs:            buildStepInputs(spec),
			ExpectedArtifacts: append([]string(nil), st.Artifacts...),
			Status:            StatusPending,
		}
		if prevID != "" {
			step.DependsOn = []string{prevID}
		}
		plan.Steps = append(plan.Steps, step)
		prevID = step.ID
	}

	logging.Planner("plan %s created: type=%s steps=%d", plan.ID, spec.Type, len(plan.Steps))
	return plan, nil
}

// filterStages keeps stages whose declared artifact set intersects the
// request. If the filter would remove every stage, it is ignored and the
// full list is kept: a non-empty task must never yield an empty plan.
func filterStages(stages []stage, requested []string) map[string]bool {
	selected := make(map[string]bool, len(stages))

	if len(requested) == 0 {
		for _, st := range stages {
			selected[st.Skill] = true
		}
		return selected
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}

	for _, st := range stages {
		for _, a := range st.Artifacts {
			if want[a] {
				selected[st.Skill] = true
				break
			}
		}
	}

	if len(selected) == 0 {
		logging.Get(logging.CategoryPlanner).Warn("artifact filter %v matched no stage, keeping full pipeline", requested)
		for _, st := range stages {
			selected[st.Skill] = true
		}
	}
	return selected
}

// buildStepInputs merges the task's raw inputs with the workspace ID and a
// serialized constraints object so each skill receives a self-contained
// payload independent of plan structure.
func buildStepInputs(spec TaskSpec) map[string]interface{} {
	inputs := make(map[string]interface{}, len(spec.Inputs)+2)
	for k, v := range spec.Inputs {
		inputs[k] = v
	}
	inputs["workspace_id"] = spec.WorkspaceID

	constraints, _ := json.Marshal(map[string]interface{}{
		"requested_artifacts": spec.RequestedArtifacts,
	})
	inputs["constraints"] = string(constraints)

	return inputs
}
