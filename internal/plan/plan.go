// Package plan turns a task specification into an ordered, dependency-
// linked set of steps. Planning is deterministic: the same spec always
// yields the same skill sequence, so runs are reproducible and auditable.
package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskType selects which skill pipeline a task expands to.
type TaskType string

const (
	// TaskPipeline is the full five-stage account pipeline.
	TaskPipeline TaskType = "pipeline"
	// TaskResearch runs the research stage alone.
	TaskResearch TaskType = "research"
	// TaskMeetingPrep runs research plus meeting preparation.
	TaskMeetingPrep TaskType = "meeting_prep"
)

// StepStatus is the lifecycle of a step, written only by the executor.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusRunning   StepStatus = "running"
	StatusSucceeded StepStatus = "succeeded"
	StatusFailed    StepStatus = "failed"
	StatusSkipped   StepStatus = "skipped"
)

// TaskSpec is the planning input. It is consumed once by CreatePlan and
// not persisted as a first-class entity.
type TaskSpec struct {
	Type               TaskType               `json:"type"`
	WorkspaceID        string                 `json:"workspace_id"`
	Inputs             map[string]interface{} `json:"inputs,omitempty"`
	RequestedArtifacts []string               `json:"requested_artifacts,omitempty"`
}

// Step is one skill invocation within a plan. Status is the only field
// mutated after creation.
type Step struct {
	ID                string                 `json:"id"`
	Skill             string                 `json:"skill"`
	Inputs            map[string]interface{} `json:"inputs,omitempty"`
	DependsOn         []string               `json:"depends_on,omitempty"`
	ExpectedArtifacts []string               `json:"expected_artifacts,omitempty"`
	Status            StepStatus             `json:"status"`
	Error             string                 `json:"error,omitempty"`
}

// Plan is an ordered list of steps. Immutable once created apart from
// per-step status.
type Plan struct {
	ID          string    `json:"id"`
	TaskType    TaskType  `json:"task_type"`
	WorkspaceID string    `json:"workspace_id"`
	Steps       []*Step   `json:"steps"`
	CreatedAt   time.Time `json:"created_at"`
}

// Step returns the step with the given ID, or nil.
func (p *Plan) Step(id string) *Step {
	for _, s := range p.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func newPlanID() string {
	return fmt.Sprintf("plan_%s", uuid.New().String()[:8])
}
