// Package skill defines the contract every unit of work implements and the
// registry that maps skill names to implementations. Skills consume
// structured inputs plus a runtime context and produce artifacts and
// evidence claims; the executor dispatches to them by name.
package skill

import (
	"context"
	"fmt"

	"groundwork/internal/evidence"
	"groundwork/internal/llm"
	"groundwork/internal/memory"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

// Inputs is the free-form input payload a step hands to its skill.
type Inputs map[string]interface{}

// RuntimeContext carries the capabilities a skill may use during a run.
type RuntimeContext struct {
	Workspace *workspace.Context
	RunID     string
	Store     *store.Store
	Memory    *memory.API
	LLM       llm.Client
}

// Result bundles everything one skill execution produced.
type Result struct {
	Skill     string                 `json:"skill"`
	Version   string                 `json:"version"`
	Output    map[string]interface{} `json:"output,omitempty"`
	Artifacts []evidence.ArtifactRef `json:"artifacts,omitempty"`
	Claims    []evidence.Claim       `json:"claims,omitempty"`
}

// Skill is a named, versioned unit of work.
type Skill interface {
	// Name is the stable identifier skills are registered and planned by.
	Name() string
	// Version stamps results for later provenance checks.
	Version() string
	// Artifacts declares the logical artifact names this skill produces,
	// used by the planner's artifact filter.
	Artifacts() []string
	// Run executes the skill. A non-nil error marks the step failed; no
	// partial output from a failed run is ever persisted.
	Run(ctx context.Context, inputs Inputs, rc *RuntimeContext) (*Result, error)
}

// SkillNotFoundError reports a lookup of an unregistered skill name.
type SkillNotFoundError struct {
	Name string
}

func (e *SkillNotFoundError) Error() string {
	return fmt.Sprintf("skill %q is not registered", e.Name)
}
