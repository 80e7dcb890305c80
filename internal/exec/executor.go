// Package exec walks a plan in dependency order, invokes the registered
// skill for each step, and persists successful output. Its core invariant:
// a step's artifacts and claims reach durable storage if and only if that
// step succeeded. Failed or partial skill output is never persisted, so a
// half-written evidence chain cannot occur.
package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"groundwork/internal/llm"
	"groundwork/internal/logging"
	"groundwork/internal/memory"
	"groundwork/internal/plan"
	"groundwork/internal/skill"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

// Executor runs plans against a workspace.
type Executor struct {
	registry *skill.Registry
	store    *store.Store
	ws       *workspace.Context
	memory   *memory.API
	llm      llm.Client

	// Observer, if set before Execute, receives each step outcome as it is
	// recorded. It is called from the executing goroutine.
	Observer func(StepOutcome)
}

func (e *Executor) notify(o StepOutcome) {
	if e.Observer != nil {
		e.Observer(o)
	}
}

// New creates an executor. The memory API and LLM client are handed to
// skills through their runtime context; either may be nil for skills that
// do not use them.
func New(registry *skill.Registry, st *store.Store, ws *workspace.Context, mem *memory.API, client llm.Client) *Executor {
	return &Executor{registry: registry, store: st, ws: ws, memory: mem, llm: client}
}

// StepOutcome records how one step ended.
type StepOutcome struct {
	StepID  string          `json:"step_id"`
	Skill   string          `json:"skill"`
	Status  plan.StepStatus `json:"status"`
	Error   string          `json:"error,omitempty"`
	Result  *skill.Result   `json:"-"`
	Elapsed time.Duration   `json:"elapsed"`
}

// ExecutionResult aggregates per-step outcomes for one run.
type ExecutionResult struct {
	PlanID     string        `json:"plan_id"`
	RunID      string        `json:"run_id"`
	Success    bool          `json:"success"`
	Outcomes   []StepOutcome `json:"outcomes"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Execute runs every step of the plan that can run. Steps become ready
// when all their dependencies have succeeded; a failed step marks its
// transitive dependents skipped without aborting independent branches.
// The current planner emits linear chains, but readiness is computed
// generally so DAG-shaped plans execute correctly too.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) (*ExecutionResult, error) {
	if p.WorkspaceID != e.store.WorkspaceID() {
		return nil, &store.WorkspaceMismatchError{Expected: e.store.WorkspaceID(), Got: p.WorkspaceID}
	}

	runID := fmt.Sprintf("run_%s", uuid.New().String()[:8])
	result := &ExecutionResult{
		PlanID:    p.ID,
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	}

	logging.Executor("run %s started: plan=%s steps=%d", runID, p.ID, len(p.Steps))

	byID := make(map[string]*plan.Step, len(p.Steps))
	for _, s := range p.Steps {
		byID[s.ID] = s
	}

	// Walk until no step changes state. Plan order is preserved for
	// ready steps so linear chains run strictly in sequence.
	for {
		progressed := false
		for _, step := range p.Steps {
			if step.Status != plan.StatusPending {
				continue
			}
			switch readiness(step, byID) {
			case ready:
				outcome := e.runStep(ctx, step, runID)
				result.Outcomes = append(result.Outcomes, outcome)
				e.notify(outcome)
				progressed = true
			case blocked:
				step.Status = plan.StatusSkipped
				step.Error = "dependency did not succeed"
				outcome := StepOutcome{
					StepID: step.ID,
					Skill:  step.Skill,
					Status: plan.StatusSkipped,
					Error:  step.Error,
				}
				result.Outcomes = append(result.Outcomes, outcome)
				e.notify(outcome)
				logging.Executor("run %s: step %s skipped (dependency failed)", runID, step.ID)
				progressed = true
			case waiting:
				// Revisit on the next pass.
			}
		}
		if !progressed {
			break
		}
	}

	// Anything still pending has an unsatisfiable dependency (a cycle or
	// a reference to a missing step). Record it rather than loop forever.
	for _, step := range p.Steps {
		if step.Status == plan.StatusPending {
			step.Status = plan.StatusSkipped
			step.Error = "unreachable: dependency cycle or unknown step"
			outcome := StepOutcome{
				StepID: step.ID,
				Skill:  step.Skill,
				Status: plan.StatusSkipped,
				Error:  step.Error,
			}
			result.Outcomes = append(result.Outcomes, outcome)
			e.notify(outcome)
		}
	}

	result.FinishedAt = time.Now().UTC()
	result.Success = true
	for _, o := range result.Outcomes {
		if o.Status == plan.StatusFailed {
			result.Success = false
			break
		}
	}

	if err := e.persistRunStatus(result); err != nil {
		logging.Get(logging.CategoryExecutor).Warn("failed to persist run status: %v", err)
	}

	logging.Executor("run %s finished: success=%v", runID, result.Success)
	return result, nil
}

type stepReadiness int

const (
	ready stepReadiness = iota
	waiting
	blocked
)

func readiness(step *plan.Step, byID map[string]*plan.Step) stepReadiness {
	for _, depID := range step.DependsOn {
		dep, ok := byID[depID]
		if !ok {
			return blocked
		}
		switch dep.Status {
		case plan.StatusSucceeded:
			// Satisfied.
		case plan.StatusFailed, plan.StatusSkipped:
			return blocked
		default:
			return waiting
		}
	}
	return ready
}

// runStep executes one step and, on success, persists its output. The
// step is marked succeeded only after everything it produced is durable.
func (e *Executor) runStep(ctx context.Context, step *plan.Step, runID string) StepOutcome {
	outcome := StepOutcome{StepID: step.ID, Skill: step.Skill}
	started := time.Now()

	sk, err := e.registry.Get(step.Skill)
	if err != nil {
		step.Status = plan.StatusFailed
		step.Error = err.Error()
		outcome.Status = plan.StatusFailed
		outcome.Error = err.Error()
		logging.Get(logging.CategoryExecutor).Error("step %s: %v", step.ID, err)
		return outcome
	}

	step.Status = plan.StatusRunning
	logging.Executor("step %s running (skill=%s)", step.ID, step.Skill)

	rc := &skill.RuntimeContext{
		Workspace: e.ws,
		RunID:     runID,
		Store:     e.store,
		Memory:    e.memory,
		LLM:       e.llm,
	}

	res, err := sk.Run(ctx, skill.Inputs(step.Inputs), rc)
	if err != nil {
		step.Status = plan.StatusFailed
		step.Error = err.Error()
		outcome.Status = plan.StatusFailed
		outcome.Error = err.Error()
		outcome.Elapsed = time.Since(started)
		logging.Get(logging.CategoryExecutor).Error("step %s failed: %v", step.ID, err)
		return outcome
	}

	if err := e.persistStepOutput(step, runID, res); err != nil {
		step.Status = plan.StatusFailed
		step.Error = err.Error()
		outcome.Status = plan.StatusFailed
		outcome.Error = err.Error()
		outcome.Elapsed = time.Since(started)
		logging.Get(logging.CategoryExecutor).Error("step %s persistence failed: %v", step.ID, err)
		return outcome
	}

	step.Status = plan.StatusSucceeded
	outcome.Status = plan.StatusSucceeded
	outcome.Result = res
	outcome.Elapsed = time.Since(started)
	logging.Executor("step %s succeeded: artifacts=%d claims=%d", step.ID, len(res.Artifacts), len(res.Claims))
	return outcome
}

// persistStepOutput writes a successful step's artifacts and claims in one
// store transaction, tagged with the active run. A persistence failure
// rolls everything back, so a step that ends up failed leaves no rows
// behind. Claims attach to the step's first artifact so evidence lookups
// can walk from artifact to claims to sources.
func (e *Executor) persistStepOutput(step *plan.Step, runID string, res *skill.Result) error {
	artifacts := make([]store.Artifact, 0, len(res.Artifacts))
	for _, ref := range res.Artifacts {
		artifacts = append(artifacts, store.Artifact{
			ID:      fmt.Sprintf("art_%s", uuid.New().String()[:8]),
			RunID:   runID,
			StepID:  step.ID,
			Name:    ref.Name,
			Type:    ref.Type,
			Content: ref.Content,
		})
	}

	var primaryArtifactID string
	if len(artifacts) > 0 {
		primaryArtifactID = artifacts[0].ID
	}

	return e.store.InsertStepOutput(artifacts, primaryArtifactID, res.Claims)
}

// persistRunStatus writes the run result under the workspace runs
// directory for later inspection.
func (e *Executor) persistRunStatus(result *ExecutionResult) error {
	if e.ws == nil {
		return nil
	}
	dir := filepath.Join(e.ws.RunsDir(), result.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "result.json"), data, 0644)
}
