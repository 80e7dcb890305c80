package exec

import (
	"context"

	"groundwork/internal/evidence"
	"groundwork/internal/skill"
)

// mockSkill lets each test script a skill's behavior.
type mockSkill struct {
	name    string
	RunFunc func(ctx context.Context, inputs skill.Inputs, rc *skill.RuntimeContext) (*skill.Result, error)
}

func (m *mockSkill) Name() string        { return m.name }
func (m *mockSkill) Version() string     { return "test" }
func (m *mockSkill) Artifacts() []string { return []string{m.name} }

func (m *mockSkill) Run(ctx context.Context, inputs skill.Inputs, rc *skill.RuntimeContext) (*skill.Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, inputs, rc)
	}
	return &skill.Result{Skill: m.name, Version: "test"}, nil
}

// okResult builds a minimal successful result with one artifact and one
// assumption claim.
func okResult(name string) *skill.Result {
	return &skill.Result{
		Skill:   name,
		Version: "test",
		Artifacts: []evidence.ArtifactRef{
			{Name: name, Type: evidence.ArtifactMarkdown, Content: "# " + name},
		},
		Claims: []evidence.Claim{evidence.NewAssumption("produced by " + name)},
	}
}
