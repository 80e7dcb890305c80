package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"groundwork/internal/evidence"
	"groundwork/internal/logging"
	"groundwork/internal/memory"
	"groundwork/internal/skill"
)

// stageSkill is the common implementation behind every pipeline stage.
// Stages differ only in name, declared artifact, and prompt framing; the
// grounding and claim-emission flow is identical.
type stageSkill struct {
	name     string
	artifact string
	prompt   string
}

func (s *stageSkill) Name() string        { return s.name }
func (s *stageSkill) Version() string     { return version }
func (s *stageSkill) Artifacts() []string { return []string{s.artifact} }

func (s *stageSkill) Run(ctx context.Context, inputs skill.Inputs, rc *skill.RuntimeContext) (*skill.Result, error) {
	if rc == nil || rc.LLM == nil {
		return nil, fmt.Errorf("skill %s requires an LLM adapter", s.name)
	}

	company, _ := inputs["company"].(string)
	topic := company
	if topic == "" {
		if t, ok := inputs["topic"].(string); ok {
			topic = t
		}
	}
	if topic == "" {
		return nil, fmt.Errorf("skill %s requires a company or topic input", s.name)
	}

	hits, refs := s.gatherContext(rc, topic)

	body, err := rc.LLM.Complete(ctx, s.buildPrompt(topic, hits))
	if err != nil {
		return nil, fmt.Errorf("skill %s generation failed: %w", s.name, err)
	}

	claims, err := s.buildClaims(topic, refs)
	if err != nil {
		return nil, err
	}

	result := &skill.Result{
		Skill:   s.name,
		Version: version,
		Output: map[string]interface{}{
			"topic":        topic,
			"source_count": len(refs),
		},
		Artifacts: []evidence.ArtifactRef{
			{Name: s.artifact, Type: evidence.ArtifactMarkdown, Content: body},
			{Name: s.artifact, Type: evidence.ArtifactJSON, Content: s.renderJSON(topic, body, refs)},
		},
		Claims: claims,
	}

	logging.Skills("%s produced %s (%d sources cited)", s.name, s.artifact, len(refs))
	return result, nil
}

// gatherContext pulls matching workspace sources to ground the prompt.
// Skills work without memory (fresh workspaces have nothing ingested);
// the claims they emit record that the output is ungrounded in that case.
func (s *stageSkill) gatherContext(rc *skill.RuntimeContext, topic string) ([]memory.Hit, []evidence.SourceRef) {
	if rc.Memory == nil || rc.Workspace == nil {
		return nil, nil
	}

	hits, err := rc.Memory.SearchSources(rc.Workspace.ID, topic, 5)
	if err != nil {
		logging.Get(logging.CategorySkills).Warn("%s: context search failed: %v", s.name, err)
		return nil, nil
	}

	refs := make([]evidence.SourceRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, evidence.SourceRef{SourceID: h.ID, Type: evidence.SourceText})
	}
	return hits, refs
}

func (s *stageSkill) buildPrompt(topic string, hits []memory.Hit) string {
	var b strings.Builder
	b.WriteString(s.prompt)
	b.WriteString("\n\nCompany: ")
	b.WriteString(topic)

	if len(hits) > 0 {
		b.WriteString("\n\nContext from ingested sources:\n")
		for _, h := range hits {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", h.ID, h.Title, h.Excerpt)
		}
	} else {
		b.WriteString("\n\nNo ingested sources matched; state clearly that the output is unverified.")
	}
	return b.String()
}

// buildClaims records the evidentiary standing of the artifact: a fact
// citing the consulted sources when grounding existed, an assumption when
// it did not.
func (s *stageSkill) buildClaims(topic string, refs []evidence.SourceRef) ([]evidence.Claim, error) {
	if len(refs) == 0 {
		return []evidence.Claim{
			evidence.NewAssumption(fmt.Sprintf("%s for %s generated without matching workspace sources", s.artifact, topic)),
		}, nil
	}

	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.SourceID
	}
	grounded, err := evidence.NewFact(
		fmt.Sprintf("%s for %s grounded in sources: %s", s.artifact, topic, strings.Join(ids, ", ")),
		refs...,
	)
	if err != nil {
		return nil, err
	}
	return []evidence.Claim{grounded}, nil
}

func (s *stageSkill) renderJSON(topic, body string, refs []evidence.SourceRef) string {
	payload := map[string]interface{}{
		"artifact": s.artifact,
		"skill":    s.name,
		"version":  version,
		"topic":    topic,
		"sources":  refs,
		"content":  body,
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return string(data)
}
