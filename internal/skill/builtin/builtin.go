// Package builtin provides the five pipeline skills: research, targets,
// outreach, meeting-prep, and followup. Each skill grounds its generation
// in workspace memory, calls the LLM adapter for the artifact body, and
// emits a markdown/JSON artifact pair plus claims recording what evidence
// the output rests on.
package builtin

import "groundwork/internal/skill"

const version = "1.0"

// RegisterAll registers every built-in skill on the registry.
func RegisterAll(reg *skill.Registry) {
	reg.Register(Research())
	reg.Register(Targets())
	reg.Register(Outreach())
	reg.Register(MeetingPrep())
	reg.Register(Followup())
}

// Research builds the account research brief.
func Research() skill.Skill {
	return &stageSkill{
		name:     "research",
		artifact: "research_brief",
		prompt: "Write a concise research brief on the company below. Cover what they do, " +
			"their market, recent signals, and likely pain points. Use only the provided " +
			"context where possible and keep unverified statements clearly hedged.",
	}
}

// Targets identifies the buying committee.
func Targets() skill.Skill {
	return &stageSkill{
		name:     "targets",
		artifact: "target_list",
		prompt: "From the company context below, list the roles and likely titles that would " +
			"buy or champion this product. For each, note why they would care.",
	}
}

// Outreach drafts the outreach sequence.
func Outreach() skill.Skill {
	return &stageSkill{
		name:     "outreach",
		artifact: "outreach_sequence",
		prompt: "Draft a three-touch outreach sequence (email, follow-up email, call script) " +
			"for the company below, personalized from the provided context.",
	}
}

// MeetingPrep assembles a meeting preparation document.
func MeetingPrep() skill.Skill {
	return &stageSkill{
		name:     "meeting-prep",
		artifact: "meeting_prep",
		prompt: "Prepare a meeting brief for the company below: attendee context, talking " +
			"points, objections to expect, and questions to ask.",
	}
}

// Followup plans post-meeting follow-up actions.
func Followup() skill.Skill {
	return &stageSkill{
		name:     "followup",
		artifact: "followup_plan",
		prompt: "Write a follow-up plan for the company below: recap structure, next steps " +
			"to propose, and a timeline.",
	}
}
