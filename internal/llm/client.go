// Package llm defines the generation adapter skills use. The core never
// depends on a concrete provider; skills receive a Client through their
// runtime context and the CLI wires in the Gemini-backed implementation.
package llm

import "context"

// Client is the capability a skill uses to generate text. Implementations
// own their own timeout and retry behavior; the workflow kernel does not
// bound a call.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
