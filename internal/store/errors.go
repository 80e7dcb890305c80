package store

import "fmt"

// MissingWorkspaceError reports a store or search call made without a
// workspace scope. This is a programming error: an unscoped call must fail
// loudly, never degrade into a search across every workspace.
type MissingWorkspaceError struct {
	Operation string
}

func (e *MissingWorkspaceError) Error() string {
	return fmt.Sprintf("%s called without a workspace identifier", e.Operation)
}

// WorkspaceMismatchError reports a database opened against a workspace
// identifier that does not match the identity it was initialized with.
type WorkspaceMismatchError struct {
	Expected string
	Got      string
	Path     string
}

func (e *WorkspaceMismatchError) Error() string {
	return fmt.Sprintf("database at %s belongs to workspace %s, refusing to open as %s", e.Path, e.Expected, e.Got)
}
