// Package workspace defines the isolation unit for storage, runs, and
// exports. Every store row and search hit belongs to exactly one workspace;
// the stable workspace ID recorded here is what the store and memory layers
// filter on.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Context identifies a workspace and the root all paths derive from.
type Context struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Root      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a workspace context with a fresh stable identifier.
func New(name, root string) *Context {
	return &Context{
		ID:        fmt.Sprintf("ws_%s", uuid.New().String()[:8]),
		Name:      name,
		Root:      root,
		CreatedAt: time.Now().UTC(),
	}
}

// DBPath returns the SQLite database path for this workspace.
func (c *Context) DBPath() string {
	return filepath.Join(c.Root, ".groundwork", "memory.db")
}

// RunsDir returns the directory run artifacts are written under.
func (c *Context) RunsDir() string {
	return filepath.Join(c.Root, ".groundwork", "runs")
}

// ExportsDir returns the directory exports and gated CRM payloads land in.
func (c *Context) ExportsDir() string {
	return filepath.Join(c.Root, ".groundwork", "exports")
}

func identityPath(root string) string {
	return filepath.Join(root, ".groundwork", "workspace.json")
}

// Save persists the workspace identity file under the root.
func (c *Context) Save() error {
	dir := filepath.Dir(identityPath(c.Root))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workspace identity: %w", err)
	}
	if err := os.WriteFile(identityPath(c.Root), data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace identity: %w", err)
	}
	return nil
}

// Load reads the workspace identity file under the given root.
func Load(root string) (*Context, error) {
	data, err := os.ReadFile(identityPath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace identity: %w", err)
	}
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse workspace identity: %w", err)
	}
	c.Root = root
	if c.ID == "" {
		return nil, fmt.Errorf("workspace identity at %s has no id", root)
	}
	return &c, nil
}

// LoadOrCreate loads an existing workspace identity or initializes a new
// one under the root.
func LoadOrCreate(name, root string) (*Context, error) {
	if _, err := os.Stat(identityPath(root)); err == nil {
		return Load(root)
	}
	c := New(name, root)
	if err := c.Save(); err != nil {
		return nil, err
	}
	return c, nil
}
