package skill

import (
	"sort"
	"sync"

	"groundwork/internal/logging"
)

// Registry maps skill names to implementations. It is constructed once at
// process start and passed by reference into the planner and executor
// rather than living as package-global state. Entries are never removed;
// re-registration under the same name overwrites (last writer wins) with a
// logged warning, which supports test doubles and hot reload but is a
// foot-gun if unintentional.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Skill
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Skill)}
}

// Register adds a skill under its name. Overwrites are allowed and warned.
func (r *Registry) Register(s Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.skills[name]; exists {
		logging.Get(logging.CategorySkills).Warn("skill %q re-registered, previous implementation replaced", name)
	} else {
		logging.Skills("skill %q registered (version %s)", name, s.Version())
	}
	r.skills[name] = s
}

// Get looks up a skill by name.
func (r *Registry) Get(name string) (Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.skills[name]
	if !ok {
		return nil, &SkillNotFoundError{Name: name}
	}
	return s, nil
}

// Has reports whether a skill name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.skills[name]
	return ok
}

// Names returns the registered skill names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
