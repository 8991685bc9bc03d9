package injected

import "sync"

// Registry is an explicit, scoped alternative to pinjected's
// module-level implicit design registry (spec §9 Design Note): rather
// than bindings accumulating into a process-global design as a side
// effect of import, callers construct a Registry, Add Designs to it
// under a name, and later combine named subsets with FromRegistry. This
// keeps dependency wiring local and testable instead of import-order
// dependent.
type Registry struct {
	mu      sync.Mutex
	designs map[string]Design
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{designs: map[string]Design{}}
}

// Add stores d under name, replacing any previous Design registered
// under that name.
func (r *Registry) Add(name string, d Design) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.designs[name] = d
}

// Names returns every registered Design name.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.designs))
	for n := range r.designs {
		out = append(out, n)
	}
	return out
}

// FromRegistry merges every Design whose name satisfies filter, in
// lexical order of name, later entries (lexically) winning conflicts.
// A nil filter selects everything.
func FromRegistry(r *Registry, filter func(name string) bool) Design {
	r.mu.Lock()
	names := make([]string, 0, len(r.designs))
	for n := range r.designs {
		if filter == nil || filter(n) {
			names = append(names, n)
		}
	}
	snapshot := make(map[string]Design, len(r.designs))
	for k, v := range r.designs {
		snapshot[k] = v
	}
	r.mu.Unlock()

	sortStrings(names)

	out := NewDesign()
	for _, n := range names {
		out = out.Merge(snapshot[n])
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
