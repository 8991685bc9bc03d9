package injected

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Scope is the memoization boundary for a resolution tree, grounded on
// original_source/pinjected/di/graph.py's MScope/MChildScope split. A
// Root scope caches every key it resolves in its own map. A
// Child(overrides) scope holds the parent's effective design merged
// with overrides (overrides winning, so an overridden key's own
// dependency lookups see the new binding), but it does NOT get its own
// copy of the parent's cache: for a key outside overrides, it instead
// delegates to the parent scope, the same way MChildScope.provide does
// ("key in self.override_targets or key not in self.parent" decides
// local-vs-delegate). A side-effecting or identity-sensitive provider
// for an unrelated key therefore still runs at most once, shared with
// the parent, instead of being re-invoked per child.
//
// MChildScope.provide's own override_targets check is the literal set
// of overridden keys, nothing more — which does not, by itself, give a
// key that merely *depends on* an override (transitively, never
// itself rebound) the new value (spec §3/§4.4, S6 in spec §8: "a=1,
// b=bind(a*10), child overrides a=2" must resolve child's "b" to 20,
// not delegate to the parent's cached 10). This Scope generalizes
// override_targets from literal membership to the transitive closure
// of every key whose own dependency graph reaches an override
// (computeAffected below): a key in that closure is "local" and gets
// its own fresh computation in the child, exactly like a literally
// overridden key; everything outside it delegates to the parent
// unchanged. A key with no override anywhere in its dependency closure
// therefore really does share the parent's cached instance, not just
// its value.
type Scope struct {
	id     string
	parent *Scope
	design Design

	// overrideKeys is the literal key set of the Design passed to
	// Child; nil/empty on a Root scope.
	overrideKeys map[string]struct{}
	// affected memoizes computeAffected's per-key verdict, since
	// design is immutable for the lifetime of a Scope.
	affected sync.Map // string -> bool

	cache sync.Map // string -> cacheEntry
	group singleflight.Group

	events *EventDistributor
}

type cacheEntry struct {
	value any
	err   error
}

// NewRootScope creates a Root scope over the full Design, with its own
// event logger.
func NewRootScope(d Design) *Scope {
	return &Scope{
		id:     uuid.NewString(),
		design: d,
		events: NewEventDistributor(),
	}
}

// Child creates a new scope whose effective design is the parent's
// merged with overrides (overrides winning), and which shares the
// parent's event logger (only Root owns one; every descendant
// publishes to it). Only keys in overrides, and keys whose dependency
// closure reaches one of them, get their own cache entry here; every
// other key delegates to the parent scope (see Scope's doc comment).
func (s *Scope) Child(overrides Design) *Scope {
	keys := make(map[string]struct{}, len(overrides.bindings))
	for _, k := range overrides.Keys() {
		keys[k] = struct{}{}
	}
	return &Scope{
		id:           uuid.NewString(),
		parent:       s,
		design:       s.design.Merge(overrides),
		overrideKeys: keys,
		events:       s.events,
	}
}

// isLocal reports whether name must be resolved (and cached) in s
// itself rather than delegated to s.parent: true for a Root scope,
// for a key directly named in overrides, or for a key whose static or
// dynamic dependency closure reaches one.
func (s *Scope) isLocal(name string) bool {
	if s.parent == nil {
		return true
	}
	if _, ok := s.overrideKeys[name]; ok {
		return true
	}
	if v, ok := s.affected.Load(name); ok {
		return v.(bool)
	}
	result := s.computeAffected(name, map[string]bool{})
	s.affected.Store(name, result)
	return result
}

// computeAffected walks name's dependency closure against s's own
// effective design, looking for a key in overrideKeys. visiting guards
// against cycles (analyze elsewhere reports those as errors; here a
// revisit just contributes no new information).
func (s *Scope) computeAffected(name string, visiting map[string]bool) bool {
	if visiting[name] {
		return false
	}
	visiting[name] = true
	if _, ok := s.overrideKeys[name]; ok {
		return true
	}
	b, ok := s.design.lookup(name)
	if !ok {
		return false
	}
	for dep := range b.Value.Dependencies() {
		if s.computeAffected(dep, visiting) {
			return true
		}
	}
	for dep := range b.Value.DynamicDependencies() {
		if dep == resolverHandleMarker {
			continue
		}
		if s.computeAffected(dep, visiting) {
			return true
		}
	}
	return false
}

// ID is a unique identifier for this scope instance, used to
// correlate events across a resolution tree.
func (s *Scope) ID() string { return s.id }

// Events returns the shared event distributor for this scope's
// resolution tree.
func (s *Scope) Events() *EventDistributor { return s.events }

// cached returns the already-resolved value for name. It is called from
// byNameNode.provide, dynamicByNameNode.provide and
// ResolverHandle.Resolve, each time after the resolver has resolved
// name's full topological closure, so the value is
// guaranteed present — in s's own cache if isLocal(name), otherwise in
// some ancestor's.
func (s *Scope) cached(name string) (any, error) {
	if s.parent != nil && !s.isLocal(name) {
		return s.parent.cached(name)
	}
	v, ok := s.cache.Load(name)
	if !ok {
		return nil, fmt.Errorf("injected: internal error: %q scheduled but not yet resolved", name)
	}
	entry := v.(cacheEntry)
	return entry.value, entry.err
}

// resolveOne resolves name within s, using singleflight so concurrent
// requests for the same key within the same scope share one provider
// invocation (spec §4.3, invariant: "at most once per key per scope").
// It assumes every named dependency of the binding has already been
// resolved (the resolver's scheduler guarantees topological order).
//
// name not local to s (see isLocal) is delegated straight to the
// parent scope instead: the parent's own cache and singleflight group
// own it, so a side-effecting provider for a key untouched by s's
// overrides runs at most once total, shared across every descendant
// scope, not once per scope.
func (s *Scope) resolveOne(ctx context.Context, r *Resolver, name string, trace []string) (any, error) {
	if s.parent != nil && !s.isLocal(name) {
		return s.parent.resolveOne(ctx, newResolver(s.parent), name, trace)
	}

	if v, ok := s.cache.Load(name); ok {
		entry := v.(cacheEntry)
		return entry.value, entry.err
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		if cached, ok := s.cache.Load(name); ok {
			entry := cached.(cacheEntry)
			return entry.value, entry.err
		}

		b, ok := s.design.lookup(name)
		if !ok {
			return nil, fmt.Errorf("injected: internal error: no binding for %q", name)
		}
		s.events.Emit(ProvideEvent{Trace: trace, Kind: EventRequest, Data: name})

		env := &resolveEnv{resolver: r, scope: s, trace: trace}
		val, err := b.Value.anyNode().provide(ctx, env)
		if err != nil {
			var alreadyClassified *DependencyResolutionError
			if !errors.As(err, &alreadyClassified) {
				err = providerFailureError(name, trace, err)
			}
		} else if b.Validator != nil {
			if verr := b.Validator(val); verr != nil {
				err = &DependencyValidationError{Key: name, Cause: verr}
			}
		}

		s.cache.Store(name, cacheEntry{value: val, err: err})
		s.events.Emit(ProvideEvent{Trace: trace, Kind: EventProvide, Data: val, Err: err})
		return val, err
	})
	return v, err
}
