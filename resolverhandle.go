package injected

import (
	"context"
	"fmt"
)

// ResolverHandle is the first-class handle passed into providers whose
// dependency is a computed key only known at execution time, matching
// the Python __resolver__ special dependency (spec §3: "dynamic dep:
// resolver"). It shares the caller's scope, so anything it resolves is
// memoized exactly like a statically declared dependency, and a name
// it requests that is already mid-resolution on the same trace still
// surfaces as a cycle.
type ResolverHandle struct {
	r     *Resolver
	trace []string
}

// Resolve looks up name dynamically, within the same scope and trace
// as the provider that received this handle.
func (h *ResolverHandle) Resolve(ctx context.Context, name string) (any, error) {
	if err := h.r.resolveNames(ctx, []string{name}, h.trace); err != nil {
		return nil, err
	}
	return h.r.scope.cached(name)
}

// ResolveTyped is Resolve with a type assertion to T.
func ResolveTyped[T any](ctx context.Context, h *ResolverHandle, name string) (T, error) {
	v, err := h.Resolve(ctx, name)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, &typeMismatchError{name: name, got: v, want: zero}
	}
	return typed, nil
}

type typeMismatchError struct {
	name      string
	got, want any
}

func (e *typeMismatchError) Error() string {
	return fmt.Sprintf("injected: %q resolved to %T, expected %T", e.name, e.got, e.want)
}

// dynamicNode is the node variant backing FromResolverHandle: its
// factory receives the handle directly instead of a precomputed
// argument list, for lookups whose key is only known at runtime.
type dynamicNode struct {
	factory func(context.Context, *ResolverHandle) (any, error)
	origin  Origin
}

// resolverHandleMarker is a synthetic dependency name advertised by
// dynamicNode so analysis knows this node needs the live resolver, not
// a Design binding — it never corresponds to an actual key and the
// analyzer must not try to resolve it like one.
const resolverHandleMarker = "__resolver__"

func (n *dynamicNode) deps() depSet    { return depSet{} }
func (n *dynamicNode) dynDeps() depSet { return newDepSet(resolverHandleMarker) }
func (n *dynamicNode) origin() Origin  { return n.origin }
func (n *dynamicNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	handle := &ResolverHandle{r: env.resolver, trace: env.trace}
	return n.factory(ctx, handle)
}

// FromResolverHandle builds an Injected whose provider receives a
// ResolverHandle instead of resolved arguments, for bindings whose
// dependency key is computed at runtime (spec §3's resolver dynamic
// dependency; spec §4.2's WithDynamicDeps/Conditional cover the cases
// where both possible keys are known ahead of time, this covers the
// case where they are not).
func FromResolverHandle[T any](factory func(context.Context, *ResolverHandle) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	return wrap[T](&dynamicNode{
		factory: func(ctx context.Context, h *ResolverHandle) (any, error) {
			return factory(ctx, h)
		},
		origin: origin,
	})
}
