package injected

import "context"

// This file is the Go analogue of the teacher's executor_generated.go
// Derive1..Derive9 boilerplate: since Go has no variadic generics,
// Injected.from_function's dynamic kwarg-matching-by-parameter-name is
// replaced with explicit, typed, arity-specific constructors. Each one
// takes its dependencies positionally and a factory function over the
// resolved values.

type fromFunctionNode struct {
	srcs   []node
	call   func(context.Context, []any) (any, error)
	origin Origin
}

func (n *fromFunctionNode) deps() depSet {
	sets := make([]depSet, len(n.srcs))
	for i, s := range n.srcs {
		sets[i] = s.deps()
	}
	return unionDepSets(sets...)
}

func (n *fromFunctionNode) dynDeps() depSet {
	sets := make([]depSet, len(n.srcs))
	for i, s := range n.srcs {
		sets[i] = s.dynDeps()
	}
	return unionDepSets(sets...)
}

func (n *fromFunctionNode) origin() Origin { return n.origin }

func (n *fromFunctionNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	vals, err := resolveConcurrently(ctx, env, n.srcs)
	if err != nil {
		return nil, err
	}
	return n.call(ctx, vals)
}

// Bind1 builds a dependency on d1, calling f with its resolved value.
func Bind1[T, D1 any](d1 Injected[D1], f func(context.Context, D1) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	return wrap[T](&fromFunctionNode{
		srcs: []node{d1.n},
		call: func(ctx context.Context, vs []any) (any, error) {
			return f(ctx, vs[0].(D1))
		},
		origin: origin,
	})
}

// Bind2 builds a dependency on d1 and d2, resolved concurrently.
func Bind2[T, D1, D2 any](d1 Injected[D1], d2 Injected[D2], f func(context.Context, D1, D2) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	return wrap[T](&fromFunctionNode{
		srcs: []node{d1.n, d2.n},
		call: func(ctx context.Context, vs []any) (any, error) {
			return f(ctx, vs[0].(D1), vs[1].(D2))
		},
		origin: origin,
	})
}

// Bind3 builds a dependency on d1, d2 and d3, resolved concurrently.
func Bind3[T, D1, D2, D3 any](d1 Injected[D1], d2 Injected[D2], d3 Injected[D3], f func(context.Context, D1, D2, D3) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	return wrap[T](&fromFunctionNode{
		srcs: []node{d1.n, d2.n, d3.n},
		call: func(ctx context.Context, vs []any) (any, error) {
			return f(ctx, vs[0].(D1), vs[1].(D2), vs[2].(D3))
		},
		origin: origin,
	})
}

// Bind4 builds a dependency on four sources, resolved concurrently.
func Bind4[T, D1, D2, D3, D4 any](d1 Injected[D1], d2 Injected[D2], d3 Injected[D3], d4 Injected[D4], f func(context.Context, D1, D2, D3, D4) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	return wrap[T](&fromFunctionNode{
		srcs: []node{d1.n, d2.n, d3.n, d4.n},
		call: func(ctx context.Context, vs []any) (any, error) {
			return f(ctx, vs[0].(D1), vs[1].(D2), vs[2].(D3), vs[3].(D4))
		},
		origin: origin,
	})
}

// Bind5 builds a dependency on five sources, resolved concurrently.
func Bind5[T, D1, D2, D3, D4, D5 any](d1 Injected[D1], d2 Injected[D2], d3 Injected[D3], d4 Injected[D4], d5 Injected[D5], f func(context.Context, D1, D2, D3, D4, D5) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	return wrap[T](&fromFunctionNode{
		srcs: []node{d1.n, d2.n, d3.n, d4.n, d5.n},
		call: func(ctx context.Context, vs []any) (any, error) {
			return f(ctx, vs[0].(D1), vs[1].(D2), vs[2].(D3), vs[3].(D4), vs[4].(D5))
		},
		origin: origin,
	})
}

// FromFunctionN is the general, slice-indexed counterpart of Bind1..5 for
// callers that build dependency lists dynamically rather than at a
// fixed arity: deps supplies the resolved values as a slice, in order,
// to f.
func FromFunctionN[T any](deps []AnyInjected, f func(context.Context, []any) (T, error)) Injected[T] {
	origin := captureOrigin(1)
	nodes := make([]node, len(deps))
	for i, d := range deps {
		nodes[i] = d.anyNode()
	}
	return wrap[T](&fromFunctionNode{
		srcs: nodes,
		call: func(ctx context.Context, vs []any) (any, error) {
			return f(ctx, vs)
		},
		origin: origin,
	})
}
