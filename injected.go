// Package injected implements a dependency-injection container in which
// object graphs are described as algebraic expressions (Injected) rather
// than as struct tags or reflection-driven wiring. See doc.go for an
// overview and SPEC_FULL.md for the full design.
package injected

import (
	"context"
	"fmt"
	"runtime"
)

// Origin identifies where an Injected node was constructed, for
// diagnostics (dependency_tree output, error messages). Captured with
// runtime.Caller at construction time.
type Origin struct {
	File     string
	Line     int
	Function string
}

func (o Origin) String() string {
	if o.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d (%s)", o.File, o.Line, o.Function)
}

func captureOrigin(skip int) Origin {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Origin{}
	}
	fn := runtime.FuncForPC(pc)
	name := "<unknown>"
	if fn != nil {
		name = fn.Name()
	}
	return Origin{File: file, Line: line, Function: name}
}

// depSet is the small set-of-names type used throughout for
// dependencies()/dynamicDependencies(). A map keeps union cheap and
// matches the Python source's set[str].
type depSet map[string]struct{}

func newDepSet(names ...string) depSet {
	s := make(depSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func unionDepSets(sets ...depSet) depSet {
	out := depSet{}
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s depSet) slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// resolveEnv is threaded through every node's provide call. It carries
// the scope (for ByName/dynamic lookups, which must go through the
// scope's memoization and singleflight machinery) and the trace of
// Design keys visited so far, used to render "a => b => c" paths in
// error messages and to detect cycles that surface only during
// execution (e.g. inside a Conditional branch).
type resolveEnv struct {
	resolver *Resolver
	scope    *Scope
	trace    []string
}

func (e *resolveEnv) withKey(name string) *resolveEnv {
	next := make([]string, len(e.trace)+1)
	copy(next, e.trace)
	next[len(e.trace)] = name
	return &resolveEnv{resolver: e.resolver, scope: e.scope, trace: next}
}

// node is the internal, type-erased representation of every Injected
// variant (Pure, ByName, FromFunction, Mapped, MZipped, Dict, Partial,
// WithDynamicDeps, Conditional, Cache, Evaled). Injected[T] is a thin,
// type-safe handle over a node, mirroring the teacher's
// Executor[T]/AnyExecutor split.
type node interface {
	deps() depSet
	dynDeps() depSet
	origin() Origin
	provide(ctx context.Context, env *resolveEnv) (any, error)
}

// AnyInjected is the type-erased view of an Injected[T], used wherever
// heterogeneous Injected values must be stored together (Design
// bindings, MZip/Dict/Tuple/List arguments, Partial targets).
type AnyInjected interface {
	Dependencies() map[string]struct{}
	DynamicDependencies() map[string]struct{}
	Origin() Origin

	anyNode() node
}

// Injected[T] is an algebraic expression that produces a T from named
// dependencies. It is immutable and its Dependencies()/
// DynamicDependencies() are pure functions of its fields (spec
// invariant: "dependencies() is stable for an instance").
type Injected[T any] struct {
	n node
}

func wrap[T any](n node) Injected[T] { return Injected[T]{n: n} }

func (i Injected[T]) Dependencies() map[string]struct{} { return toPublicSet(i.n.deps()) }

func (i Injected[T]) DynamicDependencies() map[string]struct{} { return toPublicSet(i.n.dynDeps()) }

func (i Injected[T]) Origin() Origin { return i.n.origin() }

func (i Injected[T]) anyNode() node { return i.n }

func toPublicSet(s depSet) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// provideTyped resolves i within env and type-asserts the result to T.
func provideTyped[T any](ctx context.Context, i Injected[T], env *resolveEnv) (T, error) {
	v, err := i.n.provide(ctx, env)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("injected: provider for %s returned %T, expected %T", i.n.origin(), v, zero)
	}
	return typed, nil
}

// ---- Pure ----

type pureNode struct {
	value  any
	origin Origin
}

func (n *pureNode) deps() depSet    { return depSet{} }
func (n *pureNode) dynDeps() depSet { return depSet{} }
func (n *pureNode) origin() Origin  { return n.origin }
func (n *pureNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	return n.value, nil
}

// Pure lifts a constant value into Injected, with no dependencies.
func Pure[T any](v T) Injected[T] {
	return wrap[T](&pureNode{value: v, origin: captureOrigin(1)})
}

// ---- ByName ----

type byNameNode struct {
	name   string
	origin Origin
}

func (n *byNameNode) deps() depSet    { return newDepSet(n.name) }
func (n *byNameNode) dynDeps() depSet { return depSet{} }
func (n *byNameNode) origin() Origin  { return n.origin }
func (n *byNameNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	return env.scope.cached(n.name)
}

// ByName resolves to the value bound at key name in the enclosing
// Design. T must match the type the binding actually produces; a
// mismatch surfaces as a runtime error from Resolve, not a panic.
func ByName[T any](name string) Injected[T] {
	return wrap[T](&byNameNode{name: name, origin: captureOrigin(1)})
}

type dynamicByNameNode struct {
	name   string
	origin Origin
}

func (n *dynamicByNameNode) deps() depSet    { return depSet{} }
func (n *dynamicByNameNode) dynDeps() depSet { return newDepSet(n.name) }
func (n *dynamicByNameNode) origin() Origin  { return n.origin }
func (n *dynamicByNameNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	return env.scope.cached(n.name)
}

// Dynamic is a variant of ByName kept for parity with spec.md's
// Injected.dynamic(name): unlike ByName, its name is advertised through
// DynamicDependencies rather than Dependencies. The resolver's analysis
// walks both sets up front, so an unbound name fails the resolution
// before any provider runs, exactly as with ByName, and the bound key
// is resolved eagerly rather than on first use.
func Dynamic[T any](name string) Injected[T] {
	return wrap[T](&dynamicByNameNode{name: name, origin: captureOrigin(1)})
}

// ---- Mapped ----

type mappedNode struct {
	src    node
	fn     func(context.Context, any) (any, error)
	origin Origin
}

func (n *mappedNode) deps() depSet    { return n.src.deps() }
func (n *mappedNode) dynDeps() depSet { return n.src.dynDeps() }
func (n *mappedNode) origin() Origin  { return n.origin }
func (n *mappedNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	v, err := n.src.provide(ctx, env)
	if err != nil {
		return nil, err
	}
	return n.fn(ctx, v)
}

// Map applies g, a func(A) (B, error), to the resolved value of i,
// wrapped into the async-style node the resolver expects, matching the
// teacher's sync-wrapping of Executor factories. MapValue takes the
// plain func(A) B form.
func Map[A, B any](i Injected[A], g func(A) (B, error)) Injected[B] {
	origin := captureOrigin(1)
	return wrap[B](&mappedNode{
		src: i.n,
		fn: func(ctx context.Context, v any) (any, error) {
			return g(v.(A))
		},
		origin: origin,
	})
}

// MapValue is Map for pure (non-erroring) transforms.
func MapValue[A, B any](i Injected[A], g func(A) B) Injected[B] {
	return Map(i, func(a A) (B, error) { return g(a), nil })
}

// ---- MZipped / Dict / Tuple / List ----

type mzipNode struct {
	srcs   []node
	origin Origin
}

func (n *mzipNode) deps() depSet {
	sets := make([]depSet, len(n.srcs))
	for i, s := range n.srcs {
		sets[i] = s.deps()
	}
	return unionDepSets(sets...)
}

func (n *mzipNode) dynDeps() depSet {
	sets := make([]depSet, len(n.srcs))
	for i, s := range n.srcs {
		sets[i] = s.dynDeps()
	}
	return unionDepSets(sets...)
}

func (n *mzipNode) origin() Origin { return n.origin }

func (n *mzipNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	return resolveConcurrently(ctx, env, n.srcs)
}

// MZip resolves every source concurrently and yields their values as a
// slice, in argument order. Zip2, Tuple and List reduce to it; Dict has
// its own node, which resolves its sources the same concurrent way.
func MZip(srcs ...AnyInjected) Injected[[]any] {
	nodes := make([]node, len(srcs))
	for i, s := range srcs {
		nodes[i] = s.anyNode()
	}
	return wrap[[]any](&mzipNode{srcs: nodes, origin: captureOrigin(1)})
}

// Zip2 resolves a and b concurrently and pairs their values.
func Zip2[A, B any](a Injected[A], b Injected[B]) Injected[Pair[A, B]] {
	return MapValue(MZip(a, b), func(vs []any) Pair[A, B] {
		return Pair[A, B]{First: vs[0].(A), Second: vs[1].(B)}
	})
}

// Pair is the tuple type Zip2 produces.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Tuple is an alias of MZip, matching spec.md's Injected.tuple(*x).
func Tuple(srcs ...AnyInjected) Injected[[]any] { return MZip(srcs...) }

// List is an alias of MZip, matching spec.md's Injected.list(*x).
func List(srcs ...AnyInjected) Injected[[]any] { return MZip(srcs...) }

type dictNode struct {
	keys   []string
	srcs   []node
	origin Origin
}

func (n *dictNode) deps() depSet {
	sets := make([]depSet, len(n.srcs))
	for i, s := range n.srcs {
		sets[i] = s.deps()
	}
	return unionDepSets(sets...)
}

func (n *dictNode) dynDeps() depSet {
	sets := make([]depSet, len(n.srcs))
	for i, s := range n.srcs {
		sets[i] = s.dynDeps()
	}
	return unionDepSets(sets...)
}

func (n *dictNode) origin() Origin { return n.origin }

func (n *dictNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	vals, err := resolveConcurrently(ctx, env, n.srcs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(n.keys))
	for i, k := range n.keys {
		out[k] = vals[i]
	}
	return out, nil
}

// Dict resolves every value in xs concurrently and yields a
// map[string]any keyed the same way, matching spec.md's
// Injected.dict(**xs).
func Dict(xs map[string]AnyInjected) Injected[map[string]any] {
	keys := make([]string, 0, len(xs))
	nodes := make([]node, 0, len(xs))
	for k, v := range xs {
		keys = append(keys, k)
		nodes = append(nodes, v.anyNode())
	}
	return wrap[map[string]any](&dictNode{keys: keys, srcs: nodes, origin: captureOrigin(1)})
}

// ---- WithDynamicDeps ----

type withDynamicDepsNode struct {
	src    node
	extra  depSet
	origin Origin
}

func (n *withDynamicDepsNode) deps() depSet    { return n.src.deps() }
func (n *withDynamicDepsNode) dynDeps() depSet { return unionDepSets(n.src.dynDeps(), n.extra) }
func (n *withDynamicDepsNode) origin() Origin  { return n.origin }
func (n *withDynamicDepsNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	return n.src.provide(ctx, env)
}

// AddDynamicDependencies returns an Injected with the same value as i
// but which additionally advertises names as dynamic dependencies, for
// analysis/ordering purposes (spec §4.2).
func AddDynamicDependencies[T any](i Injected[T], names ...string) Injected[T] {
	return wrap[T](&withDynamicDepsNode{src: i.n, extra: newDepSet(names...), origin: captureOrigin(1)})
}

// ---- Conditional ----

type conditionalNode struct {
	cond    node
	ifTrue  node
	ifFalse node
	origin  Origin
}

// conditionalNode's own dependency sets deliberately say nothing about
// either branch's *static* deps: only cond is known to be needed no
// matter what, so only cond.deps() is advertised statically. Each
// branch's dynamic deps are unioned in (mirroring pinjected's
// ConditionalInjected.dynamic_dependencies, which does the same), but
// never a branch's static deps — advertising those would make the
// resolver's top-level scheduler pre-resolve both branches before
// provide ever looks at cond, defeating the whole point of a
// conditional. The chosen branch's own dependency closure is instead
// discovered and resolved lazily, inside provide, through the
// Resolver's own resolveNames — the same lazy, scope-sharing path
// ResolverHandle uses for a runtime-computed key.
func (n *conditionalNode) deps() depSet { return n.cond.deps() }
func (n *conditionalNode) dynDeps() depSet {
	return unionDepSets(n.cond.dynDeps(), n.ifTrue.dynDeps(), n.ifFalse.dynDeps())
}
func (n *conditionalNode) origin() Origin { return n.origin }
func (n *conditionalNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	c, err := n.cond.provide(ctx, env)
	if err != nil {
		return nil, err
	}
	branch := n.ifFalse
	if c.(bool) {
		branch = n.ifTrue
	}
	roots := append(branch.deps().slice(), branch.dynDeps().slice()...)
	if err := env.resolver.resolveNames(ctx, roots, env.trace); err != nil {
		return nil, err
	}
	return branch.provide(ctx, env)
}

// Conditional dispatches to t or f depending on cond. The untaken
// branch's own provider never runs, and the Design keys it names as
// static dependencies are never looked up or scheduled. Keys that
// either branch advertises as dynamic dependencies are part of the
// Conditional's own dynamic dependencies, so they are analyzed and
// resolved up front whichever branch is taken.
func Conditional[T any](cond Injected[bool], t, f Injected[T]) Injected[T] {
	return wrap[T](&conditionalNode{cond: cond.n, ifTrue: t.n, ifFalse: f.n, origin: captureOrigin(1)})
}

// ---- Evaled ----

type evaledNode struct {
	value  node
	ast    *Expr
	origin Origin
}

func (n *evaledNode) deps() depSet    { return n.value.deps() }
func (n *evaledNode) dynDeps() depSet { return n.value.dynDeps() }
func (n *evaledNode) origin() Origin  { return n.origin }
func (n *evaledNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	return n.value.provide(ctx, env)
}

// Desync is an interop escape hatch: when T is itself awaitable in the
// host language this would synchronously await it. Go has no implicit
// awaitables, so Desync is the identity function; it exists so code
// ported from the Python source keeps the same call shape.
func Desync[T any](i Injected[T]) Injected[T] { return i }

// resolveConcurrently resolves every node in srcs using one goroutine
// each, returning their values in argument order or the first error
// encountered. It backs MZip/Dict/Zip2, FromFunction, Partial and
// Cache; the resolver's execution pass over Design keys is sequential.
func resolveConcurrently(ctx context.Context, env *resolveEnv, srcs []node) ([]any, error) {
	vals, err := runConcurrent(ctx, len(srcs), func(i int) (any, error) {
		return srcs[i].provide(ctx, env)
	})
	return vals, err
}
