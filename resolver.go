package injected

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Resolver drives resolution of Injected expressions against a Scope.
// It performs two passes per request: an analysis pass that walks the
// full static+dynamic dependency closure looking for missing bindings
// or cycles (recursive DFS, since the closure is a small, bounded
// graph of Design keys — spec §4.4 point 2), and an execution pass
// that resolves every key the analysis found, one after another in a
// plain loop over the analysis's topological order, rather than
// recursing through the chain of Design keys (spec §4.4 point 3).
type Resolver struct {
	scope *Scope
}

func newResolver(s *Scope) *Resolver {
	return &Resolver{scope: s}
}

// Child returns a new Resolver whose scope is a child of r's, with
// overrides shadowing r's bindings for the keys it declares.
func (r *Resolver) Child(overrides Design) *Resolver {
	return newResolver(r.scope.Child(overrides))
}

// Scope exposes the underlying Scope, e.g. for Events().
func (r *Resolver) Scope() *Scope { return r.scope }

// Resolve resolves i and type-asserts the result to T.
func Resolve[T any](ctx context.Context, r *Resolver, i Injected[T]) (T, error) {
	v, err := r.resolveAny(ctx, i.n, i.Dependencies(), i.DynamicDependencies())
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("injected: resolved value is %T, expected %T", v, zero)
	}
	return typed, nil
}

// ResolveByName resolves the Design key name as type T, equivalent to
// Resolve(ctx, r, ByName[T](name)).
func ResolveByName[T any](ctx context.Context, r *Resolver, name string) (T, error) {
	return Resolve(ctx, r, ByName[T](name))
}

func (r *Resolver) resolveAny(ctx context.Context, n node, staticDeps, dynDeps map[string]struct{}) (any, error) {
	roots := make([]string, 0, len(staticDeps)+len(dynDeps))
	for k := range staticDeps {
		roots = append(roots, k)
	}
	for k := range dynDeps {
		roots = append(roots, k)
	}

	if err := r.resolveNames(ctx, roots, nil); err != nil {
		return nil, err
	}

	env := &resolveEnv{resolver: r, scope: r.scope}
	return n.provide(ctx, env)
}

// resolveNames resolves every name in roots, and their transitive
// closure, within r's scope: analyze the closure for missing/cyclic
// failures, then execute it in topological order. Used both for the
// eager, whole-request walk a top-level Resolve call performs up
// front, and for the lazy, just-in-time walk a node's own provide
// triggers when it only discovers which keys it needs at execution
// time (ResolverHandle, the branch Conditional picks).
func (r *Resolver) resolveNames(ctx context.Context, roots []string, trace []string) error {
	order, failures := r.analyze(roots)
	if len(failures) > 0 {
		return classifyFailures(failures)
	}
	// A key on trace is one whose provider is still running further up
	// this call chain; needing it again here is a cycle.
	for _, name := range order {
		for _, t := range trace {
			if t == name {
				return cyclicDependencyError(name, trace)
			}
		}
	}
	for _, name := range order {
		if _, err := r.scope.resolveOne(ctx, r, name, append(append([]string{}, trace...), name)); err != nil {
			return err
		}
	}
	return nil
}

// analyze performs the recursive DFS closure walk. It returns a
// topologically sorted (dependencies before dependents) list of every
// Design key that must be resolved, and any missing/cyclic failures
// found. When failures is non-empty, order is meaningless.
func (r *Resolver) analyze(roots []string) (order []string, failures []*DependencyResolutionFailure) {
	state := map[string]int{} // 0 = unvisited, 1 = visiting, 2 = done
	var visit func(name string, trace []string)
	visit = func(name string, trace []string) {
		if name == resolverHandleMarker {
			// Synthetic: "this node needs the live resolver handle,"
			// not a Design key. Nothing to schedule or validate.
			state[name] = 2
			return
		}
		switch state[name] {
		case 2:
			return
		case 1:
			failures = append(failures, &DependencyResolutionFailure{
				Key:   name,
				Trace: append(append([]string{}, trace...), name),
				Cause: fmt.Errorf("cyclic dependency"),
			})
			return
		}
		b, ok := r.scope.design.lookup(name)
		if !ok {
			failures = append(failures, &DependencyResolutionFailure{
				Key:   name,
				Trace: append(append([]string{}, trace...), name),
				Cause: fmt.Errorf("no binding for %q", name),
			})
			state[name] = 2
			return
		}
		state[name] = 1
		nextTrace := append(append([]string{}, trace...), name)
		for dep := range b.Value.Dependencies() {
			visit(dep, nextTrace)
		}
		for dep := range b.Value.DynamicDependencies() {
			visit(dep, nextTrace)
		}
		state[name] = 2
		order = append(order, name)
	}
	for _, root := range roots {
		visit(root, nil)
	}
	return order, failures
}

func classifyFailures(failures []*DependencyResolutionFailure) error {
	for _, f := range failures {
		if f.Cause != nil && f.Cause.Error() == "cyclic dependency" {
			return cyclicDependencyError(f.Key, f.Trace[:len(f.Trace)-1])
		}
	}
	return missingDependenciesError(failures)
}

// DependencyNode is one node of the structured dependency description
// returned by DependencyTree (spec §9 Supplemented Feature 3, grounded
// on pinjected's dependency_graph_builder/dependency_graph_description:
// a data structure, not a renderer — visualization itself is out of
// scope).
type DependencyNode struct {
	Key      string
	Metadata BindMetadata
	Children []*DependencyNode
}

// DependencyTree describes the static dependency graph rooted at name,
// without resolving anything. It fails if name, or a key reached
// through static dependencies, is unbound or cyclic; dynamic
// dependencies are not walked.
func (r *Resolver) DependencyTree(name string) (*DependencyNode, error) {
	visited := map[string]bool{}
	var build func(key string, trace []string) (*DependencyNode, error)
	build = func(key string, trace []string) (*DependencyNode, error) {
		for _, t := range trace {
			if t == key {
				return nil, cyclicDependencyError(key, trace)
			}
		}
		b, ok := r.scope.design.lookup(key)
		if !ok {
			return nil, missingDependenciesError([]*DependencyResolutionFailure{{
				Key: key, Trace: append(append([]string{}, trace...), key), Cause: fmt.Errorf("no binding for %q", key),
			}})
		}
		node := &DependencyNode{Key: key, Metadata: b.Metadata}
		nextTrace := append(append([]string{}, trace...), key)
		deps := b.Value.Dependencies()
		for dep := range deps {
			if visited[key+"->"+dep] {
				continue
			}
			visited[key+"->"+dep] = true
			child, err := build(dep, nextTrace)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	}
	return build(name, nil)
}

// runConcurrent runs n independent tasks via errgroup, collecting
// results in order. Used, through resolveConcurrently, for the sources
// of a single node (MZip/Dict/FromFunction/Partial/Cache); the
// resolver's execution pass itself resolves Design keys one at a time
// (grounded on the x/sync/errgroup usage found across the example
// pack).
func runConcurrent(ctx context.Context, n int, task func(i int) (any, error)) ([]any, error) {
	results := make([]any, n)
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, err := task(i)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
