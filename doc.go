// Package injected is a dependency-injection container built around a
// small algebra of deferred computations (Injected) instead of struct
// tags or constructor reflection.
//
// A Design is an immutable name -> binding map:
//
//	d := injected.NewDesign().
//		BindInstance("greeting", "hello").
//		BindInjected("shout", injected.Bind1(
//			injected.ByName[string]("greeting"),
//			func(ctx context.Context, g string) (string, error) {
//				return strings.ToUpper(g) + "!", nil
//			}))
//
// Resolving a Design produces a Resolver bound to a fresh Root Scope,
// which memoizes every key it resolves at most once:
//
//	r := d.ToResolver()
//	out, err := injected.ResolveByName[string](ctx, r, "shout")
//
// Child resolvers shadow individual keys without touching the parent's
// cache:
//
//	rc := r.Child(injected.NewDesign().BindInstance("greeting", "hi"))
//
// Injected values compose structurally: Map/MapValue transform a
// result, MZip/Tuple/List/Dict resolve several sources concurrently,
// Conditional picks a branch without evaluating the other, and Partial
// binds some of a function's parameters to the DI graph while leaving
// the rest for the caller to supply later. Var (proxy.go) lets callers
// build attribute/item/call/operator chains over Injected values and
// collapse them into a single Injected with Eval.
//
// Cache wraps a build step with a write-through, fingerprint-keyed
// cache over an AsyncDict, so the same "key ingredients" only trigger
// one concurrent build regardless of how many goroutines ask for it at
// once.
//
// Every provider run for a Design key, successful or not, is reported
// through the Scope's EventDistributor (Scope.Events); missing or cyclic
// keys found by the up-front analysis are returned as errors without
// any event. The distributor replays its full history to
// any subscriber registered after the fact, so observability never
// depends on subscribe-before-resolve ordering.
package injected
