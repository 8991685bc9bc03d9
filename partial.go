package injected

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// reflectCall invokes fn (any func value) with args, used by proxy.go
// to replay the accessor/combine/call closures captured while building
// a Var's AST. Go cannot recover a function's parameter names at
// runtime, so unlike pinjected's args_modifier this never attempts
// name-based matching: args are always applied positionally, and a
// mismatch panics (reflect.Value.Call's own panic) rather than
// returning an error, since this path only runs against
// closures this package itself constructed.
func reflectCall(fn any, args ...any) any {
	fv := reflect.ValueOf(fn)
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}
	out := fv.Call(in)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0].Interface()
	default:
		vals := make([]any, len(out))
		for i, o := range out {
			vals[i] = o.Interface()
		}
		return vals
	}
}

// partialNode backs Injected.Partial: some of f's parameters are bound
// by the DI graph (targets, resolved like any other dependency and
// always passed first, as "hidden kwargs" per spec §9 Supplemented
// Feature 6's resolution of the dual-path cache bug: injected
// arguments are never positionally forwarded by the caller), the rest
// are supplied by the caller when the resulting function is invoked.
type partialNode struct {
	fn       reflect.Value
	fnType   reflect.Type
	targets  []node // resolved first, in this order
	origin   Origin
	funcName string
}

func (n *partialNode) deps() depSet {
	sets := make([]depSet, len(n.targets))
	for i, t := range n.targets {
		sets[i] = t.deps()
	}
	return unionDepSets(sets...)
}

func (n *partialNode) dynDeps() depSet {
	sets := make([]depSet, len(n.targets))
	for i, t := range n.targets {
		sets[i] = t.dynDeps()
	}
	return unionDepSets(sets...)
}

func (n *partialNode) origin() Origin { return n.origin }

func (n *partialNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	bound, err := resolveConcurrently(ctx, env, n.targets)
	if err != nil {
		return nil, err
	}

	freeCount := n.fnType.NumIn() - len(bound)
	if freeCount < 0 {
		file, line := n.origin.File, n.origin.Line
		if fn := runtime.FuncForPC(n.fn.Pointer()); fn != nil {
			file, line = fn.FileLine(fn.Entry())
		}
		return nil, &SignatureMismatchError{
			Function: n.funcName, File: file, Line: line,
			Cause: fmt.Errorf("function takes %d argument(s), %d are DI-bound", n.fnType.NumIn(), len(bound)),
		}
	}

	closure := reflect.MakeFunc(reflect.FuncOf(
		paramTypes(n.fnType, len(bound)),
		resultTypes(n.fnType),
		n.fnType.IsVariadic(),
	), func(callArgs []reflect.Value) []reflect.Value {
		full := make([]reflect.Value, 0, n.fnType.NumIn())
		for _, b := range bound {
			full = append(full, reflect.ValueOf(b))
		}
		full = append(full, callArgs...)
		return n.fn.Call(full)
	})
	return closure.Interface(), nil
}

func paramTypes(t reflect.Type, skip int) []reflect.Type {
	out := make([]reflect.Type, 0, t.NumIn()-skip)
	for i := skip; i < t.NumIn(); i++ {
		out = append(out, t.In(i))
	}
	return out
}

func resultTypes(t reflect.Type) []reflect.Type {
	out := make([]reflect.Type, t.NumOut())
	for i := range out {
		out[i] = t.Out(i)
	}
	return out
}

// Partial binds some of f's leading parameters to targets (resolved by
// the DI graph, in order), returning an Injected over the remaining
// function G, whose free parameters the caller supplies when it
// invokes the result. F is f's own (full-arity) type; G is the
// reduced-arity function type the caller gets back, with len(targets)
// leading parameters of F removed — Go's type parameters cannot
// express "F minus its first N parameters" as a derived type, so
// callers instantiate both explicitly: Partial[func(int,int) int,
// func(int) int](f, dep). A signature mismatch (too many DI-bound
// targets for f's arity) surfaces as a SignatureMismatchError tagged
// with f's definition site, per spec §4.5.
func Partial[F, G any](f F, targets ...AnyInjected) Injected[G] {
	origin := captureOrigin(1)
	fv := reflect.ValueOf(f)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		panic("injected: Partial requires a function value")
	}
	nodes := make([]node, len(targets))
	for i, t := range targets {
		nodes[i] = t.anyNode()
	}
	n := &partialNode{
		fn: fv, fnType: ft, targets: nodes, origin: origin,
		funcName: runtimeFuncName(f),
	}
	return Injected[G]{n: n}
}

func runtimeFuncName(f any) string {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func {
		return "<not a func>"
	}
	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		return fn.Name()
	}
	return fmt.Sprintf("func(%s)", v.Type().String())
}
