package injected

// ExprKind distinguishes the node kinds of the deferred-call AST built
// by Var[T] (spec §3's Expr/Proxy/DelegatedVar data model): attribute
// access, item access, function call, binary/unary operators, and an
// opaque object leaf. There is no await kind (see Desync).
type ExprKind int

const (
	ExprObject ExprKind = iota
	ExprAttr
	ExprItem
	ExprCall
	ExprBinOp
	ExprUnaryOp
)

// Expr is one node of the deferred-call AST that Var[T] builds up as
// its methods are chained, reified into an Injected only when Eval is
// called (spec invariant 6: two reifications of the same AST produce
// independently-cached Injected values).
type Expr struct {
	Kind ExprKind

	// ExprObject
	Object AnyInjected

	// ExprAttr / ExprItem
	Base *Expr
	Name string // attr name, or BinOp/UnaryOp operator symbol
	Item any    // ExprItem key

	// ExprCall
	Args []*Expr

	// ExprBinOp
	Left, Right *Expr
}

// Var[T] is a proxy over an Injected[T] (or an Expr under construction)
// that lets callers build attribute/item/call/operator chains without
// resolving anything, matching pinjected's DelegatedVar. Calling Eval
// collapses the whole chain into a single Injected via Evaled.
type Var[T any] struct {
	expr *Expr
}

// ProxyOf starts a Var chain from an existing Injected.
func ProxyOf[T any](i Injected[T]) *Var[T] {
	return &Var[T]{expr: &Expr{Kind: ExprObject, Object: i}}
}

// Attr builds a Var over a field/attribute access on v's value, read at
// resolution time via the accessor function supplied (Go has no
// generic reflective attribute access across arbitrary structs, so the
// accessor must be supplied explicitly rather than inferred from a
// string, unlike the Python source).
func Attr[T, R any](v *Var[T], name string, accessor func(T) R) *Var[R] {
	return &Var[R]{expr: &Expr{Kind: ExprAttr, Base: v.expr, Name: name, Args: []*Expr{
		{Kind: ExprObject, Object: Pure(accessor)},
	}}}
}

// Item builds a Var over indexing v's value by key, read at resolution time via
// the accessor function supplied.
func Item[T, K, R any](v *Var[T], key K, accessor func(T, K) R) *Var[R] {
	return &Var[R]{expr: &Expr{Kind: ExprItem, Base: v.expr, Item: key, Args: []*Expr{
		{Kind: ExprObject, Object: Pure(accessor)},
	}}}
}

// Call builds a Var representing invoking fn (the Expr of a Var over a
// func(Args...) R, typically produced by Partial) with args.
func Call[R any](fn *Expr, args ...*Expr) *Var[R] {
	return &Var[R]{expr: &Expr{Kind: ExprCall, Base: fn, Args: args}}
}

// binOp builds a Var representing applying op to left and right,
// evaluated via the combine function (Go has no operator overloading,
// so + - * / etc. are named methods below rather than literal
// operators, per spec §9 Supplemented Feature 1).
func binOp[A, B, R any](left *Var[A], op string, right *Var[B], combine func(A, B) R) *Var[R] {
	return &Var[R]{expr: &Expr{
		Kind: ExprBinOp, Name: op, Left: left.expr, Right: right.expr,
		Args: []*Expr{{Kind: ExprObject, Object: Pure(combine)}},
	}}
}

// Add builds a Var computing left+right via combine.
func Add[A, B, R any](left *Var[A], right *Var[B], combine func(A, B) R) *Var[R] {
	return binOp(left, "+", right, combine)
}

// Sub builds a Var computing left-right via combine.
func Sub[A, B, R any](left *Var[A], right *Var[B], combine func(A, B) R) *Var[R] {
	return binOp(left, "-", right, combine)
}

// Mul builds a Var computing left*right via combine.
func Mul[A, B, R any](left *Var[A], right *Var[B], combine func(A, B) R) *Var[R] {
	return binOp(left, "*", right, combine)
}

// Div builds a Var computing left/right via combine.
func Div[A, B, R any](left *Var[A], right *Var[B], combine func(A, B) R) *Var[R] {
	return binOp(left, "/", right, combine)
}

// Eq builds a Var computing left==right via combine.
func Eq[A, B any](left *Var[A], right *Var[B], combine func(A, B) bool) *Var[bool] {
	return binOp(left, "==", right, combine)
}

// Lt builds a Var computing left<right via combine.
func Lt[A, B any](left *Var[A], right *Var[B], combine func(A, B) bool) *Var[bool] {
	return binOp(left, "<", right, combine)
}

// Gt builds a Var computing left>right via combine.
func Gt[A, B any](left *Var[A], right *Var[B], combine func(A, B) bool) *Var[bool] {
	return binOp(left, ">", right, combine)
}

// Not builds a Var computing !v.
func Not(v *Var[bool]) *Var[bool] {
	return &Var[bool]{expr: &Expr{
		Kind: ExprUnaryOp, Name: "!", Base: v.expr,
		Args: []*Expr{{Kind: ExprObject, Object: Pure(func(b bool) bool { return !b })}},
	}}
}

// Eval reifies the Var's AST into a single Injected[T], collapsing any
// chain of Attr/Item/Call/BinOp nodes into one MZipped+Mapped compose
// step per spec §4.6's reification rule: Injected leaves within the
// AST are gathered and zipped, then the whole chain is replayed as a
// single pure function over their resolved values.
func (v *Var[T]) Eval() Injected[T] {
	leaves := map[*Expr]AnyInjected{}
	collectLeaves(v.expr, leaves)

	nodes := make([]AnyInjected, 0, len(leaves))
	index := map[*Expr]int{}
	for e, inj := range leaves {
		index[e] = len(nodes)
		nodes = append(nodes, inj)
	}

	zipped := MZip(nodes...)
	expr := v.expr
	origin := captureOrigin(1)
	composed := MapValue(zipped, func(vals []any) T {
		out := evalExpr(expr, index, vals)
		typed, _ := out.(T)
		return typed
	})
	return wrap[T](&evaledNode{value: composed.n, ast: expr, origin: origin})
}

func collectLeaves(e *Expr, out map[*Expr]AnyInjected) {
	if e == nil {
		return
	}
	if e.Kind == ExprObject {
		out[e] = e.Object
		return
	}
	collectLeaves(e.Base, out)
	collectLeaves(e.Left, out)
	collectLeaves(e.Right, out)
	for _, a := range e.Args {
		collectLeaves(a, out)
	}
}

func evalExpr(e *Expr, index map[*Expr]int, vals []any) any {
	if e.Kind == ExprObject {
		return vals[index[e]]
	}
	switch e.Kind {
	case ExprAttr:
		base := evalExpr(e.Base, index, vals)
		accessor := evalExpr(e.Args[0], index, vals)
		return reflectCall(accessor, base)
	case ExprItem:
		base := evalExpr(e.Base, index, vals)
		accessor := evalExpr(e.Args[0], index, vals)
		return reflectCall(accessor, base, e.Item)
	case ExprCall:
		fn := evalExpr(e.Base, index, vals)
		args := make([]any, len(e.Args))
		for i, a := range e.Args {
			args[i] = evalExpr(a, index, vals)
		}
		return callFunc(fn, args)
	case ExprBinOp:
		left := evalExpr(e.Left, index, vals)
		right := evalExpr(e.Right, index, vals)
		combine := evalExpr(e.Args[0], index, vals)
		return callCombine(combine, left, right)
	case ExprUnaryOp:
		base := evalExpr(e.Base, index, vals)
		combine := evalExpr(e.Args[0], index, vals)
		return callUnary(combine, base)
	}
	return nil
}

func callFunc(fn any, args []any) any {
	return reflectCall(fn, args...)
}

func callCombine(fn any, a, b any) any {
	return reflectCall(fn, a, b)
}

func callUnary(fn any, a any) any {
	return reflectCall(fn, a)
}
