// Package edgeql builds immutable EdgeQL expression trees in memory.
//
// Nodes are created by typed constructors, validated at construction
// time, and never mutated afterwards; a node may be embedded under any
// number of parents, and node identity (not structure) is what the
// compiler uses to decide which subexpressions are shared. Rendering
// to query text lives in the compile subpackage.
package edgeql

import (
	"github.com/gelq/gelq/schema"
)

// Expr is an immutable expression node. The concrete node types all
// live in this package; Expr is sealed by the unexported marker.
type Expr interface {
	// Type returns the cached static type descriptor.
	Type() Type
	// Cardinality returns the statically inferred multiplicity class.
	Cardinality() Cardinality

	exprNode()
	freeScopes() []*Scope
	claimable() *claimState
}

// exprBase carries the per-node metadata every expression has: its
// static type, its cardinality class, the scope bindings occurring
// free in its subtree, and the one-shot explicit-scoping claim slot.
type exprBase struct {
	typ   Type
	card  Cardinality
	free  []*Scope
	claim claimState
}

func (b *exprBase) Type() Type               { return b.typ }
func (b *exprBase) Cardinality() Cardinality { return b.card }
func (b *exprBase) exprNode()                {}
func (b *exprBase) freeScopes() []*Scope     { return b.free }
func (b *exprBase) claimable() *claimState   { return &b.claim }

// claimState records which explicit with() call, if any, claimed the
// node. It is construction bookkeeping, not part of the expression
// value.
type claimState struct {
	owner *WithExpr
}

// newBase validates child references and assembles the shared node
// metadata. Referencing a scope binding whose callback has already
// returned is the DanglingScopeReference construction error.
func newBase(typ Type, card Cardinality, children ...Expr) exprBase {
	return exprBase{typ: typ, card: card, free: unionScopes(children)}
}

func unionScopes(children []Expr) []*Scope {
	var free []*Scope
	for _, c := range children {
		if c == nil {
			continue
		}
		for _, s := range c.freeScopes() {
			if !s.open {
				raise(DanglingScopeReference,
					"scope binding over %s used outside the callback that introduced it", s.typ.Name())
			}
			if !containsScope(free, s) {
				free = append(free, s)
			}
		}
	}
	return free
}

func containsScope(set []*Scope, s *Scope) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

// subtractScope removes bindings a statement has just bound.
func subtractScope(set []*Scope, bound ...*Scope) []*Scope {
	var out []*Scope
	for _, s := range set {
		if !containsScope(bound, s) {
			out = append(out, s)
		}
	}
	return out
}

// LiteralExpr is a scalar literal.
type LiteralExpr struct {
	exprBase
	val any
}

// Value returns the Go value the literal was built from.
func (e *LiteralExpr) Value() any { return e.val }

// SetExpr is a set literal: {a, b, c}.
type SetExpr struct {
	exprBase
	elems []Expr
}

func (e *SetExpr) Elems() []Expr { return e.elems }

// ArrayExpr is an array literal: [a, b, c].
type ArrayExpr struct {
	exprBase
	elems []Expr
}

func (e *ArrayExpr) Elems() []Expr { return e.elems }

// TupleExpr is a tuple literal, positional or named.
type TupleExpr struct {
	exprBase
	elems []Expr
	names []string
}

func (e *TupleExpr) Elems() []Expr   { return e.elems }
func (e *TupleExpr) Names() []string { return e.names }

// CastExpr renders as <type>expr.
type CastExpr struct {
	exprBase
	to  Type
	arg Expr
}

func (e *CastExpr) To() Type  { return e.to }
func (e *CastExpr) Arg() Expr { return e.arg }

// OpForm is the textual position of an operator.
type OpForm int

const (
	Prefix OpForm = iota
	Infix
	Ternary
)

// OpExpr is an operator application.
type OpExpr struct {
	exprBase
	op   string
	form OpForm
	args []Expr
}

func (e *OpExpr) Op() string   { return e.op }
func (e *OpExpr) Form() OpForm { return e.form }
func (e *OpExpr) Args() []Expr { return e.args }

// FuncExpr is a function call.
type FuncExpr struct {
	exprBase
	name string
	args []Expr
}

func (e *FuncExpr) Name() string { return e.name }
func (e *FuncExpr) Args() []Expr { return e.args }

// TypeSet references all objects of a schema type, e.g. default::Movie.
type TypeSet struct {
	exprBase
	obj *schema.ObjectType
}

func (e *TypeSet) ObjectType() *schema.ObjectType { return e.obj }

// PathExpr traverses a property or link: src.name, or @name for link
// properties inside nested shapes.
type PathExpr struct {
	exprBase
	src      Expr
	name     string
	ptr      *schema.Pointer
	linkProp bool
}

func (e *PathExpr) Src() Expr                { return e.src }
func (e *PathExpr) Name() string             { return e.name }
func (e *PathExpr) Pointer() *schema.Pointer { return e.ptr }
func (e *PathExpr) IsLinkProperty() bool     { return e.linkProp }

// Path extends the path with another step.
func (e *PathExpr) Path(names ...string) *PathExpr { return pathFrom(e, names) }

// BacklinkExpr traverses a link in reverse: src.<link[is Target].
type BacklinkExpr struct {
	exprBase
	src    Expr
	link   string
	target *schema.ObjectType
}

func (e *BacklinkExpr) Src() Expr                      { return e.src }
func (e *BacklinkExpr) Link() string                   { return e.link }
func (e *BacklinkExpr) Target() *schema.ObjectType     { return e.target }
func (e *BacklinkExpr) Path(names ...string) *PathExpr { return pathFrom(e, names) }

// TypeIntersection narrows an object expression: src[is Target].
type TypeIntersection struct {
	exprBase
	src    Expr
	target *schema.ObjectType
}

func (e *TypeIntersection) Src() Expr                      { return e.src }
func (e *TypeIntersection) Target() *schema.ObjectType     { return e.target }
func (e *TypeIntersection) Path(names ...string) *PathExpr { return pathFrom(e, names) }

// ParamExpr is a query parameter reference, rendered <type>$name.
type ParamExpr struct {
	exprBase
	name     string
	optional bool
}

func (e *ParamExpr) Name() string   { return e.name }
func (e *ParamExpr) Optional() bool { return e.optional }

// Scope is the binding a scoped construct passes to its callback: a
// placeholder for the element currently being iterated or selected.
// It is only valid inside the callback's dynamic extent.
type Scope struct {
	exprBase
	subject Expr
	via     *schema.Pointer
	open    bool
}

// Subject returns the expression the binding ranges over.
func (s *Scope) Subject() Expr { return s.subject }

// Via returns the link this binding was minted through, for nested
// shape scopes; nil otherwise.
func (s *Scope) Via() *schema.Pointer { return s.via }

// Path traverses from the current element.
func (s *Scope) Path(names ...string) *PathExpr { return pathFrom(s, names) }

func newScope(subject Expr, via *schema.Pointer) *Scope {
	elem := subject.Type()
	s := &Scope{subject: subject, via: via, open: true}
	s.exprBase = exprBase{typ: elem, card: One}
	s.free = []*Scope{s}
	return s
}

func (s *Scope) close() { s.open = false }

// AliasExpr is a deliberately fresh identity over an existing
// expression: it renders as its own preamble binding assigned from the
// base's binding, so the two names denote the same set without
// correlating element-wise.
type AliasExpr struct {
	exprBase
	base Expr
}

func (e *AliasExpr) Base() Expr { return e.base }

// DetachedExpr exempts its subtree from implicit correlation with any
// enclosing scope binding.
type DetachedExpr struct {
	exprBase
	base Expr
}

func (e *DetachedExpr) Base() Expr { return e.base }

// WithExpr forces its bindings to be hoisted at this position in the
// tree rather than bubbling to the outermost scope.
type WithExpr struct {
	exprBase
	bindings []Expr
	body     Expr
}

func (e *WithExpr) Bindings() []Expr { return e.bindings }
func (e *WithExpr) Body() Expr       { return e.body }

// ParamsExpr records a declared parameter set around a query body. It
// renders as its body; the declarations surface on the compiled query
// so the execution client can validate supplied arguments.
type ParamsExpr struct {
	exprBase
	decls []ParamDecl
	body  Expr
}

func (e *ParamsExpr) Decls() []ParamDecl { return e.decls }
func (e *ParamsExpr) Body() Expr         { return e.body }

// SelectExpr is a select statement.
type SelectExpr struct {
	exprBase
	subject Expr
	scope   *Scope
	shape   *Shape
}

func (e *SelectExpr) Subject() Expr { return e.subject }
func (e *SelectExpr) Scope() *Scope { return e.scope }
func (e *SelectExpr) Shape() *Shape { return e.shape }

// InsertExpr is an insert statement.
type InsertExpr struct {
	exprBase
	obj            *schema.ObjectType
	shape          *Shape
	unlessConflict bool
	conflictOn     string
	conflictElse   Expr
}

func (e *InsertExpr) ObjectType() *schema.ObjectType { return e.obj }
func (e *InsertExpr) Shape() *Shape                  { return e.shape }
func (e *InsertExpr) HasUnlessConflict() bool        { return e.unlessConflict }
func (e *InsertExpr) ConflictOn() string             { return e.conflictOn }
func (e *InsertExpr) ConflictElse() Expr             { return e.conflictElse }

// UpdateExpr is an update statement.
type UpdateExpr struct {
	exprBase
	subject Expr
	scope   *Scope
	shape   *Shape
}

func (e *UpdateExpr) Subject() Expr { return e.subject }
func (e *UpdateExpr) Scope() *Scope { return e.scope }
func (e *UpdateExpr) Shape() *Shape { return e.shape }

// DeleteExpr is a delete statement.
type DeleteExpr struct {
	exprBase
	subject Expr
	scope   *Scope
	shape   *Shape
}

func (e *DeleteExpr) Subject() Expr { return e.subject }
func (e *DeleteExpr) Scope() *Scope { return e.scope }
func (e *DeleteExpr) Shape() *Shape { return e.shape }

// ForExpr iterates a set and unions the body across elements.
type ForExpr struct {
	exprBase
	set   Expr
	scope *Scope
	body  Expr
}

func (e *ForExpr) Set() Expr     { return e.set }
func (e *ForExpr) Scope() *Scope { return e.scope }
func (e *ForExpr) Body() Expr    { return e.body }

// GroupExpr is a group statement.
type GroupExpr struct {
	exprBase
	subject Expr
	scope   *Scope
	shape   *Shape
}

func (e *GroupExpr) Subject() Expr { return e.subject }
func (e *GroupExpr) Scope() *Scope { return e.scope }
func (e *GroupExpr) Shape() *Shape { return e.shape }

var (
	_ Expr = (*LiteralExpr)(nil)
	_ Expr = (*SetExpr)(nil)
	_ Expr = (*ArrayExpr)(nil)
	_ Expr = (*TupleExpr)(nil)
	_ Expr = (*CastExpr)(nil)
	_ Expr = (*OpExpr)(nil)
	_ Expr = (*FuncExpr)(nil)
	_ Expr = (*TypeSet)(nil)
	_ Expr = (*PathExpr)(nil)
	_ Expr = (*BacklinkExpr)(nil)
	_ Expr = (*TypeIntersection)(nil)
	_ Expr = (*ParamExpr)(nil)
	_ Expr = (*Scope)(nil)
	_ Expr = (*AliasExpr)(nil)
	_ Expr = (*DetachedExpr)(nil)
	_ Expr = (*WithExpr)(nil)
	_ Expr = (*ParamsExpr)(nil)
	_ Expr = (*SelectExpr)(nil)
	_ Expr = (*InsertExpr)(nil)
	_ Expr = (*UpdateExpr)(nil)
	_ Expr = (*DeleteExpr)(nil)
	_ Expr = (*ForExpr)(nil)
	_ Expr = (*GroupExpr)(nil)
)

// toExpr coerces plain Go values into literal nodes so call sites can
// mix expressions and values the way the construction API documents.
func toExpr(v any) Expr {
	switch x := v.(type) {
	case Expr:
		return x
	case string:
		return Str(x)
	case bool:
		return Bool(x)
	case int:
		return Int64(int64(x))
	case int32:
		return Int32(x)
	case int64:
		return Int64(x)
	case float32:
		return Float32(x)
	case float64:
		return Float64(x)
	case []byte:
		return Bytes(x)
	case nil:
		raise(TypeMismatch, "nil is not an expression")
	}
	raise(TypeMismatch, "cannot use %T as an expression", v)
	return nil
}

func toExprs(vs []any) []Expr {
	out := make([]Expr, len(vs))
	for i, v := range vs {
		out[i] = toExpr(v)
	}
	return out
}

// typeNameOf is a diagnostic helper for error messages.
func typeNameOf(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.Type().Name()
}

func fmtTypes(args []Expr) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += typeNameOf(a)
	}
	return s
}
