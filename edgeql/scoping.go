package edgeql

// With forces each binding to be introduced as a named with-binding at
// this node's position instead of wherever occurrence counting would
// place it. Claiming a node that an earlier With already claimed is
// the MultiplyScopedExpression construction error.
func With(bindings []Expr, body Expr) *WithExpr {
	if body == nil {
		panic("edgeql: With with nil body")
	}
	if len(bindings) == 0 {
		panic("edgeql: With with no bindings")
	}
	for _, b := range bindings {
		if b == nil {
			panic("edgeql: With with nil binding")
		}
		switch b.(type) {
		case *Scope, *ParamExpr:
			panic("edgeql: with binding must be a computed expression")
		}
	}
	e := &WithExpr{bindings: bindings, body: body}
	children := append(append([]Expr(nil), bindings...), body)
	e.exprBase = newBase(body.Type(), body.Cardinality(), children...)
	for _, b := range bindings {
		c := b.claimable()
		if c.owner != nil {
			raise(MultiplyScopedExpression,
				"expression of type %s is already bound by another with", b.Type().Name())
		}
		c.owner = e
	}
	return e
}

// Alias mints a fresh identity over an expression. The alias always
// compiles to its own with-binding, so two aliases of the same set
// iterate independently where repeating the original symbol would
// correlate.
func Alias(v any) *AliasExpr {
	base := toExpr(v)
	e := &AliasExpr{base: base}
	e.exprBase = newBase(base.Type(), base.Cardinality(), base)
	return e
}

// Detached exempts a subtree from implicit correlation with any
// enclosing scope binding; it renders with a detached prefix.
// Detaching a scope binding denotes the binding's full object set, not
// the current element, so the binding itself is not carried along.
func Detached(v any) *DetachedExpr {
	base := toExpr(v)
	if s, ok := base.(*Scope); ok {
		if ts, ok := s.subject.(*TypeSet); ok {
			base = ts
		}
	}
	e := &DetachedExpr{base: base}
	e.exprBase = newBase(base.Type(), base.Cardinality(), base)
	return e
}
