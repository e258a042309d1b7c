package edgeql

// Children returns a node's direct children in deterministic clause
// order. Scope bindings are leaves: their subject belongs to the
// statement that minted them, and nested shape subjects render as the
// field name rather than as a path.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *SetExpr:
		return n.elems
	case *ArrayExpr:
		return n.elems
	case *TupleExpr:
		return n.elems
	case *CastExpr:
		return []Expr{n.arg}
	case *OpExpr:
		return n.args
	case *FuncExpr:
		return n.args
	case *PathExpr:
		return []Expr{n.src}
	case *BacklinkExpr:
		return []Expr{n.src}
	case *TypeIntersection:
		return []Expr{n.src}
	case *AliasExpr:
		return []Expr{n.base}
	case *DetachedExpr:
		return []Expr{n.base}
	case *WithExpr:
		return append(append([]Expr(nil), n.bindings...), n.body)
	case *ParamsExpr:
		return []Expr{n.body}
	case *SelectExpr:
		return append([]Expr{n.subject}, walkShape(n.shape)...)
	case *InsertExpr:
		out := walkShape(n.shape)
		if n.conflictElse != nil {
			out = append(out, n.conflictElse)
		}
		return out
	case *UpdateExpr:
		return append([]Expr{n.subject}, walkShape(n.shape)...)
	case *DeleteExpr:
		return append([]Expr{n.subject}, walkShape(n.shape)...)
	case *ForExpr:
		return []Expr{n.set, n.body}
	case *GroupExpr:
		return append([]Expr{n.subject}, walkShape(n.shape)...)
	}
	return nil
}

func walkShape(sh *Shape) []Expr {
	if sh == nil {
		return nil
	}
	var out []Expr
	for _, f := range sh.fields {
		switch f.kind {
		case FieldComputed:
			out = append(out, f.expr)
		case FieldNested:
			out = append(out, walkShape(f.shape)...)
		}
	}
	if sh.filter != nil {
		out = append(out, sh.filter)
	}
	if sh.filterSingle != nil {
		out = append(out, sh.filterSingle)
	}
	for _, o := range sh.orderBy {
		out = append(out, o.key)
	}
	if sh.offset != nil {
		out = append(out, sh.offset)
	}
	if sh.limit != nil {
		out = append(out, sh.limit)
	}
	out = append(out, sh.by...)
	for _, f := range sh.sets {
		out = append(out, f.expr)
	}
	return out
}

// Walk calls fn for e and every node reachable from it, parent before
// children. Shared nodes are visited at every occurrence.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// FreeScopes returns the scope bindings occurring free in e, outermost
// introduction first. The slice is shared; callers must not mutate it.
func FreeScopes(e Expr) []*Scope { return e.freeScopes() }

// ClaimedBy reports the With construct that claimed e as one of its
// bindings, or nil if no With has claimed it.
func ClaimedBy(e Expr) *WithExpr { return e.claimable().owner }
