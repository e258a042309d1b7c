package edgeql

import (
	"fmt"

	"github.com/gelq/gelq/schema"
)

// bindState tracks the scope bindings a statement mints while its
// callbacks run, so they can all be closed when construction finishes
// and subtracted from the statement's free set.
type bindState struct {
	minted []*Scope
}

func (b *bindState) mint(subject Expr, via *schema.Pointer) *Scope {
	s := newScope(subject, via)
	b.minted = append(b.minted, s)
	return s
}

func (b *bindState) closeAll() {
	for _, s := range b.minted {
		s.close()
	}
}

// stmtBase assembles statement metadata: the minted bindings are bound
// here and removed from the free set; any other closed binding
// reaching the statement is a dangling reference.
func stmtBase(typ Type, card Cardinality, minted []*Scope, children ...Expr) exprBase {
	var free []*Scope
	for _, c := range children {
		if c == nil {
			continue
		}
		for _, s := range c.freeScopes() {
			if containsScope(minted, s) {
				continue
			}
			if !s.open {
				raise(DanglingScopeReference,
					"scope binding over %s used outside the callback that introduced it", s.typ.Name())
			}
			if !containsScope(free, s) {
				free = append(free, s)
			}
		}
	}
	return exprBase{typ: typ, card: card, free: free}
}

// attach marks a shape as owned by a statement. A shape can only ever
// be attached once; afterwards it is frozen.
func attach(sh *Shape) {
	if sh.bound {
		panic("edgeql: shape already attached to a statement")
	}
	sh.bound = true
	sh.frozen = true
}

// resolveNested runs deferred nested-shape callbacks now that the
// subject type is known, minting one inner binding per nested link.
func resolveNested(b *bindState, subjType Type, sh *Shape, scope *Scope) {
	for _, f := range sh.fields {
		if f.kind != FieldNested {
			continue
		}
		obj := subjType.Object()
		if obj == nil {
			raise(UnknownMember, "type %s has no pointer %q", subjType.Name(), f.name)
		}
		ptr, ok := obj.Pointer(f.name)
		if !ok {
			raise(UnknownMember, "type %s has no pointer %q", subjType.Name(), f.name)
		}
		if ptr.Kind != schema.Link {
			raise(UnknownMember, "%s.%s is a property, not a link", subjType.Name(), f.name)
		}
		f.ptr = ptr
		inner := b.mint(pathStep(scope, f.name), ptr)
		f.scope = inner
		f.shape = f.build(inner)
		if f.shape == nil {
			panic(fmt.Sprintf("edgeql: nested shape callback for %q returned nil", f.name))
		}
		attach(f.shape)
		forbidClauses(f.shape, "nested shape", true)
		resolveNested(b, inner.Type(), f.shape, inner)
		validateFields(inner.Type(), f.shape, inner)
	}
}

// validateFields checks a shape's field list against the subject type.
func validateFields(subjType Type, sh *Shape, scope *Scope) {
	seen := make(map[string]bool)
	for _, f := range sh.fields {
		switch f.kind {
		case FieldInclude:
			if f.name != "id" {
				obj := subjType.Object()
				if obj == nil {
					raise(UnknownMember, "type %s has no pointer %q", subjType.Name(), f.name)
				}
				ptr, ok := obj.Pointer(f.name)
				if !ok {
					raise(UnknownMember, "type %s has no pointer %q", subjType.Name(), f.name)
				}
				f.ptr = ptr
			}
		case FieldPoly:
			if subjType.Object() == nil || !f.poly.Is(subjType.Object()) {
				raise(TypeMismatch, "[is %s] does not narrow %s", f.poly.FullName(), subjType.Name())
			}
			if _, ok := f.poly.Pointer(f.name); !ok {
				raise(UnknownMember, "type %s has no pointer %q", f.poly.FullName(), f.name)
			}
		case FieldLinkProp:
			if scope == nil || scope.via == nil {
				raise(UnknownMember, "@%s used outside a link's nested shape", f.name)
			}
			ptr, ok := scope.via.LinkProperty(f.name)
			if !ok {
				raise(UnknownMember, "link %q has no property %q", scope.via.Name, f.name)
			}
			f.ptr = ptr
		}
		key := f.name
		if f.kind == FieldPoly {
			key = f.poly.FullName() + "." + f.name
		}
		if f.kind == FieldLinkProp {
			key = "@" + f.name
		}
		if seen[key] {
			panic(fmt.Sprintf("edgeql: field %q appears twice in shape", key))
		}
		seen[key] = true
	}
}

// validateValues checks set entries (insert values, update set clause)
// against the target type.
func validateValues(t *schema.ObjectType, sh *Shape, op string) {
	for _, f := range sh.sets {
		ptr, ok := t.Pointer(f.name)
		if !ok {
			raise(UnknownMember, "type %s has no pointer %q", t.FullName(), f.name)
		}
		f.ptr = ptr
		var want Type
		if ptr.Kind == schema.Link {
			want = ObjectTypeOf(ptr.TargetObject())
		} else {
			want = LookupType(ptr.Target)
		}
		if !want.assignableFrom(f.expr.Type()) {
			raise(TypeMismatch, "%s %s.%s: cannot assign %s to %s",
				op, t.FullName(), f.name, f.expr.Type().Name(), want.Name())
		}
	}
}

func forbidClauses(sh *Shape, stmt string, allowFields bool) {
	if !allowFields && len(sh.fields) > 0 {
		panic(fmt.Sprintf("edgeql: shape fields are not valid in %s", stmt))
	}
	if len(sh.by) > 0 && stmt != "group" {
		panic(fmt.Sprintf("edgeql: by clause is not valid in %s", stmt))
	}
	if len(sh.sets) > 0 && stmt != "insert" && stmt != "update" {
		panic(fmt.Sprintf("edgeql: set entries are not valid in %s", stmt))
	}
	if sh.filterSingle != nil && stmt != "select" {
		panic(fmt.Sprintf("edgeql: filter_single is not valid in %s", stmt))
	}
	if stmt == "update" || stmt == "insert" || stmt == "group" {
		if sh.orderBy != nil || sh.offset != nil || sh.limit != nil {
			panic(fmt.Sprintf("edgeql: ordering clauses are not valid in %s", stmt))
		}
	}
	if stmt == "insert" && (sh.filter != nil || sh.filterSingle != nil) {
		panic("edgeql: filter is not valid in insert")
	}
}

func shapeExprs(sh *Shape) []Expr {
	if sh == nil {
		return nil
	}
	var out []Expr
	for _, f := range sh.fields {
		switch f.kind {
		case FieldComputed:
			out = append(out, f.expr)
		case FieldNested:
			out = append(out, f.scope.subject)
			out = append(out, shapeExprs(f.shape)...)
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

// filterCard applies the cardinality effect of the shape's clauses to
// a subject cardinality.
func filterCard(card Cardinality, sh *Shape) Cardinality {
	if sh == nil {
		return card
	}
	if sh.filter != nil {
		card = card.optional()
	}
	if sh.filterSingle != nil {
		card = card.optional().atMost(1)
	}
	if sh.offset != nil {
		card = card.optional()
	}
	if sh.limit != nil {
		if lit, ok := sh.limit.(*LiteralExpr); ok {
			if n, ok := lit.val.(int64); ok {
				card = card.atMost(int(n))
			} else {
				card = card.optional()
			}
		} else {
			card = card.optional()
		}
	}
	return card
}

// Select builds a select statement. With a callback, the callback
// receives the binding for the current element and returns the shape:
//
//	edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
//		return edgeql.NewShape().
//			Fields("title", "year").
//			Filter(edgeql.Op(m.Path("year"), ">", 1999))
//	})
//
// Without a callback it selects the expression bare.
func Select(subject any, build ...ShapeFunc) *SelectExpr {
	subj := toExpr(subject)
	var fn ShapeFunc
	switch len(build) {
	case 0:
	case 1:
		fn = build[0]
	default:
		panic("edgeql: Select takes at most one shape callback")
	}
	var (
		b     bindState
		scope *Scope
		sh    *Shape
	)
	if fn != nil {
		scope = b.mint(subj, nil)
		sh = fn(scope)
		if sh == nil {
			panic("edgeql: shape callback returned nil")
		}
		attach(sh)
		forbidClauses(sh, "select", true)
		if len(sh.fields) > 0 && subj.Type().Object() == nil {
			raise(TypeMismatch, "shape fields on non-object type %s", subj.Type().Name())
		}
		resolveNested(&b, subj.Type(), sh, scope)
		validateFields(subj.Type(), sh, scope)
	}
	b.closeAll()
	children := append([]Expr{subj}, shapeExprs(sh)...)
	card := filterCard(subj.Cardinality(), sh)
	e := &SelectExpr{subject: subj, scope: scope, shape: sh}
	e.exprBase = stmtBase(subj.Type(), card, b.minted, children...)
	return e
}

// Insert builds an insert statement. The shape holds one Set entry per
// pointer; there is no current-element binding because the values
// cannot see the object being created.
func Insert(t *schema.ObjectType, sh *Shape) *InsertExpr {
	if t == nil {
		panic("edgeql: Insert with nil object type")
	}
	if t.Abstract {
		raise(TypeMismatch, "cannot insert abstract type %s", t.FullName())
	}
	if sh == nil {
		sh = NewShape()
	}
	attach(sh)
	forbidClauses(sh, "insert", false)
	validateValues(t, sh, "insert")
	for _, ptr := range t.Pointers() {
		if !ptr.Required || ptr.HasDefault || ptr.Computed || ptr.Name == "id" {
			continue
		}
		found := false
		for _, f := range sh.sets {
			if f.name == ptr.Name {
				found = true
				break
			}
		}
		if !found {
			panic(fmt.Sprintf("edgeql: insert %s: missing required %q", t.FullName(), ptr.Name))
		}
	}
	e := &InsertExpr{obj: t, shape: sh}
	e.exprBase = stmtBase(ObjectTypeOf(t), One, nil, shapeExprs(sh)...)
	return e
}

// UnlessConflict derives an insert that silently skips when any
// exclusive constraint collides.
func (e *InsertExpr) UnlessConflict() *InsertExpr {
	out := &InsertExpr{obj: e.obj, shape: e.shape, unlessConflict: true}
	out.exprBase = exprBase{typ: e.typ, card: AtMostOne, free: e.free}
	return out
}

// UnlessConflictOn derives an insert with a conflict target and an
// optional else branch evaluated against the conflicting object.
func (e *InsertExpr) UnlessConflictOn(field string, elseExpr ...any) *InsertExpr {
	if _, ok := e.obj.Pointer(field); !ok {
		raise(UnknownMember, "type %s has no pointer %q", e.obj.FullName(), field)
	}
	out := &InsertExpr{obj: e.obj, shape: e.shape, unlessConflict: true, conflictOn: field}
	card := AtMostOne
	var free []*Scope
	free = append(free, e.free...)
	switch len(elseExpr) {
	case 0:
	case 1:
		els := toExpr(elseExpr[0])
		out.conflictElse = els
		lo, hi := els.Cardinality().bounds()
		card = fromBounds(minBound(1, lo), maxBound(1, hi))
		for _, s := range els.freeScopes() {
			if !s.open {
				raise(DanglingScopeReference,
					"scope binding over %s used outside the callback that introduced it", s.typ.Name())
			}
			if !containsScope(free, s) {
				free = append(free, s)
			}
		}
	default:
		panic("edgeql: UnlessConflictOn takes at most one else expression")
	}
	out.exprBase = exprBase{typ: e.typ, card: card, free: free}
	return out
}

// Update builds an update statement; the shape carries the filter and
// the set entries.
func Update(subject any, fn func(*Scope) *Shape) *UpdateExpr {
	subj := toExpr(subject)
	if subj.Type().Object() == nil {
		raise(TypeMismatch, "update of non-object type %s", subj.Type().Name())
	}
	if fn == nil {
		panic("edgeql: Update with nil callback")
	}
	var b bindState
	scope := b.mint(subj, nil)
	sh := fn(scope)
	if sh == nil {
		panic("edgeql: shape callback returned nil")
	}
	attach(sh)
	forbidClauses(sh, "update", false)
	if len(sh.sets) == 0 {
		panic("edgeql: update with no set entries")
	}
	validateValues(subj.Type().Object(), sh, "update")
	b.closeAll()
	card := subj.Cardinality()
	if sh.filter != nil {
		card = card.optional()
	}
	children := append([]Expr{subj}, shapeExprs(sh)...)
	e := &UpdateExpr{subject: subj, scope: scope, shape: sh}
	e.exprBase = stmtBase(subj.Type(), card, b.minted, children...)
	return e
}

// Delete builds a delete statement. The optional callback supplies
// filter and ordering clauses; without it every object of the subject
// set is deleted.
func Delete(subject any, fn ...func(*Scope) *Shape) *DeleteExpr {
	subj := toExpr(subject)
	if subj.Type().Object() == nil {
		raise(TypeMismatch, "delete of non-object type %s", subj.Type().Name())
	}
	if len(fn) > 1 {
		panic("edgeql: Delete takes at most one callback")
	}
	var (
		b     bindState
		scope *Scope
		sh    *Shape
	)
	if len(fn) == 1 && fn[0] != nil {
		scope = b.mint(subj, nil)
		sh = fn[0](scope)
		if sh == nil {
			panic("edgeql: shape callback returned nil")
		}
		attach(sh)
		forbidClauses(sh, "delete", false)
	}
	b.closeAll()
	card := filterCard(subj.Cardinality(), sh)
	children := append([]Expr{subj}, shapeExprs(sh)...)
	e := &DeleteExpr{subject: subj, scope: scope, shape: sh}
	e.exprBase = stmtBase(subj.Type(), card, b.minted, children...)
	return e
}

// For iterates the set and unions the body evaluated per element.
func For(set any, body func(*Scope) Expr) *ForExpr {
	src := toExpr(set)
	if body == nil {
		panic("edgeql: For with nil body callback")
	}
	var b bindState
	scope := b.mint(src, nil)
	out := body(scope)
	if out == nil {
		panic("edgeql: For body returned nil")
	}
	b.closeAll()
	card := src.Cardinality().cross(out.Cardinality())
	e := &ForExpr{set: src, scope: scope, body: out}
	e.exprBase = stmtBase(out.Type(), card, b.minted, src, out)
	return e
}

// Group builds a group statement; the shape's By keys are required,
// and its fields describe the shape of the grouped elements.
func Group(subject any, fn func(*Scope) *Shape) *GroupExpr {
	subj := toExpr(subject)
	if subj.Type().Object() == nil {
		raise(TypeMismatch, "group of non-object type %s", subj.Type().Name())
	}
	if fn == nil {
		panic("edgeql: Group with nil callback")
	}
	var b bindState
	scope := b.mint(subj, nil)
	sh := fn(scope)
	if sh == nil {
		panic("edgeql: shape callback returned nil")
	}
	attach(sh)
	forbidClauses(sh, "group", true)
	if len(sh.by) == 0 {
		panic("edgeql: group with no by keys")
	}
	for _, k := range sh.by {
		if k.Type().Kind() == KindObject {
			raise(TypeMismatch, "cannot group by %s", k.Type().Name())
		}
	}
	resolveNested(&b, subj.Type(), sh, scope)
	validateFields(subj.Type(), sh, scope)
	b.closeAll()
	children := append([]Expr{subj}, shapeExprs(sh)...)
	e := &GroupExpr{subject: subj, scope: scope, shape: sh}
	e.exprBase = stmtBase(subj.Type(), Many, b.minted, children...)
	return e
}
