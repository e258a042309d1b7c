package edgeql

import "github.com/gelq/gelq/schema"

// commonType folds element types left to right, widening numerics,
// accepting object subtypes, and falling back to the nearest common
// ancestor for sibling object types. Incompatible elements are the
// TypeMismatch construction error.
func commonType(what string, elems []Expr) Type {
	t := elems[0].Type()
	for _, e := range elems[1:] {
		et := e.Type()
		if t.assignableFrom(et) {
			continue
		}
		if et.assignableFrom(t) {
			t = et
			continue
		}
		if p, ok := promote(t, et); ok {
			t = p
			continue
		}
		if t.kind == KindObject && et.kind == KindObject {
			if anc, ok := commonAncestor(t.obj, et.obj); ok {
				t = ObjectTypeOf(anc)
				continue
			}
		}
		raise(TypeMismatch, "%s mixes %s and %s", what, t.Name(), et.Name())
	}
	return t
}

func commonAncestor(a, b *schema.ObjectType) (*schema.ObjectType, bool) {
	for _, anc := range ancestorsOf(a) {
		if b.Is(anc) {
			return anc, true
		}
	}
	return nil, false
}

func ancestorsOf(t *schema.ObjectType) []*schema.ObjectType {
	out := []*schema.ObjectType{t}
	for _, b := range t.Bases() {
		out = append(out, ancestorsOf(b)...)
	}
	return out
}

// Set builds a set literal {a, b, c}. Elements must share a common
// type. Plain Go values are coerced to literals.
func Set(elems ...any) *SetExpr {
	if len(elems) == 0 {
		raise(TypeMismatch, "empty set needs an explicit element type; use EmptySet")
	}
	es := toExprs(elems)
	t := commonType("set literal", es)
	card := Empty
	for _, e := range es {
		card = card.add(e.Cardinality())
	}
	return &SetExpr{exprBase: newBase(t, card, es...), elems: es}
}

// EmptySet builds the typed empty set <t>{}.
func EmptySet(t Type) *SetExpr {
	return &SetExpr{exprBase: newBase(t, Empty)}
}

// Array builds an array literal [a, b, c].
func Array(elems ...any) *ArrayExpr {
	if len(elems) == 0 {
		raise(TypeMismatch, "empty array needs an explicit element type; use EmptyArray")
	}
	es := toExprs(elems)
	t := commonType("array literal", es)
	card := One
	for _, e := range es {
		card = card.cross(e.Cardinality())
	}
	return &ArrayExpr{exprBase: newBase(ArrayOf(t), card, es...), elems: es}
}

// EmptyArray builds the typed empty array <array<t>>[].
func EmptyArray(elem Type) *ArrayExpr {
	return &ArrayExpr{exprBase: newBase(ArrayOf(elem), One)}
}

// Tuple builds a positional tuple literal (a, b, c).
func Tuple(elems ...any) *TupleExpr {
	if len(elems) == 0 {
		raise(TypeMismatch, "tuple literal needs at least one element")
	}
	es := toExprs(elems)
	fields := make([]TupleField, len(es))
	card := One
	for i, e := range es {
		fields[i] = TupleField{Type: e.Type()}
		card = card.cross(e.Cardinality())
	}
	return &TupleExpr{exprBase: newBase(Type{kind: KindTuple, fields: fields}, card, es...), elems: es}
}

// TupleElem names one element of a named tuple literal.
type TupleElem struct {
	Name string
	Val  any
}

// NamedTuple builds a named tuple literal (a := 1, b := 'x').
func NamedTuple(elems ...TupleElem) *TupleExpr {
	if len(elems) == 0 {
		raise(TypeMismatch, "tuple literal needs at least one element")
	}
	es := make([]Expr, len(elems))
	names := make([]string, len(elems))
	fields := make([]TupleField, len(elems))
	seen := make(map[string]bool, len(elems))
	card := One
	for i, el := range elems {
		if !validIdent(el.Name) {
			raise(TypeMismatch, "tuple field name %q is not an identifier", el.Name)
		}
		if seen[el.Name] {
			raise(TypeMismatch, "duplicate tuple field %q", el.Name)
		}
		seen[el.Name] = true
		e := toExpr(el.Val)
		es[i] = e
		names[i] = el.Name
		fields[i] = TupleField{Name: el.Name, Type: e.Type()}
		card = card.cross(e.Cardinality())
	}
	return &TupleExpr{
		exprBase: newBase(Type{kind: KindTuple, fields: fields}, card, es...),
		elems:    es,
		names:    names,
	}
}

// Cast renders <t>expr. Cross-kind casts are left to the remote's cast
// table; construction only rejects casting to an invalid descriptor.
func Cast(to Type, v any) *CastExpr {
	if !to.valid() {
		raise(TypeMismatch, "cast to invalid type")
	}
	e := toExpr(v)
	return &CastExpr{exprBase: newBase(to, e.Cardinality(), e), to: to, arg: e}
}
