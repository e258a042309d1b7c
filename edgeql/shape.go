package edgeql

import (
	"fmt"

	"github.com/gelq/gelq/schema"
)

// ShapeFunc builds a shape inside a scoped construct's callback.
type ShapeFunc func(*Scope) *Shape

// FieldKind tags one entry of a shape's ordered field list.
type FieldKind int

const (
	// FieldInclude selects an existing pointer as-is.
	FieldInclude FieldKind = iota
	// FieldComputed introduces a computed field: name := expr.
	FieldComputed
	// FieldNested selects a link with its own sub-shape.
	FieldNested
	// FieldPoly selects pointers of a subtype: [is T].name.
	FieldPoly
	// FieldLinkProp selects a link property: @name.
	FieldLinkProp
)

// ShapeField is one entry of the ordered field list.
type ShapeField struct {
	name  string
	kind  FieldKind
	expr  Expr
	build ShapeFunc
	shape *Shape
	scope *Scope
	poly  *schema.ObjectType
	ptr   *schema.Pointer
}

func (f *ShapeField) Name() string              { return f.name }
func (f *ShapeField) Kind() FieldKind           { return f.kind }
func (f *ShapeField) Expr() Expr                { return f.expr }
func (f *ShapeField) Shape() *Shape             { return f.shape }
func (f *ShapeField) Scope() *Scope             { return f.scope }
func (f *ShapeField) Poly() *schema.ObjectType  { return f.poly }
func (f *ShapeField) Pointer() *schema.Pointer  { return f.ptr }

// Shape is an ordered field list plus the clause slots of a
// statement. Fields and clauses travel separately, so a field named
// "filter" never collides with the filter clause. A shape is a builder
// until a statement attaches it; after that it is frozen and any
// further mutation panics.
type Shape struct {
	frozen bool
	bound  bool

	fields       []*ShapeField
	filter       Expr
	filterSingle Expr
	orderBy      []Ordering
	offset       Expr
	limit        Expr
	by           []Expr
	sets         []*ShapeField
}

// NewShape starts an empty shape.
func NewShape() *Shape { return &Shape{} }

func (s *Shape) mut() {
	if s.frozen {
		panic("edgeql: shape modified after being attached to a statement")
	}
}

// Field includes an existing pointer as-is.
func (s *Shape) Field(name string) *Shape {
	s.mut()
	s.fields = append(s.fields, &ShapeField{name: name, kind: FieldInclude})
	return s
}

// Fields includes several pointers as-is.
func (s *Shape) Fields(names ...string) *Shape {
	for _, n := range names {
		s.Field(n)
	}
	return s
}

// Exclude removes a previously added field. Excluding a field that is
// not present panics: it is a typo, not a request.
func (s *Shape) Exclude(name string) *Shape {
	s.mut()
	for i, f := range s.fields {
		if f.name == name {
			s.fields = append(s.fields[:i:i], s.fields[i+1:]...)
			return s
		}
	}
	panic(fmt.Sprintf("edgeql: Exclude(%q): no such field in shape", name))
}

// Compute adds a computed field: name := expr.
func (s *Shape) Compute(name string, v any) *Shape {
	s.mut()
	if !validIdent(name) {
		raise(TypeMismatch, "computed field name %q is not an identifier", name)
	}
	s.fields = append(s.fields, &ShapeField{name: name, kind: FieldComputed, expr: toExpr(v)})
	return s
}

// Nested selects a link with its own sub-shape. The callback runs when
// the statement binds the shape, once the link's target type is known.
func (s *Shape) Nested(name string, build ShapeFunc) *Shape {
	s.mut()
	if build == nil {
		panic("edgeql: Nested with nil shape callback")
	}
	s.fields = append(s.fields, &ShapeField{name: name, kind: FieldNested, build: build})
	return s
}

// Poly includes pointers declared on a subtype: [is T].name.
func (s *Shape) Poly(t *schema.ObjectType, names ...string) *Shape {
	s.mut()
	if t == nil {
		panic("edgeql: Poly with nil object type")
	}
	if len(names) == 0 {
		panic("edgeql: Poly with no field names")
	}
	for _, n := range names {
		s.fields = append(s.fields, &ShapeField{name: n, kind: FieldPoly, poly: t})
	}
	return s
}

// LinkProp includes a link property: @name. Valid only in nested
// shapes reached through a link.
func (s *Shape) LinkProp(name string) *Shape {
	s.mut()
	s.fields = append(s.fields, &ShapeField{name: name, kind: FieldLinkProp})
	return s
}

// Filter sets the filter clause.
func (s *Shape) Filter(v any) *Shape {
	s.mut()
	if s.filter != nil {
		panic("edgeql: filter already set")
	}
	e := toExpr(v)
	if !e.Type().same(BoolType) {
		raise(TypeMismatch, "filter is %s, want std::bool", typeNameOf(e))
	}
	s.filter = e
	return s
}

// FilterSingle sets the filter clause and asserts the result has at
// most one element. The assertion is checked by the remote at
// execution time; statically it only narrows the inferred cardinality.
func (s *Shape) FilterSingle(v any) *Shape {
	s.mut()
	if s.filterSingle != nil {
		panic("edgeql: filter_single already set")
	}
	e := toExpr(v)
	if !e.Type().same(BoolType) {
		raise(TypeMismatch, "filter_single is %s, want std::bool", typeNameOf(e))
	}
	s.filterSingle = e
	return s
}

// OrderBy appends ordering keys.
func (s *Shape) OrderBy(ords ...Ordering) *Shape {
	s.mut()
	s.orderBy = append(s.orderBy, ords...)
	return s
}

// Offset sets the offset clause.
func (s *Shape) Offset(v any) *Shape {
	s.mut()
	if s.offset != nil {
		panic("edgeql: offset already set")
	}
	s.offset = requireInteger("offset", v)
	return s
}

// Limit sets the limit clause.
func (s *Shape) Limit(v any) *Shape {
	s.mut()
	if s.limit != nil {
		panic("edgeql: limit already set")
	}
	s.limit = requireInteger("limit", v)
	return s
}

// Set adds a value entry: name := expr. Insert shapes are made of
// these; update shapes carry them in the set clause.
func (s *Shape) Set(name string, v any) *Shape {
	s.mut()
	for _, f := range s.sets {
		if f.name == name {
			panic(fmt.Sprintf("edgeql: %q set twice", name))
		}
	}
	s.sets = append(s.sets, &ShapeField{name: name, kind: FieldComputed, expr: toExpr(v)})
	return s
}

// By sets the grouping keys of a group statement.
func (s *Shape) By(keys ...any) *Shape {
	s.mut()
	if len(s.by) > 0 {
		panic("edgeql: by already set")
	}
	if len(keys) == 0 {
		panic("edgeql: By with no keys")
	}
	s.by = append(s.by, toExprs(keys)...)
	return s
}

func requireInteger(clause string, v any) Expr {
	e := toExpr(v)
	if !isInteger(e.Type()) {
		raise(TypeMismatch, "%s is %s, want an integer", clause, typeNameOf(e))
	}
	return e
}

// Accessors used by the compiler.

func (s *Shape) FieldList() []*ShapeField { return s.fields }
func (s *Shape) FilterExpr() Expr         { return s.filter }
func (s *Shape) FilterSingleExpr() Expr   { return s.filterSingle }
func (s *Shape) OrderList() []Ordering    { return s.orderBy }
func (s *Shape) OffsetExpr() Expr         { return s.offset }
func (s *Shape) LimitExpr() Expr          { return s.limit }
func (s *Shape) ByList() []Expr           { return s.by }
func (s *Shape) SetList() []*ShapeField   { return s.sets }

// OrderDir is an ordering direction.
type OrderDir int

const (
	Ascending OrderDir = iota
	Descending
)

// EmptiesPlacement positions empty values in an ordering.
type EmptiesPlacement int

const (
	EmptiesDefault EmptiesPlacement = iota
	EmptiesFirst
	EmptiesLast
)

// Ordering is one order_by key with its direction and empty-value
// placement.
type Ordering struct {
	key     Expr
	dir     OrderDir
	empties EmptiesPlacement
}

// Asc orders ascending by key.
func Asc(v any) Ordering { return newOrdering(v, Ascending) }

// Desc orders descending by key.
func Desc(v any) Ordering { return newOrdering(v, Descending) }

func newOrdering(v any, dir OrderDir) Ordering {
	e := toExpr(v)
	if e.Type().Kind() == KindObject {
		raise(TypeMismatch, "cannot order by %s", typeNameOf(e))
	}
	return Ordering{key: e, dir: dir}
}

// WithEmptiesFirst places empty values before all others.
func (o Ordering) WithEmptiesFirst() Ordering {
	o.empties = EmptiesFirst
	return o
}

// WithEmptiesLast places empty values after all others.
func (o Ordering) WithEmptiesLast() Ordering {
	o.empties = EmptiesLast
	return o
}

func (o Ordering) Key() Expr                 { return o.key }
func (o Ordering) Dir() OrderDir             { return o.dir }
func (o Ordering) Empties() EmptiesPlacement { return o.empties }
