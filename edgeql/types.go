package edgeql

import (
	"strings"

	"github.com/gelq/gelq/schema"
)

// TypeKind tags the shape of a static type descriptor.
type TypeKind int

const (
	KindScalar TypeKind = iota
	KindObject
	KindArray
	KindTuple
)

// Type is an immutable static type descriptor attached to every
// expression node. Scalars are identified by their qualified name,
// object types by their schema entry, and collections structurally.
type Type struct {
	kind   TypeKind
	name   string
	elem   *Type
	fields []TupleField
	obj    *schema.ObjectType
}

// TupleField is one element of a tuple type. Name is empty for
// positional tuples.
type TupleField struct {
	Name string
	Type Type
}

func scalar(name string) Type { return Type{kind: KindScalar, name: name} }

var (
	StrType              = scalar("std::str")
	BoolType             = scalar("std::bool")
	Int16Type            = scalar("std::int16")
	Int32Type            = scalar("std::int32")
	Int64Type            = scalar("std::int64")
	Float32Type          = scalar("std::float32")
	Float64Type          = scalar("std::float64")
	BigIntType           = scalar("std::bigint")
	DecimalType          = scalar("std::decimal")
	UUIDType             = scalar("std::uuid")
	JSONType             = scalar("std::json")
	BytesType            = scalar("std::bytes")
	DatetimeType         = scalar("std::datetime")
	DurationType         = scalar("std::duration")
	LocalDateType        = scalar("cal::local_date")
	LocalTimeType        = scalar("cal::local_time")
	LocalDatetimeType    = scalar("cal::local_datetime")
	RelativeDurationType = scalar("cal::relative_duration")
)

// ArrayOf builds an array type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{kind: KindArray, elem: &e}
}

// TupleOf builds a positional tuple type.
func TupleOf(elems ...Type) Type {
	fields := make([]TupleField, len(elems))
	for i, e := range elems {
		fields[i] = TupleField{Type: e}
	}
	return Type{kind: KindTuple, fields: fields}
}

// NamedTupleOf builds a named tuple type.
func NamedTupleOf(fields ...TupleField) Type {
	return Type{kind: KindTuple, fields: append([]TupleField(nil), fields...)}
}

// ObjectTypeOf wraps a schema object type as a descriptor.
func ObjectTypeOf(t *schema.ObjectType) Type {
	return Type{kind: KindObject, name: t.FullName(), obj: t}
}

func (t Type) Kind() TypeKind { return t.kind }

// Object returns the schema entry for object types, nil otherwise.
func (t Type) Object() *schema.ObjectType { return t.obj }

// Elem returns the element type of an array.
func (t Type) Elem() (Type, bool) {
	if t.kind != KindArray || t.elem == nil {
		return Type{}, false
	}
	return *t.elem, true
}

// Fields returns the tuple fields.
func (t Type) Fields() []TupleField { return t.fields }

// Name returns the EdgeQL spelling of the type, fully qualified.
func (t Type) Name() string {
	switch t.kind {
	case KindScalar, KindObject:
		return t.name
	case KindArray:
		if t.elem == nil {
			return "array"
		}
		return "array<" + t.elem.Name() + ">"
	case KindTuple:
		var b strings.Builder
		b.WriteString("tuple<")
		for i, f := range t.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			if f.Name != "" {
				b.WriteString(f.Name)
				b.WriteString(": ")
			}
			b.WriteString(f.Type.Name())
		}
		b.WriteString(">")
		return b.String()
	default:
		return "<invalid>"
	}
}

// zero type sentinel checks
func (t Type) valid() bool {
	return t.kind != KindScalar || t.name != ""
}

// same reports structural type equality. Object types compare by
// schema entry identity.
func (t Type) same(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindScalar:
		return t.name == other.name
	case KindObject:
		return t.obj == other.obj
	case KindArray:
		if t.elem == nil || other.elem == nil {
			return t.elem == other.elem
		}
		return t.elem.same(*other.elem)
	case KindTuple:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != other.fields[i].Name {
				return false
			}
			if !t.fields[i].Type.same(other.fields[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}

// assignableFrom reports whether a value of type other can appear
// where t is expected: structural equality, object subtyping, and the
// implicit numeric widenings the language performs.
func (t Type) assignableFrom(other Type) bool {
	if t.same(other) {
		return true
	}
	if t.kind == KindObject && other.kind == KindObject {
		return other.obj != nil && t.obj != nil && other.obj.Is(t.obj)
	}
	if t.kind == KindScalar && other.kind == KindScalar {
		return implicitCast(other.name, t.name)
	}
	if t.kind == KindArray && other.kind == KindArray && t.elem != nil && other.elem != nil {
		return t.elem.assignableFrom(*other.elem)
	}
	return false
}

var numericRank = map[string]int{
	"std::int16":   1,
	"std::int32":   2,
	"std::int64":   3,
	"std::float32": 4,
	"std::float64": 5,
	"std::bigint":  6,
	"std::decimal": 7,
}

func isNumeric(t Type) bool {
	return t.kind == KindScalar && numericRank[t.name] != 0
}

func isInteger(t Type) bool {
	switch t.name {
	case "std::int16", "std::int32", "std::int64", "std::bigint":
		return t.kind == KindScalar
	}
	return false
}

func isFloat(t Type) bool {
	return t.kind == KindScalar && (t.name == "std::float32" || t.name == "std::float64")
}

// implicitCast reports whether the language implicitly converts from
// one scalar to another: integer widening, integer to float, float
// widening, and integer to bigint/decimal.
func implicitCast(from, to string) bool {
	fr, fok := numericRank[from]
	tr, tok := numericRank[to]
	if !fok || !tok {
		return false
	}
	if fr == tr {
		return true
	}
	fromInt := fr <= 3
	toInt := tr <= 3
	switch {
	case fromInt && toInt:
		return fr < tr
	case fromInt:
		return true // int -> float/bigint/decimal
	case from == "std::float32" && (to == "std::float64" || to == "std::decimal"):
		return true
	case from == "std::float64" && to == "std::decimal":
		return true
	case from == "std::bigint" && to == "std::decimal":
		return true
	}
	return false
}

// promote picks the common numeric type of two operands, if any.
func promote(a, b Type) (Type, bool) {
	if !isNumeric(a) || !isNumeric(b) {
		return Type{}, false
	}
	if a.same(b) {
		return a, true
	}
	if implicitCast(a.name, b.name) {
		return b, true
	}
	if implicitCast(b.name, a.name) {
		return a, true
	}
	return Type{}, false
}

// scalarByName maps qualified scalar names to descriptors; used when
// resolving property targets from the schema.
var scalarByName = map[string]Type{}

func init() {
	for _, t := range []Type{
		StrType, BoolType, Int16Type, Int32Type, Int64Type,
		Float32Type, Float64Type, BigIntType, DecimalType,
		UUIDType, JSONType, BytesType, DatetimeType, DurationType,
		LocalDateType, LocalTimeType, LocalDatetimeType, RelativeDurationType,
	} {
		scalarByName[t.name] = t
	}
}

// LookupType resolves a type name to a descriptor. Bare names try the
// std module first; unknown names resolve to opaque scalars so that
// user-defined scalar types flow through paths and casts without a
// registry.
func LookupType(name string) Type {
	if t, ok := scalarByName[name]; ok {
		return t
	}
	if !strings.Contains(name, "::") {
		if t, ok := scalarByName["std::"+name]; ok {
			return t
		}
	}
	return scalar(name)
}
