package edgeql

import (
	"fmt"
	"sync"
)

// FuncSig describes a callable function: its qualified name and the
// rule mapping argument expressions to result type and cardinality.
// The rule raises TypeMismatch for arguments it rejects.
type FuncSig struct {
	Name  string
	Infer func(args []Expr) (Type, Cardinality)
}

var funcSigs sync.Map // string -> *FuncSig

// DefineFunc registers a function signature. Generated bindings use
// this to expose user-defined database functions. It panics on misuse:
// signatures are registered at init time, so an empty or duplicate
// name is a programming error.
func DefineFunc(sig FuncSig) {
	if sig.Name == "" {
		panic("edgeql: DefineFunc with empty name")
	}
	if sig.Infer == nil {
		panic(fmt.Sprintf("edgeql: DefineFunc %q with nil Infer", sig.Name))
	}
	s := sig
	if _, dup := funcSigs.LoadOrStore(sig.Name, &s); dup {
		panic(fmt.Sprintf("edgeql: function %q already defined", sig.Name))
	}
}

// Func builds a call to a registered function.
func Func(name string, args ...any) *FuncExpr {
	v, ok := funcSigs.Load(name)
	if !ok {
		raise(TypeMismatch, "unknown function %q", name)
	}
	es := toExprs(args)
	t, card := v.(*FuncSig).Infer(es)
	return &FuncExpr{exprBase: newBase(t, card, es...), name: name, args: es}
}

// Call builds a call to an unregistered function with an explicit
// result type and cardinality, for functions the registry does not
// know.
func Call(name string, ret Type, card Cardinality, args ...any) *FuncExpr {
	es := toExprs(args)
	return &FuncExpr{exprBase: newBase(ret, card, es...), name: name, args: es}
}

func exactly(name string, n int, args []Expr) {
	if len(args) != n {
		raise(TypeMismatch, "%s takes %d argument(s), got %d", name, n, len(args))
	}
}

func crossAll(args []Expr) Cardinality {
	card := One
	for _, a := range args {
		card = card.cross(a.Cardinality())
	}
	return card
}

func init() {
	DefineFunc(FuncSig{Name: "std::count", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::count", 1, args)
		return Int64Type, One
	}})
	DefineFunc(FuncSig{Name: "std::sum", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::sum", 1, args)
		t := args[0].Type()
		if !isNumeric(t) {
			raise(TypeMismatch, "std::sum of %s", t.Name())
		}
		if isInteger(t) && t.name != "std::bigint" {
			return Int64Type, One
		}
		return t, One
	}})
	DefineFunc(FuncSig{Name: "std::min", Infer: extremum("std::min")})
	DefineFunc(FuncSig{Name: "std::max", Infer: extremum("std::max")})
	DefineFunc(FuncSig{Name: "std::len", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::len", 1, args)
		t := args[0].Type()
		if !t.same(StrType) && !t.same(BytesType) && t.Kind() != KindArray {
			raise(TypeMismatch, "std::len of %s", t.Name())
		}
		return Int64Type, crossAll(args)
	}})
	DefineFunc(FuncSig{Name: "std::contains", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::contains", 2, args)
		h, n := args[0].Type(), args[1].Type()
		switch {
		case h.same(StrType) && n.same(StrType):
		case h.same(BytesType) && n.same(BytesType):
		case h.Kind() == KindArray:
			elem, _ := h.Elem()
			if !elem.assignableFrom(n) {
				raise(TypeMismatch, "std::contains: %s does not hold %s", h.Name(), n.Name())
			}
		default:
			raise(TypeMismatch, "std::contains on %s and %s", h.Name(), n.Name())
		}
		return BoolType, crossAll(args)
	}})
	DefineFunc(FuncSig{Name: "std::str_lower", Infer: strUnary("std::str_lower")})
	DefineFunc(FuncSig{Name: "std::str_upper", Infer: strUnary("std::str_upper")})
	DefineFunc(FuncSig{Name: "std::str_trim", Infer: strUnary("std::str_trim")})
	DefineFunc(FuncSig{Name: "std::str_split", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::str_split", 2, args)
		if !args[0].Type().same(StrType) || !args[1].Type().same(StrType) {
			raise(TypeMismatch, "std::str_split on %s", fmtTypes(args))
		}
		return ArrayOf(StrType), crossAll(args)
	}})
	DefineFunc(FuncSig{Name: "std::to_str", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::to_str", 1, args)
		return StrType, crossAll(args)
	}})
	DefineFunc(FuncSig{Name: "std::to_json", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::to_json", 1, args)
		if !args[0].Type().same(StrType) {
			raise(TypeMismatch, "std::to_json of %s", typeNameOf(args[0]))
		}
		return JSONType, crossAll(args)
	}})
	DefineFunc(FuncSig{Name: "std::json_get", Infer: func(args []Expr) (Type, Cardinality) {
		if len(args) < 1 {
			raise(TypeMismatch, "std::json_get takes a json value and path segments")
		}
		if !args[0].Type().same(JSONType) {
			raise(TypeMismatch, "std::json_get of %s", typeNameOf(args[0]))
		}
		for _, a := range args[1:] {
			if !a.Type().same(StrType) {
				raise(TypeMismatch, "std::json_get path segment is %s, want std::str", typeNameOf(a))
			}
		}
		return JSONType, crossAll(args).optional()
	}})
	DefineFunc(FuncSig{Name: "std::array_agg", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::array_agg", 1, args)
		return ArrayOf(args[0].Type()), One
	}})
	DefineFunc(FuncSig{Name: "std::array_unpack", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::array_unpack", 1, args)
		elem, ok := args[0].Type().Elem()
		if !ok {
			raise(TypeMismatch, "std::array_unpack of %s", typeNameOf(args[0]))
		}
		return elem, Many
	}})
	DefineFunc(FuncSig{Name: "std::assert_single", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::assert_single", 1, args)
		lo, _ := args[0].Cardinality().bounds()
		return args[0].Type(), fromBounds(lo, 1)
	}})
	DefineFunc(FuncSig{Name: "std::assert_exists", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::assert_exists", 1, args)
		_, hi := args[0].Cardinality().bounds()
		if hi == 0 {
			hi = 1
		}
		return args[0].Type(), fromBounds(1, hi)
	}})
	DefineFunc(FuncSig{Name: "std::random", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::random", 0, args)
		return Float64Type, One
	}})
	DefineFunc(FuncSig{Name: "std::datetime_current", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::datetime_current", 0, args)
		return DatetimeType, One
	}})
	DefineFunc(FuncSig{Name: "std::uuid_generate_v4", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("std::uuid_generate_v4", 0, args)
		return UUIDType, One
	}})
}

func extremum(name string) func(args []Expr) (Type, Cardinality) {
	return func(args []Expr) (Type, Cardinality) {
		exactly(name, 1, args)
		return args[0].Type(), AtMostOne
	}
}

func strUnary(name string) func(args []Expr) (Type, Cardinality) {
	return func(args []Expr) (Type, Cardinality) {
		exactly(name, 1, args)
		if !args[0].Type().same(StrType) {
			raise(TypeMismatch, "%s of %s", name, typeNameOf(args[0]))
		}
		return StrType, args[0].Cardinality()
	}
}

// Convenience wrappers over the std registry.

func Count(set any) *FuncExpr       { return Func("std::count", set) }
func Sum(set any) *FuncExpr         { return Func("std::sum", set) }
func Min(set any) *FuncExpr         { return Func("std::min", set) }
func Max(set any) *FuncExpr         { return Func("std::max", set) }
func Len(v any) *FuncExpr           { return Func("std::len", v) }
func Contains(h, n any) *FuncExpr   { return Func("std::contains", h, n) }
func StrLower(v any) *FuncExpr      { return Func("std::str_lower", v) }
func StrUpper(v any) *FuncExpr      { return Func("std::str_upper", v) }
func StrTrim(v any) *FuncExpr       { return Func("std::str_trim", v) }
func StrSplit(v, sep any) *FuncExpr { return Func("std::str_split", v, sep) }
func ToStr(v any) *FuncExpr         { return Func("std::to_str", v) }
func ToJSON(v any) *FuncExpr        { return Func("std::to_json", v) }
func ArrayAgg(set any) *FuncExpr    { return Func("std::array_agg", set) }
func ArrayUnpack(v any) *FuncExpr   { return Func("std::array_unpack", v) }
func AssertSingle(v any) *FuncExpr  { return Func("std::assert_single", v) }
func AssertExists(v any) *FuncExpr  { return Func("std::assert_exists", v) }
func Random() *FuncExpr             { return Func("std::random") }
func DatetimeCurrent() *FuncExpr    { return Func("std::datetime_current") }
func UUIDGenerateV4() *FuncExpr     { return Func("std::uuid_generate_v4") }
