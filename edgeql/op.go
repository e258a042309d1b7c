package edgeql

// Op applies an operator. Three spellings are accepted, mirroring the
// textual forms:
//
//	Op("not", x)              prefix
//	Op(a, "+", b)             infix
//	Op(t, "if", cond, "else", f)
//
// Plain Go values coerce to literals. Unknown operators and operand
// types the table rejects are TypeMismatch construction errors.
func Op(args ...any) *OpExpr {
	switch len(args) {
	case 2:
		name, ok := args[0].(string)
		if !ok {
			raise(TypeMismatch, "prefix operator must be named by a string, got %T", args[0])
		}
		infer, ok := prefixOps[name]
		if !ok {
			raise(TypeMismatch, "unknown prefix operator %q", name)
		}
		operand := toExpr(args[1])
		t, card := infer(operand)
		return &OpExpr{
			exprBase: newBase(t, card, operand),
			op:       name, form: Prefix, args: []Expr{operand},
		}
	case 3:
		name, ok := args[1].(string)
		if !ok {
			raise(TypeMismatch, "infix operator must be named by a string, got %T", args[1])
		}
		infer, ok := infixOps[name]
		if !ok {
			raise(TypeMismatch, "unknown infix operator %q", name)
		}
		a, b := toExpr(args[0]), toExpr(args[2])
		t, card := infer(a, b)
		return &OpExpr{
			exprBase: newBase(t, card, a, b),
			op:       name, form: Infix, args: []Expr{a, b},
		}
	case 5:
		if s, ok := args[1].(string); !ok || s != "if" {
			raise(TypeMismatch, "ternary operator must be spelled (value, \"if\", cond, \"else\", value)")
		}
		if s, ok := args[3].(string); !ok || s != "else" {
			raise(TypeMismatch, "ternary operator must be spelled (value, \"if\", cond, \"else\", value)")
		}
		tv, cond, fv := toExpr(args[0]), toExpr(args[2]), toExpr(args[4])
		if !cond.Type().same(BoolType) {
			raise(TypeMismatch, "if condition is %s, want std::bool", typeNameOf(cond))
		}
		t := commonType("conditional branches", []Expr{tv, fv})
		card := branch(cond.Cardinality(), tv.Cardinality(), fv.Cardinality())
		return &OpExpr{
			exprBase: newBase(t, card, tv, cond, fv),
			op:       "if", form: Ternary, args: []Expr{tv, cond, fv},
		}
	}
	raise(TypeMismatch, "operator application takes 2, 3 or 5 arguments, got %d", len(args))
	return nil
}

type prefixInfer func(x Expr) (Type, Cardinality)
type infixInfer func(a, b Expr) (Type, Cardinality)

var prefixOps = map[string]prefixInfer{
	"not": func(x Expr) (Type, Cardinality) {
		if !x.Type().same(BoolType) {
			raise(TypeMismatch, "not applied to %s, want std::bool", typeNameOf(x))
		}
		return BoolType, x.Cardinality()
	},
	"exists": func(x Expr) (Type, Cardinality) {
		return BoolType, One
	},
	"distinct": func(x Expr) (Type, Cardinality) {
		return x.Type(), x.Cardinality()
	},
	"-": func(x Expr) (Type, Cardinality) {
		if !isNumeric(x.Type()) && !x.Type().same(DurationType) {
			raise(TypeMismatch, "unary - applied to %s", typeNameOf(x))
		}
		return x.Type(), x.Cardinality()
	},
}

var infixOps map[string]infixInfer

func init() {
	infixOps = map[string]infixInfer{
		"=":   comparison,
		"!=":  comparison,
		"?=":  optionalComparison,
		"?!=": optionalComparison,
		"<":   comparison,
		">":   comparison,
		"<=":  comparison,
		">=":  comparison,

		"+":  additive,
		"-":  additive,
		"*":  arithmetic,
		"/":  division,
		"//": arithmetic,
		"%":  arithmetic,
		"^":  arithmetic,

		"++": concat,

		"like":      stringPredicate,
		"ilike":     stringPredicate,
		"not like":  stringPredicate,
		"not ilike": stringPredicate,

		"in":     membership,
		"not in": membership,

		"union": func(a, b Expr) (Type, Cardinality) {
			t := commonType("union", []Expr{a, b})
			return t, a.Cardinality().add(b.Cardinality())
		},
		"intersect": func(a, b Expr) (Type, Cardinality) {
			t := commonType("intersect", []Expr{a, b})
			_, ah := a.Cardinality().bounds()
			_, bh := b.Cardinality().bounds()
			return t, fromBounds(0, minBound(ah, bh))
		},
		"except": func(a, b Expr) (Type, Cardinality) {
			commonType("except", []Expr{a, b})
			_, ah := a.Cardinality().bounds()
			return a.Type(), fromBounds(0, ah)
		},
		"??": func(a, b Expr) (Type, Cardinality) {
			t := commonType("coalesce", []Expr{a, b})
			return t, a.Cardinality().coalesce(b.Cardinality())
		},

		"and": logical,
		"or":  logical,
	}
}

func comparison(a, b Expr) (Type, Cardinality) {
	requireComparable(a, b)
	return BoolType, a.Cardinality().cross(b.Cardinality())
}

func optionalComparison(a, b Expr) (Type, Cardinality) {
	requireComparable(a, b)
	if a.Cardinality().IsSingle() && b.Cardinality().IsSingle() {
		return BoolType, One
	}
	return BoolType, Many
}

func requireComparable(a, b Expr) {
	at, bt := a.Type(), b.Type()
	if at.assignableFrom(bt) || bt.assignableFrom(at) {
		return
	}
	if _, ok := promote(at, bt); ok {
		return
	}
	raise(TypeMismatch, "cannot compare %s with %s", at.Name(), bt.Name())
}

func logical(a, b Expr) (Type, Cardinality) {
	if !a.Type().same(BoolType) || !b.Type().same(BoolType) {
		raise(TypeMismatch, "boolean operator applied to %s and %s", typeNameOf(a), typeNameOf(b))
	}
	return BoolType, a.Cardinality().cross(b.Cardinality())
}

func arithmetic(a, b Expr) (Type, Cardinality) {
	t, ok := promote(a.Type(), b.Type())
	if !ok {
		raise(TypeMismatch, "arithmetic on %s and %s", typeNameOf(a), typeNameOf(b))
	}
	return t, a.Cardinality().cross(b.Cardinality())
}

// additive also covers the datetime and duration forms of + and -.
func additive(a, b Expr) (Type, Cardinality) {
	at, bt := a.Type(), b.Type()
	card := a.Cardinality().cross(b.Cardinality())
	switch {
	case at.same(DatetimeType) && bt.same(DurationType):
		return DatetimeType, card
	case at.same(DurationType) && bt.same(DatetimeType):
		return DatetimeType, card
	case at.same(DatetimeType) && bt.same(DatetimeType):
		return DurationType, card
	case at.same(DurationType) && bt.same(DurationType):
		return DurationType, card
	}
	return arithmetic(a, b)
}

func division(a, b Expr) (Type, Cardinality) {
	t, ok := promote(a.Type(), b.Type())
	if !ok {
		raise(TypeMismatch, "arithmetic on %s and %s", typeNameOf(a), typeNameOf(b))
	}
	card := a.Cardinality().cross(b.Cardinality())
	if t.name == "std::bigint" || t.name == "std::decimal" {
		return DecimalType, card
	}
	return Float64Type, card
}

func concat(a, b Expr) (Type, Cardinality) {
	at, bt := a.Type(), b.Type()
	card := a.Cardinality().cross(b.Cardinality())
	ok := (at.same(StrType) && bt.same(StrType)) ||
		(at.same(BytesType) && bt.same(BytesType)) ||
		(at.same(JSONType) && bt.same(JSONType)) ||
		(at.Kind() == KindArray && at.same(bt))
	if !ok {
		raise(TypeMismatch, "++ on %s and %s", at.Name(), bt.Name())
	}
	return at, card
}

func stringPredicate(a, b Expr) (Type, Cardinality) {
	if !a.Type().same(StrType) || !b.Type().same(StrType) {
		raise(TypeMismatch, "pattern match on %s and %s", typeNameOf(a), typeNameOf(b))
	}
	return BoolType, a.Cardinality().cross(b.Cardinality())
}

func membership(a, b Expr) (Type, Cardinality) {
	requireComparable(a, b)
	return BoolType, a.Cardinality()
}
