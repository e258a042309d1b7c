package edgeql

import "fmt"

// ParamDecl declares one query parameter: its name, value type, and
// whether an empty argument is acceptable.
type ParamDecl struct {
	Name     string
	Type     Type
	Optional bool
}

// Param is a required query parameter of the given type. The name must
// be a valid identifier; the parameter renders as <type>$name.
func Param(name string, t Type) *ParamExpr {
	return param(name, t, false)
}

// OptionalParam is a parameter that may be supplied as an empty value.
func OptionalParam(name string, t Type) *ParamExpr {
	return param(name, t, true)
}

func param(name string, t Type, optional bool) *ParamExpr {
	if !validIdent(name) {
		panic(fmt.Sprintf("edgeql: invalid parameter name %q", name))
	}
	if !t.valid() {
		panic(fmt.Sprintf("edgeql: parameter %q has no type", name))
	}
	if t.Kind() == KindObject {
		raise(TypeMismatch, "parameter $%s cannot have object type %s", name, t.Name())
	}
	card := One
	if optional {
		card = AtMostOne
	}
	e := &ParamExpr{name: name, optional: optional}
	e.exprBase = newBase(t, card)
	return e
}

// Params wraps a query body in an explicit parameter declaration list.
// Every parameter occurring in the body must be declared, each name
// exactly once, with a consistent type; the declarations surface on
// the compiled query for argument validation.
func Params(decls []ParamDecl, body Expr) *ParamsExpr {
	if body == nil {
		panic("edgeql: Params with nil body")
	}
	seen := make(map[string]ParamDecl, len(decls))
	for _, d := range decls {
		if !validIdent(d.Name) {
			panic(fmt.Sprintf("edgeql: invalid parameter name %q", d.Name))
		}
		if !d.Type.valid() {
			panic(fmt.Sprintf("edgeql: parameter %q has no type", d.Name))
		}
		if _, dup := seen[d.Name]; dup {
			raise(TypeMismatch, "parameter $%s declared twice", d.Name)
		}
		seen[d.Name] = d
	}
	e := &ParamsExpr{decls: decls, body: body}
	e.exprBase = newBase(body.Type(), body.Cardinality(), body)
	return e
}
