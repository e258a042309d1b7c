package compile

import (
	"fmt"

	"github.com/gelq/gelq/edgeql"
)

// validateTree checks the cross-node invariants that construction
// cannot see, and collects the parameter declarations: every node a
// With claims must stay inside that With, the root may not reference
// scope bindings no enclosing statement binds, and a parameter name
// must carry one type and optionality across the whole tree.
func validateTree(root edgeql.Expr) ([]ParamDesc, error) {
	if root == nil {
		return nil, fmt.Errorf("compile: nil expression")
	}
	if n := len(edgeql.FreeScopes(root)); n > 0 {
		return nil, fmt.Errorf("compile: expression references %d scope binding(s) that no enclosing statement binds", n)
	}

	active := map[*edgeql.WithExpr]bool{}
	byName := map[string]ParamDesc{}
	var params []ParamDesc
	var err error

	declare := func(d ParamDesc) {
		prev, ok := byName[d.Name]
		if !ok {
			byName[d.Name] = d
			params = append(params, d)
			return
		}
		if prev.Type != d.Type || prev.Optional != d.Optional {
			err = fmt.Errorf("compile: parameter $%s declared as %s and %s",
				d.Name, describeParam(prev), describeParam(d))
		}
	}

	var visit func(e edgeql.Expr)
	visit = func(e edgeql.Expr) {
		if err != nil {
			return
		}
		if w := edgeql.ClaimedBy(e); w != nil && !active[w] {
			err = fmt.Errorf("compile: an expression of type %s is bound by a with that does not enclose this use", e.Type().Name())
			return
		}
		switch n := e.(type) {
		case *edgeql.ParamExpr:
			declare(ParamDesc{Name: n.Name(), Type: n.Type().Name(), Optional: n.Optional()})
		case *edgeql.ParamsExpr:
			for _, d := range n.Decls() {
				declare(ParamDesc{Name: d.Name, Type: d.Type.Name(), Optional: d.Optional})
			}
		case *edgeql.WithExpr:
			active[n] = true
			for _, c := range edgeql.Children(n) {
				visit(c)
			}
			active[n] = false
			return
		}
		for _, c := range edgeql.Children(e) {
			visit(c)
		}
	}
	visit(root)
	if err != nil {
		return nil, err
	}
	return params, nil
}

func describeParam(d ParamDesc) string {
	if d.Optional {
		return "optional " + d.Type
	}
	return d.Type
}
