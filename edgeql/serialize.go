package edgeql

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// serNode is the serialized form of one expression node. Nodes that
// occur more than once by identity carry an id at their first
// occurrence and collapse to a ref afterwards.
type serNode struct {
	Kind     string     `json:"kind"`
	ID       int        `json:"id,omitempty"`
	Ref      int        `json:"ref,omitempty"`
	Name     string     `json:"name,omitempty"`
	Op       string     `json:"op,omitempty"`
	Value    string     `json:"value,omitempty"`
	Type     string     `json:"type,omitempty"`
	Card     string     `json:"cardinality,omitempty"`
	Shape    []string   `json:"shape,omitempty"`
	Children []*serNode `json:"children,omitempty"`
}

// Serialize renders an expression tree as deterministic JSON for
// tooling and goldens. The format is one-way; it is never parsed back
// into expressions.
func Serialize(e Expr) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("edgeql: serialize nil expression")
	}
	counts := make(map[Expr]int)
	Walk(e, func(n Expr) { counts[n]++ })
	s := &serializer{counts: counts, ids: make(map[Expr]int)}
	return json.MarshalIndent(s.node(e), "", "  ")
}

type serializer struct {
	counts map[Expr]int
	ids    map[Expr]int
	next   int
}

func (s *serializer) node(e Expr) *serNode {
	if id, ok := s.ids[e]; ok {
		return &serNode{Kind: kindOf(e), Ref: id}
	}
	n := &serNode{
		Kind: kindOf(e),
		Type: e.Type().Name(),
		Card: e.Cardinality().String(),
	}
	if s.counts[e] > 1 {
		s.next++
		s.ids[e] = s.next
		n.ID = s.next
	}
	switch v := e.(type) {
	case *LiteralExpr:
		n.Value = literalString(v.val)
	case *OpExpr:
		n.Op = v.op
	case *FuncExpr:
		n.Name = v.name
	case *PathExpr:
		n.Name = v.name
	case *BacklinkExpr:
		n.Name = v.link
	case *ParamExpr:
		n.Name = "$" + v.name
	case *TupleExpr:
		if len(v.names) > 0 {
			n.Shape = append(n.Shape, v.names...)
		}
	case *SelectExpr:
		n.Shape = shapeSummary(v.shape)
	case *InsertExpr:
		n.Name = v.obj.FullName()
		n.Shape = shapeSummary(v.shape)
		if v.unlessConflict {
			n.Op = "unless conflict"
			if v.conflictOn != "" {
				n.Op = "unless conflict on ." + v.conflictOn
			}
		}
	case *UpdateExpr:
		n.Shape = shapeSummary(v.shape)
	case *DeleteExpr:
		n.Shape = shapeSummary(v.shape)
	case *GroupExpr:
		n.Shape = shapeSummary(v.shape)
	case *ParamsExpr:
		for _, d := range v.decls {
			spec := "$" + d.Name + ": " + d.Type.Name()
			if d.Optional {
				spec = "$" + d.Name + ": optional " + d.Type.Name()
			}
			n.Shape = append(n.Shape, spec)
		}
	}
	for _, c := range Children(e) {
		n.Children = append(n.Children, s.node(c))
	}
	return n
}

func kindOf(e Expr) string {
	switch e.(type) {
	case *LiteralExpr:
		return "literal"
	case *SetExpr:
		return "set"
	case *ArrayExpr:
		return "array"
	case *TupleExpr:
		return "tuple"
	case *CastExpr:
		return "cast"
	case *OpExpr:
		return "op"
	case *FuncExpr:
		return "func"
	case *TypeSet:
		return "objects"
	case *PathExpr:
		return "path"
	case *BacklinkExpr:
		return "backlink"
	case *TypeIntersection:
		return "intersect"
	case *ParamExpr:
		return "param"
	case *Scope:
		return "scope"
	case *AliasExpr:
		return "alias"
	case *DetachedExpr:
		return "detached"
	case *WithExpr:
		return "with"
	case *ParamsExpr:
		return "params"
	case *SelectExpr:
		return "select"
	case *InsertExpr:
		return "insert"
	case *UpdateExpr:
		return "update"
	case *DeleteExpr:
		return "delete"
	case *ForExpr:
		return "for"
	case *GroupExpr:
		return "group"
	}
	return "unknown"
}

func shapeSummary(sh *Shape) []string {
	if sh == nil {
		return nil
	}
	var out []string
	for _, f := range sh.fields {
		switch f.kind {
		case FieldInclude:
			out = append(out, "include:"+f.name)
		case FieldComputed:
			out = append(out, "computed:"+f.name)
		case FieldNested:
			out = append(out, "nested:"+f.name)
		case FieldPoly:
			out = append(out, "poly:["+f.poly.FullName()+"]."+f.name)
		case FieldLinkProp:
			out = append(out, "linkprop:@"+f.name)
		}
	}
	if sh.filter != nil {
		out = append(out, "filter")
	}
	if sh.filterSingle != nil {
		out = append(out, "filter_single")
	}
	for range sh.orderBy {
		out = append(out, "order_by")
	}
	if sh.offset != nil {
		out = append(out, "offset")
	}
	if sh.limit != nil {
		out = append(out, "limit")
	}
	for range sh.by {
		out = append(out, "by")
	}
	for _, f := range sh.sets {
		out = append(out, "set:"+f.name)
	}
	return out
}

func literalString(val any) string {
	switch v := val.(type) {
	case string:
		return strconv.Quote(v)
	case []byte:
		return fmt.Sprintf("0x%x", v)
	default:
		return fmt.Sprintf("%v", val)
	}
}
