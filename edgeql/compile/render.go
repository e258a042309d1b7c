package compile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gelq/gelq/edgeql"
)

// renderer writes one expression tree as EdgeQL text. Substitution of
// hoisted nodes by their binding names is resolved lexically: each
// binding position pushes a frame, and occurrences look their node up
// innermost-first.
type renderer struct {
	b      strings.Builder
	layout Layout
	p      *plan
	frames []map[edgeql.Expr]string
	dot    *edgeql.Scope // scope leading dots currently resolve to
}

func render(root edgeql.Expr, p *plan, layout Layout) (string, error) {
	r := &renderer{layout: layout, p: p}
	if err := r.writeRoot(root); err != nil {
		return "", err
	}
	return r.b.String(), nil
}

func (r *renderer) push()          { r.frames = append(r.frames, map[edgeql.Expr]string{}) }
func (r *renderer) pop()           { r.frames = r.frames[:len(r.frames)-1] }
func (r *renderer) bind(b binding) { r.frames[len(r.frames)-1][b.expr] = b.name }

func (r *renderer) lookup(e edgeql.Expr) (string, bool) {
	for i := len(r.frames) - 1; i >= 0; i-- {
		if n, ok := r.frames[i][e]; ok {
			return n, true
		}
	}
	return "", false
}

// writeRoot renders the preamble and the top-level statement. A With
// at the root folds its bindings into the same preamble; a bare
// expression is wrapped in a select so the text is always a statement.
func (r *renderer) writeRoot(root edgeql.Expr) error {
	body := root
	for {
		if pe, ok := body.(*edgeql.ParamsExpr); ok {
			body = pe.Body()
			continue
		}
		break
	}
	defs := append([]binding(nil), r.p.root...)
	if w, ok := body.(*edgeql.WithExpr); ok {
		defs = append(defs, r.p.with[w]...)
		body = w.Body()
	}
	defs = topoBindings(defs)

	r.push()
	defer r.pop()
	if len(defs) > 0 {
		r.b.WriteString("with")
		for i, d := range defs {
			if i > 0 {
				r.b.WriteByte(',')
			}
			r.layout.Break(&r.b, 1)
			r.b.WriteString(d.name)
			r.b.WriteString(" := ")
			if err := r.writeExpr(d.expr, 1); err != nil {
				return err
			}
			r.bind(d)
		}
		r.layout.Break(&r.b, 0)
	}
	if _, named := r.lookup(body); !named && isStatement(body) {
		return r.writeStatement(body, 0)
	}
	r.b.WriteString("select ")
	return r.writeExpr(body, 0)
}

func isStatement(e edgeql.Expr) bool {
	switch e.(type) {
	case *edgeql.SelectExpr, *edgeql.InsertExpr, *edgeql.UpdateExpr,
		*edgeql.DeleteExpr, *edgeql.ForExpr, *edgeql.GroupExpr:
		return true
	}
	return false
}

// writeClause renders one clause expression with leading dots bound to
// owner, wrapping it in a parenthesized sub-with when bindings anchor
// here.
func (r *renderer) writeClause(e edgeql.Expr, owner *edgeql.Scope, depth int) error {
	savedDot := r.dot
	r.dot = owner
	defer func() { r.dot = savedDot }()

	defs := r.p.clause[e]
	if len(defs) == 0 {
		return r.writeExpr(e, depth)
	}
	r.push()
	defer r.pop()
	r.b.WriteString("(with ")
	for i, d := range defs {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteString(d.name)
		r.b.WriteString(" := ")
		if err := r.writeExpr(d.expr, depth); err != nil {
			return err
		}
		r.bind(d)
	}
	r.b.WriteString(" select ")
	if err := r.writeExpr(e, depth); err != nil {
		return err
	}
	r.b.WriteByte(')')
	return nil
}

func (r *renderer) writeExpr(e edgeql.Expr, depth int) error {
	if e == nil {
		return fmt.Errorf("compile: nil expression in tree")
	}
	if name, ok := r.lookup(e); ok {
		r.b.WriteString(name)
		return nil
	}
	switch n := e.(type) {
	case *edgeql.LiteralExpr:
		return r.writeLiteral(n)
	case *edgeql.SetExpr:
		return r.writeElems(n.Elems(), "{", "}", "<"+n.Type().Name()+">{}", depth)
	case *edgeql.ArrayExpr:
		return r.writeElems(n.Elems(), "[", "]", "<"+n.Type().Name()+">[]", depth)
	case *edgeql.TupleExpr:
		return r.writeTuple(n, depth)
	case *edgeql.CastExpr:
		r.b.WriteByte('<')
		r.b.WriteString(n.To().Name())
		r.b.WriteByte('>')
		return r.writeExpr(n.Arg(), depth)
	case *edgeql.OpExpr:
		return r.writeOp(n, depth)
	case *edgeql.FuncExpr:
		r.b.WriteString(n.Name())
		r.b.WriteByte('(')
		for i, arg := range n.Args() {
			if i > 0 {
				r.b.WriteString(", ")
			}
			if err := r.writeExpr(arg, depth); err != nil {
				return err
			}
		}
		r.b.WriteByte(')')
		return nil
	case *edgeql.TypeSet:
		r.b.WriteString(n.ObjectType().FullName())
		return nil
	case *edgeql.PathExpr, *edgeql.BacklinkExpr, *edgeql.TypeIntersection:
		return r.writePath(e, depth)
	case *edgeql.ParamExpr:
		r.b.WriteByte('<')
		if n.Optional() {
			r.b.WriteString("optional ")
		}
		r.b.WriteString(n.Type().Name())
		r.b.WriteString(">$")
		r.b.WriteString(n.Name())
		return nil
	case *edgeql.Scope:
		return r.writeScopeRef(n)
	case *edgeql.AliasExpr:
		// Reached only when writing the alias's own definition; uses
		// of the alias resolve to its binding name above.
		return r.writeExpr(n.Base(), depth)
	case *edgeql.DetachedExpr:
		r.b.WriteString("(detached ")
		if err := r.writeExpr(n.Base(), depth); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	case *edgeql.WithExpr:
		return r.writeWith(n, depth)
	case *edgeql.ParamsExpr:
		return r.writeExpr(n.Body(), depth)
	}
	if isStatement(e) {
		r.b.WriteByte('(')
		if err := r.writeStatement(e, depth+1); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	}
	return fmt.Errorf("compile: internal: no rendering for %T", e)
}

// writeScopeRef renders a bare reference to a statement element: the
// iterator name for For bindings, the schema name for statements over
// a schema set, and the hoisted subject binding otherwise.
func (r *renderer) writeScopeRef(s *edgeql.Scope) error {
	if name, ok := r.p.iter[s]; ok {
		r.b.WriteString(name)
		return nil
	}
	info := r.p.scopes[s]
	if ts, ok := info.subject.(*edgeql.TypeSet); ok {
		r.b.WriteString(ts.ObjectType().FullName())
		return nil
	}
	if info.subject != nil {
		if name, ok := r.lookup(info.subject); ok {
			r.b.WriteString(name)
			return nil
		}
	}
	return fmt.Errorf("compile: internal: unnamed scope reference")
}

func (r *renderer) writeWith(w *edgeql.WithExpr, depth int) error {
	r.push()
	defer r.pop()
	r.b.WriteString("(with ")
	for i, d := range r.p.with[w] {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteString(d.name)
		r.b.WriteString(" := ")
		if err := r.writeExpr(d.expr, depth); err != nil {
			return err
		}
		r.bind(d)
	}
	r.b.WriteByte(' ')
	if _, named := r.lookup(w.Body()); !named && isStatement(w.Body()) {
		if err := r.writeStatement(w.Body(), depth); err != nil {
			return err
		}
	} else {
		r.b.WriteString("select ")
		if err := r.writeExpr(w.Body(), depth); err != nil {
			return err
		}
	}
	r.b.WriteByte(')')
	return nil
}

func (r *renderer) writeElems(elems []edgeql.Expr, opening, closing, empty string, depth int) error {
	if len(elems) == 0 {
		r.b.WriteString(empty)
		return nil
	}
	r.b.WriteString(opening)
	for i, el := range elems {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if err := r.writeExpr(el, depth); err != nil {
			return err
		}
	}
	r.b.WriteString(closing)
	return nil
}

func (r *renderer) writeTuple(t *edgeql.TupleExpr, depth int) error {
	names := t.Names()
	elems := t.Elems()
	r.b.WriteByte('(')
	for i, el := range elems {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if names != nil {
			r.b.WriteString(names[i])
			r.b.WriteString(" := ")
		}
		if err := r.writeExpr(el, depth); err != nil {
			return err
		}
	}
	if names == nil && len(elems) == 1 {
		r.b.WriteByte(',')
	}
	r.b.WriteByte(')')
	return nil
}

func (r *renderer) writeOp(n *edgeql.OpExpr, depth int) error {
	args := n.Args()
	r.b.WriteByte('(')
	switch n.Form() {
	case edgeql.Prefix:
		r.b.WriteString(n.Op())
		if isWordOp(n.Op()) {
			r.b.WriteByte(' ')
		}
		if err := r.writeExpr(args[0], depth); err != nil {
			return err
		}
	case edgeql.Infix:
		if err := r.writeExpr(args[0], depth); err != nil {
			return err
		}
		r.b.WriteByte(' ')
		r.b.WriteString(n.Op())
		r.b.WriteByte(' ')
		if err := r.writeExpr(args[1], depth); err != nil {
			return err
		}
	case edgeql.Ternary:
		if err := r.writeExpr(args[0], depth); err != nil {
			return err
		}
		r.b.WriteString(" if ")
		if err := r.writeExpr(args[1], depth); err != nil {
			return err
		}
		r.b.WriteString(" else ")
		if err := r.writeExpr(args[2], depth); err != nil {
			return err
		}
	}
	r.b.WriteByte(')')
	return nil
}

func isWordOp(op string) bool {
	c := op[len(op)-1]
	return c >= 'a' && c <= 'z'
}

// writePath renders a dotted path. The prefix is resolved against the
// frames first so hoisted path heads keep their binding names; a path
// rooted at the current dot scope renders with a leading dot.
func (r *renderer) writePath(e edgeql.Expr, depth int) error {
	var segs []string
	cur := e
	for {
		if name, ok := r.lookup(cur); ok {
			r.b.WriteString(name)
			break
		}
		if p, ok := cur.(*edgeql.PathExpr); ok {
			sep := "."
			if p.IsLinkProperty() {
				sep = "@"
			}
			segs = append(segs, sep+p.Name())
			cur = p.Src()
			continue
		}
		if bl, ok := cur.(*edgeql.BacklinkExpr); ok {
			segs = append(segs, ".<"+bl.Link()+"[is "+bl.Target().FullName()+"]")
			cur = bl.Src()
			continue
		}
		if ti, ok := cur.(*edgeql.TypeIntersection); ok {
			segs = append(segs, "[is "+ti.Target().FullName()+"]")
			cur = ti.Src()
			continue
		}
		if s, ok := cur.(*edgeql.Scope); ok {
			if name, ok := r.p.iter[s]; ok {
				r.b.WriteString(name)
				break
			}
			if r.dot == s {
				break // leading dot
			}
			return fmt.Errorf("compile: internal: path root scope has no spelling here")
		}
		if err := r.writeExpr(cur, depth); err != nil {
			return err
		}
		break
	}
	for i := len(segs) - 1; i >= 0; i-- {
		r.b.WriteString(segs[i])
	}
	return nil
}

// =============================================================================
// Statements
// =============================================================================

func (r *renderer) writeStatement(e edgeql.Expr, depth int) error {
	switch n := e.(type) {
	case *edgeql.SelectExpr:
		return r.writeSelect(n, depth)
	case *edgeql.InsertExpr:
		return r.writeInsert(n, depth)
	case *edgeql.UpdateExpr:
		return r.writeUpdate(n, depth)
	case *edgeql.DeleteExpr:
		return r.writeDelete(n, depth)
	case *edgeql.ForExpr:
		return r.writeFor(n, depth)
	case *edgeql.GroupExpr:
		return r.writeGroup(n, depth)
	}
	return fmt.Errorf("compile: internal: %T is not a statement", e)
}

func (r *renderer) writeSelect(n *edgeql.SelectExpr, depth int) error {
	r.b.WriteString("select ")
	if err := r.writeExpr(n.Subject(), depth); err != nil {
		return err
	}
	sh := n.Shape()
	if sh == nil {
		return nil
	}
	if len(sh.FieldList()) > 0 {
		r.b.WriteByte(' ')
		if err := r.writeShape(sh, n.Scope(), depth); err != nil {
			return err
		}
	}
	return r.writeTrailingClauses(sh, n.Scope(), depth, true)
}

func (r *renderer) writeInsert(n *edgeql.InsertExpr, depth int) error {
	r.b.WriteString("insert ")
	r.b.WriteString(n.ObjectType().FullName())
	if sets := n.Shape().SetList(); len(sets) > 0 {
		r.b.WriteString(" {")
		for i, f := range sets {
			if i == 0 {
				r.layout.Open(&r.b, depth)
			} else {
				r.b.WriteByte(',')
				r.layout.Break(&r.b, depth+1)
			}
			r.b.WriteString(f.Name())
			r.b.WriteString(" := ")
			if err := r.writeClause(f.Expr(), nil, depth+1); err != nil {
				return err
			}
		}
		r.layout.Close(&r.b, depth)
		r.b.WriteByte('}')
	}
	if n.HasUnlessConflict() {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("unless conflict")
		if n.ConflictOn() != "" {
			r.b.WriteString(" on .")
			r.b.WriteString(n.ConflictOn())
		}
		if n.ConflictElse() != nil {
			r.layout.Break(&r.b, depth)
			r.b.WriteString("else ")
			if err := r.writeClause(n.ConflictElse(), nil, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) writeUpdate(n *edgeql.UpdateExpr, depth int) error {
	r.b.WriteString("update ")
	if err := r.writeExpr(n.Subject(), depth); err != nil {
		return err
	}
	sh := n.Shape()
	if sh.FilterExpr() != nil {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("filter ")
		if err := r.writeClause(sh.FilterExpr(), n.Scope(), depth); err != nil {
			return err
		}
	}
	r.layout.Break(&r.b, depth)
	r.b.WriteString("set {")
	for i, f := range sh.SetList() {
		if i == 0 {
			r.layout.Open(&r.b, depth)
		} else {
			r.b.WriteByte(',')
			r.layout.Break(&r.b, depth+1)
		}
		r.b.WriteString(f.Name())
		r.b.WriteString(" := ")
		if err := r.writeClause(f.Expr(), n.Scope(), depth+1); err != nil {
			return err
		}
	}
	r.layout.Close(&r.b, depth)
	r.b.WriteByte('}')
	return nil
}

func (r *renderer) writeDelete(n *edgeql.DeleteExpr, depth int) error {
	r.b.WriteString("delete ")
	if err := r.writeExpr(n.Subject(), depth); err != nil {
		return err
	}
	if n.Shape() == nil {
		return nil
	}
	return r.writeTrailingClauses(n.Shape(), n.Scope(), depth, false)
}

func (r *renderer) writeFor(n *edgeql.ForExpr, depth int) error {
	name, ok := r.p.iter[n.Scope()]
	if !ok {
		return fmt.Errorf("compile: internal: for iterator was not named")
	}
	r.b.WriteString("for ")
	r.b.WriteString(name)
	r.b.WriteString(" in ")
	if err := r.writeGrouped(n.Set(), r.dot, depth); err != nil {
		return err
	}
	r.layout.Break(&r.b, depth)
	r.b.WriteString("union ")
	return r.writeGrouped(n.Body(), nil, depth)
}

// writeGrouped renders e as a single parenthesized group. Forms that
// already parenthesize themselves are not wrapped a second time.
func (r *renderer) writeGrouped(e edgeql.Expr, owner *edgeql.Scope, depth int) error {
	if _, named := r.lookup(e); !named {
		if len(r.p.clause[e]) > 0 || isStatement(e) {
			return r.writeClause(e, owner, depth)
		}
		switch e.(type) {
		case *edgeql.OpExpr, *edgeql.DetachedExpr, *edgeql.WithExpr:
			return r.writeClause(e, owner, depth)
		}
	}
	r.b.WriteByte('(')
	if err := r.writeClause(e, owner, depth); err != nil {
		return err
	}
	r.b.WriteByte(')')
	return nil
}

func (r *renderer) writeGroup(n *edgeql.GroupExpr, depth int) error {
	sh := n.Shape()
	r.b.WriteString("group ")
	if sh.FilterExpr() != nil {
		r.b.WriteString("(select ")
		if err := r.writeExpr(n.Subject(), depth); err != nil {
			return err
		}
		r.b.WriteString(" filter ")
		if err := r.writeClause(sh.FilterExpr(), n.Scope(), depth); err != nil {
			return err
		}
		r.b.WriteByte(')')
	} else if err := r.writeExpr(n.Subject(), depth); err != nil {
		return err
	}
	if len(sh.FieldList()) > 0 {
		r.b.WriteByte(' ')
		if err := r.writeShape(sh, n.Scope(), depth); err != nil {
			return err
		}
	}
	keys := r.p.using[n]
	named := false
	for _, k := range keys {
		if k.name != "" {
			named = true
			break
		}
	}
	if named {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("using ")
		first := true
		for _, k := range keys {
			if k.name == "" {
				continue
			}
			if !first {
				r.b.WriteString(", ")
			}
			first = false
			r.b.WriteString(k.name)
			r.b.WriteString(" := ")
			if err := r.writeClause(k.key, n.Scope(), depth); err != nil {
				return err
			}
		}
	}
	r.layout.Break(&r.b, depth)
	r.b.WriteString("by ")
	for i, k := range keys {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if k.name != "" {
			r.b.WriteString(k.name)
			continue
		}
		if err := r.writeClause(k.key, n.Scope(), depth); err != nil {
			return err
		}
	}
	return nil
}

// writeShape renders the braced field list of a select or group.
func (r *renderer) writeShape(sh *edgeql.Shape, scope *edgeql.Scope, depth int) error {
	r.b.WriteByte('{')
	for i, f := range sh.FieldList() {
		if i == 0 {
			r.layout.Open(&r.b, depth)
		} else {
			r.b.WriteByte(',')
			r.layout.Break(&r.b, depth+1)
		}
		if err := r.writeField(f, scope, depth+1); err != nil {
			return err
		}
	}
	r.layout.Close(&r.b, depth)
	r.b.WriteByte('}')
	return nil
}

func (r *renderer) writeField(f *edgeql.ShapeField, scope *edgeql.Scope, depth int) error {
	switch f.Kind() {
	case edgeql.FieldInclude:
		r.b.WriteString(f.Name())
	case edgeql.FieldLinkProp:
		r.b.WriteByte('@')
		r.b.WriteString(f.Name())
	case edgeql.FieldPoly:
		r.b.WriteString("[is ")
		r.b.WriteString(f.Poly().FullName())
		r.b.WriteString("].")
		r.b.WriteString(f.Name())
	case edgeql.FieldComputed:
		r.b.WriteString(f.Name())
		r.b.WriteString(" := ")
		return r.writeClause(f.Expr(), scope, depth)
	case edgeql.FieldNested:
		r.b.WriteString(f.Name())
		r.b.WriteString(": ")
		if err := r.writeShape(f.Shape(), f.Scope(), depth); err != nil {
			return err
		}
		return r.writeNestedClauses(f.Shape(), f.Scope(), depth)
	}
	return nil
}

// writeNestedClauses renders a nested shape's trailing clauses on the
// same line, after the closing brace.
func (r *renderer) writeNestedClauses(sh *edgeql.Shape, scope *edgeql.Scope, depth int) error {
	if f, fs := sh.FilterExpr(), sh.FilterSingleExpr(); f != nil || fs != nil {
		r.b.WriteString(" filter ")
		if err := r.writeFilterPair(f, fs, scope, depth); err != nil {
			return err
		}
	}
	if len(sh.OrderList()) > 0 {
		r.b.WriteString(" order by ")
		if err := r.writeOrdering(sh.OrderList(), scope, depth); err != nil {
			return err
		}
	}
	if sh.OffsetExpr() != nil {
		r.b.WriteString(" offset ")
		if err := r.writeClause(sh.OffsetExpr(), scope, depth); err != nil {
			return err
		}
	}
	if sh.LimitExpr() != nil {
		r.b.WriteString(" limit ")
		if err := r.writeClause(sh.LimitExpr(), scope, depth); err != nil {
			return err
		}
	}
	return nil
}

// writeTrailingClauses renders the statement-level clause block in the
// fixed order filter, order by, offset, limit.
func (r *renderer) writeTrailingClauses(sh *edgeql.Shape, scope *edgeql.Scope, depth int, allowSingle bool) error {
	f, fs := sh.FilterExpr(), sh.FilterSingleExpr()
	if !allowSingle {
		fs = nil
	}
	if f != nil || fs != nil {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("filter ")
		if err := r.writeFilterPair(f, fs, scope, depth); err != nil {
			return err
		}
	}
	if len(sh.OrderList()) > 0 {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("order by ")
		if err := r.writeOrdering(sh.OrderList(), scope, depth); err != nil {
			return err
		}
	}
	if sh.OffsetExpr() != nil {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("offset ")
		if err := r.writeClause(sh.OffsetExpr(), scope, depth); err != nil {
			return err
		}
	}
	if sh.LimitExpr() != nil {
		r.layout.Break(&r.b, depth)
		r.b.WriteString("limit ")
		if err := r.writeClause(sh.LimitExpr(), scope, depth); err != nil {
			return err
		}
	}
	return nil
}

// writeFilterPair joins filter and filter_single conditions; rendered
// EdgeQL has a single filter clause.
func (r *renderer) writeFilterPair(f, fs edgeql.Expr, scope *edgeql.Scope, depth int) error {
	if f != nil && fs != nil {
		r.b.WriteByte('(')
		if err := r.writeClause(f, scope, depth); err != nil {
			return err
		}
		r.b.WriteString(" and ")
		if err := r.writeClause(fs, scope, depth); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	}
	if f == nil {
		f = fs
	}
	return r.writeClause(f, scope, depth)
}

func (r *renderer) writeOrdering(ords []edgeql.Ordering, scope *edgeql.Scope, depth int) error {
	for i, o := range ords {
		if i > 0 {
			r.b.WriteString(" then ")
		}
		if err := r.writeClause(o.Key(), scope, depth); err != nil {
			return err
		}
		if o.Dir() == edgeql.Descending {
			r.b.WriteString(" desc")
		} else {
			r.b.WriteString(" asc")
		}
		switch o.Empties() {
		case edgeql.EmptiesFirst:
			r.b.WriteString(" empty first")
		case edgeql.EmptiesLast:
			r.b.WriteString(" empty last")
		}
	}
	return nil
}

// =============================================================================
// Literals
// =============================================================================

func (r *renderer) writeLiteral(e *edgeql.LiteralExpr) error {
	switch v := e.Value().(type) {
	case string:
		switch e.Type().Name() {
		case "std::bigint", "std::decimal":
			r.b.WriteString(v)
			r.b.WriteByte('n')
		default:
			writeQuoted(&r.b, v)
		}
	case bool:
		if v {
			r.b.WriteString("true")
		} else {
			r.b.WriteString("false")
		}
	case int16:
		fmt.Fprintf(&r.b, "<std::int16>%d", v)
	case int32:
		fmt.Fprintf(&r.b, "<std::int32>%d", v)
	case int64:
		fmt.Fprintf(&r.b, "%d", v)
	case float32:
		writeFloat(&r.b, float64(v), 32, "std::float32")
	case float64:
		writeFloat(&r.b, v, 64, "std::float64")
	case json.RawMessage:
		r.b.WriteString("to_json(")
		writeQuoted(&r.b, string(v))
		r.b.WriteByte(')')
	case []byte:
		writeBytes(&r.b, v)
	case uuid.UUID:
		r.b.WriteString("<std::uuid>'")
		r.b.WriteString(v.String())
		r.b.WriteByte('\'')
	case time.Time:
		r.b.WriteString("<std::datetime>'")
		r.b.WriteString(v.Format(time.RFC3339Nano))
		r.b.WriteByte('\'')
	case time.Duration:
		fmt.Fprintf(&r.b, "<std::duration>'%d microseconds'", v.Microseconds())
	default:
		return fmt.Errorf("compile: internal: no literal rendering for %T", v)
	}
	return nil
}

// writeQuoted writes an EdgeQL single-quoted string.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 {
				fmt.Fprintf(b, `\x%02x`, c)
			} else {
				b.WriteRune(c)
			}
		}
	}
	b.WriteByte('\'')
}

func writeBytes(b *strings.Builder, v []byte) {
	b.WriteString("b'")
	for _, c := range v {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\'':
			b.WriteString(`\'`)
		case c >= 0x20 && c <= 0x7e:
			b.WriteByte(c)
		default:
			fmt.Fprintf(b, `\x%02x`, c)
		}
	}
	b.WriteByte('\'')
}

// writeFloat writes a float literal with an explicit decimal point so
// the text never reads back as an integer. Non-finite values render as
// a cast from their string form.
func writeFloat(b *strings.Builder, v float64, bits int, typ string) {
	if math.IsInf(v, 1) {
		b.WriteString("<" + typ + ">'inf'")
		return
	}
	if math.IsInf(v, -1) {
		b.WriteString("<" + typ + ">'-inf'")
		return
	}
	if math.IsNaN(v) {
		b.WriteString("<" + typ + ">'nan'")
		return
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if bits == 32 {
		b.WriteString("<" + typ + ">")
	}
	b.WriteString(s)
	if !strings.ContainsAny(s, ".eE") {
		b.WriteString(".0")
	}
}
