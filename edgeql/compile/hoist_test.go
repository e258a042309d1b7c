package compile

import (
	"testing"

	"github.com/gelq/gelq/edgeql"
)

func mustPlan(t *testing.T, root edgeql.Expr) *plan {
	t.Helper()
	p, err := buildPlan(root)
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	return p
}

func TestPlanSharedLiteral(t *testing.T) {
	x := edgeql.Int64(3)
	p := mustPlan(t, edgeql.Select(edgeql.Op(x, "^", x)))
	if len(p.root) != 1 || p.root[0].expr != x {
		t.Fatalf("root bindings = %+v, want one binding for the literal", p.root)
	}
	if p.root[0].name != "__v0" {
		t.Errorf("binding name = %q, want __v0", p.root[0].name)
	}
	if len(p.clause) != 0 {
		t.Errorf("clause bindings = %+v, want none", p.clause)
	}
}

// Schema sets, parameters, and scope-rooted paths repeat by name or by
// leading dot; sharing them never produces a binding.
func TestPlanExemptKinds(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))

	p := mustPlan(t, edgeql.Op(edgeql.Count(movies), "+", edgeql.Count(movies)))
	if len(p.root) != 0 || len(p.clause) != 0 {
		t.Errorf("shared schema set produced bindings: %+v %+v", p.root, p.clause)
	}

	n := edgeql.Param("n", edgeql.Int64Type)
	p = mustPlan(t, edgeql.Op(n, "+", n))
	if len(p.root) != 0 || len(p.clause) != 0 {
		t.Errorf("shared parameter produced bindings: %+v %+v", p.root, p.clause)
	}

	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		r := m.Path("rating")
		return edgeql.NewShape().
			Filter(edgeql.Op(edgeql.Op(r, ">", 1.0), "and", edgeql.Op(r, "<", 9.0)))
	})
	p = mustPlan(t, q)
	if len(p.root) != 0 || len(p.clause) != 0 {
		t.Errorf("shared scope path produced bindings: %+v %+v", p.root, p.clause)
	}
}

// A node bound by an explicit with keeps its position: the planner
// names it there instead of choosing one.
func TestPlanClaimedSkipsPlacement(t *testing.T) {
	x := edgeql.Int64(3)
	w := edgeql.With([]edgeql.Expr{x}, edgeql.Op(x, "+", x))
	p := mustPlan(t, w)
	if len(p.root) != 0 {
		t.Errorf("root bindings = %+v, want none", p.root)
	}
	got := p.with[w]
	if len(got) != 1 || got[0].expr != x || got[0].name != "__v0" {
		t.Fatalf("with bindings = %+v, want [{__v0 3}]", got)
	}
}

func TestPlanClauseAnchor(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	var filt edgeql.Expr
	var double edgeql.Expr
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		double = edgeql.Op(m.Path("rating"), "*", 2.0)
		filt = edgeql.Op(edgeql.Op(double, ">", 10.0), "and", edgeql.Op(double, "<", 20.0))
		return edgeql.NewShape().Filter(filt)
	})
	p := mustPlan(t, q)
	if len(p.root) != 0 {
		t.Errorf("root bindings = %+v, want none", p.root)
	}
	got := p.clause[filt]
	if len(got) != 1 || got[0].expr != double || got[0].name != "__v0" {
		t.Fatalf("clause bindings = %+v, want the doubled rating as __v0", got)
	}
	if p.owner[filt] != q.Scope() {
		t.Errorf("clause owner = %p, want the select scope %p", p.owner[filt], q.Scope())
	}
}

// Shared across two clauses of one statement there is no position that
// reaches both occurrences, so the node stays inline.
func TestPlanInlineFallback(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		double := edgeql.Op(m.Path("rating"), "*", 2.0)
		return edgeql.NewShape().
			Compute("double", double).
			Filter(edgeql.Op(double, ">", 10.0))
	})
	p := mustPlan(t, q)
	if len(p.root) != 0 || len(p.clause) != 0 {
		t.Errorf("correlated node across clauses bound: %+v %+v", p.root, p.clause)
	}
}

// A scope path used under a foreign statement binds at the innermost
// clause of its own statement, even with a single occurrence.
func TestPlanForcedPath(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	var yearPath edgeql.Expr
	var inner edgeql.Expr
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		yearPath = m.Path("year")
		inner = edgeql.Select(edgeql.Detached(movies), func(o *edgeql.Scope) *edgeql.Shape {
			return edgeql.NewShape().Filter(edgeql.Op(o.Path("year"), "=", yearPath))
		})
		return edgeql.NewShape().Compute("same_year", inner)
	})
	p := mustPlan(t, q)
	got := p.clause[inner]
	if len(got) != 1 || got[0].expr != yearPath {
		t.Fatalf("clause bindings = %+v, want the outer year path", got)
	}
	if p.owner[inner] != q.Scope() {
		t.Errorf("forced binding owner = %p, want the outer scope %p", p.owner[inner], q.Scope())
	}
}

func TestPlanIteratorNamed(t *testing.T) {
	q := edgeql.For(edgeql.Set(1, 2), func(x *edgeql.Scope) edgeql.Expr {
		return edgeql.Op(x, "+", 1)
	})
	p := mustPlan(t, q)
	if got := p.iter[q.Scope()]; got != "__v0" {
		t.Errorf("iterator name = %q, want __v0", got)
	}
}

// Plain scope paths group as bare atoms; any other key is declared in
// the using clause under a generated name.
func TestPlanGroupKeys(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	var decade edgeql.Expr
	var atom edgeql.Expr
	q := edgeql.Group(movies, func(m *edgeql.Scope) *edgeql.Shape {
		decade = edgeql.Op(m.Path("year"), "//", 10)
		atom = m.Path("director")
		return edgeql.NewShape().By(decade, atom)
	})
	p := mustPlan(t, q)
	keys := p.using[q]
	if len(keys) != 2 {
		t.Fatalf("group keys = %+v, want two", keys)
	}
	if keys[0].key != decade || keys[0].name != "__v0" {
		t.Errorf("computed key = %+v, want {__v0, decade}", keys[0])
	}
	if keys[1].key != atom || keys[1].name != "" {
		t.Errorf("atom key = %+v, want unnamed", keys[1])
	}
}

// Referencing the statement binding bare forces a name onto the
// subject when the subject is not a schema set.
func TestPlanForceSubject(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	titles := edgeql.Path(movies, "title")
	q := edgeql.Select(titles, func(tt *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().Filter(edgeql.Op(edgeql.Len(tt), ">", 3))
	})
	p := mustPlan(t, q)
	if len(p.root) != 1 || p.root[0].expr != edgeql.Expr(titles) {
		t.Fatalf("root bindings = %+v, want the subject path", p.root)
	}
}

// Root bindings come out with definitions before uses even when the
// name counter ran the other way.
func TestPlanDependencyOrder(t *testing.T) {
	base := edgeql.Int64(2)
	sq := edgeql.Op(base, "*", base)
	p := mustPlan(t, edgeql.Op(sq, "+", sq))
	if len(p.root) != 2 {
		t.Fatalf("root bindings = %+v, want two", p.root)
	}
	if p.root[0].expr != edgeql.Expr(base) || p.root[0].name != "__v1" {
		t.Errorf("first binding = {%s %v}, want the base literal as __v1", p.root[0].name, p.root[0].expr)
	}
	if p.root[1].expr != edgeql.Expr(sq) || p.root[1].name != "__v0" {
		t.Errorf("second binding = {%s %v}, want the product as __v0", p.root[1].name, p.root[1].expr)
	}
}
