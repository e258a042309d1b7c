package edgeql

import (
	"testing"
)

func TestSelectBare(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	sel := Select(movies)
	if sel.Type().Name() != "default::Movie" {
		t.Errorf("select type = %s", sel.Type().Name())
	}
	if sel.Cardinality() != Many {
		t.Errorf("select cardinality = %v", sel.Cardinality())
	}
	if sel.Shape() != nil || sel.Scope() != nil {
		t.Error("bare select should have no shape or scope")
	}
}

func TestSelectScalarSet(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	sel := Select(Path(movies, "title"))
	if !sel.Type().same(StrType) {
		t.Errorf("select type = %s", sel.Type().Name())
	}
	wantCode(t, TypeMismatch, func() {
		Select(Str("x"), func(m *Scope) *Shape {
			return NewShape().Field("anything")
		})
	})
}

func TestSelectClauseCardinality(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	limited := Select(movies, func(m *Scope) *Shape {
		return NewShape().Field("title").Limit(1)
	})
	if limited.Cardinality() != AtMostOne {
		t.Errorf("limit 1 cardinality = %v, want AtMostOne", limited.Cardinality())
	}
	single := Select(movies, func(m *Scope) *Shape {
		return NewShape().Field("title").FilterSingle(Op(m.Path("title"), "=", "Dune"))
	})
	if single.Cardinality() != AtMostOne {
		t.Errorf("filter_single cardinality = %v, want AtMostOne", single.Cardinality())
	}
	dynamic := Select(movies, func(m *Scope) *Shape {
		return NewShape().Field("title").Limit(Param("n", Int64Type))
	})
	if dynamic.Cardinality() != Many {
		t.Errorf("dynamic limit cardinality = %v, want Many", dynamic.Cardinality())
	}
}

func TestSelectNestedShape(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	sel := Select(movies, func(m *Scope) *Shape {
		return NewShape().
			Field("title").
			Nested("actors", func(a *Scope) *Shape {
				return NewShape().
					Field("name").
					LinkProp("character").
					OrderBy(Asc(a.Path("name")))
			})
	})
	fields := sel.Shape().FieldList()
	if len(fields) != 2 {
		t.Fatalf("field count = %d", len(fields))
	}
	nested := fields[1]
	if nested.Kind() != FieldNested || nested.Name() != "actors" {
		t.Fatalf("second field = %v %q", nested.Kind(), nested.Name())
	}
	if nested.Pointer() == nil || nested.Pointer().Name != "actors" {
		t.Error("nested field did not resolve its link pointer")
	}
	if nested.Scope() == nil || nested.Scope().Via() != nested.Pointer() {
		t.Error("nested scope is not ranging over the link")
	}
	sub := nested.Shape().FieldList()
	if len(sub) != 2 || sub[1].Kind() != FieldLinkProp {
		t.Fatalf("nested sub-shape fields wrong: %d", len(sub))
	}
	if sub[1].Pointer() == nil || sub[1].Pointer().Name != "character" {
		t.Error("link property pointer not resolved")
	}
}

func TestNestedShapeSeesOuterBinding(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	sel := Select(movies, func(m *Scope) *Shape {
		return NewShape().Nested("actors", func(a *Scope) *Shape {
			return NewShape().
				Field("name").
				Filter(Op(a.Path("name"), "!=", m.Path("title")))
		})
	})
	if sel.Cardinality() != Many {
		t.Errorf("cardinality = %v", sel.Cardinality())
	}
}

func TestSelectFieldErrors(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	wantCode(t, UnknownMember, func() {
		Select(movies, func(m *Scope) *Shape {
			return NewShape().Field("boxoffice")
		})
	})
	wantCode(t, UnknownMember, func() {
		Select(movies, func(m *Scope) *Shape {
			return NewShape().Nested("title", func(a *Scope) *Shape {
				return NewShape()
			})
		})
	})
	wantCode(t, UnknownMember, func() {
		Select(movies, func(m *Scope) *Shape {
			return NewShape().Field("title").LinkProp("character")
		})
	})
	wantPanicMsg(t, "appears twice", func() {
		Select(movies, func(m *Scope) *Shape {
			return NewShape().Field("title").Compute("title", Str("x"))
		})
	})
}

func TestSelectPolyFields(t *testing.T) {
	s := testSchema()
	contents := Objects(object(t, s, "Content"))
	tv := object(t, s, "TVShow")
	person := object(t, s, "Person")
	sel := Select(contents, func(c *Scope) *Shape {
		return NewShape().Field("title").Poly(tv, "seasons")
	})
	fields := sel.Shape().FieldList()
	if len(fields) != 2 || fields[1].Kind() != FieldPoly {
		t.Fatalf("poly field missing")
	}
	if fields[1].Poly() != tv {
		t.Error("poly type not recorded")
	}
	wantCode(t, TypeMismatch, func() {
		Select(contents, func(c *Scope) *Shape {
			return NewShape().Poly(person, "name")
		})
	})
	wantCode(t, UnknownMember, func() {
		Select(contents, func(c *Scope) *Shape {
			return NewShape().Poly(tv, "episodes")
		})
	})
}

func TestDanglingScopeDirectUse(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	var leaked *Scope
	Select(movies, func(m *Scope) *Shape {
		leaked = m
		return NewShape().Field("title")
	})
	wantCode(t, DanglingScopeReference, func() { Path(leaked, "title") })
	wantCode(t, DanglingScopeReference, func() { Op("exists", leaked) })
}

func TestDanglingScopeStaleSubtree(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	var stale Expr
	Select(movies, func(m *Scope) *Shape {
		stale = m.Path("title")
		return NewShape().Field("title")
	})
	wantCode(t, DanglingScopeReference, func() { Op(stale, "=", "Dune") })
	wantCode(t, DanglingScopeReference, func() {
		Select(movies, func(m *Scope) *Shape {
			return NewShape().Compute("bad", stale)
		})
	})
}

func TestScopeValidWithinOwnStatement(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	sel := Select(movies, func(m *Scope) *Shape {
		year := m.Path("year")
		return NewShape().
			Compute("doubled", Op(year, "+", year)).
			Filter(Op("exists", year))
	})
	if sel.Cardinality() != Many {
		t.Errorf("cardinality = %v", sel.Cardinality())
	}
}

func TestInsert(t *testing.T) {
	s := testSchema()
	movie := object(t, s, "Movie")
	person := object(t, s, "Person")
	ins := Insert(movie, NewShape().
		Set("title", "Dune").
		Set("year", 2021).
		Set("director", Insert(person, NewShape().Set("name", "Villeneuve"))))
	if ins.Type().Name() != "default::Movie" {
		t.Errorf("insert type = %s", ins.Type().Name())
	}
	if ins.Cardinality() != One {
		t.Errorf("insert cardinality = %v", ins.Cardinality())
	}
	if got := len(ins.Shape().SetList()); got != 3 {
		t.Errorf("set entries = %d", got)
	}
}

func TestInsertValidation(t *testing.T) {
	s := testSchema()
	movie := object(t, s, "Movie")
	content := object(t, s, "Content")
	wantPanicMsg(t, "missing required", func() {
		Insert(movie, NewShape().Set("year", 2021))
	})
	wantCode(t, UnknownMember, func() {
		Insert(movie, NewShape().Set("title", "x").Set("boxoffice", 1))
	})
	wantCode(t, TypeMismatch, func() {
		Insert(movie, NewShape().Set("title", "x").Set("year", "not a year"))
	})
	wantCode(t, TypeMismatch, func() { Insert(content, nil) })
	wantPanicMsg(t, "not valid in insert", func() {
		Insert(movie, NewShape().Set("title", "x").Field("title"))
	})
}

func TestInsertUnlessConflict(t *testing.T) {
	s := testSchema()
	movie := object(t, s, "Movie")
	movies := Objects(movie)
	base := Insert(movie, NewShape().Set("title", "Dune"))
	skip := base.UnlessConflict()
	if skip.Cardinality() != AtMostOne {
		t.Errorf("unless conflict cardinality = %v", skip.Cardinality())
	}
	if base.HasUnlessConflict() || base.Cardinality() != One {
		t.Error("UnlessConflict mutated the original insert")
	}
	on := base.UnlessConflictOn("title")
	if on.ConflictOn() != "title" {
		t.Errorf("conflict target = %q", on.ConflictOn())
	}
	withElse := base.UnlessConflictOn("title", Select(movies))
	if withElse.ConflictElse() == nil {
		t.Error("else branch lost")
	}
	if withElse.Cardinality() != Many {
		t.Errorf("conflict-else cardinality = %v", withElse.Cardinality())
	}
	wantCode(t, UnknownMember, func() { base.UnlessConflictOn("slug") })
}

func TestUpdate(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	upd := Update(movies, func(m *Scope) *Shape {
		return NewShape().
			Filter(Op(m.Path("year"), "<", 1950)).
			Set("rating", Float64(0))
	})
	if upd.Cardinality() != Many {
		t.Errorf("update cardinality = %v", upd.Cardinality())
	}
	wantPanicMsg(t, "no set entries", func() {
		Update(movies, func(m *Scope) *Shape {
			return NewShape().Filter(Bool(true))
		})
	})
	wantPanicMsg(t, "not valid in update", func() {
		Update(movies, func(m *Scope) *Shape {
			return NewShape().Field("title").Set("rating", Float64(1))
		})
	})
	wantCode(t, TypeMismatch, func() { Update(Str("x"), func(m *Scope) *Shape { return NewShape() }) })
}

func TestDelete(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	del := Delete(movies)
	if del.Cardinality() != Many || del.Type().Name() != "default::Movie" {
		t.Errorf("delete = %s/%v", del.Type().Name(), del.Cardinality())
	}
	filtered := Delete(movies, func(m *Scope) *Shape {
		return NewShape().
			Filter(Op(m.Path("year"), "<", 1900)).
			OrderBy(Asc(m.Path("year"))).
			Limit(10)
	})
	if filtered.Cardinality() != Many {
		t.Errorf("filtered delete cardinality = %v", filtered.Cardinality())
	}
	wantPanicMsg(t, "not valid in delete", func() {
		Delete(movies, func(m *Scope) *Shape {
			return NewShape().Set("year", 0)
		})
	})
	wantCode(t, TypeMismatch, func() { Delete(Int64(1)) })
}

func TestFor(t *testing.T) {
	f := For(Set(1, 2, 3), func(x *Scope) Expr {
		return Op(x, "*", Int64(2))
	})
	if !f.Type().same(Int64Type) {
		t.Errorf("for type = %s", f.Type().Name())
	}
	if f.Cardinality() != AtLeastOne {
		t.Errorf("for cardinality = %v, want AtLeastOne", f.Cardinality())
	}
}

func TestForOverObjects(t *testing.T) {
	s := testSchema()
	movie := object(t, s, "Movie")
	movies := Objects(movie)
	f := For(Select(movies), func(m *Scope) Expr {
		return Update(m, func(u *Scope) *Shape {
			return NewShape().Set("rating", Float64(5))
		})
	})
	if f.Cardinality() != Many {
		t.Errorf("for cardinality = %v", f.Cardinality())
	}
}

func TestGroup(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	g := Group(movies, func(m *Scope) *Shape {
		return NewShape().Field("title").By(m.Path("year"))
	})
	if g.Cardinality() != Many {
		t.Errorf("group cardinality = %v", g.Cardinality())
	}
	wantPanicMsg(t, "no by keys", func() {
		Group(movies, func(m *Scope) *Shape {
			return NewShape().Field("title")
		})
	})
	wantCode(t, TypeMismatch, func() {
		Group(movies, func(m *Scope) *Shape {
			return NewShape().By(m.Path("director"))
		})
	})
}

func TestSelectOfInsert(t *testing.T) {
	s := testSchema()
	person := object(t, s, "Person")
	sel := Select(Insert(person, NewShape().Set("name", "Ada")), func(p *Scope) *Shape {
		return NewShape().Field("name")
	})
	if sel.Cardinality() != One {
		t.Errorf("select-of-insert cardinality = %v", sel.Cardinality())
	}
}

func TestStatementFreeScopes(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	sel := Select(movies, func(m *Scope) *Shape {
		return NewShape().Compute("n", Len(m.Path("title")))
	})
	if got := len(sel.freeScopes()); got != 0 {
		t.Errorf("closed statement has %d free scopes", got)
	}
}
