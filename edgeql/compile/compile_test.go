package compile

import (
	"reflect"
	"testing"

	"github.com/gelq/gelq/edgeql"
)

func TestCompileScalarSet(t *testing.T) {
	got := compileText(t, edgeql.Select(edgeql.Set(3, 5, 7)))
	want := "select {3, 5, 7}"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileBareExpressionWrapped(t *testing.T) {
	if got := compileText(t, edgeql.Int64(1)); got != "select 1" {
		t.Errorf("bare literal compiled to %q", got)
	}
	if got := compileText(t, edgeql.Str("x")); got != "select 'x'" {
		t.Errorf("bare string compiled to %q", got)
	}
}

// A node referenced twice by identity renders as one preamble binding
// used twice, not as two copies.
func TestCompileSharedScalar(t *testing.T) {
	x := edgeql.Int64(3)
	got := compileText(t, edgeql.Select(edgeql.Op(x, "^", x)))
	want := "with\n  __v0 := 3\nselect (__v0 ^ __v0)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileSharedPathPrefix(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	d := edgeql.Path(movies, "director")
	got := compileText(t, edgeql.Op(d.Path("name"), "++", d.Path("name")))
	want := "with\n  __v0 := default::Movie.director\nselect (__v0.name ++ __v0.name)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileIntersectedPath(t *testing.T) {
	s := testSchema()
	content := object(t, s, "Content")
	movie := object(t, s, "Movie")
	person := object(t, s, "Person")

	got := compileText(t, edgeql.Path(edgeql.Is(edgeql.Objects(content), movie), "year"))
	want := "select default::Content[is default::Movie].year"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}

	back := edgeql.Backlink(edgeql.Objects(person), "actors", movie)
	got = compileText(t, back.Path("title"))
	want = "select default::Person.<actors[is default::Movie].title"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// A scope-rooted path repeats freely: leading dots are valid anywhere
// inside the statement, so sharing one node costs nothing.
func TestCompileScopePathRepeatsInline(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		r := m.Path("rating")
		return edgeql.NewShape().
			Filter(edgeql.Op(edgeql.Op(r, ">", 1.0), "and", edgeql.Op(r, "<", 9.0)))
	})
	got := compileText(t, q)
	want := "select default::Movie\nfilter ((.rating > 1.0) and (.rating < 9.0))"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// A correlated node shared within one clause binds in a sub-with
// wrapped around that clause, where its leading dots stay valid.
func TestCompileCorrelatedClauseBinding(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		double := edgeql.Op(m.Path("rating"), "*", 2.0)
		return edgeql.NewShape().
			Filter(edgeql.Op(edgeql.Op(double, ">", 10.0), "and", edgeql.Op(double, "<", 20.0)))
	})
	got := compileText(t, q)
	want := "select default::Movie\n" +
		"filter (with __v0 := (.rating * 2.0) select ((__v0 > 10.0) and (__v0 < 20.0)))"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// A correlated node shared across two different clauses has no single
// position that reaches both; it renders in full at each site.
func TestCompileCorrelatedInlineFallback(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		double := edgeql.Op(m.Path("rating"), "*", 2.0)
		return edgeql.NewShape().
			Compute("double", double).
			Filter(edgeql.Op(double, ">", 10.0))
	})
	got := compileText(t, q)
	want := "select default::Movie {\n  double := (.rating * 2.0)\n}\nfilter ((.rating * 2.0) > 10.0)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// A scope-rooted path used under a different statement is hoisted at
// the innermost clause of its own statement, so the inner statement
// sees a binding name instead of a foreign leading dot.
func TestCompileCrossScopeSubquery(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		sameYear := edgeql.Select(edgeql.Detached(movies), func(o *edgeql.Scope) *edgeql.Shape {
			return edgeql.NewShape().
				Filter(edgeql.Op(o.Path("year"), "=", m.Path("year")))
		})
		return edgeql.NewShape().
			Field("title").
			Compute("same_year", sameYear)
	})
	got := compileText(t, q)
	want := "select default::Movie {\n" +
		"  title,\n" +
		"  same_year := (with __v0 := .year select (select (detached default::Movie)\n" +
		"    filter (.year = __v0)))\n" +
		"}"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// Iterator variables and forced bindings share one name counter, in
// first-appearance order.
func TestCompileIteratorAndForcedNaming(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		sums := edgeql.For(edgeql.Set(1, 2), func(x *edgeql.Scope) edgeql.Expr {
			return edgeql.Op(x, "+", m.Path("year"))
		})
		return edgeql.NewShape().Compute("sums", sums)
	})
	got := compileText(t, q)
	want := "select default::Movie {\n" +
		"  sums := (with __v1 := .year select (for __v0 in ({1, 2})\n" +
		"    union (__v0 + __v1)))\n" +
		"}"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileExplicitWith(t *testing.T) {
	x := edgeql.Int64(3)
	w := edgeql.With([]edgeql.Expr{x}, edgeql.Op(x, "+", x))
	got := compileText(t, w)
	want := "with\n  __v0 := 3\nselect (__v0 + __v0)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// Explicit with-bindings and implicit hoists fold into one preamble.
func TestCompileMergedPreamble(t *testing.T) {
	shared := edgeql.Int64(10)
	bonus := edgeql.Int64(5)
	w := edgeql.With([]edgeql.Expr{bonus},
		edgeql.Op(edgeql.Op(shared, "+", shared), "*", bonus))
	got := compileText(t, w)
	want := "with\n  __v0 := 5,\n  __v1 := 10\nselect ((__v1 + __v1) * __v0)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileNestedWith(t *testing.T) {
	x := edgeql.Int64(7)
	inner := edgeql.With([]edgeql.Expr{x}, edgeql.Op(x, "*", x))
	got := compileText(t, edgeql.Op(inner, "+", 1))
	want := "select ((with __v0 := 7 select (__v0 * __v0)) + 1)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// Names follow first appearance; the preamble orders bindings so each
// definition precedes the ones that use it.
func TestCompileDependentBindings(t *testing.T) {
	base := edgeql.Int64(2)
	sq := edgeql.Op(base, "*", base)
	got := compileText(t, edgeql.Op(sq, "+", sq))
	want := "with\n  __v1 := 2,\n  __v0 := (__v1 * __v1)\nselect (__v0 + __v0)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// An alias and its base both bind; the alias definition is the base's
// name, giving a second iteration variable over the same set.
func TestCompileAlias(t *testing.T) {
	nums := edgeql.Set(1, 2, 3)
	twin := edgeql.Alias(nums)
	got := compileText(t, edgeql.Op(nums, "+", twin))
	want := "with\n  __v0 := {1, 2, 3},\n  __v1 := __v0\nselect (__v0 + __v1)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

// A select whose statement binding is referenced bare needs the
// subject under a name; schema sets use their schema name instead.
func TestCompileSubjectBinding(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))

	titles := edgeql.Path(movies, "title")
	q := edgeql.Select(titles, func(tt *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().Filter(edgeql.Op(edgeql.Len(tt), ">", 3))
	})
	got := compileText(t, q)
	want := "with\n  __v0 := default::Movie.title\nselect __v0\nfilter (std::len(__v0) > 3)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}

	q2 := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().Filter(edgeql.Op(edgeql.Count(m), ">", 100))
	})
	got = compileText(t, q2)
	want = "select default::Movie\nfilter (std::count(default::Movie) > 100)"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileGroupFilterFolds(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Group(movies, func(m *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().
			Filter(edgeql.Op(m.Path("rating"), ">", 5.0)).
			By(m.Path("year"))
	})
	got := compileText(t, q)
	want := "group (select default::Movie filter (.rating > 5.0))\nby .year"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCompileParamsCollected(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().
			Field("title").
			Filter(edgeql.Op(m.Path("year"), ">=",
				edgeql.Op(edgeql.OptionalParam("min_year", edgeql.Int64Type), "??", 1970))).
			Limit(edgeql.Param("page_size", edgeql.Int64Type))
	})
	c, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "select default::Movie {\n  title\n}\n" +
		"filter (.year >= (<optional std::int64>$min_year ?? 1970))\n" +
		"limit <std::int64>$page_size"
	if c.Text != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, c.Text)
	}
	wantParams := []ParamDesc{
		{Name: "min_year", Type: "std::int64", Optional: true},
		{Name: "page_size", Type: "std::int64", Optional: false},
	}
	if !reflect.DeepEqual(c.Params, wantParams) {
		t.Errorf("params = %+v, want %+v", c.Params, wantParams)
	}
}

// A parameter repeats its cast at every use and surfaces once.
func TestCompileParamRepeats(t *testing.T) {
	p := edgeql.Param("n", edgeql.Int64Type)
	c, err := Compile(edgeql.Op(p, "+", p))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "select (<std::int64>$n + <std::int64>$n)"
	if c.Text != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, c.Text)
	}
	if len(c.Params) != 1 {
		t.Errorf("params = %+v, want one entry", c.Params)
	}
}

func TestCompileParamConflict(t *testing.T) {
	p1 := edgeql.Param("x", edgeql.Int64Type)
	p2 := edgeql.Param("x", edgeql.StrType)
	wantCompileError(t, "declared as std::int64 and std::str",
		edgeql.Op(edgeql.ToStr(p1), "++", p2))
}

func TestCompileParamsDeclared(t *testing.T) {
	decls := []edgeql.ParamDecl{{Name: "n", Type: edgeql.Int64Type}}
	body := edgeql.Select(edgeql.Op(edgeql.Param("n", edgeql.Int64Type), "+", 1))
	c, err := Compile(edgeql.Params(decls, body))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "select (<std::int64>$n + 1)"
	if c.Text != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, c.Text)
	}
	wantParams := []ParamDesc{{Name: "n", Type: "std::int64"}}
	if !reflect.DeepEqual(c.Params, wantParams) {
		t.Errorf("params = %+v, want %+v", c.Params, wantParams)
	}
}

func TestCompileParamsDeclaredMismatch(t *testing.T) {
	decls := []edgeql.ParamDecl{{Name: "n", Type: edgeql.Int64Type, Optional: true}}
	body := edgeql.Select(edgeql.Op(edgeql.Param("n", edgeql.Int64Type), "+", 1))
	wantCompileError(t, "declared as optional std::int64 and std::int64",
		edgeql.Params(decls, body))
}

func TestCompileCardinality(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))

	c, err := Compile(edgeql.Select(movies))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Cardinality != edgeql.Many {
		t.Errorf("bare select cardinality = %v, want Many", c.Cardinality)
	}

	single := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().
			Field("title").
			FilterSingle(edgeql.Op(m.Path("title"), "=", "Dune"))
	})
	c, err = Compile(single)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Cardinality != edgeql.AtMostOne {
		t.Errorf("filter_single cardinality = %v, want AtMostOne", c.Cardinality)
	}
	want := "select default::Movie {\n  title\n}\nfilter (.title = 'Dune')"
	if c.Text != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, c.Text)
	}
}

func TestCompileLayouts(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().
			Field("title").
			Filter(edgeql.Op(m.Path("year"), ">", 1999))
	})

	pretty := compileText(t, q)
	wantPretty := "select default::Movie {\n  title\n}\nfilter (.year > 1999)"
	if pretty != wantPretty {
		t.Errorf("expected:\n%s\ngot:\n%s", wantPretty, pretty)
	}
	if got := compileText(t, q, WithLayout(Pretty)); got != pretty {
		t.Errorf("explicit pretty differs from default:\n%s", got)
	}

	compact := compileText(t, q, WithLayout(Compact))
	wantCompact := "select default::Movie { title } filter (.year > 1999)"
	if compact != wantCompact {
		t.Errorf("expected:\n%s\ngot:\n%s", wantCompact, compact)
	}

	if Pretty.Name() != "pretty" || Compact.Name() != "compact" {
		t.Errorf("layout names = %q, %q", Pretty.Name(), Compact.Name())
	}
}

func TestCompileDeterminism(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		double := edgeql.Op(m.Path("rating"), "*", 2.0)
		return edgeql.NewShape().
			Fields("title", "year").
			Filter(edgeql.Op(edgeql.Op(double, ">", 1.0), "and", edgeql.Op(double, "<", 19.0))).
			OrderBy(edgeql.Desc(m.Path("rating")))
	})
	first := compileText(t, q)
	for i := 0; i < 10; i++ {
		if got := compileText(t, q); got != first {
			t.Fatalf("run %d differs:\n%s\nfirst:\n%s", i, got, first)
		}
	}
}

func TestCompileNilExpression(t *testing.T) {
	_, err := Compile(nil)
	if err == nil {
		t.Fatal("Compile(nil) succeeded")
	}
}

func TestCompileNilLayout(t *testing.T) {
	_, err := Compile(edgeql.Int64(1), WithLayout(nil))
	if err == nil {
		t.Fatal("Compile with nil layout succeeded")
	}
}

func TestCompileFreeScope(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	var leaked edgeql.Expr
	edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		leaked = edgeql.Op(m.Path("year"), ">", 1999)
		return edgeql.NewShape().Field("title")
	})
	wantCompileError(t, "scope binding", leaked)
}

func TestCompileWithEscape(t *testing.T) {
	x := edgeql.Int64(3)
	w := edgeql.With([]edgeql.Expr{x}, edgeql.Op(x, "+", x))
	wantCompileError(t, "does not enclose", edgeql.Op(w, "+", x))
}

func TestCompileNestedScopeAsValue(t *testing.T) {
	s := testSchema()
	movies := edgeql.Objects(object(t, s, "Movie"))
	q := edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().Nested("actors", func(a *edgeql.Scope) *edgeql.Shape {
			return edgeql.NewShape().Field("name").Compute("weight", edgeql.Count(a))
		})
	})
	wantCompileError(t, "nested shape element", q)
}
