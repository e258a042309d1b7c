package edgeql

import "testing"

func TestAggregates(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	c := Count(movies)
	if !c.Type().same(Int64Type) || c.Cardinality() != One {
		t.Errorf("count gave %s/%v", c.Type().Name(), c.Cardinality())
	}
	sum := Sum(Path(movies, "year"))
	if !sum.Type().same(Int64Type) || sum.Cardinality() != One {
		t.Errorf("sum gave %s/%v", sum.Type().Name(), sum.Cardinality())
	}
	if bs := Sum(Set(BigInt("1"), BigInt("2"))); !bs.Type().same(BigIntType) {
		t.Errorf("sum of bigints = %s", bs.Type().Name())
	}
	mn := Min(Path(movies, "year"))
	if mn.Cardinality() != AtMostOne {
		t.Errorf("min cardinality = %v, want AtMostOne", mn.Cardinality())
	}
	agg := ArrayAgg(Path(movies, "title"))
	if agg.Type().Name() != "array<std::str>" || agg.Cardinality() != One {
		t.Errorf("array_agg gave %s/%v", agg.Type().Name(), agg.Cardinality())
	}
	wantCode(t, TypeMismatch, func() { Sum(Path(movies, "title")) })
}

func TestElementwiseFuncs(t *testing.T) {
	if e := Len(Str("abc")); !e.Type().same(Int64Type) {
		t.Errorf("len = %s", e.Type().Name())
	}
	if e := StrUpper(Str("x")); !e.Type().same(StrType) {
		t.Errorf("str_upper = %s", e.Type().Name())
	}
	if e := StrSplit(Str("a,b"), Str(",")); e.Type().Name() != "array<std::str>" {
		t.Errorf("str_split = %s", e.Type().Name())
	}
	if e := Contains(Array(1, 2), Int64(3)); !e.Type().same(BoolType) {
		t.Errorf("contains = %s", e.Type().Name())
	}
	wantCode(t, TypeMismatch, func() { Len(Int64(1)) })
	wantCode(t, TypeMismatch, func() { Contains(Array(1), Str("x")) })
}

func TestJSONGet(t *testing.T) {
	e := Func("std::json_get", JSON([]byte(`{"a":{"b":1}}`)), "a", "b")
	if !e.Type().same(JSONType) {
		t.Errorf("json_get = %s", e.Type().Name())
	}
	if e.Cardinality() != AtMostOne {
		t.Errorf("json_get cardinality = %v, want AtMostOne", e.Cardinality())
	}
	wantCode(t, TypeMismatch, func() {
		Func("std::json_get", JSON([]byte(`{}`)), Int64(1))
	})
}

func TestArrayUnpackFunc(t *testing.T) {
	e := ArrayUnpack(Array(1, 2, 3))
	if !e.Type().same(Int64Type) || e.Cardinality() != Many {
		t.Errorf("array_unpack gave %s/%v", e.Type().Name(), e.Cardinality())
	}
	wantCode(t, TypeMismatch, func() { ArrayUnpack(Str("x")) })
}

func TestCardinalityAssertions(t *testing.T) {
	s := testSchema()
	movies := Objects(object(t, s, "Movie"))
	single := AssertSingle(movies)
	if single.Cardinality() != AtMostOne {
		t.Errorf("assert_single cardinality = %v", single.Cardinality())
	}
	exists := AssertExists(Path(movies, "year"))
	if exists.Cardinality() != AtLeastOne {
		t.Errorf("assert_exists cardinality = %v", exists.Cardinality())
	}
}

func TestFuncErrors(t *testing.T) {
	wantCode(t, TypeMismatch, func() { Func("std::count") })
	wantCode(t, TypeMismatch, func() { Func("std::nope", Int64(1)) })
}

func TestCallEscapeHatch(t *testing.T) {
	e := Call("ext::pg_trgm::similarity", Float32Type, One, Str("a"), Str("b"))
	if !e.Type().same(Float32Type) || e.Cardinality() != One {
		t.Errorf("call gave %s/%v", e.Type().Name(), e.Cardinality())
	}
	if e.Name() != "ext::pg_trgm::similarity" {
		t.Errorf("call name = %q", e.Name())
	}
}

func TestDefineFunc(t *testing.T) {
	DefineFunc(FuncSig{Name: "test::shout", Infer: func(args []Expr) (Type, Cardinality) {
		exactly("test::shout", 1, args)
		return StrType, crossAll(args)
	}})
	e := Func("test::shout", Str("hi"))
	if !e.Type().same(StrType) {
		t.Errorf("custom func = %s", e.Type().Name())
	}
	wantPanicMsg(t, "already defined", func() {
		DefineFunc(FuncSig{Name: "test::shout", Infer: func(args []Expr) (Type, Cardinality) {
			return StrType, One
		}})
	})
	wantPanicMsg(t, "empty name", func() { DefineFunc(FuncSig{}) })
}
