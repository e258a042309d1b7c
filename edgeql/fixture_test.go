package edgeql

import (
	"strings"
	"testing"

	"github.com/gelq/gelq/schema"
)

// testSchema builds the catalog the package tests run against: an
// abstract Content extended by Movie and TVShow, and Person reached
// through a multi link carrying a link property.
func testSchema() *schema.Schema {
	s := schema.New()
	person := s.AddObject("default", "Person")
	person.AddProperty("name", "std::str", schema.Required)
	content := s.AddAbstract("default", "Content")
	content.AddProperty("title", "std::str", schema.Required)
	movie := s.AddObject("default", "Movie")
	movie.Extend(content)
	movie.AddProperty("year", "std::int64")
	movie.AddProperty("rating", "std::float64")
	actors := movie.AddLink("actors", person, schema.Multi)
	actors.AddLinkProperty("character", "std::str")
	movie.AddLink("director", person)
	show := s.AddObject("default", "TVShow")
	show.Extend(content)
	show.AddProperty("seasons", "std::int64")
	return s
}

func object(t *testing.T, s *schema.Schema, name string) *schema.ObjectType {
	t.Helper()
	o, ok := s.Object(name)
	if !ok {
		t.Fatalf("object %s not in test schema", name)
	}
	return o
}

// wantCode asserts that fn panics with a construction error of the
// given code.
func wantCode(t *testing.T, code ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("no panic, want %v", code)
		}
		e, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		if e.Code != code {
			t.Fatalf("panic code %v (%s), want %v", e.Code, e.Message, code)
		}
	}()
	fn()
}

// wantPanicMsg asserts that fn panics with a plain message containing
// the fragment.
func wantPanicMsg(t *testing.T, fragment string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("no panic, want one mentioning %q", fragment)
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("panic %v (%T), want string", r, r)
		}
		if !strings.Contains(msg, fragment) {
			t.Fatalf("panic %q does not mention %q", msg, fragment)
		}
	}()
	fn()
}
