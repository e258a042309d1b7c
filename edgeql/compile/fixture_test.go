package compile

import (
	"strings"
	"testing"

	"github.com/gelq/gelq/edgeql"
	"github.com/gelq/gelq/schema"
)

// testSchema builds the catalog the compilation tests run against: an
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

// compileText compiles root and fails the test on error.
func compileText(t *testing.T, root edgeql.Expr, opts ...Option) string {
	t.Helper()
	c, err := Compile(root, opts...)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return c.Text
}

// wantCompileError asserts that compiling root fails with an error
// mentioning the fragment.
func wantCompileError(t *testing.T, fragment string, root edgeql.Expr) {
	t.Helper()
	c, err := Compile(root)
	if err == nil {
		t.Fatalf("Compile succeeded with %q, want error mentioning %q", c.Text, fragment)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Fatalf("Compile error %q does not mention %q", err, fragment)
	}
}
