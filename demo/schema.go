package main

import "github.com/gelq/gelq/schema"

// movieSchema is the hand-registered schema the demo queries run
// against. A real application would generate this with gelq
// introspect + generate.
func movieSchema() *schema.Schema {
	s := schema.New()

	content := s.AddAbstract("default", "Content")
	content.AddProperty("title", "std::str", schema.Required)

	person := s.AddObject("default", "Person")
	person.AddProperty("name", "std::str", schema.Required)

	movie := s.AddObject("default", "Movie")
	movie.Extend(content)
	movie.AddProperty("year", "std::int64", schema.HasDefault)
	actors := movie.AddLink("actors", person, schema.Multi)
	actors.AddLinkProperty("character", "std::str")

	return s
}
