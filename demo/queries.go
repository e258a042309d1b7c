package main

import (
	"github.com/gelq/gelq/edgeql"
	"github.com/gelq/gelq/schema"
)

var db = movieSchema()

func obj(name string) *schema.ObjectType {
	t, ok := db.Object(name)
	if !ok {
		panic("demo: unknown object type " + name)
	}
	return t
}

func init() {
	movie := obj("default::Movie")
	person := obj("default::Person")
	movies := edgeql.Objects(movie)
	persons := edgeql.Objects(person)

	// MovieListing - newest movies with their cast (returns multiple rows)
	edgeql.Define("MovieListing",
		edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
			return edgeql.NewShape().
				Fields("title", "year").
				Nested("actors", func(a *edgeql.Scope) *edgeql.Shape {
					return edgeql.NewShape().Field("name").LinkProp("character")
				}).
				OrderBy(edgeql.Desc(m.Path("year"))).
				Limit(edgeql.Param("limit", edgeql.Int64Type))
		}))

	// MoviesAfter - movies released since $min_year (returns multiple rows)
	edgeql.Define("MoviesAfter",
		edgeql.Select(movies, func(m *edgeql.Scope) *edgeql.Shape {
			return edgeql.NewShape().
				Fields("title", "year").
				Filter(edgeql.Op(m.Path("year"), ">=", edgeql.Param("min_year", edgeql.Int64Type))).
				OrderBy(edgeql.Asc(m.Path("title")))
		}))

	// Filmography - every person with the titles they appeared in, via
	// the backlink over Movie.actors (returns multiple rows)
	edgeql.Define("Filmography",
		edgeql.Select(persons, func(p *edgeql.Scope) *edgeql.Shape {
			return edgeql.NewShape().
				Field("name").
				Compute("titles", edgeql.Path(edgeql.Backlink(p, "actors", movie), "title")).
				OrderBy(edgeql.Asc(p.Path("name")))
		}))

	// MovieCount - total number of movies (returns exactly one row)
	edgeql.Define("MovieCount", edgeql.Count(movies))

	// AddPerson - insert a person by name (returns the new object)
	edgeql.Define("AddPerson",
		edgeql.Insert(person, edgeql.NewShape().
			Set("name", edgeql.Param("name", edgeql.StrType))))
}
