package client

import (
	"context"
	"encoding/json"

	"github.com/gelq/gelq/edgeql"
	"github.com/gelq/gelq/edgeql/compile"
	"github.com/gelq/gelq/schema"
)

// Introspect fetches the branch's user-declared object types and
// resolves them into a Schema. Two queries run: one over
// schema::ObjectType for types, bases and pointers, then one over
// schema::Link for link properties, which the first query cannot
// reach because schema::Property has no pointers field.
func (c *Client) Introspect(ctx context.Context) (*schema.Schema, error) {
	doc, index, err := c.introspectTypes(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.introspectLinkProps(ctx, doc, index); err != nil {
		return nil, err
	}
	sch, err := schema.FromDocument(doc)
	if err != nil {
		return nil, Wrap(CodeProtocol, "inconsistent introspection result", err)
	}
	return sch, nil
}

// pointerRow and friends mirror the shapes of the two queries below.
type pointerRow struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Readonly    bool   `json:"readonly"`
	Cardinality string `json:"cardinality"`
	Kind        string `json:"kind"`
	Target      string `json:"target"`
	HasDefault  bool   `json:"has_default"`
	Computed    bool   `json:"computed"`
}

type objectTypeRow struct {
	Name     string       `json:"name"`
	Abstract bool         `json:"abstract"`
	Bases    []string     `json:"bases"`
	Pointers []pointerRow `json:"pointers"`
}

type linkRow struct {
	Name       string       `json:"name"`
	SourceType string       `json:"source_type"`
	Pointers   []pointerRow `json:"pointers"`
}

func (c *Client) introspectTypes(ctx context.Context) (*schema.Document, map[string]int, error) {
	q, err := typesQuery()
	if err != nil {
		return nil, nil, err
	}
	rows, err := c.Query(ctx, q, nil)
	if err != nil {
		return nil, nil, err
	}
	doc := &schema.Document{}
	index := make(map[string]int, len(rows))
	for _, raw := range rows {
		var row objectTypeRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, nil, Wrap(CodeProtocol, "undecodable object type row", err)
		}
		ot := schema.ObjectTypeDoc{Name: row.Name, Abstract: row.Abstract, Bases: row.Bases}
		for _, p := range row.Pointers {
			ot.Pointers = append(ot.Pointers, pointerDocOf(p, p.Kind))
		}
		index[row.Name] = len(doc.ObjectTypes)
		doc.ObjectTypes = append(doc.ObjectTypes, ot)
	}
	return doc, index, nil
}

func (c *Client) introspectLinkProps(ctx context.Context, doc *schema.Document, index map[string]int) error {
	q, err := linksQuery()
	if err != nil {
		return err
	}
	rows, err := c.Query(ctx, q, nil)
	if err != nil {
		return err
	}
	for _, raw := range rows {
		var row linkRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return Wrap(CodeProtocol, "undecodable link row", err)
		}
		if len(row.Pointers) == 0 {
			continue
		}
		ti, ok := index[row.SourceType]
		if !ok {
			// Abstract and derived links range over types the type
			// query did not return.
			continue
		}
		ptrs := doc.ObjectTypes[ti].Pointers
		for i := range ptrs {
			if ptrs[i].Name != row.Name || ptrs[i].Kind != "link" {
				continue
			}
			for _, lp := range row.Pointers {
				ptrs[i].Pointers = append(ptrs[i].Pointers, pointerDocOf(lp, "property"))
			}
			break
		}
	}
	return nil
}

func pointerDocOf(p pointerRow, kind string) schema.PointerDoc {
	return schema.PointerDoc{
		Name:       p.Name,
		Kind:       kind,
		Target:     p.Target,
		Required:   p.Required,
		Multi:      p.Cardinality == "Many",
		Readonly:   p.Readonly,
		HasDefault: p.HasDefault,
		Computed:   p.Computed,
	}
}

// metaSchema models the slice of the schema::* reflection types the
// queries below touch. A pointer name missing here is a construction
// panic, which keeps the queries and this model in sync.
func metaSchema() (objectType, linkType *schema.ObjectType) {
	s := schema.New()

	typ := s.AddObject("schema", "Type")
	typ.AddProperty("name", "std::str", schema.Required)

	ptr := s.AddObject("schema", "Pointer")
	ptr.AddProperty("name", "std::str", schema.Required)
	ptr.AddProperty("required", "std::bool")
	ptr.AddProperty("readonly", "std::bool")
	ptr.AddProperty("cardinality", "std::str", schema.Required)
	ptr.AddProperty("default", "std::str")
	ptr.AddProperty("expr", "std::str")
	ptr.AddLink("target", typ)
	ptr.AddLink("__type__", typ, schema.Required)

	objectType = s.AddObject("schema", "ObjectType")
	objectType.AddProperty("name", "std::str", schema.Required)
	objectType.AddProperty("abstract", "std::bool")
	objectType.AddProperty("builtin", "std::bool", schema.Required)
	objectType.AddProperty("compound_type", "std::bool", schema.Required)
	objectType.AddLink("bases", objectType, schema.Multi)
	objectType.AddLink("pointers", ptr, schema.Multi)

	linkType = s.AddObject("schema", "Link")
	linkType.AddProperty("name", "std::str", schema.Required)
	linkType.AddProperty("builtin", "std::bool", schema.Required)
	linkType.AddLink("source", objectType)
	linkType.AddLink("pointers", ptr, schema.Multi)

	return objectType, linkType
}

// typesQuery compiles the schema::ObjectType query. Compound types
// (unions) and builtins are filtered out; the implicit id and
// __type__ pointers are dropped from each shape.
func typesQuery() (*compile.Compiled, error) {
	objectType, _ := metaSchema()
	root := edgeql.Select(edgeql.Objects(objectType), func(o *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().
			Fields("name", "abstract").
			Compute("bases", o.Path("bases", "name")).
			Nested("pointers", pointerShape(false)).
			Filter(edgeql.Op(
				edgeql.Op("not", o.Path("builtin")),
				"and",
				edgeql.Op("not", o.Path("compound_type")),
			)).
			OrderBy(edgeql.Asc(o.Path("name")))
	})
	return compile.Compile(root)
}

// linksQuery compiles the schema::Link query. Every concrete link in
// the branch comes back; rows for links without properties or on
// unknown source types are skipped when merging.
func linksQuery() (*compile.Compiled, error) {
	_, linkType := metaSchema()
	root := edgeql.Select(edgeql.Objects(linkType), func(l *edgeql.Scope) *edgeql.Shape {
		return edgeql.NewShape().
			Field("name").
			Compute("source_type", l.Path("source", "name")).
			Nested("pointers", pointerShape(true)).
			Filter(edgeql.Op("not", l.Path("builtin")))
	})
	return compile.Compile(root)
}

// pointerShape describes one schema::Pointer row. Link properties are
// always properties, so they skip the kind dispatch and hide the
// bookkeeping source and target links instead of id and __type__.
func pointerShape(linkProp bool) edgeql.ShapeFunc {
	return func(p *edgeql.Scope) *edgeql.Shape {
		sh := edgeql.NewShape().Fields("name", "required", "readonly", "cardinality")
		hidden := edgeql.Set("id", "__type__")
		if linkProp {
			hidden = edgeql.Set("source", "target")
		} else {
			sh.Compute("kind", edgeql.Op(
				"link", "if",
				edgeql.Op(p.Path("__type__", "name"), "=", "schema::Link"),
				"else", "property",
			))
		}
		return sh.
			Compute("target", p.Path("target", "name")).
			Compute("has_default", edgeql.Op("exists", p.Path("default"))).
			Compute("computed", edgeql.Op("exists", p.Path("expr"))).
			Filter(edgeql.Op(p.Path("name"), "not in", hidden))
	}
}
