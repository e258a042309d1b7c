package schema

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const schemaJSON = `{
  "object_types": [
    {
      "name": "default::Person",
      "pointers": [
        {"name": "name", "kind": "property", "target": "std::str", "required": true}
      ]
    },
    {
      "name": "default::Movie",
      "pointers": [
        {"name": "title", "kind": "property", "target": "std::str", "required": true},
        {"name": "year", "kind": "property", "target": "std::int64"},
        {
          "name": "actors", "kind": "link", "target": "default::Person", "multi": true,
          "pointers": [
            {"name": "billing_order", "kind": "property", "target": "std::int64"}
          ]
        }
      ]
    }
  ]
}`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(schemaJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, ok := s.Object("Movie")
	if !ok {
		t.Fatal("Movie not loaded")
	}
	actors, ok := m.Pointer("actors")
	if !ok {
		t.Fatal("actors not loaded")
	}
	if actors.Kind != Link {
		t.Errorf("actors.Kind = %v, want link", actors.Kind)
	}
	if actors.TargetObject() == nil || actors.TargetObject().FullName() != "default::Person" {
		t.Error("actors link target not resolved")
	}
	if !actors.Multi {
		t.Error("actors.Multi = false")
	}
	if _, ok := actors.LinkProperty("billing_order"); !ok {
		t.Error("link property billing_order not loaded")
	}
	title, _ := m.Pointer("title")
	if !title.Required {
		t.Error("title.Required = false")
	}
}

func TestLoadForwardLink(t *testing.T) {
	// Link target declared after the type that links to it.
	doc := `{"object_types": [
		{"name": "default::A", "pointers": [{"name": "b", "kind": "link", "target": "default::B"}]},
		{"name": "default::B", "pointers": []}
	]}`
	s, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, _ := s.Object("A")
	b, _ := a.Pointer("b")
	if b.TargetObject() == nil || b.TargetObject().Name != "B" {
		t.Error("forward link not resolved")
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"bad json", `{`},
		{"unknown field", `{"object_types": [], "bogus": 1}`},
		{"unknown link target", `{"object_types": [{"name": "default::A", "pointers": [{"name": "b", "kind": "link", "target": "default::Missing"}]}]}`},
		{"unknown pointer kind", `{"object_types": [{"name": "default::A", "pointers": [{"name": "b", "kind": "index", "target": "std::str"}]}]}`},
		{"duplicate type", `{"object_types": [{"name": "default::A", "pointers": []}, {"name": "default::A", "pointers": []}]}`},
		{"duplicate pointer", `{"object_types": [{"name": "default::A", "pointers": [{"name": "x", "kind": "property", "target": "std::str"}, {"name": "x", "kind": "property", "target": "std::str"}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			if err == nil {
				t.Fatal("Load succeeded on invalid document")
			}
			if !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("error %v is not ErrInvalidSchema", err)
			}
		})
	}
}

func TestSaveStable(t *testing.T) {
	s, err := Load(strings.NewReader(schemaJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var first, second bytes.Buffer
	if err := s.Save(&first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := reloaded.Save(&second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.String() != second.String() {
		t.Error("Save output changed across a load round trip")
	}
}
