package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSchema reports a structurally invalid introspection
// document.
var ErrInvalidSchema = errors.New("schema: invalid introspection document")

// Document is the wire form of an introspected schema, as produced by
// the schema::ObjectType introspection query and stored in
// .gelq/schema.json.
type Document struct {
	ObjectTypes []ObjectTypeDoc `json:"object_types"`
}

type ObjectTypeDoc struct {
	Name     string       `json:"name"`
	Abstract bool         `json:"abstract,omitempty"`
	Bases    []string     `json:"bases,omitempty"`
	Pointers []PointerDoc `json:"pointers"`
}

type PointerDoc struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Target     string       `json:"target"`
	Required   bool         `json:"required,omitempty"`
	Multi      bool         `json:"multi,omitempty"`
	Readonly   bool         `json:"readonly,omitempty"`
	HasDefault bool         `json:"has_default,omitempty"`
	Computed   bool         `json:"computed,omitempty"`
	Pointers   []PointerDoc `json:"pointers,omitempty"`
}

// Load reads an introspection document and resolves it into a Schema.
// Resolution is two-pass: object types are created first so links and
// bases can target types declared later in the document.
func Load(r io.Reader) (*Schema, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return FromDocument(&doc)
}

// FromDocument resolves an already-decoded document.
func FromDocument(doc *Document) (*Schema, error) {
	s := New()
	for _, ot := range doc.ObjectTypes {
		module, name := SplitName(ot.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: object type with empty name", ErrInvalidSchema)
		}
		if _, dup := s.objects[Qualify(ot.Name)]; dup {
			return nil, fmt.Errorf("%w: duplicate object type %q", ErrInvalidSchema, ot.Name)
		}
		t := s.AddObject(module, name)
		t.Abstract = ot.Abstract
	}
	for _, ot := range doc.ObjectTypes {
		t, _ := s.Object(ot.Name)
		for _, base := range ot.Bases {
			bt, ok := s.Object(base)
			if !ok {
				// Std abstract bases (std::Object and friends) are not
				// part of the document; skip them rather than fail.
				continue
			}
			t.bases = append(t.bases, bt)
		}
		for _, pd := range ot.Pointers {
			if err := t.loadPointer(s, pd); err != nil {
				return nil, fmt.Errorf("%w: type %q: %v", ErrInvalidSchema, ot.Name, err)
			}
		}
	}
	return s, nil
}

func (t *ObjectType) loadPointer(s *Schema, pd PointerDoc) error {
	if pd.Name == "" {
		return errors.New("pointer with empty name")
	}
	if _, dup := t.byName[pd.Name]; dup {
		return fmt.Errorf("duplicate pointer %q", pd.Name)
	}
	p := &Pointer{
		Name:       pd.Name,
		Target:     pd.Target,
		Required:   pd.Required,
		Multi:      pd.Multi,
		Readonly:   pd.Readonly,
		HasDefault: pd.HasDefault,
		Computed:   pd.Computed,
	}
	switch pd.Kind {
	case "property":
		p.Kind = Property
	case "link":
		p.Kind = Link
		target, ok := s.Object(pd.Target)
		if !ok {
			return fmt.Errorf("link %q targets unknown type %q", pd.Name, pd.Target)
		}
		p.target = target
	default:
		return fmt.Errorf("pointer %q has unknown kind %q", pd.Name, pd.Kind)
	}
	for _, lpd := range pd.Pointers {
		if lpd.Kind != "property" {
			return fmt.Errorf("link %q: nested pointer %q is not a property", pd.Name, lpd.Name)
		}
		if _, dup := p.linkPropsM[lpd.Name]; dup {
			return fmt.Errorf("duplicate link property %q on %q", lpd.Name, pd.Name)
		}
		p.AddLinkProperty(lpd.Name, lpd.Target, docOptions(lpd)...)
	}
	t.pointers = append(t.pointers, p)
	t.byName[p.Name] = p
	return nil
}

func docOptions(pd PointerDoc) []PointerOption {
	var opts []PointerOption
	if pd.Required {
		opts = append(opts, Required)
	}
	if pd.Multi {
		opts = append(opts, Multi)
	}
	if pd.Readonly {
		opts = append(opts, Readonly)
	}
	if pd.HasDefault {
		opts = append(opts, HasDefault)
	}
	if pd.Computed {
		opts = append(opts, Computed)
	}
	return opts
}

// ToDocument converts a Schema back to its wire form, in registration
// order. Save(Load(x)) is stable.
func (s *Schema) ToDocument() *Document {
	doc := &Document{}
	for _, t := range s.Objects() {
		ot := ObjectTypeDoc{Name: t.FullName(), Abstract: t.Abstract}
		for _, b := range t.bases {
			ot.Bases = append(ot.Bases, b.FullName())
		}
		for _, p := range t.pointers {
			ot.Pointers = append(ot.Pointers, pointerDoc(p))
		}
		doc.ObjectTypes = append(doc.ObjectTypes, ot)
	}
	return doc
}

func pointerDoc(p *Pointer) PointerDoc {
	pd := PointerDoc{
		Name:       p.Name,
		Kind:       p.Kind.String(),
		Target:     p.Target,
		Required:   p.Required,
		Multi:      p.Multi,
		Readonly:   p.Readonly,
		HasDefault: p.HasDefault,
		Computed:   p.Computed,
	}
	for _, lp := range p.linkProps {
		pd.Pointers = append(pd.Pointers, pointerDoc(lp))
	}
	return pd
}

// Save writes the schema as indented JSON.
func (s *Schema) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.ToDocument())
}
