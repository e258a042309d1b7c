// Package schema models the object types and pointers of a Gel (EdgeDB)
// database: enough structure to validate path traversals at query
// construction time and to drive code generation.
package schema

import (
	"fmt"
	"strings"
)

// PointerKind distinguishes properties (scalar-valued) from links
// (object-valued).
type PointerKind int

const (
	Property PointerKind = iota
	Link
)

func (k PointerKind) String() string {
	switch k {
	case Property:
		return "property"
	case Link:
		return "link"
	default:
		return fmt.Sprintf("PointerKind(%d)", int(k))
	}
}

// Pointer is a property or link declared on an object type.
type Pointer struct {
	Name       string
	Kind       PointerKind
	Target     string // fully qualified type name, e.g. "std::str" or "default::Person"
	Required   bool
	Multi      bool
	Readonly   bool
	HasDefault bool
	Computed   bool

	target     *ObjectType
	linkProps  []*Pointer
	linkPropsM map[string]*Pointer
}

// TargetObject returns the resolved target type for links, nil for
// properties.
func (p *Pointer) TargetObject() *ObjectType { return p.target }

// LinkProperty looks up a property declared on the link itself
// (accessed as @name in queries).
func (p *Pointer) LinkProperty(name string) (*Pointer, bool) {
	lp, ok := p.linkPropsM[name]
	return lp, ok
}

// LinkProperties returns the link's own properties in declaration order.
func (p *Pointer) LinkProperties() []*Pointer { return p.linkProps }

// ObjectType is a concrete or abstract object type in a module.
type ObjectType struct {
	Module   string
	Name     string
	Abstract bool

	pointers []*Pointer
	byName   map[string]*Pointer
	bases    []*ObjectType
	schema   *Schema
}

// FullName returns the module-qualified name, e.g. "default::Movie".
func (t *ObjectType) FullName() string { return t.Module + "::" + t.Name }

// Bases returns the declared base types in declaration order.
func (t *ObjectType) Bases() []*ObjectType { return t.bases }

// Pointer resolves a pointer by name, searching the type itself and
// then its bases depth-first in declaration order. Own pointers shadow
// inherited ones.
func (t *ObjectType) Pointer(name string) (*Pointer, bool) {
	if p, ok := t.byName[name]; ok {
		return p, true
	}
	for _, b := range t.bases {
		if p, ok := b.Pointer(name); ok {
			return p, true
		}
	}
	return nil, false
}

// Pointers returns the type's own pointers followed by inherited ones
// that are not shadowed, in a stable order.
func (t *ObjectType) Pointers() []*Pointer {
	out := make([]*Pointer, 0, len(t.pointers))
	seen := make(map[string]bool, len(t.pointers))
	out = append(out, t.pointers...)
	for _, p := range t.pointers {
		seen[p.Name] = true
	}
	for _, b := range t.bases {
		for _, p := range b.Pointers() {
			if !seen[p.Name] {
				out = append(out, p)
				seen[p.Name] = true
			}
		}
	}
	return out
}

// Is reports whether t is other or inherits from it.
func (t *ObjectType) Is(other *ObjectType) bool {
	if t == other {
		return true
	}
	for _, b := range t.bases {
		if b.Is(other) {
			return true
		}
	}
	return false
}

// Schema is a set of object types keyed by qualified name.
type Schema struct {
	objects map[string]*ObjectType
	order   []string
}

func New() *Schema {
	return &Schema{objects: make(map[string]*ObjectType)}
}

// Object looks up an object type. Unqualified names resolve in the
// default module.
func (s *Schema) Object(name string) (*ObjectType, bool) {
	t, ok := s.objects[Qualify(name)]
	return t, ok
}

// Objects returns all object types in registration order.
func (s *Schema) Objects() []*ObjectType {
	out := make([]*ObjectType, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.objects[name])
	}
	return out
}

// Qualify prefixes an unqualified type name with the default module.
func Qualify(name string) string {
	if strings.Contains(name, "::") {
		return name
	}
	return "default::" + name
}

// SplitName splits a qualified name into module and short name.
func SplitName(qualified string) (module, name string) {
	i := strings.LastIndex(qualified, "::")
	if i < 0 {
		return "default", qualified
	}
	return qualified[:i], qualified[i+2:]
}
