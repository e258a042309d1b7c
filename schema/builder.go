package schema

import "fmt"

// PointerOption adjusts a pointer at declaration time.
type PointerOption func(*Pointer)

var (
	Required   PointerOption = func(p *Pointer) { p.Required = true }
	Multi      PointerOption = func(p *Pointer) { p.Multi = true }
	Readonly   PointerOption = func(p *Pointer) { p.Readonly = true }
	HasDefault PointerOption = func(p *Pointer) { p.HasDefault = true }
	Computed   PointerOption = func(p *Pointer) { p.Computed = true }
)

// AddObject declares a new object type. It panics on a duplicate name:
// schemas are assembled once at startup or in generated code, so a
// duplicate is a programming error.
func (s *Schema) AddObject(module, name string) *ObjectType {
	t := &ObjectType{Module: module, Name: name, byName: make(map[string]*Pointer), schema: s}
	full := t.FullName()
	if _, dup := s.objects[full]; dup {
		panic(fmt.Sprintf("schema: duplicate object type %q", full))
	}
	s.objects[full] = t
	s.order = append(s.order, full)
	return t
}

// AddAbstract declares an abstract object type.
func (s *Schema) AddAbstract(module, name string) *ObjectType {
	t := s.AddObject(module, name)
	t.Abstract = true
	return t
}

// Extend records base types for pointer inheritance.
func (t *ObjectType) Extend(bases ...*ObjectType) *ObjectType {
	t.bases = append(t.bases, bases...)
	return t
}

// AddProperty declares a scalar-valued pointer. The target is a type
// name such as "std::str"; unqualified names are not expanded here
// because property targets are always std or user scalars with
// explicit modules in practice.
func (t *ObjectType) AddProperty(name, target string, opts ...PointerOption) *Pointer {
	return t.add(&Pointer{Name: name, Kind: Property, Target: target}, opts)
}

// AddLink declares an object-valued pointer.
func (t *ObjectType) AddLink(name string, target *ObjectType, opts ...PointerOption) *Pointer {
	return t.add(&Pointer{Name: name, Kind: Link, Target: target.FullName(), target: target}, opts)
}

func (t *ObjectType) add(p *Pointer, opts []PointerOption) *Pointer {
	if _, dup := t.byName[p.Name]; dup {
		panic(fmt.Sprintf("schema: duplicate pointer %q on %q", p.Name, t.FullName()))
	}
	for _, opt := range opts {
		opt(p)
	}
	t.pointers = append(t.pointers, p)
	t.byName[p.Name] = p
	return p
}

// AddLinkProperty declares a property on a link, accessed as @name.
func (p *Pointer) AddLinkProperty(name, target string, opts ...PointerOption) *Pointer {
	if p.Kind != Link {
		panic(fmt.Sprintf("schema: link property %q on non-link pointer %q", name, p.Name))
	}
	if p.linkPropsM == nil {
		p.linkPropsM = make(map[string]*Pointer)
	}
	if _, dup := p.linkPropsM[name]; dup {
		panic(fmt.Sprintf("schema: duplicate link property %q on %q", name, p.Name))
	}
	lp := &Pointer{Name: name, Kind: Property, Target: target}
	for _, opt := range opts {
		opt(lp)
	}
	p.linkProps = append(p.linkProps, lp)
	p.linkPropsM[name] = lp
	return lp
}
