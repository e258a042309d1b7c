package edgeql

import "github.com/gelq/gelq/schema"

// Objects references the set of all objects of a schema type, the
// usual root of a path: Objects(movie) renders as default::Movie.
func Objects(t *schema.ObjectType) *TypeSet {
	if t == nil {
		panic("edgeql: Objects with nil object type")
	}
	return &TypeSet{exprBase: newBase(ObjectTypeOf(t), Many), obj: t}
}

// Path traverses one or more properties or links from src. Every step
// is checked against the subject's static type; a missing pointer is
// the UnknownMember construction error.
func Path(src Expr, names ...string) *PathExpr {
	return pathFrom(src, names)
}

func pathFrom(src Expr, names []string) *PathExpr {
	if len(names) == 0 {
		panic("edgeql: Path with no steps")
	}
	var p *PathExpr
	cur := src
	for _, name := range names {
		p = pathStep(cur, name)
		cur = p
	}
	return p
}

func pathStep(src Expr, name string) *PathExpr {
	t := src.Type()
	if t.Kind() != KindObject || t.Object() == nil {
		raise(UnknownMember, "type %s has no pointer %q", t.Name(), name)
	}
	// Every object carries an implicit required id.
	if name == "id" {
		return &PathExpr{
			exprBase: newBase(UUIDType, src.Cardinality(), src),
			src:      src, name: name,
		}
	}
	ptr, ok := t.Object().Pointer(name)
	if !ok {
		raise(UnknownMember, "type %s has no pointer %q", t.Name(), name)
	}
	var rt Type
	if ptr.Kind == schema.Link {
		rt = ObjectTypeOf(ptr.TargetObject())
	} else {
		rt = LookupType(ptr.Target)
	}
	card := src.Cardinality().cross(pointerCard(ptr))
	return &PathExpr{exprBase: newBase(rt, card, src), src: src, name: name, ptr: ptr}
}

func pointerCard(ptr *schema.Pointer) Cardinality {
	switch {
	case ptr.Multi:
		return Many
	case ptr.Required:
		return One
	default:
		return AtMostOne
	}
}

// LinkProperty accesses a property declared on the link a nested
// shape scope was minted through, rendered @name.
func LinkProperty(s *Scope, name string) *PathExpr {
	if s.via == nil {
		raise(UnknownMember, "@%s: scope is not ranging over a link", name)
	}
	ptr, ok := s.via.LinkProperty(name)
	if !ok {
		raise(UnknownMember, "link %q has no property %q", s.via.Name, name)
	}
	return &PathExpr{
		exprBase: newBase(LookupType(ptr.Target), AtMostOne, s),
		src:      s, name: name, ptr: ptr, linkProp: true,
	}
}

// Backlink traverses a link in reverse: Backlink(person, "actors",
// movie) is every Movie whose actors link points at the subject,
// rendered .<actors[is default::Movie].
func Backlink(src Expr, link string, target *schema.ObjectType) *BacklinkExpr {
	t := src.Type()
	if t.Kind() != KindObject || t.Object() == nil {
		raise(UnknownMember, "type %s has no backlinks", t.Name())
	}
	ptr, ok := target.Pointer(link)
	if !ok || ptr.Kind != schema.Link {
		raise(UnknownMember, "type %s has no link %q", target.FullName(), link)
	}
	if !t.Object().Is(ptr.TargetObject()) && !ptr.TargetObject().Is(t.Object()) {
		raise(UnknownMember, "link %s.%s does not target %s",
			target.FullName(), link, t.Name())
	}
	return &BacklinkExpr{
		exprBase: newBase(ObjectTypeOf(target), src.Cardinality().cross(Many), src),
		src:      src, link: link, target: target,
	}
}

// Is narrows an object expression to a subtype: expr[is Target].
func Is(src Expr, target *schema.ObjectType) *TypeIntersection {
	t := src.Type()
	if t.Kind() != KindObject || t.Object() == nil {
		raise(TypeMismatch, "type intersection on %s", t.Name())
	}
	_, hi := src.Cardinality().bounds()
	return &TypeIntersection{
		exprBase: newBase(ObjectTypeOf(target), fromBounds(0, hi), src),
		src:      src, target: target,
	}
}
