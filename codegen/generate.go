package codegen

import (
	"fmt"
	"strings"

	"github.com/gelq/gelq/schema"
)

const fileHeader = "// Code generated by gelq generate; DO NOT EDIT."

// emit renders the unformatted source. Generate runs the result
// through go/format, so emit only has to produce parseable code.
func emit(sch *schema.Schema, cfg Config) string {
	doc := sch.ToDocument()
	var b strings.Builder

	b.WriteString(fileHeader + "\n\n")
	fmt.Fprintf(&b, "package %s\n\n", cfg.Package)
	b.WriteString("import (\n")
	if len(doc.ObjectTypes) > 0 {
		b.WriteString("\t\"github.com/gelq/gelq/edgeql\"\n")
	}
	b.WriteString("\t\"github.com/gelq/gelq/schema\"\n")
	b.WriteString(")\n\n")

	b.WriteString("// PointerName is the wire spelling of a property or link.\n")
	b.WriteString("type PointerName = string\n\n")

	b.WriteString("// Schema holds the generated object types. The accessors below\n")
	b.WriteString("// resolve against it.\n")
	b.WriteString("var Schema = buildSchema()\n\n")

	emitBuildSchema(&b, doc)

	if len(doc.ObjectTypes) > 0 {
		emitMustObject(&b, cfg)
		for _, ot := range doc.ObjectTypes {
			emitType(&b, sch, ot)
		}
	}
	return b.String()
}

// emitBuildSchema declares every object type first so links and bases
// can target types registered later in the document.
func emitBuildSchema(b *strings.Builder, doc *schema.Document) {
	referenced := make(map[string]bool)
	for _, ot := range doc.ObjectTypes {
		for _, base := range ot.Bases {
			referenced[base] = true
		}
		for _, p := range ot.Pointers {
			if p.Kind == "link" {
				referenced[p.Target] = true
			}
		}
	}

	b.WriteString("func buildSchema() *schema.Schema {\n")
	b.WriteString("\ts := schema.New()\n\n")
	for _, ot := range doc.ObjectTypes {
		ctor := "AddObject"
		if ot.Abstract {
			ctor = "AddAbstract"
		}
		module, name := schema.SplitName(ot.Name)
		if referenced[ot.Name] || len(ot.Bases) > 0 || len(ot.Pointers) > 0 {
			fmt.Fprintf(b, "\t%s := s.%s(%q, %q)\n", docVarName(ot.Name), ctor, module, name)
		} else {
			fmt.Fprintf(b, "\ts.%s(%q, %q)\n", ctor, module, name)
		}
	}
	for _, ot := range doc.ObjectTypes {
		if len(ot.Bases) == 0 && len(ot.Pointers) == 0 {
			continue
		}
		b.WriteString("\n")
		v := docVarName(ot.Name)
		if len(ot.Bases) > 0 {
			vars := make([]string, len(ot.Bases))
			for i, base := range ot.Bases {
				vars[i] = docVarName(base)
			}
			fmt.Fprintf(b, "\t%s.Extend(%s)\n", v, strings.Join(vars, ", "))
		}
		for _, p := range ot.Pointers {
			emitPointer(b, v, p)
		}
	}
	b.WriteString("\n\treturn s\n}\n\n")
}

func emitPointer(b *strings.Builder, recv string, p schema.PointerDoc) {
	opts := pointerOpts(p)
	switch {
	case p.Kind == "property":
		fmt.Fprintf(b, "\t%s.AddProperty(%q, %q%s)\n", recv, p.Name, p.Target, opts)
	case len(p.Pointers) == 0:
		fmt.Fprintf(b, "\t%s.AddLink(%q, %s%s)\n", recv, p.Name, docVarName(p.Target), opts)
	default:
		// AddLinkProperty hangs off the link, so links carrying
		// properties need a local.
		lv := recv + PascalCase(p.Name)
		fmt.Fprintf(b, "\t%s := %s.AddLink(%q, %s%s)\n", lv, recv, p.Name, docVarName(p.Target), opts)
		for _, lp := range p.Pointers {
			fmt.Fprintf(b, "\t%s.AddLinkProperty(%q, %q%s)\n", lv, lp.Name, lp.Target, pointerOpts(lp))
		}
	}
}

func emitMustObject(b *strings.Builder, cfg Config) {
	b.WriteString("func mustObject(name string) *schema.ObjectType {\n")
	b.WriteString("\tt, ok := Schema.Object(name)\n")
	b.WriteString("\tif !ok {\n")
	fmt.Fprintf(b, "\t\tpanic(%q + name)\n", cfg.Package+": unknown object type ")
	b.WriteString("\t}\n")
	b.WriteString("\treturn t\n}\n\n")
}

// emitType writes the object-set accessor and the pointer-name
// constants. Constants cover inherited pointers too, matching what a
// shape on the type can actually reference.
func emitType(b *strings.Builder, sch *schema.Schema, ot schema.ObjectTypeDoc) {
	t, ok := sch.Object(ot.Name)
	if !ok {
		return
	}
	ident := identOf(t.Module, t.Name)
	fmt.Fprintf(b, "// %s is the %s object set.\n", ident, ot.Name)
	fmt.Fprintf(b, "func %s() *edgeql.TypeSet {\n", ident)
	fmt.Fprintf(b, "\treturn edgeql.Objects(mustObject(%q))\n}\n\n", ot.Name)

	ptrs := t.Pointers()
	if len(ptrs) == 0 {
		return
	}
	fmt.Fprintf(b, "// Pointer names on %s.\n", ot.Name)
	b.WriteString("const (\n")
	for _, p := range ptrs {
		fmt.Fprintf(b, "\t%s%s PointerName = %q\n", ident, PascalCase(p.Name), p.Name)
	}
	b.WriteString(")\n\n")
}

// identOf maps a type to its exported Go identifier. Types outside
// the default module carry the module as a prefix: auth::Token
// becomes AuthToken.
func identOf(module, name string) string {
	if module == "default" {
		return PascalCase(name)
	}
	return PascalCase(module) + PascalCase(name)
}

func docVarName(qualified string) string {
	module, name := schema.SplitName(qualified)
	return CamelCase(identOf(module, name))
}

func pointerOpts(p schema.PointerDoc) string {
	var opts []string
	if p.Required {
		opts = append(opts, "schema.Required")
	}
	if p.Multi {
		opts = append(opts, "schema.Multi")
	}
	if p.Readonly {
		opts = append(opts, "schema.Readonly")
	}
	if p.HasDefault {
		opts = append(opts, "schema.HasDefault")
	}
	if p.Computed {
		opts = append(opts, "schema.Computed")
	}
	if len(opts) == 0 {
		return ""
	}
	return ", " + strings.Join(opts, ", ")
}
