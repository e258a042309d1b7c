package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/gelq/gelq/cli"
	"github.com/gelq/gelq/schema"
)

// describeCmd implements "gelq describe [type]": render the stored
// schema as markdown tables.
func describeCmd(args []string) {
	fs := flag.NewFlagSet("gelq describe", flag.ExitOnError)
	fs.Parse(args)

	root := workspaceRoot()
	sch, err := loadStoredSchema(root)
	if err != nil {
		cli.FatalErr("load schema", err)
	}
	types := sch.Objects()
	if name := fs.Arg(0); name != "" {
		t, ok := sch.Object(schema.Qualify(name))
		if !ok {
			cli.Fatal(fmt.Sprintf("unknown object type %q", name))
		}
		types = []*schema.ObjectType{t}
	}
	for _, t := range types {
		describeType(os.Stdout, t)
	}
}

// describeType prints one object type: a colored heading followed by a
// markdown table of its pointers, link properties indented as @name
// rows under their link.
func describeType(w io.Writer, t *schema.ObjectType) {
	heading := t.FullName()
	if t.Abstract {
		heading += " (abstract)"
	}
	if bases := t.Bases(); len(bases) > 0 {
		names := make([]string, len(bases))
		for i, b := range bases {
			names[i] = b.FullName()
		}
		heading += " extending " + strings.Join(names, ", ")
	}
	color.New(color.FgCyan, color.Bold).Fprintln(w, heading)
	fmt.Fprintln(w)

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"pointer", "kind", "target", "flags"})
	for _, p := range t.Pointers() {
		table.Append([]string{p.Name, p.Kind.String(), p.Target, pointerFlags(p)})
		for _, lp := range p.LinkProperties() {
			table.Append([]string{"@" + lp.Name, lp.Kind.String(), lp.Target, pointerFlags(lp)})
		}
	}
	table.Render()
	fmt.Fprintln(w)
}

func pointerFlags(p *schema.Pointer) string {
	var flags []string
	if p.Required {
		flags = append(flags, "required")
	}
	if p.Multi {
		flags = append(flags, "multi")
	}
	if p.Readonly {
		flags = append(flags, "readonly")
	}
	if p.HasDefault {
		flags = append(flags, "default")
	}
	if p.Computed {
		flags = append(flags, "computed")
	}
	return strings.Join(flags, " ")
}
