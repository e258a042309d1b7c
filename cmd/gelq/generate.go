package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gelq/gelq/cli"
	"github.com/gelq/gelq/codegen"
	"github.com/gelq/gelq/schema"
)

// generateCmd implements "gelq generate": turn the stored schema
// document into Go bindings.
func generateCmd(args []string) {
	fs := flag.NewFlagSet("gelq generate", flag.ExitOnError)
	pkg := fs.String("package", "gelqgen", "package name for the generated bindings")
	out := fs.String("out", "", "output path (default <project>/gelqgen/gelq.gen.go)")
	fs.Parse(args)

	root := workspaceRoot()
	sch, err := loadStoredSchema(root)
	if err != nil {
		cli.FatalErr("load schema", err)
	}
	path, wrote, err := generateBindings(sch, root, *pkg, *out)
	if err != nil {
		cli.FatalErr("generate bindings", err)
	}
	if wrote {
		cli.Successf("Wrote %s", path)
	} else {
		cli.Infof("%s is up to date", path)
	}
	reportImportPath(root, path)
}

// loadStoredSchema reads the document written by introspect.
func loadStoredSchema(root string) (*schema.Schema, error) {
	path := schemaJSONPath(root)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s does not exist, run 'gelq introspect' first", path)
		}
		return nil, err
	}
	defer f.Close()
	return schema.Load(f)
}

func generateBindings(sch *schema.Schema, root, pkg, out string) (string, bool, error) {
	path := out
	if path == "" {
		path = filepath.Join(root, "gelqgen", "gelq.gen.go")
	}
	wrote, err := codegen.Write(sch, codegen.Config{Package: pkg}, path)
	return path, wrote, err
}

// reportImportPath prints how to import the generated package, when
// the output sits inside a Go module.
func reportImportPath(root, path string) {
	goModRoot := findGoModRoot(root)
	if goModRoot == "" {
		return
	}
	info, err := codegen.GetModuleInfo(goModRoot, root)
	if err != nil {
		return
	}
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}
	if rel == "." {
		rel = ""
	}
	cli.Infof("  import %q", info.FullImportPath(filepath.ToSlash(rel)))
}
