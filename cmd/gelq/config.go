package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gelq/gelq/cli"
	"github.com/gelq/gelq/logging"
	"github.com/gelq/gelq/project"
)

// workspaceRoot prefers the linked project root, falling back to the
// current directory when no manifest exists (explicit DSNs work
// without one).
func workspaceRoot() string {
	if root, err := project.Find(""); err == nil {
		return root
	}
	cwd, err := os.Getwd()
	if err != nil {
		cli.FatalErr("get working directory", err)
	}
	return cwd
}

// schemaJSONPath is where introspect writes and the other subcommands
// read the schema document.
func schemaJSONPath(root string) string {
	return filepath.Join(root, ".gelq", "schema.json")
}

// findGoModRoot walks up from dir looking for a go.mod. Returns the
// empty string when there is none; the CLI works outside Go modules,
// it just cannot report an import path.
func findGoModRoot(dir string) string {
	for {
		if info, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// cmdLogger returns the logger handed down to the client. Quiet by
// default; -verbose turns on per-request logging.
func cmdLogger(verbose bool) *slog.Logger {
	if verbose {
		return logging.NewDevLogger()
	}
	return nil
}
