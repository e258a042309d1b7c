package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gelq/gelq/cli"
	"github.com/gelq/gelq/client"
	"github.com/gelq/gelq/dsn"
	"github.com/gelq/gelq/schema"
)

// introspectCmd implements "gelq introspect": fetch the schema from
// the connected instance and store it under .gelq/.
func introspectCmd(args []string) {
	fs := flag.NewFlagSet("gelq introspect", flag.ExitOnError)
	dsnFlag := fs.String("dsn", "", "connection string (overrides environment and linked project)")
	verbose := fs.Bool("verbose", false, "log requests to stderr")
	fs.Parse(args)

	conn, err := dsn.Resolve(dsn.Options{DSN: *dsnFlag})
	if err != nil {
		cli.FatalErr("resolve connection", err)
	}
	root := workspaceRoot()
	_, path, err := refreshSchema(context.Background(), conn, root, cmdLogger(*verbose))
	if err != nil {
		cli.FatalErr("introspect schema", err)
	}
	cli.Successf("Wrote %s", path)
}

// refreshSchema fetches the live schema and rewrites the stored
// document. Shared between introspect and watch.
func refreshSchema(ctx context.Context, conn *dsn.DSN, root string, logger *slog.Logger) (*schema.Schema, string, error) {
	c, err := client.New(client.Config{DSN: conn, Logger: logger})
	if err != nil {
		return nil, "", err
	}
	sch, err := c.Introspect(ctx)
	if err != nil {
		return nil, "", err
	}
	path := schemaJSONPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	if err := sch.Save(f); err != nil {
		f.Close()
		return nil, "", err
	}
	if err := f.Close(); err != nil {
		return nil, "", err
	}
	return sch, path, nil
}
