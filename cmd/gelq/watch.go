package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gelq/gelq/cli"
	"github.com/gelq/gelq/dsn"
	"github.com/gelq/gelq/project"
)

// watchCmd implements "gelq watch": keep .gelq/schema.json and the
// generated bindings in sync while the schema sources change.
func watchCmd(args []string) {
	fs := flag.NewFlagSet("gelq watch", flag.ExitOnError)
	dsnFlag := fs.String("dsn", "", "connection string (overrides environment and linked project)")
	pkg := fs.String("package", "gelqgen", "package name for the generated bindings")
	verbose := fs.Bool("verbose", false, "log requests to stderr")
	debounce := fs.Duration("debounce", 500*time.Millisecond, "settle time after a change before rebuilding")
	fs.Parse(args)

	root, err := project.Find("")
	if err != nil {
		cli.FatalErr("locate project", err)
	}
	manifest, err := project.Load(root)
	if err != nil {
		cli.FatalErr("load manifest", err)
	}
	conn, err := dsn.Resolve(dsn.Options{DSN: *dsnFlag})
	if err != nil {
		cli.FatalErr("resolve connection", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cli.FatalErr("start watcher", err)
	}
	defer watcher.Close()

	schemaDir := filepath.Join(root, manifest.SchemaDir())
	if err := watcher.Add(schemaDir); err != nil {
		cli.Warnf("not watching %s: %v", schemaDir, err)
	}
	// The manifest is watched through its directory; editors replace
	// files rather than writing them in place.
	if err := watcher.Add(root); err != nil {
		cli.FatalErr("watch project root", err)
	}

	rebuild := func() {
		sch, _, err := refreshSchema(ctx, conn, root, cmdLogger(*verbose))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			cli.Warnf("introspect failed: %v", err)
			return
		}
		path, wrote, err := generateBindings(sch, root, *pkg, "")
		if err != nil {
			cli.Warnf("generate failed: %v", err)
			return
		}
		if wrote {
			cli.Successf("Regenerated %s", path)
		}
	}

	cli.Infof("Watching %s", schemaDir)
	rebuild()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			cli.Info("Stopping")
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if relevantChange(ev, schemaDir) {
				timer.Reset(*debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cli.Warnf("watch error: %v", err)

		case <-timer.C:
			rebuild()
		}
	}
}

// relevantChange filters watcher events down to schema sources and the
// manifest. Chmod-only events are noise; so are this command's own
// writes under .gelq/ and gelqgen/.
func relevantChange(ev fsnotify.Event, schemaDir string) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if base == project.ManifestName || base == project.LegacyManifestName {
		return true
	}
	if filepath.Dir(ev.Name) != schemaDir {
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".gel" || ext == ".esdl"
}
