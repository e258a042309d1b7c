// Package project locates Gel projects and their instance credentials.
//
// A project root is identified by the presence of a gel.toml manifest
// (or the legacy edgedb.toml). Linking a project to a local instance
// leaves a stash directory under the user config dir; the stash carries
// the instance name, and the instance name keys the credentials file.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	ManifestName       = "gel.toml"
	LegacyManifestName = "edgedb.toml"
)

var (
	ErrNotFound  = errors.New("no gel.toml or edgedb.toml found")
	ErrNotLinked = errors.New("project is not linked to an instance")
)

// Manifest is the parsed project manifest. gel.toml uses the [instance]
// table and edgedb.toml the [edgedb] table; both may carry [project].
type Manifest struct {
	Instance VersionSection `toml:"instance"`
	Edgedb   VersionSection `toml:"edgedb"`
	Project  ProjectSection `toml:"project"`
}

type VersionSection struct {
	ServerVersion string `toml:"server-version"`
}

type ProjectSection struct {
	SchemaDir string `toml:"schema-dir"`
}

// ServerVersion returns the version constraint from whichever table the
// manifest uses.
func (m *Manifest) ServerVersion() string {
	if m.Instance.ServerVersion != "" {
		return m.Instance.ServerVersion
	}
	return m.Edgedb.ServerVersion
}

// SchemaDir returns the schema directory relative to the project root.
func (m *Manifest) SchemaDir() string {
	if m.Project.SchemaDir != "" {
		return m.Project.SchemaDir
	}
	return "dbschema"
}

// Find walks up from startDir looking for a project manifest and returns
// the directory containing it. An empty startDir means the current
// working directory.
func Find(startDir string) (string, error) {
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		startDir = cwd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := manifestPath(dir); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load parses the manifest in the project root.
func Load(root string) (*Manifest, error) {
	path, err := manifestPath(root)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// manifestPath returns the manifest file in dir, preferring gel.toml
// over the legacy name.
func manifestPath(dir string) (string, error) {
	for _, name := range []string{ManifestName, LegacyManifestName} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("check %s: %w", path, err)
		}
	}
	return "", ErrNotFound
}
