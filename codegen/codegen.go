// Package codegen renders Go bindings for an introspected schema: one
// object-set accessor and one block of pointer-name constants per
// object type, plus the registration code that rebuilds the schema at
// init time. The generated file is self-contained and safe to commit.
package codegen

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"

	"github.com/gelq/gelq/schema"
)

// Config controls the generated output.
type Config struct {
	// Package is the package name of the generated file. Defaults to
	// "gelqgen".
	Package string
}

// Generate renders the bindings for sch as a gofmt-formatted Go
// source file.
func Generate(sch *schema.Schema, cfg Config) ([]byte, error) {
	if cfg.Package == "" {
		cfg.Package = "gelqgen"
	}
	src := emit(sch, cfg)
	out, err := format.Source([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("codegen: format generated source: %w", err)
	}
	return out, nil
}

// Write renders the bindings and writes them to path, creating parent
// directories as needed. The returned bool reports whether the file
// content actually changed.
func Write(sch *schema.Schema, cfg Config, path string) (bool, error) {
	out, err := Generate(sch, cfg)
	if err != nil {
		return false, err
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return false, err
	}
	return WriteFileIfChanged(path, out)
}

// ModuleInfo locates the generated package within a Go module. In a
// monorepo the gelq project (the directory holding gel.toml) may sit
// below the go.mod root, in which case SubPath carries the difference.
type ModuleInfo struct {
	ModulePath string // module path from go.mod
	SubPath    string // relative path from go.mod to the project root, empty if same dir
}

// FullImportPath returns the import path of pkgPath inside the
// project: ModulePath, SubPath and pkgPath joined with slashes.
func (m *ModuleInfo) FullImportPath(pkgPath string) string {
	parts := []string{m.ModulePath}
	if m.SubPath != "" {
		parts = append(parts, m.SubPath)
	}
	if pkgPath != "" {
		parts = append(parts, pkgPath)
	}
	return strings.Join(parts, "/")
}

// GetModulePath reads goModRoot/go.mod and extracts the module path.
func GetModulePath(goModRoot string) (string, error) {
	data, err := os.ReadFile(filepath.Join(goModRoot, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), nil
		}
	}
	return "", fmt.Errorf("no module declaration in go.mod")
}

// GetModuleInfo resolves the module path and the project's subpath
// below the go.mod root. projectRoot is the directory holding
// gel.toml; it equals goModRoot outside monorepos.
func GetModuleInfo(goModRoot, projectRoot string) (*ModuleInfo, error) {
	modulePath, err := GetModulePath(goModRoot)
	if err != nil {
		return nil, err
	}
	subPath := ""
	if goModRoot != projectRoot {
		rel, err := filepath.Rel(goModRoot, projectRoot)
		if err != nil {
			return nil, fmt.Errorf("relative path from go.mod to project: %w", err)
		}
		subPath = filepath.ToSlash(rel)
	}
	return &ModuleInfo{ModulePath: modulePath, SubPath: subPath}, nil
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFileIfChanged writes content to path only if it differs from
// what is already there, so downstream build tools see no spurious
// modification times. Returns true if the file was written.
func WriteFileIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == string(content) {
		return false, nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, err
	}
	return true, nil
}
