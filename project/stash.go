package project

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stash returns the per-project state directory:
// <config>/projects/<base>-<sha1 of the absolute root path, hex>.
// The directory is derived, not created; an unlinked project has none.
func Stash(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	cfg, err := ConfigDir()
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(abs))
	return filepath.Join(cfg, "projects", fmt.Sprintf("%s-%x", filepath.Base(abs), sum)), nil
}

// InstanceName reads the linked instance name from the project stash.
func InstanceName(root string) (string, error) {
	stash, err := Stash(root)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(stash, "instance-name"))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLinked
	}
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", ErrNotLinked
	}
	return name, nil
}

// Credentials is the stored connection info for a named instance.
type Credentials struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password"`
	Branch      string `json:"branch"`
	Database    string `json:"database"`
	TLSSecurity string `json:"tls_security"`
}

// LoadCredentials reads <config>/credentials/<instance>.json.
func LoadCredentials(instance string) (*Credentials, error) {
	if instance == "" {
		return nil, errors.New("project: empty instance name")
	}
	cfg, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(cfg, "credentials", instance+".json"))
	if err != nil {
		return nil, fmt.Errorf("read credentials for %q: %w", instance, err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse credentials for %q: %w", instance, err)
	}
	return &c, nil
}

// ConfigDir returns the tool config directory, ~/.config/edgedb. The
// CLI keeps this path on every platform, so stashes and credentials
// written by it are found in the same place here.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "edgedb"), nil
}
