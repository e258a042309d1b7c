package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStash(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	root := t.TempDir()
	stash, err := Stash(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	projects := filepath.Join(home, ".config", "edgedb", "projects")
	if filepath.Dir(stash) != projects {
		t.Errorf("stash %q not under %q", stash, projects)
	}

	base := filepath.Base(stash)
	prefix := filepath.Base(root) + "-"
	if !strings.HasPrefix(base, prefix) {
		t.Errorf("stash name %q missing prefix %q", base, prefix)
	}
	digest := strings.TrimPrefix(base, prefix)
	if len(digest) != 40 {
		t.Errorf("expected 40 hex digits, got %d: %q", len(digest), digest)
	}

	// Same root hashes to the same stash, a different root does not.
	again, err := Stash(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != stash {
		t.Errorf("stash not stable: %q vs %q", again, stash)
	}
	other, err := Stash(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == stash {
		t.Errorf("distinct roots share stash %q", stash)
	}
}

func TestInstanceName(t *testing.T) {
	t.Run("linked project", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		root := t.TempDir()

		stash, err := Stash(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := os.MkdirAll(stash, 0755); err != nil {
			t.Fatalf("failed to create stash: %v", err)
		}
		if err := os.WriteFile(filepath.Join(stash, "instance-name"), []byte("movies_dev\n"), 0644); err != nil {
			t.Fatalf("failed to write instance-name: %v", err)
		}

		name, err := InstanceName(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "movies_dev" {
			t.Errorf("got %q, want %q", name, "movies_dev")
		}
	})

	t.Run("unlinked project", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		if _, err := InstanceName(t.TempDir()); !errors.Is(err, ErrNotLinked) {
			t.Fatalf("expected ErrNotLinked, got %v", err)
		}
	})
}

func TestLoadCredentials(t *testing.T) {
	t.Run("stored credentials", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		credDir := filepath.Join(home, ".config", "edgedb", "credentials")
		if err := os.MkdirAll(credDir, 0755); err != nil {
			t.Fatalf("failed to create credentials dir: %v", err)
		}
		doc := `{"host":"localhost","port":10701,"user":"edgedb","password":"pw","branch":"main","tls_security":"insecure"}`
		if err := os.WriteFile(filepath.Join(credDir, "movies_dev.json"), []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write credentials: %v", err)
		}

		c, err := LoadCredentials("movies_dev")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Credentials{
			Host:        "localhost",
			Port:        10701,
			User:        "edgedb",
			Password:    "pw",
			Branch:      "main",
			TLSSecurity: "insecure",
		}
		if *c != want {
			t.Errorf("got %+v, want %+v", *c, want)
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		if _, err := LoadCredentials("missing"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("empty instance name", func(t *testing.T) {
		if _, err := LoadCredentials(""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
