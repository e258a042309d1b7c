package dsn

import (
	"fmt"
	"os"

	"github.com/gelq/gelq/project"
)

// Options controls Resolve. All fields are optional.
type Options struct {
	// DSN is an explicit connection string. It takes precedence over
	// the environment and any linked project.
	DSN string

	// Dir is where the project search starts when the environment names
	// neither a DSN nor an instance. Empty means the current directory.
	Dir string
}

// Resolve produces connection info from the highest-precedence source
// available: an explicit DSN, then GEL_DSN or GEL_INSTANCE from the
// environment, then the project linked at Dir. GEL_SECRET_KEY and
// GEL_BRANCH fill fields the chosen source leaves empty. Every GEL_
// variable falls back to its legacy EDGEDB_ spelling.
func Resolve(opts Options) (*DSN, error) {
	raw := opts.DSN
	if raw == "" {
		raw = envValue("DSN")
	}
	if raw != "" {
		d, err := parse(raw)
		if err != nil {
			return nil, err
		}
		d.applyEnv()
		d.applyDefaults()
		return d, nil
	}

	instance := envValue("INSTANCE")
	if instance == "" {
		root, err := project.Find(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("no DSN or instance in the environment and %w", err)
		}
		instance, err = project.InstanceName(root)
		if err != nil {
			return nil, err
		}
	}
	creds, err := project.LoadCredentials(instance)
	if err != nil {
		return nil, err
	}

	d := &DSN{
		Host:        creds.Host,
		Port:        creds.Port,
		User:        creds.User,
		Password:    creds.Password,
		Branch:      creds.Branch,
		TLSSecurity: creds.TLSSecurity,
	}
	if d.Branch == "" {
		d.Branch = creds.Database
	}
	d.applyEnv()
	d.applyDefaults()
	return d, nil
}

func (d *DSN) applyEnv() {
	if d.SecretKey == "" {
		d.SecretKey = envValue("SECRET_KEY")
	}
	if d.Branch == "" {
		d.Branch = envValue("BRANCH")
	}
}

// envValue reads GEL_<name>, falling back to the legacy EDGEDB_ prefix.
func envValue(name string) string {
	if v := os.Getenv("GEL_" + name); v != "" {
		return v
	}
	return os.Getenv("EDGEDB_" + name)
}
