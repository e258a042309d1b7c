// Package dsn parses and resolves Gel connection strings.
package dsn

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// TLS security modes accepted by the tls_security query parameter.
const (
	TLSDefault            = "default"
	TLSStrict             = "strict"
	TLSNoHostVerification = "no_host_verification"
	TLSInsecure           = "insecure"
)

// Connection defaults applied when the DSN leaves a field out.
const (
	DefaultHost   = "localhost"
	DefaultPort   = 5656
	DefaultUser   = "edgedb"
	DefaultBranch = "main"
)

var (
	ErrUnknownScheme = errors.New("unknown DSN scheme")
	ErrInvalidDSN    = errors.New("invalid DSN")
)

// DSN holds the pieces of a parsed connection string.
type DSN struct {
	Host        string
	Port        int
	User        string
	Password    string
	Branch      string
	TLSSecurity string
	SecretKey   string
}

// Parse reads a gel:// URL (the legacy edgedb:// scheme is accepted too)
// and fills connection defaults for anything the URL leaves out.
//
// Recognized query parameters: user, password, branch, database,
// tls_security and secret_key. branch and database are aliases and may
// not both be given.
func Parse(raw string) (*DSN, error) {
	d, err := parse(raw)
	if err != nil {
		return nil, err
	}
	d.applyDefaults()
	return d, nil
}

// parse fills only what the URL states. Resolve layers env values onto
// the empty fields before defaults are applied.
func parse(raw string) (*DSN, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "gel", "edgedb":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, u.Scheme)
	}

	d := &DSN{Host: u.Hostname()}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidDSN, port)
		}
		d.Port = n
	}

	if u.User != nil {
		d.User = u.User.Username()
		d.Password, _ = u.User.Password()
	}

	branch := strings.TrimPrefix(u.Path, "/")
	if strings.Contains(branch, "/") {
		return nil, fmt.Errorf("%w: branch must be a single path segment, got %q", ErrInvalidDSN, branch)
	}
	d.Branch = branch

	if err := d.applyQuery(u.Query()); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DSN) applyQuery(q url.Values) error {
	for key := range q {
		switch key {
		case "user", "password", "branch", "database", "tls_security", "secret_key":
		default:
			return fmt.Errorf("%w: unknown query parameter %q", ErrInvalidDSN, key)
		}
	}
	if q.Has("branch") && q.Has("database") {
		return fmt.Errorf("%w: branch and database are mutually exclusive", ErrInvalidDSN)
	}

	if v := q.Get("user"); v != "" {
		if d.User != "" {
			return fmt.Errorf("%w: user given both in URL and query", ErrInvalidDSN)
		}
		d.User = v
	}
	if v := q.Get("password"); v != "" {
		if d.Password != "" {
			return fmt.Errorf("%w: password given both in URL and query", ErrInvalidDSN)
		}
		d.Password = v
	}

	branch := q.Get("branch")
	if branch == "" {
		branch = q.Get("database")
	}
	if branch != "" {
		if d.Branch != "" {
			return fmt.Errorf("%w: branch given both in URL path and query", ErrInvalidDSN)
		}
		d.Branch = branch
	}

	if v := q.Get("tls_security"); v != "" {
		switch v {
		case TLSDefault, TLSStrict, TLSNoHostVerification, TLSInsecure:
			d.TLSSecurity = v
		default:
			return fmt.Errorf("%w: unknown tls_security %q", ErrInvalidDSN, v)
		}
	}
	d.SecretKey = q.Get("secret_key")
	return nil
}

func (d *DSN) applyDefaults() {
	if d.Host == "" {
		d.Host = DefaultHost
	}
	if d.Port == 0 {
		d.Port = DefaultPort
	}
	if d.User == "" {
		d.User = DefaultUser
	}
	if d.Branch == "" {
		d.Branch = DefaultBranch
	}
	if d.TLSSecurity == "" {
		d.TLSSecurity = TLSDefault
	}
}

// BaseURL returns the HTTP base URL for the instance. Only the insecure
// TLS mode downgrades to plain http, which local dev instances use.
func (d *DSN) BaseURL() string {
	scheme := "https"
	if d.TLSSecurity == TLSInsecure {
		scheme = "http"
	}
	return scheme + "://" + net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// String renders the DSN back as a gel:// URL. The password and secret
// key are omitted so the result is safe to log.
func (d *DSN) String() string {
	u := url.URL{
		Scheme: "gel",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Branch,
	}
	if d.User != "" {
		u.User = url.User(d.User)
	}
	if d.TLSSecurity != "" && d.TLSSecurity != TLSDefault {
		u.RawQuery = url.Values{"tls_security": []string{d.TLSSecurity}}.Encode()
	}
	return u.String()
}
