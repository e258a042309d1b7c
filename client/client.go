package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gelq/gelq/dsn"
	"github.com/gelq/gelq/edgeql"
	"github.com/gelq/gelq/edgeql/compile"
	"github.com/gelq/gelq/logging"
)

// Config configures a Client.
type Config struct {
	// DSN carries host, port, branch and credentials. Required; resolve
	// one with dsn.Resolve or dsn.Parse.
	DSN *dsn.DSN

	// Logger receives one entry per HTTP request. nil disables request
	// logging.
	Logger *slog.Logger

	// Transport overrides the base round tripper. nil picks a default
	// matching the DSN's TLS mode.
	Transport http.RoundTripper
}

// Client speaks EdgeQL-for-HTTP against one branch of one instance.
// It is safe for concurrent use.
type Client struct {
	base   string
	branch string
	dsn    *dsn.DSN
	http   *http.Client

	mu    sync.Mutex
	token string
	exp   time.Time // zero when the token carries no expiry
}

// New builds a client from a resolved DSN.
func New(cfg Config) (*Client, error) {
	if cfg.DSN == nil {
		return nil, errors.New("client: Config.DSN is required")
	}
	rt := cfg.Transport
	if rt == nil {
		rt = baseTransport(cfg.DSN)
	}
	if cfg.Logger != nil {
		rt = logging.NewTransport(rt, cfg.Logger)
	}
	return &Client{
		base:   cfg.DSN.BaseURL(),
		branch: cfg.DSN.Branch,
		dsn:    cfg.DSN,
		http:   &http.Client{Transport: rt},
	}, nil
}

// baseTransport returns the default round tripper for the DSN's TLS
// mode. no_host_verification still encrypts but accepts any
// certificate, which is what linked local instances need.
func baseTransport(d *dsn.DSN) http.RoundTripper {
	if d.TLSSecurity == dsn.TLSNoHostVerification {
		return &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return http.DefaultTransport
}

// Query runs a compiled query and returns one raw JSON document per
// result. args maps parameter names (without the dollar sign) to
// values; they are validated against the compiled parameter list before
// anything is sent.
func (c *Client) Query(ctx context.Context, q *compile.Compiled, args map[string]any) ([]json.RawMessage, error) {
	if err := validateArgs(q.Params, args); err != nil {
		return nil, err
	}
	return c.run(ctx, q.Text, args)
}

// QuerySingle runs a compiled query expected to produce at most one
// result and returns it, or nil when an optional result is absent. The
// compiled cardinality decides whether an empty result is an error.
func (c *Client) QuerySingle(ctx context.Context, q *compile.Compiled, args map[string]any) (json.RawMessage, error) {
	rows, err := c.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	switch {
	case len(rows) == 0:
		if q.Cardinality == edgeql.One || q.Cardinality == edgeql.AtLeastOne {
			return nil, NoData("query returned no results")
		}
		return nil, nil
	case len(rows) == 1:
		return rows[0], nil
	default:
		return nil, Newf(CodeCardinalityMismatch, "expected at most one result, got %d", len(rows))
	}
}

// Execute runs raw EdgeQL text, discarding any results. No argument
// validation happens here; the text is sent as given.
func (c *Client) Execute(ctx context.Context, query string, args map[string]any) error {
	_, err := c.run(ctx, query, args)
	return err
}

// queryRequest is the JSON body of POST /db/{branch}/edgeql.
type queryRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// queryResponse is the server's reply: data on success, error on
// failure, never both.
type queryResponse struct {
	Data  []json.RawMessage `json:"data"`
	Error *errorEnvelope    `json:"error"`
}

type errorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *Client) run(ctx context.Context, query string, variables map[string]any) ([]json.RawMessage, error) {
	body, err := json.Marshal(queryRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, Wrap(CodeInvalidArgument, "unencodable arguments", err)
	}

	endpoint := c.base + "/db/" + url.PathEscape(c.branch) + "/edgeql"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, Wrap(CodeInvalidArgument, "bad request target", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, RemoteExecution("request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, RemoteExecution("read response", err)
	}

	var out queryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, Protocolf("undecodable response (HTTP %d)", resp.StatusCode)
	}
	if out.Error != nil {
		// The server's error name passes through as the code.
		return nil, NewError(out.Error.Type, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, Protocolf("HTTP %d with no error envelope", resp.StatusCode)
	}
	return out.Data, nil
}
