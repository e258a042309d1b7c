package client

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const scramScheme = "SCRAM-SHA-256"

// authorize attaches a bearer token when the DSN carries credentials.
// Local insecure instances take unauthenticated requests.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// bearer returns the cached token, acquiring one on first use. A token
// with an expiry is re-acquired once it passes. The lock doubles as a
// single-flight guard: concurrent queries wait for one handshake.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && (c.exp.IsZero() || time.Now().Before(c.exp)) {
		return c.token, nil
	}
	c.token, c.exp = "", time.Time{}

	switch {
	case c.dsn.SecretKey != "":
		exp, err := tokenExpiry(c.dsn.SecretKey)
		if err != nil {
			return "", err
		}
		c.token, c.exp = c.dsn.SecretKey, exp
	case c.dsn.Password != "":
		token, err := c.scramToken(ctx)
		if err != nil {
			return "", err
		}
		exp, err := tokenExpiry(token)
		if err != nil {
			return "", err
		}
		c.token, c.exp = token, exp
	}
	return c.token, nil
}

// tokenExpiry reads the exp claim of a JWT-shaped token without
// verifying the signature; verification is the server's job. Opaque
// tokens pass with no expiry. An already expired token is an error.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, nil
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	exp := claims.ExpiresAt.Time
	if !exp.After(time.Now()) {
		return time.Time{}, Authenticationf("token expired at %s", exp.UTC().Format(time.RFC3339))
	}
	return exp, nil
}

// scramToken runs the SCRAM-SHA-256 handshake against /auth/token and
// returns the bearer token from the final response body.
func (c *Client) scramToken(ctx context.Context) (string, error) {
	conv, err := newScramConversation(c.dsn.User, c.dsn.Password)
	if err != nil {
		return "", Wrap(CodeAuthentication, "start handshake", err)
	}

	resp, body, err := c.authRequest(ctx, scramScheme+" data="+base64text(conv.clientFirst()))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return "", Authenticationf("unexpected HTTP %d to the client-first message: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	sid, data, err := parseScramHeader(resp.Header.Get("WWW-Authenticate"))
	if err != nil {
		return "", err
	}
	serverFirst, err := decode64(data)
	if err != nil {
		return "", err
	}
	final, err := conv.clientFinal(serverFirst)
	if err != nil {
		return "", err
	}

	resp, body, err = c.authRequest(ctx, scramScheme+" sid="+sid+", data="+base64text(final))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", Authenticationf("authentication failed (HTTP %d): %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, data, err = parseScramHeader(resp.Header.Get("Authentication-Info"))
	if err != nil {
		return "", err
	}
	serverFinal, err := decode64(data)
	if err != nil {
		return "", err
	}
	if err := conv.verifyServer(serverFinal); err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", Authentication("server sent no token")
	}
	return token, nil
}

func (c *Client) authRequest(ctx context.Context, authorization string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/auth/token", nil)
	if err != nil {
		return nil, nil, Wrap(CodeAuthentication, "bad auth target", err)
	}
	req.Header.Set("Authorization", authorization)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, RemoteExecution("auth request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, RemoteExecution("read auth response", err)
	}
	return resp, body, nil
}

// parseScramHeader reads "SCRAM-SHA-256 sid=..., data=..." challenge
// headers and returns the sid and data attributes.
func parseScramHeader(header string) (sid, data string, err error) {
	rest, ok := strings.CutPrefix(header, scramScheme)
	if !ok {
		return "", "", Authenticationf("expected a %s challenge, got %q", scramScheme, header)
	}
	for _, part := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "sid":
			sid = strings.Trim(v, `"`)
		case "data":
			data = strings.Trim(v, `"`)
		}
	}
	if data == "" {
		return "", "", Authenticationf("challenge %q carries no data", header)
	}
	return sid, data, nil
}

func base64text(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decode64(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", Authentication("undecodable challenge data")
	}
	return string(raw), nil
}
