// Package logging provides the loggers used by the gelq command line
// tool and the HTTP transport decoration used by the client.
package logging

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gelq/gelq/nanoid"
)

// NewProdLogger returns a JSON logger at info level writing to stderr.
// Stdout stays reserved for query results and generated code.
func NewProdLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewDevLogger returns a text logger at debug level writing to stderr.
func NewDevLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type transport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewTransport decorates rt with tasteful JSON logging of every request:
// method, URL, status and duration. Each request is tagged with a nanoid
// request ID which is also sent to the server as the X-Request-Id header.
// A nil rt falls back to http.DefaultTransport.
func NewTransport(rt http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &transport{next: rt, logger: logger}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := nanoid.New()
	startTime := time.Now()

	// Round trippers must not mutate the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", requestID)

	resp, err := t.next.RoundTrip(req)
	durationMS := float64(time.Since(startTime).Nanoseconds()) / 1e6

	if err != nil {
		t.logger.Error("request_failed",
			"method", req.Method,
			"url", req.URL.String(),
			"request_id", requestID,
			"duration_ms", durationMS,
			"error", err.Error(),
		)
		return nil, err
	}

	t.logger.Info("request_completed",
		"method", req.Method,
		"url", req.URL.String(),
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", durationMS,
	)
	return resp, nil
}
