package random

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Skryldev/boxing-ring/logging"
)

const (
	// DefaultURL asks random.org for one two-decimal fraction as plain text.
	DefaultURL = "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 64
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig controls how HTTPSource reaches the upstream service.
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
	// HTTPClient overrides the default client; its own Timeout is ignored in
	// favour of Timeout above.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// HTTPSource fetches a decimal fraction with a single GET request.
type HTTPSource struct {
	url     string
	timeout time.Duration
	client  httpDoer
	logger  *slog.Logger
}

// NewHTTPSource builds an HTTPSource, filling defaults for empty fields.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var client httpDoer = &http.Client{}
	if cfg.HTTPClient != nil {
		client = cfg.HTTPClient
	}
	return &HTTPSource{
		url:     url,
		timeout: timeout,
		client:  client,
		logger:  logging.Component(cfg.Logger, "random"),
	}
}

// Next performs one request and parses the trimmed body as a float.
func (s *HTTPSource) Next(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, &Error{Kind: ErrUnavailable, Cause: err}
	}

	s.logger.DebugContext(ctx, "requesting random number", "url", s.url)
	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			s.logger.ErrorContext(ctx, "random request timed out", "timeout", s.timeout)
			return 0, &Error{Kind: ErrTimeout, Cause: err}
		}
		s.logger.ErrorContext(ctx, "random request failed", "error", err)
		return 0, &Error{Kind: ErrUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return 0, &Error{Kind: ErrTimeout, Cause: err}
		}
		return 0, &Error{Kind: ErrUnavailable, Cause: err}
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.ErrorContext(ctx, "random source returned an error status",
			logging.FieldStatusCode, resp.StatusCode)
		return 0, &Error{Kind: ErrUnavailable, Cause: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, text)}
	}

	v, err := parseFraction(text)
	if err != nil {
		s.logger.ErrorContext(ctx, "invalid random response", "body", text)
		return 0, err
	}
	s.logger.InfoContext(ctx, "received random number", "value", v)
	return v, nil
}

func parseFraction(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &Error{Kind: ErrParse, Cause: fmt.Errorf("%q is not a number", text)}
	}
	if v < 0 || v >= 1 {
		return 0, &Error{Kind: ErrParse, Cause: fmt.Errorf("%v is outside [0, 1)", v)}
	}
	return v, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
