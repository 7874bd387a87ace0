// Package httpsrc implements a fetch.Source that downloads templates over
// plain HTTP(S) from a base URL, with optional basic authentication.
package httpsrc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/byte4ever/staticweaver/fetch"
)

// DefaultTimeout is the client timeout when Config.Client
// is nil.
const DefaultTimeout = 10 * time.Second

// Config holds the settings of an HTTP template source.
type Config struct {
	// BaseURL is the directory URL templates are resolved
	// against (e.g. "https://example.com/template/").
	BaseURL string
	// User and Password enable basic authentication when
	// User is set.
	User     string
	Password string
	// Client overrides the HTTP client.
	Client *http.Client
}

// Source fetches templates relative to a base URL.
//
// Pattern: Strategy -- implements fetch.Source.
type Source struct {
	base     *url.URL
	client   *http.Client
	user     string
	password string
}

// New validates cfg and returns a Source.
func New(cfg Config) (*Source, error) {
	const errCtx = "creating http template source"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf(
			"%s: base url must be set", errCtx,
		)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf(
			"%s: unsupported scheme %q", errCtx, base.Scheme,
		)
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &Source{
		base:     base,
		client:   client,
		user:     cfg.User,
		password: cfg.Password,
	}, nil
}

// URL returns the absolute URL of name.
func (s *Source) URL(name string) string {
	return s.base.ResolveReference(&url.URL{Path: name}).String()
}

// Fetch downloads name. A 404 yields fetch.ErrNotFound, any
// other non-2xx status a *fetch.StatusError.
func (s *Source) Fetch(
	ctx context.Context,
	name string,
) ([]byte, error) {
	const errCtx = "fetching template over http"

	target := s.URL(name)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, target, nil,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: build request: %w", errCtx, err,
		)
	}

	if s.user != "" {
		req.SetBasicAuth(s.user, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: send request: %w", errCtx, err,
		)
	}

	defer resp.Body.Close() //nolint:errcheck

	if err := fetch.CheckStatus(target, resp.StatusCode); err != nil {
		slog.Warn(
			"template download failed",
			"url", target,
			"status", resp.Status,
		)

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: read body: %w", errCtx, err,
		)
	}

	return body, nil
}
