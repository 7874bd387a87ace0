// Package gitlab implements a fetch.Source that reads raw template files
// from a GitLab project.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/staticweaver/fetch"
)

// DefaultHost is used when Config.Host is empty.
const DefaultHost = "https://gitlab.com"

// Config holds the settings needed to read templates
// from a GitLab project.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the full project path
	// (e.g. "org/project").
	Repo string
	// Dir is the template directory inside the project.
	Dir string
	// Ref is a branch, tag or commit. Empty means the
	// default branch.
	Ref string
	// AccessToken is an optional personal or project
	// access token.
	AccessToken string
}

// Source reads template files from a GitLab project.
//
// Pattern: Strategy -- implements fetch.Source.
type Source struct {
	client *gl.Client
	repo   string
	dir    string
	ref    string
}

// New validates cfg and returns a Source.
func New(cfg Config) (*Source, error) {
	const errCtx = "creating gitlab template source"

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
		gl.WithoutRetries(),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Source{
		client: client,
		repo:   cfg.Repo,
		dir:    strings.Trim(cfg.Dir, "/"),
		ref:    cfg.Ref,
	}, nil
}

// FromLocation builds a Source for a gitlab:// location.
func FromLocation(
	loc fetch.Location,
	host string,
	token string,
) (*Source, error) {
	return New(Config{
		Host:        host,
		Repo:        loc.Repo,
		Dir:         loc.Path,
		Ref:         loc.Ref,
		AccessToken: token,
	})
}

// Fetch returns the raw content of name.
func (s *Source) Fetch(
	ctx context.Context,
	name string,
) ([]byte, error) {
	const errCtx = "fetching template from gitlab"

	pa := fetch.JoinPath(s.dir, name)

	opts := &gl.GetRawFileOptions{}
	if s.ref != "" {
		opts.Ref = gl.Ptr(s.ref)
	}

	body, resp, err := s.client.RepositoryFiles.GetRawFile(
		s.repo, pa, opts, gl.WithContext(ctx),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, ctx.Err())
		}

		if resp != nil {
			slog.Warn(
				"gitlab raw file request failed",
				"path", pa,
				"status", resp.StatusCode,
				"error", err,
			)

			if statusErr := fetch.CheckStatus(
				s.repo+"/"+pa, resp.StatusCode,
			); statusErr != nil {
				return nil, fmt.Errorf("%s: %w", errCtx, statusErr)
			}
		}

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return body, nil
}
