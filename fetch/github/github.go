package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/staticweaver/fetch"
)

// Config holds the settings needed to read templates
// from a GitHub repository.
type Config struct {
	// RepoOwner is the GitHub user or organisation
	// that owns the repository.
	RepoOwner string
	// Repo is the repository name (without owner).
	Repo string
	// Dir is the template directory inside the
	// repository. Empty means the repository root.
	Dir string
	// Ref is a branch, tag or commit. Empty means the
	// default branch.
	Ref string
	// AccessToken is an optional personal access token
	// or GitHub App token. Public repositories need none.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// BaseURL overrides the REST API endpoint.
	BaseURL string
}

// Source reads template files from a GitHub repository.
//
// Pattern: Strategy -- implements fetch.Source.
type Source struct {
	client    *gh.Client
	repoOwner string
	repo      string
	dir       string
	ref       string
}

// New validates cfg and returns a Source.
func New(cfg Config) (*Source, error) {
	const errCtx = "creating github template source"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	client := gh.NewClient(nil)

	if cfg.AccessToken != "" {
		client = client.WithAuthToken(cfg.AccessToken)
	}

	if cfg.EnterpriseHost != "" {
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}

		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: base url: %w", errCtx, err,
			)
		}

		client.BaseURL = u
	}

	return &Source{
		client:    client,
		repoOwner: cfg.RepoOwner,
		repo:      cfg.Repo,
		dir:       strings.Trim(cfg.Dir, "/"),
		ref:       cfg.Ref,
	}, nil
}

// FromLocation builds a Source for a github:// location.
func FromLocation(
	loc fetch.Location,
	token string,
	enterpriseHost string,
) (*Source, error) {
	return New(Config{
		RepoOwner:      loc.Owner(),
		Repo:           loc.Name(),
		Dir:            loc.Path,
		Ref:            loc.Ref,
		AccessToken:    token,
		EnterpriseHost: enterpriseHost,
	})
}

// Fetch returns the decoded content of name. A missing
// file or a directory yields fetch.ErrNotFound.
func (s *Source) Fetch(
	ctx context.Context,
	name string,
) ([]byte, error) {
	const errCtx = "fetching template from github"

	pa := fetch.JoinPath(s.dir, name)

	var opts *gh.RepositoryContentGetOptions
	if s.ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: s.ref}
	}

	file, _, resp, err := s.client.Repositories.GetContents(
		ctx, s.repoOwner, s.repo, pa, opts,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, ctx.Err())
		}

		if resp != nil {
			slog.Warn(
				"github contents request failed",
				"path", pa,
				"status", resp.StatusCode,
				"error", err,
			)

			if statusErr := fetch.CheckStatus(
				s.repoOwner+"/"+s.repo+"/"+pa, resp.StatusCode,
			); statusErr != nil {
				return nil, fmt.Errorf("%s: %w", errCtx, statusErr)
			}
		}

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if file == nil {
		return nil, fmt.Errorf(
			"%s: %s is a directory: %w",
			errCtx, pa, fetch.ErrNotFound,
		)
	}

	// The contents API omits files over 1 MB.
	if file.GetEncoding() == "none" && file.GetDownloadURL() != "" {
		body, err := s.download(ctx, file.GetDownloadURL())
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", errCtx, pa, err)
		}

		return body, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf(
			"%s: decode %s: %w", errCtx, pa, err,
		)
	}

	return []byte(content), nil
}

func (s *Source) download(
	ctx context.Context,
	target string,
) ([]byte, error) {
	req, err := s.client.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.BareDo(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if resp != nil {
			if statusErr := fetch.CheckStatus(
				target, resp.StatusCode,
			); statusErr != nil {
				return nil, statusErr
			}
		}

		return nil, err
	}

	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
