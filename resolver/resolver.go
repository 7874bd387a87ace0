package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"

	"github.com/byte4ever/staticweaver/fetch"
	"github.com/byte4ever/staticweaver/fetch/configmap"
	ghsrc "github.com/byte4ever/staticweaver/fetch/github"
	glsrc "github.com/byte4ever/staticweaver/fetch/gitlab"
	"github.com/byte4ever/staticweaver/fetch/httpsrc"
)

// Options tune Resolve.
type Options struct {
	// Files to download for remote locations. Defaults to
	// fetch.DefaultFiles.
	Files []string
	// Parallelism bounds concurrent downloads.
	Parallelism int
	// Dir receives downloaded files. Empty means a fresh
	// temporary directory. Reusing a directory lets
	// unchanged files be skipped.
	Dir string
	// TempRoot is the parent of the temporary directory
	// used when Dir is empty. Empty means os.TempDir().
	TempRoot string
	// DefaultURL replaces fetch.DefaultURL for the empty
	// location.
	DefaultURL string
	// HTTPClient is used by HTTP sources.
	HTTPClient *http.Client

	GitHubToken          string
	GitHubEnterpriseHost string
	GitLabHost           string
	GitLabToken          string

	// Kubeconfig locates the cluster of configmap://
	// sources unless Clientset is set.
	Kubeconfig string
	Clientset  kubernetes.Interface
}

// Resolve returns the directory holding the templates
// named by location. See fetch.ParseLocation for the
// accepted forms.
func Resolve(
	ctx context.Context,
	location string,
	opts Options,
) (string, error) {
	const errCtx = "resolving templates"

	loc, err := fetch.ParseLocation(location)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if loc.Scheme == fetch.SchemeDir {
		dir, err := localDir(loc.Path)
		if err != nil {
			return "", fmt.Errorf("%s: %w", errCtx, err)
		}

		return dir, nil
	}

	src, err := opts.source(loc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	dir := opts.Dir
	ownDir := dir == ""

	if ownDir {
		dir, err = os.MkdirTemp(opts.TempRoot, "weaver-templates-")
		if err != nil {
			return "", fmt.Errorf("%s: %w", errCtx, err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	files := opts.Files
	if len(files) == 0 {
		files = fetch.DefaultFiles
	}

	slog.Info(
		"downloading templates",
		"location", location,
		"scheme", loc.Scheme,
		"dir", dir,
	)

	if err := fetch.Download(
		ctx, src, dir, files, opts.Parallelism,
	); err != nil {
		if ownDir {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				slog.Warn(
					"cannot remove template dir",
					"dir", dir,
					"error", rmErr,
				)
			}
		}

		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return dir, nil
}

func (o Options) source(loc fetch.Location) (fetch.Source, error) {
	switch loc.Scheme {
	case fetch.SchemeDefault:
		base := o.DefaultURL
		if base == "" {
			base = loc.Path
		}

		return httpsrc.New(httpsrc.Config{
			BaseURL: base,
			Client:  o.HTTPClient,
		})
	case fetch.SchemeHTTP, fetch.SchemeHTTPS:
		return httpsrc.New(httpsrc.Config{
			BaseURL: loc.Path,
			Client:  o.HTTPClient,
		})
	case fetch.SchemeGitHub:
		return ghsrc.FromLocation(
			loc, o.GitHubToken, o.GitHubEnterpriseHost,
		)
	case fetch.SchemeGitLab:
		return glsrc.FromLocation(loc, o.GitLabHost, o.GitLabToken)
	case fetch.SchemeConfigMap:
		cs := o.Clientset
		if cs == nil {
			var err error

			cs, err = configmap.Clientset(o.Kubeconfig)
			if err != nil {
				return nil, err
			}
		}

		return configmap.FromLocation(cs, loc)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", loc.Scheme)
	}
}

func localDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, fetch.ErrNotFound)
	}

	if !fi.IsDir() {
		return "", fmt.Errorf(
			"%s is not a directory: %w", path, fetch.ErrNotFound,
		)
	}

	return abs, nil
}
