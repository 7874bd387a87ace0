package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// Location schemes understood by ParseLocation.
const (
	SchemeDefault   = "default"
	SchemeHTTP      = "http"
	SchemeHTTPS     = "https"
	SchemeGitHub    = "github"
	SchemeGitLab    = "gitlab"
	SchemeConfigMap = "configmap"
	SchemeDir       = "dir"
)

// Location is a parsed template location.
//
//	""                                  -> default
//	https://host/base/                  -> https, Path is the whole URL
//	github://owner/repo[/dir][@ref]     -> github
//	gitlab://group/project[/dir][@ref]  -> gitlab
//	gitlab://a/b/project//dir[@ref]     -> gitlab, nested group
//	configmap://namespace/name          -> configmap
//	anything else                       -> dir
type Location struct {
	Scheme string
	// Repo is owner/repo, the GitLab project path or
	// namespace/name of a ConfigMap.
	Repo string
	// Path is the directory inside Repo, the URL for HTTP
	// locations or the directory for local ones.
	Path string
	// Ref is the branch, tag or commit. Empty means the
	// default branch.
	Ref string
}

// ParseLocation classifies s.
func ParseLocation(s string) (Location, error) {
	const errCtx = "parsing template location"

	if s == "" {
		return Location{Scheme: SchemeDefault, Path: DefaultURL}, nil
	}

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return Location{Scheme: SchemeDir, Path: s}, nil
	}

	switch scheme {
	case SchemeHTTP, SchemeHTTPS:
		return Location{Scheme: scheme, Path: s}, nil
	case SchemeGitHub, SchemeGitLab:
		loc, err := parseRepo(scheme, rest)
		if err != nil {
			return Location{}, fmt.Errorf("%s: %q: %w", errCtx, s, err)
		}

		return loc, nil
	case SchemeConfigMap:
		ns, name, ok := strings.Cut(rest, "/")
		if !ok || ns == "" || name == "" || strings.Contains(name, "/") {
			return Location{}, fmt.Errorf(
				"%s: %q: want configmap://namespace/name", errCtx, s,
			)
		}

		return Location{Scheme: scheme, Repo: ns + "/" + name}, nil
	default:
		return Location{}, fmt.Errorf(
			"%s: %q: unsupported scheme %q", errCtx, s, scheme,
		)
	}
}

func parseRepo(scheme, rest string) (Location, error) {
	loc := Location{Scheme: scheme}

	if at := strings.LastIndex(rest, "@"); at >= 0 {
		loc.Ref = rest[at+1:]
		rest = rest[:at]

		if loc.Ref == "" {
			return Location{}, errors.New("empty ref")
		}
	}

	if repo, dir, ok := strings.Cut(rest, "//"); ok {
		loc.Repo = strings.Trim(repo, "/")
		loc.Path = strings.Trim(dir, "/")
	} else {
		parts := strings.SplitN(strings.Trim(rest, "/"), "/", 3)
		if len(parts) < 2 {
			return Location{}, fmt.Errorf("want %s://owner/repo", scheme)
		}

		loc.Repo = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			loc.Path = parts[2]
		}
	}

	if strings.Count(loc.Repo, "/") < 1 ||
		strings.HasPrefix(loc.Repo, "/") ||
		strings.Contains(loc.Repo, "//") {
		return Location{}, fmt.Errorf("want %s://owner/repo", scheme)
	}

	if scheme == SchemeGitHub && strings.Count(loc.Repo, "/") != 1 {
		return Location{}, errors.New("want github://owner/repo")
	}

	return loc, nil
}

// Owner returns the part of Repo before the last slash.
func (l Location) Owner() string {
	i := strings.LastIndex(l.Repo, "/")
	if i < 0 {
		return ""
	}

	return l.Repo[:i]
}

// Name returns the part of Repo after the last slash.
func (l Location) Name() string {
	return l.Repo[strings.LastIndex(l.Repo, "/")+1:]
}

// JoinPath prefixes name with the repository directory dir.
func JoinPath(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}

	return dir + "/" + name
}
