// Package config loads the TOML settings file of the weaver CLI.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/byte4ever/staticweaver/templating"
)

// Defaults applied when a key is absent.
const (
	DefaultLayout      = "index"
	DefaultCacheTTL    = time.Minute
	DefaultParallelism = 4
)

// Config mirrors the TOML file. Command-line flags override
// individual fields after loading.
type Config struct {
	// TemplateRoot is a local template directory. Used
	// when Source is empty.
	TemplateRoot string `toml:"template_root"`
	// Source is a template location understood by
	// fetch.Resolve (URL, github://, gitlab://,
	// configmap:// or directory).
	Source string `toml:"source"`
	// Layout is the page rendered by default.
	Layout string `toml:"layout"`
	// CacheTTL is a Go duration string such as "30s".
	CacheTTL string `toml:"cache_ttl"`
	// CacheCapacity caps cached pages when positive.
	CacheCapacity int `toml:"cache_capacity"`
	// StartTag and EndTag override the delimiters.
	StartTag string `toml:"start_tag"`
	EndTag   string `toml:"end_tag"`
	// Parallelism bounds concurrent template downloads.
	Parallelism int `toml:"parallelism"`
	// GitHubToken authenticates github:// sources.
	GitHubToken string `toml:"github_token"`
	// GitHubEnterpriseHost targets a GitHub Enterprise
	// instance.
	GitHubEnterpriseHost string `toml:"github_enterprise_host"`
	// GitLabHost is the GitLab base URL.
	GitLabHost string `toml:"gitlab_host"`
	// GitLabToken authenticates gitlab:// sources.
	GitLabToken string `toml:"gitlab_token"`
	// Kubeconfig points configmap:// sources at a cluster.
	Kubeconfig string `toml:"kubeconfig"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout:      DefaultLayout,
		CacheTTL:    DefaultCacheTTL.String(),
		StartTag:    templating.DefaultStartTag,
		EndTag:      templating.DefaultEndTag,
		Parallelism: DefaultParallelism,
	}
}

// Load reads path over the defaults. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", errCtx, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	ttl, err := c.TTL()
	if err != nil {
		return err
	}

	if ttl <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", ttl)
	}

	if c.CacheCapacity < 0 {
		return fmt.Errorf(
			"cache_capacity must not be negative, got %d",
			c.CacheCapacity,
		)
	}

	if c.Parallelism < 0 {
		return fmt.Errorf(
			"parallelism must not be negative, got %d",
			c.Parallelism,
		)
	}

	return nil
}

// TTL parses CacheTTL.
func (c Config) TTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("cache_ttl: %w", err)
	}

	return ttl, nil
}

// Engine converts the settings into an engine config for
// templates found under root.
func (c Config) Engine(root string) (templating.Config, error) {
	ttl, err := c.TTL()
	if err != nil {
		return templating.Config{}, err
	}

	return templating.Config{
		TemplateRoot:  root,
		CacheTTL:      ttl,
		CacheCapacity: c.CacheCapacity,
		StartTag:      c.StartTag,
		EndTag:        c.EndTag,
	}, nil
}
