package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/staticweaver/config"
)

func writeConfig(tb testing.TB, content string) string {
	tb.Helper()

	pa := filepath.Join(tb.TempDir(), "weaver.toml")
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func TestDefault_is_valid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "index", cfg.Layout)
	assert.Equal(t, "{{", cfg.StartTag)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func TestLoad_overrides_defaults(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, `
source = "https://example.com/templates"
layout = "post"
cache_ttl = "30s"
cache_capacity = 10
start_tag = "<%"
end_tag = "%>"
gitlab_host = "https://gl.example.com"
`)

	cfg, err := config.Load(pa)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/templates", cfg.Source)
	assert.Equal(t, "post", cfg.Layout)
	assert.Equal(t, 10, cfg.CacheCapacity)
	assert.Equal(t, config.DefaultParallelism, cfg.Parallelism)

	ec, err := cfg.Engine("/srv/tpl")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ec.CacheTTL)
	assert.Equal(t, "/srv/tpl", ec.TemplateRoot)
	assert.Equal(t, "<%", ec.StartTag)
	assert.Equal(t, "%>", ec.EndTag)
}

func TestLoad_rejects_unknown_keys(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, `templat_root = "typo"`)

	_, err := config.Load(pa)

	assert.ErrorContains(t, err, "loading config")
}

func TestLoad_rejects_bad_values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"zero ttl", `cache_ttl = "0s"`, "must be positive"},
		{"bad ttl", `cache_ttl = "soon"`, "cache_ttl"},
		{"negative capacity", `cache_capacity = -1`, "cache_capacity"},
		{"negative parallelism", `parallelism = -2`, "parallelism"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeConfig(t, tc.content))

			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestLoad_missing_file(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/weaver.toml")

	assert.ErrorIs(t, err, os.ErrNotExist)
}
