package stamper_test

import (
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/staticweaver/kv"
	"github.com/byte4ever/staticweaver/stamper"
)

// writeTemp creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(
		tb,
		os.WriteFile(pa, []byte(content), 0o600),
	)

	return pa
}

func get(tb testing.TB, c *kv.Context, key string) string {
	tb.Helper()

	val, ok := c.Get(key)
	require.True(tb, ok, "missing key %q", key)

	return val
}

func TestLoadStamps_returns_context(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sf := writeTemp(
		t, dir, "status.txt",
		"BUILD_USER alice\nGIT_SHA deadbeef\n",
	)

	stamps, err := stamper.LoadStamps([]string{sf})

	require.NoError(t, err)
	assert.Equal(t, "alice", get(t, stamps, "BUILD_USER"))
	assert.Equal(t, "deadbeef", get(t, stamps, "GIT_SHA"))
}

func TestLoadStamps_nil_files(t *testing.T) {
	t.Parallel()

	stamps, err := stamper.LoadStamps(nil)

	require.NoError(t, err)
	assert.True(t, stamps.IsEmpty())
}

func TestLoadStamps_skips_malformed_lines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sf := writeTemp(
		t, dir, "status.txt",
		"GOOD value\nBADLINE\n\nALSO_GOOD val2\r\n",
	)

	stamps, err := stamper.LoadStamps([]string{sf})

	require.NoError(t, err)
	assert.Equal(t, 2, stamps.Len())
	assert.Equal(t, "value", get(t, stamps, "GOOD"))
	assert.Equal(t, "val2", get(t, stamps, "ALSO_GOOD"))
}

func TestLoadStamps_later_file_overrides_earlier(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sf1 := writeTemp(t, dir, "s1.txt", "VER 1.0\n")
	sf2 := writeTemp(t, dir, "s2.txt", "VER 2.0\n")

	stamps, err := stamper.LoadStamps([]string{sf1, sf2})

	require.NoError(t, err)
	assert.Equal(t, "2.0", get(t, stamps, "VER"))
}

func TestLoadStamps_missing_file(t *testing.T) {
	t.Parallel()

	_, err := stamper.LoadStamps(
		[]string{"/nonexistent/file.txt"},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading stamps")
}

func TestStamp_known_and_unknown_variable(t *testing.T) {
	t.Parallel()

	stamps := kv.FromMap(map[string]string{"KNOWN": "val"})

	got := stamper.Stamp(stamps, "{KNOWN} and {UNKNOWN}")

	assert.Equal(t, "val and {UNKNOWN}", got)
}

func TestStamp_value_with_spaces(t *testing.T) {
	t.Parallel()

	stamps := kv.FromMap(map[string]string{
		"MSG": "hello world from CI",
	})

	assert.Equal(
		t,
		"message=hello world from CI",
		stamper.Stamp(stamps, "message={MSG}"),
	)
}

func TestApplyVariables_stores_both_names(t *testing.T) {
	t.Parallel()

	dst := kv.New()
	stamps := kv.FromMap(map[string]string{"BUILD_USER": "alice"})

	err := stamper.ApplyVariables(
		dst,
		[]string{"AUTHOR={BUILD_USER}", "EMPTY=", "EQ=a=b"},
		stamps,
	)

	require.NoError(t, err)
	assert.Equal(t, "alice", get(t, dst, "AUTHOR"))
	assert.Equal(t, "alice", get(t, dst, "variables.AUTHOR"))
	assert.Equal(t, "", get(t, dst, "EMPTY"))
	assert.Equal(t, "a=b", get(t, dst, "EQ"))
}

func TestApplyVariables_bad_format(t *testing.T) {
	t.Parallel()

	err := stamper.ApplyVariables(
		kv.New(), []string{"NOEQUALS"}, kv.New(),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAR=value")
}

func TestBuild_precedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sf := writeTemp(
		t, dir, "stamp.txt",
		"VERSION 1.0.0\nBUILD_USER alice\nSITE stamp\n",
	)

	cf := writeTemp(
		t, dir, "ctx.json",
		`{"SITE": "json", "VERSION": "1.5"}`,
	)

	got, err := stamper.Build(stamper.Options{
		StampInfoFiles: []string{sf},
		ContextFiles:   []string{cf},
		Variables:      []string{"VERSION=2.0.0-{BUILD_USER}"},
	})
	require.NoError(t, err)

	want := map[string]string{
		"VERSION":           "2.0.0-alice",
		"variables.VERSION": "2.0.0-alice",
		"BUILD_USER":        "alice",
		"SITE":              "json",
	}

	if diff := cmp.Diff(want, maps.Collect(got.All())); diff != "" {
		t.Errorf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_propagates_errors(t *testing.T) {
	t.Parallel()

	_, err := stamper.Build(stamper.Options{
		StampInfoFiles: []string{"/nonexistent/stamp.txt"},
	})
	assert.ErrorContains(t, err, "building context")

	_, err = stamper.Build(stamper.Options{
		ContextFiles: []string{"/nonexistent/ctx.json"},
	})
	assert.ErrorContains(t, err, "loading context file")

	_, err = stamper.Build(stamper.Options{
		Variables: []string{"bad"},
	})
	assert.ErrorContains(t, err, "VAR=value")
}

func FuzzStamp(f *testing.F) {
	f.Add("Hello {name}!", "name", "World")
	f.Add("{a}{b}", "a", "x")
	f.Add("no tags here", "key", "val")
	f.Add("{", "k", "v")
	f.Add("}", "k", "v")
	f.Add("{key}", "key", "")
	f.Add("", "key", "val")
	f.Add("{a} and {b}", "a", "{nested}")

	f.Fuzz(func(
		t *testing.T,
		format string,
		key string,
		val string,
	) {
		stamps := kv.FromMap(map[string]string{key: val})

		// We only verify it does not panic.
		_ = stamper.Stamp(stamps, format)
	})
}
