package templating_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/staticweaver/kv"
	"github.com/byte4ever/staticweaver/templating"
)

func newEngine(tb testing.TB) *templating.Engine {
	tb.Helper()

	return templating.NewEngine("", time.Minute)
}

func TestRenderTemplate_substitutes_tags(t *testing.T) {
	t.Parallel()

	en := newEngine(t)

	got, err := en.RenderTemplate(
		"{{greeting}}, {{name}}!",
		templating.Map{"greeting": "Hello", "name": "Alice"},
	)

	require.NoError(t, err)
	assert.Equal(t, "Hello, Alice!", got)
}

func TestRenderTemplate_accepts_kv_context(t *testing.T) {
	t.Parallel()

	vars := kv.New()
	vars.Set("name", "Alice")

	got, err := newEngine(t).RenderTemplate(
		"Hello, {{name}}! Welcome, {{name}}!", vars,
	)

	require.NoError(t, err)
	assert.Equal(t, "Hello, Alice! Welcome, Alice!", got)
}

func TestRenderTemplate_no_tags(t *testing.T) {
	t.Parallel()

	got, err := newEngine(t).RenderTemplate(
		"plain text", templating.Map{},
	)

	require.NoError(t, err)
	assert.Equal(t, "plain text", got)
}

func TestRenderTemplate_custom_delimiters(t *testing.T) {
	t.Parallel()

	en := newEngine(t)
	require.NoError(t, en.SetDelimiters("<<", ">>"))

	vars := templating.Map{"greeting": "Hello", "name": "Alice"}

	got, err := en.RenderTemplate("<<greeting>>, <<name>>!", vars)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Alice!", got)

	_, err = en.RenderTemplate("Hello, <name>!", vars)
	require.ErrorIs(t, err, templating.ErrInvalidTemplate)
	assert.ErrorContains(t, err, "single '<'")
}

func TestRenderTemplate_default_tags_literal_after_switch(
	t *testing.T,
) {
	t.Parallel()

	en := newEngine(t)
	require.NoError(t, en.SetDelimiters("[[", "]]"))

	got, err := en.RenderTemplate(
		"[[a]] {{a}}", templating.Map{"a": "x"},
	)

	require.NoError(t, err)
	assert.Equal(t, "x {{a}}", got)
}

func TestRenderTemplate_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tpl  string
		vars templating.Map
		kind error
		msg  string
	}{
		{
			name: "empty",
			tpl:  "",
			kind: templating.ErrInvalidTemplate,
			msg:  "Template is empty",
		},
		{
			name: "whitespace only",
			tpl:  " \n\t ",
			kind: templating.ErrInvalidTemplate,
			msg:  "Template is empty",
		},
		{
			name: "single brace",
			tpl:  "Hello, {name}!",
			kind: templating.ErrInvalidTemplate,
			msg:  "single '{' are not allowed",
		},
		{
			name: "unclosed",
			tpl:  "Hello, {{name",
			vars: templating.Map{"name": "Alice"},
			kind: templating.ErrInvalidTemplate,
			msg:  "Unclosed template tag",
		},
		{
			name: "nested",
			tpl:  "{{outer {{inner}} }}",
			vars: templating.Map{"inner": "x"},
			kind: templating.ErrInvalidTemplate,
			msg:  "Nested delimiters are not allowed",
		},
		{
			name: "unresolved",
			tpl:  "{{unresolved}}",
			vars: templating.Map{},
			kind: templating.ErrRender,
			msg:  "Unresolved template tag: unresolved",
		},
		{
			name: "whitespace in key is significant",
			tpl:  "{{ name }}",
			vars: templating.Map{"name": "Alice"},
			kind: templating.ErrRender,
			msg:  "Unresolved template tag:  name ",
		},
		{
			name: "key is case sensitive",
			tpl:  "{{Name}}",
			vars: templating.Map{"name": "Alice"},
			kind: templating.ErrRender,
			msg:  "Unresolved template tag: Name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := newEngine(t).RenderTemplate(
				tc.tpl, tc.vars,
			)

			require.ErrorIs(t, err, tc.kind)
			assert.ErrorContains(t, err, tc.msg)
			assert.Empty(t, got)

			var te *templating.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.kind, te.Kind)
		})
	}
}

func TestRenderTemplate_no_partial_output(t *testing.T) {
	t.Parallel()

	got, err := newEngine(t).RenderTemplate(
		"{{a}} then {{missing}} then {{b}}",
		templating.Map{"a": "1", "b": "2"},
	)

	require.ErrorIs(t, err, templating.ErrRender)
	assert.Empty(t, got)
}

func TestRenderTemplate_first_failure_wins(t *testing.T) {
	t.Parallel()

	_, err := newEngine(t).RenderTemplate(
		"{{missing}} and {{unclosed",
		templating.Map{},
	)

	assert.ErrorIs(t, err, templating.ErrRender)
}

func TestRenderTemplate_stray_close_is_literal(t *testing.T) {
	t.Parallel()

	got, err := newEngine(t).RenderTemplate(
		"{{a}}}} and }}",
		templating.Map{"a": "x"},
	)

	require.NoError(t, err)
	assert.Equal(t, "x}} and }}", got)
}

func TestRenderTemplate_empty_key(t *testing.T) {
	t.Parallel()

	got, err := newEngine(t).RenderTemplate(
		"[{{}}]", templating.Map{"": "blank"},
	)

	require.NoError(t, err)
	assert.Equal(t, "[blank]", got)
}

func TestRenderTemplate_multibyte_delimiters(t *testing.T) {
	t.Parallel()

	en := newEngine(t)
	require.NoError(t, en.SetDelimiters("«", "»"))

	got, err := en.RenderTemplate(
		"héllo «name»", templating.Map{"name": "wörld"},
	)

	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", got)
}

func TestRenderTemplate_identical_delimiters(t *testing.T) {
	t.Parallel()

	en := newEngine(t)
	require.NoError(t, en.SetDelimiters("%%", "%%"))

	got, err := en.RenderTemplate(
		"%%a%%-%%b%%", templating.Map{"a": "1", "b": "2"},
	)

	require.NoError(t, err)
	assert.Equal(t, "1-2", got)
}

func TestRenderTemplate_deterministic(t *testing.T) {
	t.Parallel()

	en := newEngine(t)
	vars := templating.Map{"x": "1"}

	first, firstErr := en.RenderTemplate("a{{x}}b{{y}}", vars)
	second, secondErr := en.RenderTemplate("a{{x}}b{{y}}", vars)

	assert.Equal(t, first, second)
	assert.Equal(t, firstErr.Error(), secondErr.Error())
}

func FuzzRenderTemplate(f *testing.F) {
	f.Add("Hello {{name}}!", "name", "World")
	f.Add("{{a}}{{b}}", "a", "x")
	f.Add("no tags here", "key", "val")
	f.Add("{{", "k", "v")
	f.Add("}}", "k", "v")
	f.Add("{{key}}", "key", "")
	f.Add("", "key", "val")
	f.Add("{single}", "single", "v")

	f.Fuzz(func(
		t *testing.T,
		tpl string,
		key string,
		val string,
	) {
		en := templating.NewEngine("", time.Minute)
		vars := templating.Map{key: val}

		got, err := en.RenderTemplate(tpl, vars)
		if err != nil {
			assert.Empty(t, got)
			assert.True(
				t,
				errors.Is(err, templating.ErrInvalidTemplate) ||
					errors.Is(err, templating.ErrRender),
			)

			return
		}

		// Every tag resolved to val, so the output length
		// is the literal text plus one val per tag.
		tagCount := strings.Count(tpl, "{{"+key+"}}")
		if strings.Contains(key, "}}") || strings.Contains(key, "{{") {
			return
		}

		literal := len(tpl) - tagCount*len("{{"+key+"}}")
		assert.Len(t, got, literal+tagCount*len(val))
	})
}
