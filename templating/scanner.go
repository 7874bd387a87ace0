package templating

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
)

// RenderTemplate replaces every tag in tpl with the value
// vars holds for its key, using the engine's current
// delimiters. Keys are matched verbatim: no trimming, case
// and whitespace included. On failure no output is
// returned.
func (en *Engine) RenderTemplate(
	tpl string,
	vars Vars,
) (string, error) {
	return scan(tpl, vars, en.openDelim, en.closeDelim)
}

// scan performs the single left-to-right substitution
// pass. A tag opens at each occurrence of open; its body
// runs up to the next occurrence of close. Finding open
// again inside that body means a second tag was opened
// before the first one closed.
func scan(
	tpl string,
	vars Vars,
	open string,
	closing string,
) (string, error) {
	if strings.TrimSpace(tpl) == "" {
		return "", invalidTemplate("Template is empty")
	}

	_, size := utf8.DecodeRuneInString(open)
	lead := open[:size]

	if strings.Contains(tpl, lead) &&
		!strings.Contains(tpl, open) {
		return "", invalidTemplate(fmt.Sprintf(
			"single '%s' are not allowed", lead,
		))
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	rest := tpl

	for {
		start := strings.Index(rest, open)
		if start < 0 {
			break
		}

		body := rest[start+len(open):]

		end := strings.Index(body, closing)
		if end < 0 {
			return "", invalidTemplate("Unclosed template tag")
		}

		key := body[:end]
		if strings.Contains(key, open) {
			return "", invalidTemplate(
				"Nested delimiters are not allowed",
			)
		}

		val, ok := vars.Get(key)
		if !ok {
			return "", renderFailure(
				"Unresolved template tag: " + key,
			)
		}

		_, _ = buf.WriteString(rest[:start])
		_, _ = buf.WriteString(val)

		rest = body[end+len(closing):]
	}

	_, _ = buf.WriteString(rest)

	return buf.String(), nil
}
