// Package templating renders flat substitution templates. A template is
// literal text interleaved with tags of the form <open><key><close>, where
// the delimiters default to "{{" and "}}" and can be changed at runtime.
// Every tag is replaced by the value its key maps to; there are no
// conditionals, loops, partials, filters or escapes.
//
// RenderTemplate scans a template string in one left-to-right pass and
// fails without partial output on the first problem: an empty template, a
// lone first delimiter character, an unclosed tag, a tag opened inside
// another tag, or a key missing from the context.
//
// Engine.RenderPage loads "<layout>.html" from the template root and
// memoizes the result in an expiring cache keyed by the layout name and the
// context hash. Cached pages are not revalidated against the file; their
// staleness is bounded by the cache TTL.
//
// Engine is not safe for concurrent use. Wrap it in a Guarded to share one
// engine between goroutines.
package templating
