package stamper

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/staticweaver/kv"
)

// Options lists the context sources for Build.
type Options struct {
	// StampInfoFiles are "KEY VALUE" status files.
	StampInfoFiles []string
	// ContextFiles are JSON or YAML documents.
	ContextFiles []string
	// Variables are NAME=VALUE assignments.
	Variables []string
}

// Build assembles a context from stamps, then context
// files, then variables.
func Build(opts Options) (*kv.Context, error) {
	const errCtx = "building context"

	stamps, err := LoadStamps(opts.StampInfoFiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	vars := stamps.Clone()

	for _, cf := range opts.ContextFiles {
		loaded, err := LoadContextFile(cf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		vars.Extend(loaded.All())
	}

	if err := ApplyVariables(
		vars, opts.Variables, stamps,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return vars, nil
}

// LoadStamps reads workspace status files and merges them
// into a single context. Each line is "KEY VALUE" with the
// first space as delimiter. Lines without a space are
// silently skipped; later files override earlier ones.
func LoadStamps(infoFiles []string) (*kv.Context, error) {
	const errCtx = "loading stamps"

	stamps := kv.New()

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, line := range strings.Split(
			string(content), "\n",
		) {
			key, val, ok := strings.Cut(line, " ")
			if ok {
				stamps.Set(key, strings.TrimSuffix(val, "\r"))
			}
		}
	}

	return stamps, nil
}

// Stamp substitutes {KEY} placeholders in format with
// values from stamps. Unknown placeholders are preserved.
func Stamp(stamps *kv.Context, format string) string {
	return fasttemplate.ExecuteFuncString(
		format, "{", "}",
		func(w io.Writer, tag string) (int, error) {
			if val, ok := stamps.Get(tag); ok {
				return w.Write([]byte(val))
			}

			return w.Write([]byte("{" + tag + "}"))
		},
	)
}

// ApplyVariables parses NAME=VALUE assignments, stamps
// each VALUE and stores it in dst as both NAME and
// "variables.NAME".
func ApplyVariables(
	dst *kv.Context,
	vars []string,
	stamps *kv.Context,
) error {
	const errCtx = "resolving variables"

	for _, vr := range vars {
		name, raw, ok := strings.Cut(vr, "=")
		if !ok {
			return fmt.Errorf(
				"%s: variable must be VAR=value, got %s",
				errCtx, vr,
			)
		}

		val := Stamp(stamps, raw)

		dst.Set(name, val)
		dst.Set("variables."+name, val)
	}

	return nil
}
