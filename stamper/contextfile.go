package stamper

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/staticweaver/kv"
)

// LoadContextFile reads a JSON (.json) or YAML (.yaml,
// .yml) document whose top level is an object. Nested
// objects and lists are flattened into dotted keys such as
// "site.title" or "links.0"; scalars are formatted as
// text and null becomes the empty string.
func LoadContextFile(path string) (*kv.Context, error) {
	const errCtx = "loading context file"

	data, err := os.ReadFile(path) //nolint:gosec // paths from CLI flags
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var doc map[string]any

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		err = dec.Decode(&doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf(
			"%s: unsupported extension %q in %s",
			errCtx, ext, path,
		)
	}

	if err != nil {
		return nil, fmt.Errorf(
			"%s: decoding %s: %w", errCtx, path, err,
		)
	}

	vars := kv.New()
	flatten(vars, "", doc)

	return vars, nil
}

func flatten(dst *kv.Context, prefix string, val any) {
	switch tv := val.(type) {
	case map[string]any:
		for k, v := range tv {
			flatten(dst, join(prefix, k), v)
		}
	case []any:
		for i, v := range tv {
			flatten(dst, join(prefix, strconv.Itoa(i)), v)
		}
	case nil:
		dst.Set(prefix, "")
	case string:
		dst.Set(prefix, tv)
	default:
		dst.Set(prefix, fmt.Sprint(tv))
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}
