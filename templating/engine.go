package templating

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/byte4ever/staticweaver/cache"
	"github.com/byte4ever/staticweaver/kv"
)

const (
	// DefaultStartTag opens a tag unless configured
	// otherwise.
	DefaultStartTag = "{{"
	// DefaultEndTag closes a tag unless configured
	// otherwise.
	DefaultEndTag = "}}"

	pageExt = ".html"
)

// Config holds the settings for New. Zero-valued tags fall
// back to the double-brace defaults.
type Config struct {
	// TemplateRoot is the directory holding
	// "<layout>.html" files.
	TemplateRoot string
	// CacheTTL is how long a rendered page stays cached.
	// Must be positive.
	CacheTTL time.Duration
	// CacheCapacity caps the number of cached pages when
	// positive.
	CacheCapacity int
	// StartTag is the opening delimiter.
	StartTag string
	// EndTag is the closing delimiter.
	EndTag string
	// FS overrides where layouts are read from. Defaults
	// to os.DirFS(TemplateRoot).
	FS fs.FS
}

// Engine renders templates and memoizes rendered pages.
type Engine struct {
	templateRoot string
	fsys         fs.FS
	cache        *cache.Expiring[string, string]
	openDelim    string
	closeDelim   string
}

// NewEngine returns an engine reading layouts from
// templateRoot and caching pages for ttl. It panics if ttl
// is not positive.
func NewEngine(templateRoot string, ttl time.Duration) *Engine {
	return &Engine{
		templateRoot: templateRoot,
		fsys:         os.DirFS(templateRoot),
		cache:        cache.New[string, string](ttl),
		openDelim:    DefaultStartTag,
		closeDelim:   DefaultEndTag,
	}
}

// New validates cfg and returns an engine.
func New(cfg Config) (*Engine, error) {
	const errCtx = "creating engine"

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf(
			"%s: cache ttl must be positive, got %s",
			errCtx, cfg.CacheTTL,
		)
	}

	if cfg.CacheCapacity < 0 {
		return nil, fmt.Errorf(
			"%s: cache capacity must not be negative",
			errCtx,
		)
	}

	en := NewEngine(cfg.TemplateRoot, cfg.CacheTTL)

	if cfg.CacheCapacity > 0 {
		en.cache.SetCapacity(cfg.CacheCapacity)
	}

	if cfg.FS != nil {
		en.fsys = cfg.FS
	}

	startTag, endTag := tags(cfg.StartTag, cfg.EndTag)
	if err := en.SetDelimiters(startTag, endTag); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return en, nil
}

// tags falls back to double-brace defaults for unset
// delimiters.
func tags(startTag, endTag string) (string, string) {
	if startTag == "" {
		startTag = DefaultStartTag
	}

	if endTag == "" {
		endTag = DefaultEndTag
	}

	return startTag, endTag
}

// RenderPage renders "<layout>.html" from the template
// root against vars. A page rendered earlier with an equal
// context is served from the cache without touching the
// file until its entry expires. layout must be a valid
// fs.FS path, so "./x", "../x" and "/x" fail with ErrIO.
func (en *Engine) RenderPage(
	vars *kv.Context,
	layout string,
) (string, error) {
	key := layout + ":" + strconv.FormatUint(vars.Hash(), 10)

	if page, ok := en.cache.Get(key); ok {
		slog.Debug(
			"page cache hit",
			"layout", layout,
			"key", key,
		)

		return page, nil
	}

	name := layout + pageExt

	content, err := fs.ReadFile(en.fsys, name)
	if err != nil {
		return "", &Error{
			Kind:   ErrIO,
			Detail: "reading layout " + name,
			Err:    err,
		}
	}

	page, err := en.RenderTemplate(string(content), vars)
	if err != nil {
		return "", err
	}

	en.cache.Insert(key, page)

	slog.Debug(
		"page cached",
		"layout", layout,
		"key", key,
		"entries", en.cache.Len(),
	)

	return page, nil
}

// SetDelimiters replaces the tag delimiters for later
// renders. Pages already cached are kept as rendered.
func (en *Engine) SetDelimiters(open, closing string) error {
	const errCtx = "setting delimiters"

	if open == "" || closing == "" {
		return fmt.Errorf(
			"%s: %w",
			errCtx,
			invalidTemplate("delimiters must not be empty"),
		)
	}

	en.openDelim = open
	en.closeDelim = closing

	return nil
}

// Delimiters returns the current open and close
// delimiters.
func (en *Engine) Delimiters() (string, string) {
	return en.openDelim, en.closeDelim
}

// TemplateRoot returns the directory layouts are read
// from.
func (en *Engine) TemplateRoot() string {
	return en.templateRoot
}

// ClearCache drops every cached page.
func (en *Engine) ClearCache() {
	en.cache.Clear()
}

// SetMaxCacheSize empties the whole cache when it stores
// more than maxSize entries. It does not evict
// selectively and sets no ceiling on later inserts.
func (en *Engine) SetMaxCacheSize(maxSize int) {
	if en.cache.Len() > maxSize {
		slog.Debug(
			"clearing page cache",
			"entries", en.cache.Len(),
			"max", maxSize,
		)

		en.ClearCache()
	}
}

// CacheLen returns the number of stored pages, expired
// ones included.
func (en *Engine) CacheLen() int {
	return en.cache.Len()
}

// PurgeExpired drops expired pages from the cache.
func (en *Engine) PurgeExpired() {
	en.cache.RemoveExpired()
}

// IsNotFound reports whether err stems from a missing
// layout file.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
