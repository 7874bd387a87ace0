package templating

import (
	"sync"

	"github.com/byte4ever/staticweaver/kv"
)

// Guarded serializes every call into one Engine behind a
// single mutex. Use it when several goroutines render
// through the same engine.
type Guarded struct {
	mu sync.Mutex
	en *Engine
}

// NewGuarded wraps en. en must not be used directly
// afterwards.
func NewGuarded(en *Engine) *Guarded {
	return &Guarded{en: en}
}

// RenderPage calls Engine.RenderPage under the lock.
func (gu *Guarded) RenderPage(
	vars *kv.Context,
	layout string,
) (string, error) {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	return gu.en.RenderPage(vars, layout)
}

// RenderTemplate calls Engine.RenderTemplate under the
// lock.
func (gu *Guarded) RenderTemplate(
	tpl string,
	vars Vars,
) (string, error) {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	return gu.en.RenderTemplate(tpl, vars)
}

// SetDelimiters calls Engine.SetDelimiters under the lock.
func (gu *Guarded) SetDelimiters(open, closing string) error {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	return gu.en.SetDelimiters(open, closing)
}

// ClearCache calls Engine.ClearCache under the lock.
func (gu *Guarded) ClearCache() {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	gu.en.ClearCache()
}

// SetMaxCacheSize calls Engine.SetMaxCacheSize under the
// lock.
func (gu *Guarded) SetMaxCacheSize(maxSize int) {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	gu.en.SetMaxCacheSize(maxSize)
}

// PurgeExpired calls Engine.PurgeExpired under the lock.
func (gu *Guarded) PurgeExpired() {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	gu.en.PurgeExpired()
}

// CacheLen calls Engine.CacheLen under the lock.
func (gu *Guarded) CacheLen() int {
	gu.mu.Lock()
	defer gu.mu.Unlock()

	return gu.en.CacheLen()
}
