package templating

import "time"

// SetCacheClockForTest replaces the clock of the page
// cache owned by en.
func SetCacheClockForTest(en *Engine, now func() time.Time) {
	en.cache.SetClock(now)
}
