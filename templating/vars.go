package templating

// Vars resolves tag keys to values. *kv.Context satisfies
// it.
type Vars interface {
	Get(key string) (string, bool)
}

// Map adapts a plain map to Vars.
type Map map[string]string

// Get returns the value stored under key.
func (m Map) Get(key string) (string, bool) {
	v, ok := m[key]

	return v, ok
}
