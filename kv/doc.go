// Package kv provides the string key-value Context consumed by the
// templating engine. A Context has no ordering and exposes a content hash
// that depends only on its set of pairs, so two contexts holding the same
// pairs always produce the same render cache key.
package kv
