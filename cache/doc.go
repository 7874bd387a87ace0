// Package cache provides Expiring, a generic map whose entries expire a
// fixed time-to-live after they were last written or refreshed. An optional
// capacity blocks new keys once the stored entry count reaches it; existing
// keys can always be rewritten.
//
// Expiry is lazy and read-only: Get, ContainsKey, TTL and All skip dead
// entries but leave them in storage until RemoveExpired, Remove or Clear
// drops them. Len and IsEmpty therefore report the stored count, which may
// include dead entries.
//
// Expiring has no internal locking. Callers sharing one instance across
// goroutines must serialize access themselves.
package cache
