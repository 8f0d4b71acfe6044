// Package storage defines the persistent key-value adapter used by the
// data manager. Implementations isolate every I/O failure behind
// boolean signaling: Save never panics and never partially writes, and
// Load leaves the destination untouched on any failure, so callers keep
// whatever default they seeded it with.
package storage

// Store is the key-value adapter over which all entities persist.
// Values are stored as UTF-8 JSON text.
type Store interface {
	// Save serializes v to JSON and writes it under key. Any failure
	// (serialization error, quota, I/O) is reported as false and leaves
	// the prior value intact.
	Save(key string, v any) bool

	// Load decodes the value stored under key into dst. It returns
	// false on a missing key or malformed stored text, with dst left
	// unmodified.
	Load(key string, dst any) bool

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string)

	// Keys returns the keys currently stored, in no particular order.
	Keys() []string
}

// LoadOr returns the decoded value stored under key, or def when the
// key is missing or malformed. This is the load-with-default read path
// every repository getter uses.
func LoadOr[T any](s Store, key string, def T) T {
	var v T
	if s.Load(key, &v) {
		return v
	}
	return def
}
