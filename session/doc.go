// Package session keeps loaded documents in an explicit arena instead
// of a process-global current document. Each entry pairs the current
// blob bytes with the reader and structural snapshot derived from them,
// keyed by document id, with least-recently-used eviction when the
// arena is full.
//
// All mutation flows through the arena: edit produces new bytes, the
// store swaps them in, and the snapshot is re-derived so element ids
// always address the version actually persisted.
package session
