// Package store persists document versions. Blob content lives in
// BadgerDB keyed by an opaque blob id; one metadata record per document
// lives in SQLite via GORM, keyed by document id. Replacing a version
// writes the new blob, repoints the record, then deletes the old blob,
// so a reader always finds either the old complete version or the new
// one.
//
// Writers to the same document are serialized by a per-document lock
// with a bounded acquisition wait; the loser gets ErrBusy. Reads never
// take the lock.
package store
