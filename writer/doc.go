// Package writer serializes a complete PDF from the objects of an
// existing document plus overlay patches produced by the edit engine.
// The output is a fresh, self-contained file: every live object is
// carried over, patched pages get an extra content stream appended, and
// a new classic cross-reference table is emitted.
//
// This is a full rewrite, not an incremental update; the original bytes
// are never modified in place.
package writer
