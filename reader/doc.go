// Package reader provides whole-document access to a PDF held in memory:
// header validation, cross-reference loading, object resolution with
// caching, catalog and info dictionary access, and image XObject
// enumeration.
//
// A failed open is all-or-nothing. Malformed, encrypted, or non-PDF input
// produces a *ParseError and no partially usable Reader.
package reader
