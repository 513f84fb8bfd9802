// Package edit mutates text in a parsed document. Edits are overlays: a
// background fill covers the original run's box, the replacement text is
// drawn at the same baseline clipped to that box, and the patched pages
// are handed to the writer for a full rewrite. The original glyphs stay
// in the file underneath the fill.
//
// Callers re-derive the structural model from the returned bytes; element
// ids are only valid against the binary they were extracted from.
package edit
