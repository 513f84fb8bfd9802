// Package model defines the structural snapshot of one parsed document
// version: addressable text and image elements with their geometry and
// styling, plus the derived font and color summaries.
//
// A Document is a disposable view. It does not own the underlying binary;
// after any mutation the edit engine re-derives a fresh Document from the
// rewritten bytes rather than patching fields in place. Callers must not
// modify elements directly — mutation goes through the edit package so the
// identity index never drifts from the element list.
package model
