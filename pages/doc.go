// Package pages navigates the PDF page tree: flattening Pages/Page nodes
// into an ordered page list and exposing per-page attributes (MediaBox,
// Resources, Contents) with inheritance from parent nodes.
package pages
