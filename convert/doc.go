// Package convert holds the format conversion collaborators. Two are
// implemented natively: PDF to plain text, and a raster image to a
// single-page PDF. Formats that need an external tool (Word documents)
// are represented by the Converter interface only; callers plug in
// their own implementation.
package convert
