package convert

import "github.com/tsawler/scribe/format"

// Converter turns document bytes of one format into another
// representation. Implementations reject input whose magic bytes do not
// match the format they accept.
type Converter interface {
	// Accepts reports whether the converter handles the given format.
	Accepts(f format.Format) bool
	// Convert transforms the input bytes.
	Convert(data []byte) ([]byte, error)
}
