// Package contentstream parses PDF content streams into operator
// sequences and builds new streams for the edit engine's visual overlays.
package contentstream
