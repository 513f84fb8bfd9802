// Package filters implements the PDF stream filters scribe needs: Flate
// (decode with PNG/TIFF predictors, plus encode for the rewriter),
// ASCIIHex, ASCII85, and CCITT Group 3/4 fax decoding.
package filters
