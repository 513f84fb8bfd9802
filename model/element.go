package model

import "fmt"

// Font style flags. The bit positions follow the convention used by the
// common PDF text extractors, so flags survive round trips through
// serialized snapshots.
const (
	FlagItalic = 1 << 1
	FlagBold   = 1 << 4
)

// TextElement is one addressable word-level text span.
type TextElement struct {
	ID        string  `json:"element_id"`
	Text      string  `json:"text"`
	BBox      BBox    `json:"bbox"`
	FontName  string  `json:"font_name"`
	FontSize  float64 `json:"font_size"`
	FontFlags int     `json:"font_flags"`
	Color     Color   `json:"color"`
	Page      int     `json:"page_num"`
	Block     int     `json:"block_num"`
	Line      int     `json:"line_num"`
	Word      int     `json:"word_num"`
}

// Bold reports whether the bold style flag is set.
func (e *TextElement) Bold() bool { return e.FontFlags&FlagBold != 0 }

// Italic reports whether the italic style flag is set.
func (e *TextElement) Italic() bool { return e.FontFlags&FlagItalic != 0 }

// FontLabel renders the "name (size) [Bold][Italic]" summary form.
func (e *TextElement) FontLabel() string {
	label := fmt.Sprintf("%s (%gpt)", e.FontName, e.FontSize)
	if e.Bold() {
		label += " Bold"
	}
	if e.Italic() {
		label += " Italic"
	}
	return label
}

// ElementID derives the deterministic element identifier from structural
// position. Within one parse of one document version the mapping is a
// bijection, which makes ids unique.
func ElementID(page, block, line, word int) string {
	return fmt.Sprintf("p%d_b%d_l%d_w%d", page, block, line, word)
}

// ImageElement is one embedded raster image placed on a page. Only images
// with at most three color channels (grayscale or RGB) become elements;
// CMYK images are not extracted.
type ImageElement struct {
	ID       string `json:"image_id"`
	Page     int    `json:"page"`
	BBox     BBox   `json:"bbox"`
	Data     []byte `json:"data"` // encoded raster payload (PNG)
	Source   string `json:"source"` // XObject resource name in the page's object table
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
}

// FallbackImageBBox is used when an image XObject is never placed by the
// page's content stream, so no placement rectangle exists. Extraction
// keeps the image rather than failing the document.
var FallbackImageBBox = BBox{X0: 0, Y0: 0, X1: 100, Y1: 100}
