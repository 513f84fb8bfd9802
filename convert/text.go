package convert

import (
	"fmt"
	"strings"

	"github.com/tsawler/scribe/extract"
	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/reader"
)

// TextExtractor converts a PDF into plain UTF-8 text in reading order.
// Words are joined by spaces within a line, lines by newlines, blocks by
// a blank line, and pages by a form feed.
type TextExtractor struct{}

// Accepts reports whether f is PDF.
func (TextExtractor) Accepts(f format.Format) bool { return f == format.PDF }

// Convert extracts the text of a PDF.
func (TextExtractor) Convert(data []byte) ([]byte, error) {
	if format.DetectFromMagic(data) != format.PDF {
		return nil, fmt.Errorf("input is not a PDF")
	}
	r, err := reader.New(data)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Build(r, "", "")
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	page, block, line := -1, -1, -1
	for _, el := range doc.TextElements {
		switch {
		case el.Page != page:
			if page >= 0 {
				sb.WriteString("\f")
			}
		case el.Block != block:
			sb.WriteString("\n\n")
		case el.Line != line:
			sb.WriteString("\n")
		case sb.Len() > 0:
			sb.WriteString(" ")
		}
		page, block, line = el.Page, el.Block, el.Line
		sb.WriteString(el.Text)
	}
	return []byte(sb.String()), nil
}
