package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/scribe/core"
)

// Builder assembles a content stream operation by operation. The edit
// engine uses it to produce overlay streams: background fills, clip
// paths, and replacement text runs.
type Builder struct {
	buf bytes.Buffer
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bytes returns the accumulated stream data.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// SaveState emits q.
func (b *Builder) SaveState() *Builder {
	b.buf.WriteString("q\n")
	return b
}

// RestoreState emits Q.
func (b *Builder) RestoreState() *Builder {
	b.buf.WriteString("Q\n")
	return b
}

// FillColor sets the non-stroking color. Components are in [0,1].
func (b *Builder) FillColor(r, g, bl float64) *Builder {
	fmt.Fprintf(&b.buf, "%s %s %s rg\n", num(r), num(g), num(bl))
	return b
}

// Rect appends a rectangle to the current path.
func (b *Builder) Rect(x, y, w, h float64) *Builder {
	fmt.Fprintf(&b.buf, "%s %s %s %s re\n", num(x), num(y), num(w), num(h))
	return b
}

// Fill fills the current path.
func (b *Builder) Fill() *Builder {
	b.buf.WriteString("f\n")
	return b
}

// ClipRect intersects the clip region with a rectangle. Content drawn
// afterwards never escapes the rectangle.
func (b *Builder) ClipRect(x, y, w, h float64) *Builder {
	fmt.Fprintf(&b.buf, "%s %s %s %s re W n\n", num(x), num(y), num(w), num(h))
	return b
}

// BeginText emits BT.
func (b *Builder) BeginText() *Builder {
	b.buf.WriteString("BT\n")
	return b
}

// EndText emits ET.
func (b *Builder) EndText() *Builder {
	b.buf.WriteString("ET\n")
	return b
}

// Font selects a font resource by name at the given size.
func (b *Builder) Font(resource string, size float64) *Builder {
	core.WriteObject(&b.buf, core.Name(resource))
	fmt.Fprintf(&b.buf, " %s Tf\n", num(size))
	return b
}

// TextPos positions the text cursor.
func (b *Builder) TextPos(x, y float64) *Builder {
	fmt.Fprintf(&b.buf, "%s %s Td\n", num(x), num(y))
	return b
}

// ShowText emits a Tj with the string properly escaped.
func (b *Builder) ShowText(text string) *Builder {
	core.WriteObject(&b.buf, core.String(text))
	b.buf.WriteString(" Tj\n")
	return b
}

// num formats a coordinate with up to three decimals, trimming zeros.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = trimRight(s, '0')
	s = trimRight(s, '.')
	return s
}

func trimRight(s string, c byte) string {
	for len(s) > 0 && s[len(s)-1] == c {
		s = s[:len(s)-1]
	}
	return s
}
