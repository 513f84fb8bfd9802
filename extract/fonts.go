package extract

import (
	"strings"

	"github.com/tsawler/scribe/core"
	"github.com/tsawler/scribe/model"
)

// fontInfo carries what extraction needs from one font resource: a
// display name, per-code advance widths, and style flags derived from the
// base font name.
type fontInfo struct {
	BaseFont     string
	Flags        int
	FirstChar    int
	Widths       []float64 // glyph-space units (1/1000 text space), indexed from FirstChar
	DefaultWidth float64
}

// defaultFont approximates an unregistered font. Half an em per glyph is
// the same estimate the common extractors fall back to.
var defaultFont = &fontInfo{BaseFont: "Helvetica", DefaultWidth: 500}

// widthOf returns the advance of a single byte code in glyph-space units.
func (f *fontInfo) widthOf(code byte) float64 {
	idx := int(code) - f.FirstChar
	if idx >= 0 && idx < len(f.Widths) && f.Widths[idx] > 0 {
		return f.Widths[idx]
	}
	if f.DefaultWidth > 0 {
		return f.DefaultWidth
	}
	return 500
}

// stringWidth returns the advance of text in glyph-space units.
func (f *fontInfo) stringWidth(data []byte) float64 {
	var w float64
	for _, b := range data {
		w += f.widthOf(b)
	}
	return w
}

// styleFlags derives bold/italic bits from a base font name such as
// "Helvetica-BoldOblique" or "ABCDEF+Times-Italic".
func styleFlags(baseFont string) int {
	name := strings.ToLower(baseFont)
	flags := 0
	if strings.Contains(name, "bold") {
		flags |= model.FlagBold
	}
	if strings.Contains(name, "italic") || strings.Contains(name, "oblique") {
		flags |= model.FlagItalic
	}
	return flags
}

// displayName strips the subset prefix ("ABCDEF+") from a base font name.
func displayName(baseFont string) string {
	if len(baseFont) > 7 && baseFont[6] == '+' {
		return baseFont[7:]
	}
	return baseFont
}

// loadFonts parses the /Font entries of a page's resources into a lookup
// by resource name. Fonts that fail to parse are replaced by the default
// approximation rather than failing the page.
func loadFonts(resources core.Dict, resolve func(core.Object) (core.Object, error)) map[string]*fontInfo {
	fonts := make(map[string]*fontInfo)
	if resources == nil {
		return fonts
	}

	fontDictObj, err := resolve(resources.Get("Font"))
	if err != nil {
		return fonts
	}
	fontDict, ok := fontDictObj.(core.Dict)
	if !ok {
		return fonts
	}

	for name, entry := range fontDict {
		resolved, err := resolve(entry)
		if err != nil {
			continue
		}
		dict, ok := resolved.(core.Dict)
		if !ok {
			continue
		}
		fonts[string(name)] = parseFont(dict, resolve)
	}
	return fonts
}

func parseFont(dict core.Dict, resolve func(core.Object) (core.Object, error)) *fontInfo {
	info := &fontInfo{DefaultWidth: 500}

	if base, ok := dict.Name("BaseFont"); ok {
		info.BaseFont = displayName(string(base))
		info.Flags = styleFlags(string(base))
	} else {
		info.BaseFont = defaultFont.BaseFont
	}

	if fc, ok := dict.Int("FirstChar"); ok {
		info.FirstChar = int(fc)
	}

	widthsObj, err := resolve(dict.Get("Widths"))
	if err == nil {
		if arr, ok := widthsObj.(core.Array); ok {
			info.Widths = make([]float64, len(arr))
			for i := range arr {
				if f, ok := core.ToFloat(arr[i]); ok {
					info.Widths[i] = f
				}
			}
		}
	}

	// /MissingWidth lives on the descriptor when present.
	descObj, err := resolve(dict.Get("FontDescriptor"))
	if err == nil {
		if desc, ok := descObj.(core.Dict); ok {
			if mw, ok := desc.Float("MissingWidth"); ok && mw > 0 {
				info.DefaultWidth = mw
			}
		}
	}

	return info
}
