package edit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/scribe/contentstream"
	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/reader"
	"github.com/tsawler/scribe/writer"
)

// Options adjusts an element update. Zero values keep the element's
// current size and color.
type Options struct {
	FontSize float64
	Color    *model.Color
}

// Result is the outcome of a mutation: the rewritten document bytes and
// how many elements were changed.
type Result struct {
	PDF     []byte
	Changed int
}

// descentRatio is the share of the font size assumed to hang below the
// baseline, matching the box geometry the extractor assigns.
const descentRatio = 0.25

// UpdateElement replaces the text of one element. The replacement is
// drawn at the element's baseline in a standard Helvetica variant
// matching the element's bold/italic flags, clipped to the element's
// box so overflow never bleeds into neighbouring content.
func UpdateElement(r *reader.Reader, doc *model.Document, id, text string, opts Options) (*Result, error) {
	if text == "" {
		return nil, errors.New("replacement text is empty")
	}
	el, err := doc.FindElement(id)
	if err != nil {
		return nil, err
	}

	patch := newPagePatch(el.Page)
	patch.cover(el, text, opts)

	pdf, err := writer.Rewrite(r, []writer.Patch{patch.build()})
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	return &Result{PDF: pdf, Changed: 1}, nil
}

// SearchReplace substitutes term inside every element whose text
// contains it; the rest of the element's text is preserved. Matching is
// per word-level element, so a term spanning two elements never
// matches. A Changed count of zero means no rewrite happened and
// Result.PDF is nil.
func SearchReplace(r *reader.Reader, doc *model.Document, term, replacement string) (*Result, error) {
	if term == "" {
		return nil, errors.New("search term is empty")
	}
	if replacement == "" {
		return nil, errors.New("replacement text is empty")
	}

	patches := make(map[int]*pagePatch)
	changed := 0
	for _, el := range doc.TextElements {
		if !strings.Contains(el.Text, term) {
			continue
		}
		patch, ok := patches[el.Page]
		if !ok {
			patch = newPagePatch(el.Page)
			patches[el.Page] = patch
		}
		patch.cover(el, strings.ReplaceAll(el.Text, term, replacement), Options{})
		changed++
	}
	if changed == 0 {
		return &Result{}, nil
	}

	nums := make([]int, 0, len(patches))
	for page := range patches {
		nums = append(nums, page)
	}
	sort.Ints(nums)
	set := make([]writer.Patch, 0, len(nums))
	for _, page := range nums {
		set = append(set, patches[page].build())
	}

	pdf, err := writer.Rewrite(r, set)
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	return &Result{PDF: pdf, Changed: changed}, nil
}

// AddText draws new text at (x, y) in page space, y being the baseline.
// The run only becomes an addressable element once the caller re-extracts
// the model from the returned bytes.
func AddText(r *reader.Reader, page int, x, y float64, text string, size float64, color model.Color) (*Result, error) {
	if text == "" {
		return nil, errors.New("text is empty")
	}
	if size <= 0 {
		size = 12
	}

	patch := newPagePatch(page)
	b := patch.builder
	b.SaveState().
		BeginText().
		Font(patch.fontResource("Helvetica"), size).
		FillColor(component(color.R), component(color.G), component(color.B)).
		TextPos(x, y).
		ShowText(text).
		EndText().
		RestoreState()

	pdf, err := writer.Rewrite(r, []writer.Patch{patch.build()})
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	return &Result{PDF: pdf, Changed: 1}, nil
}

// pagePatch accumulates overlay operations and font resources for one
// page.
type pagePatch struct {
	page    int
	builder *contentstream.Builder
	fonts   map[string]string // resource name -> base font
	byBase  map[string]string // base font -> resource name
}

func newPagePatch(page int) *pagePatch {
	return &pagePatch{
		page:    page,
		builder: contentstream.NewBuilder(),
		fonts:   make(map[string]string),
		byBase:  make(map[string]string),
	}
}

// fontResource returns the overlay resource name for a base font,
// registering it on first use.
func (p *pagePatch) fontResource(baseFont string) string {
	if name, ok := p.byBase[baseFont]; ok {
		return name
	}
	name := fmt.Sprintf("ScrF%d", len(p.fonts))
	p.fonts[name] = baseFont
	p.byBase[baseFont] = name
	return name
}

// cover paints over one element and draws its replacement text.
func (p *pagePatch) cover(el model.TextElement, text string, opts Options) {
	size := el.FontSize
	if opts.FontSize > 0 {
		size = opts.FontSize
	}
	color := el.Color
	if opts.Color != nil {
		color = *opts.Color
	}

	box := el.BBox
	baseline := box.Y0 + size*descentRatio

	p.builder.SaveState().
		FillColor(1, 1, 1).
		Rect(box.X0, box.Y0, box.Width(), box.Height()).
		Fill().
		ClipRect(box.X0, box.Y0, box.Width(), box.Height()).
		BeginText().
		Font(p.fontResource(overlayFont(el)), size).
		FillColor(component(color.R), component(color.G), component(color.B)).
		TextPos(box.X0, baseline).
		ShowText(text).
		EndText().
		RestoreState()
}

func (p *pagePatch) build() writer.Patch {
	return writer.Patch{
		Page:    p.page,
		Content: p.builder.Bytes(),
		Fonts:   p.fonts,
	}
}

// overlayFont picks the Helvetica variant matching the element's style
// flags. The original embedded font program is not reusable for new
// glyphs, so the standard family stands in.
func overlayFont(el model.TextElement) string {
	switch {
	case el.Bold() && el.Italic():
		return "Helvetica-BoldOblique"
	case el.Bold():
		return "Helvetica-Bold"
	case el.Italic():
		return "Helvetica-Oblique"
	default:
		return "Helvetica"
	}
}

func component(c uint8) float64 {
	return float64(c) / 255.0
}
