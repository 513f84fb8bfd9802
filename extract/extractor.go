package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/tsawler/scribe/contentstream"
	"github.com/tsawler/scribe/core"
	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/pages"
	"github.com/tsawler/scribe/reader"
)

// fragment is one show-text run in device space, before word assembly.
type fragment struct {
	text     string
	x, y     float64 // baseline origin
	width    float64
	size     float64 // effective font size
	fontName string
	flags    int
	color    model.Color
	seq      int // operation index, for occlusion against later fills
}

// paintRect is one filled rectangle in device space. Text shown before
// a fill that fully covers it is treated as painted over and dropped
// from the model; overlay edits rely on this.
type paintRect struct {
	box model.BBox
	seq int
}

// Build parses the document held by r into a structural snapshot. The
// returned model is complete or the whole build fails; there is no
// partial result.
func Build(r *reader.Reader, docID, filename string) (*model.Document, error) {
	catalog, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.Load(catalog, r)
	if err != nil {
		return nil, fmt.Errorf("page tree: %w", err)
	}

	doc := &model.Document{
		DocumentID: docID,
		Filename:   filename,
		FileSize:   int64(r.Len()),
		PageCount:  tree.Count(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := fillMetadata(r, doc); err != nil {
		return nil, err
	}

	for i, pg := range tree.Pages() {
		doc.Pages = append(doc.Pages, model.PageSize{Width: pg.Width(), Height: pg.Height()})
		if err := buildPage(r, pg, i, doc); err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
	}

	if err := doc.Finalize(); err != nil {
		return nil, err
	}
	return doc, nil
}

func fillMetadata(r *reader.Reader, doc *model.Document) error {
	info, err := r.Info()
	if err != nil || info == nil {
		return nil // info dictionary is optional
	}
	get := func(key core.Name) string {
		if s, ok := info.Str(key); ok {
			return core.DecodeTextString(s)
		}
		return ""
	}
	doc.Meta = model.Metadata{
		Title:            get("Title"),
		Author:           get("Author"),
		Subject:          get("Subject"),
		Creator:          get("Creator"),
		Producer:         get("Producer"),
		CreationDate:     get("CreationDate"),
		ModificationDate: get("ModDate"),
	}
	return nil
}

func buildPage(r *reader.Reader, pg *pages.Page, pageNum int, doc *model.Document) error {
	content, err := pg.Contents()
	if err != nil {
		return err
	}

	fonts := loadFonts(pg.Resources, r.Resolve)

	var fragments []fragment
	var fills []paintRect
	placements := make(map[string]model.BBox)

	if len(content) > 0 {
		ops, err := contentstream.Parse(content)
		if err != nil {
			return fmt.Errorf("content stream: %w", err)
		}
		fragments, fills, err = replay(ops, fonts, placements)
		if err != nil {
			return err
		}
	}

	// Occlusion works at word granularity: an edit overlay paints over
	// exactly one word's box.
	fragments = dropCovered(splitFragments(fragments), fills)
	doc.TextElements = append(doc.TextElements, assembleWords(fragments, pageNum)...)

	images, err := r.ImagesFromResources(pg.Resources)
	if err != nil {
		return err
	}
	doc.Images = append(doc.Images, buildImages(images, placements, pageNum)...)

	return nil
}

// replay runs the operations through the state machine and collects text
// fragments, filled rectangles, and image placement rectangles.
func replay(ops []contentstream.Operation, fonts map[string]*fontInfo, placements map[string]model.BBox) ([]fragment, []paintRect, error) {
	stack := newStateStack()
	var fragments []fragment
	var fills []paintRect
	var path []model.BBox // rectangles of the current path, device space
	seq := 0

	show := func(data []byte) {
		gs := stack.current
		font := fonts[gs.fontName]
		if font == nil {
			font = defaultFont
		}

		combined := gs.textMatrix.Mul(gs.ctm)
		x, y := gs.renderMatrix().Apply(0, 0)
		effSize := gs.fontSize * combined.ScaleY()

		// Advance in unscaled text space: glyph widths plus spacing.
		advance := font.stringWidth(data) / 1000.0 * gs.fontSize
		advance += gs.charSpace * float64(len(data))
		for _, b := range data {
			if b == ' ' {
				advance += gs.wordSpace
			}
		}

		text := decodeSimple(data)
		if text != "" {
			fragments = append(fragments, fragment{
				text:     text,
				x:        x,
				y:        y,
				width:    advance * gs.hscale * combined.ScaleX(),
				size:     effSize,
				fontName: font.BaseFont,
				flags:    font.Flags,
				color: model.Color{
					R: clamp8(gs.fillColor[0]),
					G: clamp8(gs.fillColor[1]),
					B: clamp8(gs.fillColor[2]),
				},
				seq: seq,
			})
		}
		gs.advance(advance)
	}

	for _, op := range ops {
		seq++
		gs := stack.current
		switch op.Operator {
		case "q":
			stack.save()
		case "Q":
			stack.restore()
		case "cm":
			if m, ok := matrixOperands(op.Operands); ok {
				gs.concat(m)
			}

		case "BT":
			gs.beginText()
		case "ET":
			// nothing to flush; fragments are emitted eagerly
		case "Tf":
			if len(op.Operands) == 2 {
				if name, ok := op.Operands[0].(core.Name); ok {
					gs.fontName = string(name)
				}
				if size, ok := core.ToFloat(op.Operands[1]); ok {
					gs.fontSize = size
				}
			}
		case "Td":
			if tx, ty, ok := pairOperands(op.Operands); ok {
				gs.nextLine(tx, ty)
			}
		case "TD":
			if tx, ty, ok := pairOperands(op.Operands); ok {
				gs.leading = -ty
				gs.nextLine(tx, ty)
			}
		case "Tm":
			if m, ok := matrixOperands(op.Operands); ok {
				gs.setTextMatrix(m)
			}
		case "T*":
			gs.nextLine(0, -gs.leading)
		case "TL":
			if v, ok := singleOperand(op.Operands); ok {
				gs.leading = v
			}
		case "Tc":
			if v, ok := singleOperand(op.Operands); ok {
				gs.charSpace = v
			}
		case "Tw":
			if v, ok := singleOperand(op.Operands); ok {
				gs.wordSpace = v
			}
		case "Tz":
			if v, ok := singleOperand(op.Operands); ok {
				gs.hscale = v / 100.0
			}
		case "Ts":
			if v, ok := singleOperand(op.Operands); ok {
				gs.rise = v
			}

		case "rg":
			if len(op.Operands) == 3 {
				for i := 0; i < 3; i++ {
					gs.fillColor[i], _ = core.ToFloat(op.Operands[i])
				}
			}
		case "g":
			if v, ok := singleOperand(op.Operands); ok {
				gs.fillColor = [3]float64{v, v, v}
			}
		case "k":
			if len(op.Operands) == 4 {
				var cmyk [4]float64
				for i := 0; i < 4; i++ {
					cmyk[i], _ = core.ToFloat(op.Operands[i])
				}
				gs.fillColor = [3]float64{
					(1 - cmyk[0]) * (1 - cmyk[3]),
					(1 - cmyk[1]) * (1 - cmyk[3]),
					(1 - cmyk[2]) * (1 - cmyk[3]),
				}
			}

		case "Tj":
			if len(op.Operands) == 1 {
				if s, ok := op.Operands[0].(core.String); ok {
					show([]byte(s))
				}
			}
		case "TJ":
			if len(op.Operands) == 1 {
				if arr, ok := op.Operands[0].(core.Array); ok {
					for _, item := range arr {
						switch v := item.(type) {
						case core.String:
							show([]byte(v))
						case core.Int, core.Real:
							adj, _ := core.ToFloat(v)
							gs.advance(-adj / 1000.0 * gs.fontSize)
						}
					}
				}
			}
		case "'":
			gs.nextLine(0, -gs.leading)
			if len(op.Operands) == 1 {
				if s, ok := op.Operands[0].(core.String); ok {
					show([]byte(s))
				}
			}
		case "\"":
			if len(op.Operands) == 3 {
				if v, ok := core.ToFloat(op.Operands[0]); ok {
					gs.wordSpace = v
				}
				if v, ok := core.ToFloat(op.Operands[1]); ok {
					gs.charSpace = v
				}
				gs.nextLine(0, -gs.leading)
				if s, ok := op.Operands[2].(core.String); ok {
					show([]byte(s))
				}
			}

		case "re":
			if len(op.Operands) == 4 {
				x, _ := core.ToFloat(op.Operands[0])
				y, _ := core.ToFloat(op.Operands[1])
				w, _ := core.ToFloat(op.Operands[2])
				h, _ := core.ToFloat(op.Operands[3])
				path = append(path, rectBBox(gs.ctm, x, y, w, h))
			}
		case "f", "F", "f*", "b", "b*", "B", "B*":
			for _, box := range path {
				fills = append(fills, paintRect{box: box, seq: seq})
			}
			path = path[:0]
		case "n", "S", "s":
			path = path[:0]

		case "Do":
			if len(op.Operands) == 1 {
				if name, ok := op.Operands[0].(core.Name); ok {
					if _, seen := placements[string(name)]; !seen {
						placements[string(name)] = unitSquareBBox(gs.ctm)
					}
				}
			}
		}
	}

	return fragments, fills, nil
}

// unitSquareBBox maps the image unit square through the CTM to the
// placement rectangle in page space.
func unitSquareBBox(ctm Matrix) model.BBox {
	return rectBBox(ctm, 0, 0, 1, 1)
}

// rectBBox maps a user-space rectangle through a transform and returns
// the normalized device-space bounding box.
func rectBBox(m Matrix, x, y, w, h float64) model.BBox {
	corners := [4][2]float64{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}}
	x0, y0 := m.Apply(corners[0][0], corners[0][1])
	box := model.BBox{X0: x0, Y0: y0, X1: x0, Y1: y0}
	for _, c := range corners[1:] {
		cx, cy := m.Apply(c[0], c[1])
		if cx < box.X0 {
			box.X0 = cx
		}
		if cx > box.X1 {
			box.X1 = cx
		}
		if cy < box.Y0 {
			box.Y0 = cy
		}
		if cy > box.Y1 {
			box.Y1 = cy
		}
	}
	return box
}

// coverEps absorbs rounding in the three-decimal coordinate format used
// by overlay streams.
const coverEps = 0.01

// dropCovered removes fragments that a later fill fully paints over.
// An edit overlay covers the old run with a background rectangle before
// drawing its replacement, so the covered run must not reappear as an
// element.
func dropCovered(fragments []fragment, fills []paintRect) []fragment {
	if len(fills) == 0 {
		return fragments
	}
	out := fragments[:0]
	for _, frag := range fragments {
		box := model.NewBBox(frag.x, frag.y-frag.size*0.25, frag.x+frag.width, frag.y+frag.size*0.75)
		covered := false
		for _, fill := range fills {
			if fill.seq <= frag.seq {
				continue
			}
			if fill.box.X0 <= box.X0+coverEps && fill.box.Y0 <= box.Y0+coverEps &&
				fill.box.X1 >= box.X1-coverEps && fill.box.Y1 >= box.Y1-coverEps {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, frag)
		}
	}
	return out
}

// decodeSimple maps content string bytes to text assuming a Latin-1
// compatible simple-font encoding. Composite (Type0) fonts with
// multi-byte codes come out garbled but never crash extraction.
func decodeSimple(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

func matrixOperands(ops []core.Object) (Matrix, bool) {
	if len(ops) != 6 {
		return Matrix{}, false
	}
	var m Matrix
	for i := range ops {
		f, ok := core.ToFloat(ops[i])
		if !ok {
			return Matrix{}, false
		}
		m[i] = f
	}
	return m, true
}

func pairOperands(ops []core.Object) (float64, float64, bool) {
	if len(ops) != 2 {
		return 0, 0, false
	}
	a, ok1 := core.ToFloat(ops[0])
	b, ok2 := core.ToFloat(ops[1])
	return a, b, ok1 && ok2
}

func singleOperand(ops []core.Object) (float64, bool) {
	if len(ops) != 1 {
		return 0, false
	}
	return core.ToFloat(ops[0])
}

func clamp8(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
