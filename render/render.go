package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tsawler/scribe/model"
)

// RenderError reports an invalid render request.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "render: " + e.Reason
}

// descentRatio matches the share of the font size the extractor places
// below the baseline when it derives element boxes.
const descentRatio = 0.25

var (
	placeholderFill   = color.RGBA{R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF}
	placeholderBorder = color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
)

// Page rasterizes one page of the snapshot at the given zoom and returns
// the PNG bytes. Page indices are zero-based; a page outside the
// document or a non-positive zoom fails with a *RenderError.
func Page(doc *model.Document, page int, zoom float64) ([]byte, error) {
	if page < 0 || page >= doc.PageCount {
		return nil, &RenderError{Reason: fmt.Sprintf("page %d out of range (document has %d)", page, doc.PageCount)}
	}
	if zoom <= 0 {
		return nil, &RenderError{Reason: fmt.Sprintf("zoom %g is not positive", zoom)}
	}

	w, h := pageSize(doc, page)
	base := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w)), int(math.Ceil(h))))
	draw.Draw(base, base.Bounds(), image.White, image.Point{}, draw.Src)

	for _, img := range doc.ImagesOnPage(page) {
		drawImage(base, img, h)
	}
	for _, el := range doc.ElementsOnPage(page) {
		drawText(base, el, h)
	}

	out := scale(base, zoom)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, &RenderError{Reason: "png encode: " + err.Error()}
	}
	return buf.Bytes(), nil
}

// DataURI wraps PNG bytes for direct embedding in an img src attribute.
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}

func pageSize(doc *model.Document, page int) (float64, float64) {
	if page < len(doc.Pages) && doc.Pages[page].Width > 0 && doc.Pages[page].Height > 0 {
		return doc.Pages[page].Width, doc.Pages[page].Height
	}
	return 612, 792 // US Letter
}

// drawText paints one element at its baseline. The face is a fixed
// bitmap font, so glyph size is approximate; position and color are
// exact.
func drawText(dst *image.RGBA, el model.TextElement, pageHeight float64) {
	baseline := el.BBox.Y0 + el.FontSize*descentRatio
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: el.Color.R, G: el.Color.G, B: el.Color.B, A: 0xFF}),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(el.BBox.X0 * 64),
			Y: fixed.Int26_6((pageHeight - baseline) * 64),
		},
	}
	d.DrawString(el.Text)
}

// drawImage composites the extracted payload into its placement box,
// falling back to a flat placeholder when the payload does not decode.
func drawImage(dst *image.RGBA, el model.ImageElement, pageHeight float64) {
	rect := deviceRect(el.BBox, pageHeight)
	if rect.Empty() {
		return
	}

	src, _, err := image.Decode(bytes.NewReader(el.Data))
	if err != nil {
		draw.Draw(dst, rect, image.NewUniform(placeholderFill), image.Point{}, draw.Src)
		border(dst, rect)
		return
	}
	draw.ApproxBiLinear.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
}

// deviceRect flips a page-space box into image coordinates (y grows
// downward).
func deviceRect(b model.BBox, pageHeight float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X0)),
		int(math.Floor(pageHeight-b.Y1)),
		int(math.Ceil(b.X1)),
		int(math.Ceil(pageHeight-b.Y0)),
	)
}

func border(dst *image.RGBA, r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, placeholderBorder)
		dst.Set(x, r.Max.Y-1, placeholderBorder)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, placeholderBorder)
		dst.Set(r.Max.X-1, y, placeholderBorder)
	}
}

// scale resizes the base raster to the zoom factor. Catmull-Rom keeps
// the bitmap text legible at 2x, the common preview zoom.
func scale(base *image.RGBA, zoom float64) image.Image {
	if zoom == 1 {
		return base
	}
	b := base.Bounds()
	w := int(math.Round(float64(b.Dx()) * zoom))
	h := int(math.Round(float64(b.Dy()) * zoom))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), base, b, draw.Src, nil)
	return dst
}
