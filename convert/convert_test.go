package convert_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/tsawler/scribe/convert"
	"github.com/tsawler/scribe/core"
	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/pages"
	"github.com/tsawler/scribe/reader"
	"github.com/tsawler/scribe/writer"
)

func textPDF(t *testing.T, content string) []byte {
	t.Helper()
	objects := map[int]core.Object{
		1: core.Dict{"Type": core.Name("Catalog"), "Pages": core.Ref{Number: 2}},
		2: core.Dict{
			"Type":  core.Name("Pages"),
			"Kids":  core.Array{core.Ref{Number: 3}},
			"Count": core.Int(1),
		},
		3: core.Dict{
			"Type":     core.Name("Page"),
			"Parent":   core.Ref{Number: 2},
			"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(612), core.Int(792)},
			"Contents": core.Ref{Number: 4},
			"Resources": core.Dict{
				"Font": core.Dict{"F1": core.Ref{Number: 5}},
			},
		},
		4: &core.Stream{
			Dict: core.Dict{"Length": core.Int(len(content))},
			Data: []byte(content),
		},
		5: core.Dict{
			"Type":     core.Name("Font"),
			"Subtype":  core.Name("Type1"),
			"BaseFont": core.Name("Helvetica"),
		},
	}
	pdf, err := writer.Build(objects, core.Dict{"Root": core.Ref{Number: 1}})
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return pdf
}

func TestTextExtractorAccepts(t *testing.T) {
	var c convert.TextExtractor
	if !c.Accepts(format.PDF) {
		t.Error("PDF not accepted")
	}
	for _, f := range []format.Format{format.PNG, format.JPEG, format.Text, format.Unknown} {
		if c.Accepts(f) {
			t.Errorf("%v accepted", f)
		}
	}
}

func TestTextExtractorConvert(t *testing.T) {
	pdf := textPDF(t, "BT /F1 12 Tf 72 700 Td (Hello World) Tj 0 -15 Td (Second line) Tj ET")

	out, err := convert.TextExtractor{}.Convert(pdf)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "Hello World") {
		t.Errorf("first line missing: %q", text)
	}
	if !strings.Contains(text, "Second line") {
		t.Errorf("second line missing: %q", text)
	}
	// Same block, consecutive lines: exactly one newline between them.
	if !strings.Contains(text, "Hello World\nSecond line") {
		t.Errorf("line separation wrong: %q", text)
	}
}

func TestTextExtractorRejectsNonPDF(t *testing.T) {
	if _, err := (convert.TextExtractor{}).Convert([]byte("plain text")); err == nil {
		t.Error("expected error for non-PDF input")
	}
}

func TestImagePDFAccepts(t *testing.T) {
	var c convert.ImagePDF
	for _, f := range []format.Format{format.PNG, format.JPEG} {
		if !c.Accepts(f) {
			t.Errorf("%v not accepted", f)
		}
	}
	for _, f := range []format.Format{format.PDF, format.Text, format.Unknown} {
		if c.Accepts(f) {
			t.Errorf("%v accepted", f)
		}
	}
}

func TestImagePDFConvertPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 8), B: 0x40, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	pdf, err := convert.ImagePDF{}.Convert(buf.Bytes())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	r, err := reader.New(pdf)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	catalog, err := r.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	tree, err := pages.Load(catalog, r)
	if err != nil {
		t.Fatalf("page tree: %v", err)
	}
	if tree.Count() != 1 {
		t.Fatalf("page count = %d, want 1", tree.Count())
	}

	// Page is sized to the image, one point per pixel.
	page, _ := tree.Page(0)
	if page.Width() != 40 || page.Height() != 30 {
		t.Errorf("page size = %g x %g, want 40 x 30", page.Width(), page.Height())
	}

	// The embedded image decodes back to the original dimensions.
	images, err := r.ImagesFromResources(page.Resources)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("got %d images, want 1", len(images))
	}
	if images[0].Width != 40 || images[0].Height != 30 || images[0].Channels != 3 {
		t.Errorf("image = %dx%d, %d channels", images[0].Width, images[0].Height, images[0].Channels)
	}
}

func TestImagePDFRejectsGarbage(t *testing.T) {
	if _, err := (convert.ImagePDF{}).Convert([]byte("not an image")); err == nil {
		t.Error("expected error for undecodable input")
	}
}
