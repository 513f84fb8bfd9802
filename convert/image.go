package convert

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/scribe/core"
	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/internal/filters"
	"github.com/tsawler/scribe/writer"
)

// ImagePDF converts a raster image into a single-page PDF. The page is
// sized to the image at one point per pixel. JPEG data is embedded
// as-is; everything else is decoded and re-encoded as flate-compressed
// RGB.
type ImagePDF struct{}

// Accepts reports whether f is a supported raster format.
func (ImagePDF) Accepts(f format.Format) bool {
	return f == format.PNG || f == format.JPEG
}

// Convert builds the PDF.
func (ImagePDF) Convert(data []byte) ([]byte, error) {
	var xobj *core.Stream
	var w, h int

	if format.DetectFromMagic(data) == format.JPEG {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode jpeg: %w", err)
		}
		w, h = cfg.Width, cfg.Height
		xobj = imageXObject(w, h, "DCTDecode", "DeviceRGB", data)
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		b := img.Bounds()
		w, h = b.Dx(), b.Dy()
		raw := make([]byte, 0, w*h*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				raw = append(raw, byte(r>>8), byte(g>>8), byte(bl>>8))
			}
		}
		xobj = imageXObject(w, h, "FlateDecode", "DeviceRGB", filters.FlateEncode(raw))
	}

	content := []byte(fmt.Sprintf("q\n%d 0 0 %d 0 0 cm\n/Im0 Do\nQ\n", w, h))

	objects := map[int]core.Object{
		1: core.Dict{
			"Type":  core.Name("Catalog"),
			"Pages": core.Ref{Number: 2},
		},
		2: core.Dict{
			"Type":  core.Name("Pages"),
			"Kids":  core.Array{core.Ref{Number: 3}},
			"Count": core.Int(1),
		},
		3: core.Dict{
			"Type":     core.Name("Page"),
			"Parent":   core.Ref{Number: 2},
			"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(w), core.Int(h)},
			"Contents": core.Ref{Number: 4},
			"Resources": core.Dict{
				"XObject": core.Dict{"Im0": core.Ref{Number: 5}},
			},
		},
		4: &core.Stream{
			Dict: core.Dict{"Length": core.Int(len(content))},
			Data: content,
		},
		5: xobj,
	}

	return writer.Build(objects, core.Dict{"Root": core.Ref{Number: 1}})
}

func imageXObject(w, h int, filter, colorSpace string, data []byte) *core.Stream {
	return &core.Stream{
		Dict: core.Dict{
			"Type":             core.Name("XObject"),
			"Subtype":          core.Name("Image"),
			"Width":            core.Int(w),
			"Height":           core.Int(h),
			"ColorSpace":       core.Name(colorSpace),
			"BitsPerComponent": core.Int(8),
			"Filter":           core.Name(filter),
			"Length":           core.Int(len(data)),
		},
		Data: data,
	}
}
