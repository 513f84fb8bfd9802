package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/tsawler/scribe/core"
)

// XImage is one image XObject found in a page's resources, with its
// decoded sample data.
type XImage struct {
	Name             string // resource name, e.g. "Im1"
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int
	Channels         int    // color channels implied by the color space
	Filter           string // last filter name, for format detection
	Data             []byte // decoded samples, or raw JPEG for DCTDecode
}

// IsJPEG reports whether Data holds a complete JPEG payload.
func (img *XImage) IsJPEG() bool {
	return img.Filter == "DCTDecode" || img.Filter == "DCT"
}

// ImagesFromResources enumerates the image XObjects reachable from a
// resources dictionary. Images that fail to decode are skipped rather than
// failing the page.
func (r *Reader) ImagesFromResources(resources core.Dict) ([]XImage, error) {
	if resources == nil {
		return nil, nil
	}
	xobjObj, err := r.Resolve(resources.Get("XObject"))
	if err != nil {
		return nil, fmt.Errorf("resolve XObject dictionary: %w", err)
	}
	xobjects, ok := xobjObj.(core.Dict)
	if !ok {
		return nil, nil
	}

	var images []XImage
	for name, entry := range xobjects {
		obj, err := r.Resolve(entry)
		if err != nil {
			continue
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.Name("Subtype"); subtype != "Image" {
			continue
		}
		img, err := r.decodeImage(string(name), stream)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *Reader) decodeImage(name string, stream *core.Stream) (XImage, error) {
	width, _ := stream.Dict.Int("Width")
	height, _ := stream.Dict.Int("Height")
	bpc, ok := stream.Dict.Int("BitsPerComponent")
	if !ok {
		bpc = 8
	}

	csObj, err := r.Resolve(stream.Dict.Get("ColorSpace"))
	if err != nil {
		csObj = nil
	}
	colorSpace, channels := classifyColorSpace(csObj)

	filter := lastFilterName(stream.Dict)

	data, err := stream.Decode()
	if err != nil {
		return XImage{}, fmt.Errorf("decode image %s: %w", name, err)
	}

	return XImage{
		Name:             name,
		Width:            int(width),
		Height:           int(height),
		ColorSpace:       colorSpace,
		BitsPerComponent: int(bpc),
		Channels:         channels,
		Filter:           filter,
		Data:             data,
	}, nil
}

// classifyColorSpace maps a color space object to a name and channel count.
// Unknown spaces report zero channels so callers can skip them.
func classifyColorSpace(obj core.Object) (string, int) {
	switch cs := obj.(type) {
	case core.Name:
		switch cs {
		case "DeviceGray", "CalGray":
			return string(cs), 1
		case "DeviceRGB", "CalRGB", "Lab":
			return string(cs), 3
		case "DeviceCMYK":
			return string(cs), 4
		}
		return string(cs), 0
	case core.Array:
		if name, ok := cs.At(0).(core.Name); ok {
			if name == "ICCBased" {
				// Channel count lives on the ICC stream's /N; without it
				// assume RGB, the overwhelmingly common case.
				return "ICCBased", 3
			}
			return string(name), 0
		}
	}
	return "", 0
}

func lastFilterName(dict core.Dict) string {
	switch f := dict.Get("Filter").(type) {
	case core.Name:
		return string(f)
	case core.Array:
		if len(f) > 0 {
			if name, ok := f[len(f)-1].(core.Name); ok {
				return string(name)
			}
		}
	}
	return ""
}

// EncodePNG converts the decoded samples to a lossless PNG. Only grayscale
// and RGB images with 8 bits per component are supported; JPEG payloads
// are transcoded.
func (img *XImage) EncodePNG() ([]byte, error) {
	var decoded image.Image

	switch {
	case img.IsJPEG():
		jpg, err := jpeg.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return nil, fmt.Errorf("jpeg decode: %w", err)
		}
		decoded = jpg

	case img.Channels == 1 && img.BitsPerComponent == 8:
		gray := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		if len(img.Data) < img.Width*img.Height {
			return nil, fmt.Errorf("short gray image data")
		}
		copy(gray.Pix, img.Data)
		decoded = gray

	case img.Channels == 3 && img.BitsPerComponent == 8:
		rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
		need := img.Width * img.Height * 3
		if len(img.Data) < need {
			return nil, fmt.Errorf("short rgb image data")
		}
		for i := 0; i < img.Width*img.Height; i++ {
			rgba.Pix[i*4+0] = img.Data[i*3+0]
			rgba.Pix[i*4+1] = img.Data[i*3+1]
			rgba.Pix[i*4+2] = img.Data[i*3+2]
			rgba.Pix[i*4+3] = 0xFF
		}
		decoded = rgba

	default:
		return nil, fmt.Errorf("unsupported image: %d channels, %d bpc", img.Channels, img.BitsPerComponent)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}
