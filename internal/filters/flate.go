package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Params holds decode parameters from a stream dictionary (Predictor,
// Columns, Colors, BitsPerComponent).
type Params map[string]interface{}

func (p Params) intOr(key string, def int) int {
	if p == nil {
		return def
	}
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// FlateDecode decompresses zlib/deflate data and applies the predictor
// from params, if any.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	predictor := params.intOr("Predictor", 1)
	if predictor == 1 {
		return buf.Bytes(), nil
	}
	return unpredict(buf.Bytes(), predictor, params)
}

// FlateEncode compresses data with zlib at the default level. Used by the
// document rewriter for content streams.
func FlateEncode(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// unpredict reverses the prediction step applied before compression.
// Predictor 2 is TIFF horizontal differencing; 10-15 are the PNG filters.
func unpredict(data []byte, predictor int, params Params) ([]byte, error) {
	columns := params.intOr("Columns", 1)
	colors := params.intOr("Colors", 1)
	bpc := params.intOr("BitsPerComponent", 8)

	bytesPerPixel := (colors*bpc + 7) / 8
	rowLen := (columns*colors*bpc + 7) / 8

	switch {
	case predictor == 2:
		return unpredictTIFF(data, rowLen, bytesPerPixel)
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(data, rowLen, bytesPerPixel)
	}
	return nil, fmt.Errorf("unsupported predictor %d", predictor)
}

func unpredictTIFF(data []byte, rowLen, bpp int) ([]byte, error) {
	if bpp < 1 {
		return nil, fmt.Errorf("invalid bytes per pixel")
	}
	out := make([]byte, len(data))
	copy(out, data)
	for row := 0; row+rowLen <= len(out); row += rowLen {
		for i := row + bpp; i < row+rowLen; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out, nil
}

func unpredictPNG(data []byte, rowLen, bpp int) ([]byte, error) {
	// Each row is prefixed with a one-byte filter type.
	stride := rowLen + 1
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("data length %d not a multiple of row stride %d", len(data), stride)
	}

	rows := len(data) / stride
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)

	for r := 0; r < rows; r++ {
		filter := data[r*stride]
		row := make([]byte, rowLen)
		copy(row, data[r*stride+1:(r+1)*stride])

		switch filter {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowLen; i++ {
				row[i] += row[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				row[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				left := 0
				if i >= bpp {
					left = int(row[i-bpp])
				}
				row[i] += byte((left + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				var left, upLeft byte
				if i >= bpp {
					left = row[i-bpp]
					upLeft = prev[i-bpp]
				}
				row[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("unknown PNG filter type %d in row %d", filter, r)
		}

		out = append(out, row...)
		prev = row
	}

	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
