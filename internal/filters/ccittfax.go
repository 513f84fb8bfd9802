package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax-compressed image data, the
// common encoding for scanned black-and-white documents.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := params.intOr("Columns", 1728)
	rows := params.intOr("Rows", 0)
	k := params.intOr("K", 0)

	var subFormat ccitt.SubFormat
	switch {
	case k < 0:
		subFormat = ccitt.Group4
	case k == 0:
		subFormat = ccitt.Group3
	default:
		return nil, fmt.Errorf("mixed 1D/2D Group 3 (K>0) is not supported")
	}

	if rows == 0 {
		// Without a row count assume a generous page height; the reader
		// stops at the actual end of data.
		rows = columns * 2
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, subFormat, columns, rows, nil)
	out, err := io.ReadAll(r)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("ccitt: %w", err)
	}
	return out, nil
}
