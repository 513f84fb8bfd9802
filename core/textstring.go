package core

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16beBOM = []byte{0xFE, 0xFF}

// DecodeTextString decodes a PDF text string (used in the info dictionary
// and other human-readable fields). Strings starting with a UTF-16BE byte
// order mark are decoded as UTF-16; everything else is treated as
// PDFDocEncoding, which Latin-1 covers for the printable range.
func DecodeTextString(s String) string {
	raw := []byte(s)
	if bytes.HasPrefix(raw, utf16beBOM) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err == nil {
			return string(out)
		}
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
