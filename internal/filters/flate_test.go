package filters

import (
	"bytes"
	"testing"
)

func TestFlateRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("BT /F1 12 Tf (Hello) Tj ET")},
		{"binary", []byte{0, 1, 2, 3, 255, 254, 0, 0, 0}},
		{"empty", []byte{}},
		{"repetitive", bytes.Repeat([]byte("abc"), 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := FlateEncode(tt.data)
			decoded, err := FlateDecode(encoded, nil)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(decoded), len(tt.data))
			}
		})
	}
}

func TestFlateDecodeGarbage(t *testing.T) {
	if _, err := FlateDecode([]byte("not zlib data"), nil); err == nil {
		t.Error("expected error for invalid zlib input")
	}
}

func TestFlateDecodePNGUpPredictor(t *testing.T) {
	// Two rows of 3 bytes, predictor 12 (PNG Up). Row filters: first row
	// Up against an implicit zero row, second row Up against the first.
	raw := []byte{
		2, 10, 20, 30, // row 0: up filter, deltas from zero row
		2, 1, 1, 1, // row 1: up filter, deltas from row 0
	}
	want := []byte{10, 20, 30, 11, 21, 31}

	params := Params{"Predictor": 12, "Columns": 3, "Colors": 1, "BitsPerComponent": 8}
	got, err := FlateDecode(FlateEncode(raw), params)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got % d, want % d", got, want)
	}
}

func TestFlateDecodeNoPredictor(t *testing.T) {
	data := []byte("predictor 1 means passthrough")
	params := Params{"Predictor": 1}
	got, err := FlateDecode(FlateEncode(data), params)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}
