package model

import (
	"errors"
	"testing"
)

func TestColorPackedRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x0000FF, 0x00FF00, 0xFF0000, 0x123456, 0xFFFFFF}
	for _, packed := range values {
		c := ColorFromPacked(packed)
		if got := c.Packed(); got != packed {
			t.Errorf("round trip %#06x -> %#06x", packed, got)
		}
	}
}

func TestColorFromPackedChannels(t *testing.T) {
	c := ColorFromPacked(0x123456)
	if c.R != 0x12 || c.G != 0x34 || c.B != 0x56 {
		t.Errorf("got (%#02x, %#02x, %#02x), want (12, 34, 56)", c.R, c.G, c.B)
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Color{}, "#000000"},
		{Color{R: 255, G: 255, B: 255}, "#ffffff"},
		{Color{R: 0x12, G: 0x34, B: 0x56}, "#123456"},
	}
	for _, tt := range tests {
		if got := tt.c.Hex(); got != tt.want {
			t.Errorf("Hex() = %q, want %q", got, tt.want)
		}
	}
}

func TestElementID(t *testing.T) {
	if got := ElementID(0, 2, 1, 7); got != "p0_b2_l1_w7" {
		t.Errorf("got %q, want p0_b2_l1_w7", got)
	}
}

func TestElementStyleFlags(t *testing.T) {
	tests := []struct {
		name   string
		flags  int
		bold   bool
		italic bool
	}{
		{"plain", 0, false, false},
		{"bold", FlagBold, true, false},
		{"italic", FlagItalic, false, true},
		{"both", FlagBold | FlagItalic, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := TextElement{FontFlags: tt.flags}
			if el.Bold() != tt.bold {
				t.Errorf("Bold() = %v, want %v", el.Bold(), tt.bold)
			}
			if el.Italic() != tt.italic {
				t.Errorf("Italic() = %v, want %v", el.Italic(), tt.italic)
			}
		})
	}
}

func TestBBox(t *testing.T) {
	b := NewBBox(10, 30, 5, 20) // normalizes corners
	if b.X0 != 5 || b.Y0 != 20 || b.X1 != 10 || b.Y1 != 30 {
		t.Errorf("not normalized: %+v", b)
	}
	if b.Width() != 5 || b.Height() != 10 {
		t.Errorf("size = (%g, %g), want (5, 10)", b.Width(), b.Height())
	}
	if b.IsZero() {
		t.Error("IsZero on a real box")
	}
	if !(BBox{}).IsZero() {
		t.Error("zero box not IsZero")
	}
}

func sampleDoc() *Document {
	return &Document{
		DocumentID: "doc-1",
		PageCount:  2,
		TextElements: []TextElement{
			{ID: "p0_b0_l0_w0", Text: "Hello", Page: 0, FontName: "Helvetica", FontSize: 12, Color: Color{}},
			{ID: "p0_b0_l0_w1", Text: "World", Page: 0, FontName: "Helvetica", FontSize: 12, Color: Color{R: 255}},
			{ID: "p1_b0_l0_w0", Text: "Next", Page: 1, FontName: "Times-Bold", FontSize: 14, FontFlags: FlagBold, Color: Color{}},
		},
		Images: []ImageElement{
			{ID: "img_0_0", Page: 0},
		},
	}
}

func TestFinalizeAndFind(t *testing.T) {
	doc := sampleDoc()
	if err := doc.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	el, err := doc.FindElement("p0_b0_l0_w1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if el.Text != "World" {
		t.Errorf("Text = %q, want World", el.Text)
	}

	_, err = doc.FindElement("p9_b9_l9_w9")
	if !errors.Is(err, ErrElementNotFound) {
		t.Errorf("missing id: err = %v, want ErrElementNotFound", err)
	}
}

func TestFinalizeDuplicateID(t *testing.T) {
	doc := sampleDoc()
	doc.TextElements = append(doc.TextElements, TextElement{ID: "p0_b0_l0_w0"})
	if err := doc.Finalize(); err == nil {
		t.Error("expected error on duplicate element id")
	}
}

func TestFinalizeDerivedSets(t *testing.T) {
	doc := sampleDoc()
	if err := doc.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(doc.Fonts) != 2 {
		t.Errorf("fonts = %v, want 2 distinct labels", doc.Fonts)
	}
	if len(doc.Colors) != 2 {
		t.Errorf("colors = %v, want 2 distinct colors", doc.Colors)
	}
	// Colors sorted by packed value: black before red.
	if doc.Colors[0].RGB.Packed() > doc.Colors[1].RGB.Packed() {
		t.Error("colors not sorted by packed value")
	}
}

func TestElementsOnPage(t *testing.T) {
	doc := sampleDoc()
	if err := doc.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := len(doc.ElementsOnPage(0)); got != 2 {
		t.Errorf("page 0: %d elements, want 2", got)
	}
	if got := len(doc.ElementsOnPage(1)); got != 1 {
		t.Errorf("page 1: %d elements, want 1", got)
	}
	if got := len(doc.ElementsOnPage(5)); got != 0 {
		t.Errorf("page 5: %d elements, want 0", got)
	}
}

func TestSummary(t *testing.T) {
	doc := sampleDoc()
	if err := doc.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	s := doc.Summary()
	if s.PageCount != 2 || s.TextElements != 3 || s.Images != 1 {
		t.Errorf("summary = %+v", s)
	}
}
