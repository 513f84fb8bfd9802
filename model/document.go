package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrElementNotFound is returned when an element id does not resolve in
// the current snapshot.
var ErrElementNotFound = errors.New("element not found")

// Metadata carries the document information dictionary fields.
type Metadata struct {
	Title            string `json:"title"`
	Author           string `json:"author"`
	Subject          string `json:"subject"`
	Creator          string `json:"creator"`
	Producer         string `json:"producer"`
	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// PageSize is the media box extent of one page in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is the structural snapshot of one document version.
type Document struct {
	DocumentID string
	Filename   string
	FileSize   int64
	PageCount  int
	Pages      []PageSize

	TextElements []TextElement
	Images       []ImageElement
	Fonts        []string
	Colors       []ColorInfo
	Meta         Metadata

	CreatedAt time.Time
	UpdatedAt time.Time

	index map[string]int
}

// Summary is the derived overview of a snapshot.
type Summary struct {
	PageCount    int         `json:"page_count"`
	Fonts        []string    `json:"fonts"`
	Colors       []ColorInfo `json:"colors"`
	TextElements int         `json:"text_elements_count"`
	Images       int         `json:"images_count"`
	Filename     string      `json:"filename"`
	FileSize     int64       `json:"file_size"`
	Meta         Metadata    `json:"metadata"`
}

// Finalize builds the id index and derives the font and color sets.
// The extractor calls it once after populating the element lists; ids
// must be unique or Finalize fails.
func (d *Document) Finalize() error {
	d.index = make(map[string]int, len(d.TextElements))
	fontSet := make(map[string]struct{})
	colorSet := make(map[Color]struct{})

	for i := range d.TextElements {
		el := &d.TextElements[i]
		if _, dup := d.index[el.ID]; dup {
			return fmt.Errorf("duplicate element id %q", el.ID)
		}
		d.index[el.ID] = i
		fontSet[el.FontLabel()] = struct{}{}
		colorSet[el.Color] = struct{}{}
	}

	d.Fonts = d.Fonts[:0]
	for f := range fontSet {
		d.Fonts = append(d.Fonts, f)
	}
	sort.Strings(d.Fonts)

	d.Colors = d.Colors[:0]
	for c := range colorSet {
		d.Colors = append(d.Colors, ColorInfo{RGB: c, Hex: c.Hex()})
	}
	sort.Slice(d.Colors, func(i, j int) bool {
		return d.Colors[i].RGB.Packed() < d.Colors[j].RGB.Packed()
	})

	return nil
}

// FindElement resolves an element id in O(1).
func (d *Document) FindElement(id string) (TextElement, error) {
	i, ok := d.index[id]
	if !ok {
		return TextElement{}, fmt.Errorf("%q: %w", id, ErrElementNotFound)
	}
	return d.TextElements[i], nil
}

// ElementsOnPage returns the text elements of one page in document order.
func (d *Document) ElementsOnPage(page int) []TextElement {
	var out []TextElement
	for i := range d.TextElements {
		if d.TextElements[i].Page == page {
			out = append(out, d.TextElements[i])
		}
	}
	return out
}

// ImagesOnPage returns the image elements of one page in document order.
func (d *Document) ImagesOnPage(page int) []ImageElement {
	var out []ImageElement
	for i := range d.Images {
		if d.Images[i].Page == page {
			out = append(out, d.Images[i])
		}
	}
	return out
}

// Summary returns the derived overview.
func (d *Document) Summary() Summary {
	return Summary{
		PageCount:    d.PageCount,
		Fonts:        d.Fonts,
		Colors:       d.Colors,
		TextElements: len(d.TextElements),
		Images:       len(d.Images),
		Filename:     d.Filename,
		FileSize:     d.FileSize,
		Meta:         d.Meta,
	}
}
