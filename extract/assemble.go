package extract

import (
	"fmt"
	"sort"

	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/reader"
)

// lineTolerance is the baseline distance within which two fragments are
// considered to sit on the same line, as a fraction of font size.
const lineTolerance = 0.4

// blockGapFactor is the baseline gap beyond which consecutive lines start
// a new block, as a multiple of the larger line's font size.
const blockGapFactor = 1.8

type line struct {
	y         float64
	size      float64
	fragments []fragment
}

// assembleWords groups fragments into blocks, lines, and word-level
// elements in reading order, assigning the deterministic position-based
// element ids.
func assembleWords(fragments []fragment, pageNum int) []model.TextElement {
	if len(fragments) == 0 {
		return nil
	}

	lines := groupLines(fragments)

	var elements []model.TextElement
	blockNum := -1
	lineInBlock := 0
	var prevLine *line

	for i := range lines {
		ln := &lines[i]
		if prevLine == nil || newBlock(prevLine, ln) {
			blockNum++
			lineInBlock = 0
		} else {
			lineInBlock++
		}
		prevLine = ln

		wordNum := 0
		for _, frag := range ln.fragments {
			for _, w := range splitWords(frag) {
				elements = append(elements, model.TextElement{
					ID:        model.ElementID(pageNum, blockNum, lineInBlock, wordNum),
					Text:      w.text,
					BBox:      wordBBox(w),
					FontName:  frag.fontName,
					FontSize:  frag.size,
					FontFlags: frag.flags,
					Color:     frag.color,
					Page:      pageNum,
					Block:     blockNum,
					Line:      lineInBlock,
					Word:      wordNum,
				})
				wordNum++
			}
		}
	}

	return elements
}

// groupLines clusters fragments by baseline and orders lines top-down,
// fragments left-to-right within a line.
func groupLines(fragments []fragment) []line {
	sorted := make([]fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y // top of page first
		}
		return sorted[i].x < sorted[j].x
	})

	var lines []line
	for _, frag := range sorted {
		tol := frag.size * lineTolerance
		if tol < 1 {
			tol = 1
		}
		if n := len(lines); n > 0 && abs(lines[n-1].y-frag.y) <= tol {
			cur := &lines[n-1]
			cur.fragments = append(cur.fragments, frag)
			if frag.size > cur.size {
				cur.size = frag.size
			}
			continue
		}
		lines = append(lines, line{y: frag.y, size: frag.size, fragments: []fragment{frag}})
	}

	for i := range lines {
		sort.SliceStable(lines[i].fragments, func(a, b int) bool {
			return lines[i].fragments[a].x < lines[i].fragments[b].x
		})
	}
	return lines
}

func newBlock(prev, cur *line) bool {
	size := prev.size
	if cur.size > size {
		size = cur.size
	}
	if size <= 0 {
		size = 12
	}
	return prev.y-cur.y > size*blockGapFactor
}

type word struct {
	text string
	x    float64
	y    float64
	wdt  float64
	size float64
}

// splitWords breaks one fragment into whitespace-delimited words,
// distributing the fragment's width across runes proportionally. A
// search term spanning two fragments will not match as one word; word
// granularity is the unit of substitution.
func splitWords(frag fragment) []word {
	runes := []rune(frag.text)
	if len(runes) == 0 {
		return nil
	}
	perRune := frag.width / float64(len(runes))

	var words []word
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		words = append(words, word{
			text: string(runes[start:end]),
			x:    frag.x + float64(start)*perRune,
			y:    frag.y,
			wdt:  float64(end-start) * perRune,
			size: frag.size,
		})
		start = -1
	}

	for i, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(runes))
	return words
}

// splitFragments breaks show-text runs into word-level fragments so that
// occlusion and assembly operate on the same unit.
func splitFragments(fragments []fragment) []fragment {
	var out []fragment
	for _, frag := range fragments {
		for _, w := range splitWords(frag) {
			out = append(out, fragment{
				text:     w.text,
				x:        w.x,
				y:        w.y,
				width:    w.wdt,
				size:     frag.size,
				fontName: frag.fontName,
				flags:    frag.flags,
				color:    frag.color,
				seq:      frag.seq,
			})
		}
	}
	return out
}

// wordBBox derives the box from the baseline origin: a nominal quarter of
// the font size hangs below the baseline for descenders.
func wordBBox(w word) model.BBox {
	descent := w.size * 0.25
	ascent := w.size * 0.75
	return model.NewBBox(w.x, w.y-descent, w.x+w.wdt, w.y+ascent)
}

// buildImages pairs decoded XObjects with their first-use placement
// rectangles. Images the content stream never places keep the fixed
// fallback box instead of failing extraction; images with more than
// three color channels (CMYK) are skipped entirely.
func buildImages(images []reader.XImage, placements map[string]model.BBox, pageNum int) []model.ImageElement {
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })

	var out []model.ImageElement
	idx := 0
	for _, img := range images {
		if img.Channels > 3 {
			continue
		}
		if img.Channels == 0 && !img.IsJPEG() {
			continue
		}
		payload, err := img.EncodePNG()
		if err != nil {
			continue
		}
		bbox, ok := placements[img.Name]
		if !ok {
			bbox = model.FallbackImageBBox
		}
		out = append(out, model.ImageElement{
			ID:     fmt.Sprintf("img_%d_%d", pageNum, idx),
			Page:   pageNum,
			BBox:   bbox,
			Data:   payload,
			Source: img.Name,
			Width:  img.Width,
			Height: img.Height,
			Format: "png",
		})
		idx++
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
