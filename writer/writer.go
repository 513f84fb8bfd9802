package writer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/tsawler/scribe/core"
	"github.com/tsawler/scribe/internal/filters"
	"github.com/tsawler/scribe/pages"
	"github.com/tsawler/scribe/reader"
)

// Patch is an overlay for one page: content stream operations drawn on
// top of the existing page content, plus any simple font resources the
// operations reference.
type Patch struct {
	Page    int
	Content []byte
	// Fonts maps resource names used by Content to standard base font
	// names (e.g. "ScrF0" -> "Helvetica"). Each becomes a Type1 font
	// dictionary added to the page's resources.
	Fonts map[string]string
}

// Rewrite produces a new document from r with the patches applied. Page
// content order is preserved; each patch's stream is appended after the
// existing streams so overlay drawing wins.
func Rewrite(r *reader.Reader, patchSet []Patch) ([]byte, error) {
	objects := make(map[int]core.Object)
	maxNum := 0
	for _, num := range r.ObjectNumbers() {
		obj, err := r.GetObject(num)
		if err != nil {
			return nil, fmt.Errorf("load object %d: %w", num, err)
		}
		objects[num] = obj
		if num > maxNum {
			maxNum = num
		}
	}

	catalog, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.Load(catalog, r)
	if err != nil {
		return nil, err
	}

	next := maxNum + 1
	for _, patch := range patchSet {
		pg, err := tree.Page(patch.Page)
		if err != nil {
			return nil, err
		}
		if pg.Ref.Number == 0 {
			return nil, fmt.Errorf("page %d has no indirect reference", patch.Page)
		}
		if err := applyPatch(objects, pg, patch, &next); err != nil {
			return nil, fmt.Errorf("patch page %d: %w", patch.Page, err)
		}
	}

	return Build(objects, r.Trailer())
}

// applyPatch clones the page dictionary, appends the overlay content
// stream, and merges the needed font resources.
func applyPatch(objects map[int]core.Object, pg *pages.Page, patch Patch, next *int) error {
	pageObj, ok := objects[pg.Ref.Number]
	if !ok {
		return fmt.Errorf("page object %d missing", pg.Ref.Number)
	}
	pageDict, ok := pageObj.(core.Dict)
	if !ok {
		return fmt.Errorf("page object %d is %T, not a dictionary", pg.Ref.Number, pageObj)
	}
	pageDict = pageDict.Clone()

	// Overlay content stream, flate-compressed.
	compressed := filters.FlateEncode(patch.Content)
	streamNum := *next
	*next++
	objects[streamNum] = &core.Stream{
		Dict: core.Dict{
			"Length": core.Int(len(compressed)),
			"Filter": core.Name("FlateDecode"),
		},
		Data: compressed,
	}
	streamRef := core.Ref{Number: streamNum}

	switch contents := pageDict.Get("Contents").(type) {
	case nil:
		pageDict["Contents"] = streamRef
	case core.Array:
		pageDict["Contents"] = append(append(core.Array{}, contents...), streamRef)
	default:
		pageDict["Contents"] = core.Array{contents, streamRef}
	}

	if len(patch.Fonts) > 0 {
		mergeFonts(objects, pageDict, pg, patch.Fonts, next)
	}

	objects[pg.Ref.Number] = pageDict
	return nil
}

// mergeFonts gives the page its own Resources dictionary (inherited
// resources are flattened in) with the overlay fonts added.
func mergeFonts(objects map[int]core.Object, pageDict core.Dict, pg *pages.Page, fonts map[string]string, next *int) {
	resources := core.Dict{}
	if pg.Resources != nil {
		resources = pg.Resources.Clone()
	}

	fontDict := core.Dict{}
	if existing, ok := resources.Dict("Font"); ok {
		fontDict = existing.Clone()
	} else if ref, ok := resources.Ref("Font"); ok {
		// Keep the shared font dictionary reachable under its reference;
		// overlay fonts go into a fresh direct dictionary alongside it.
		if obj, found := objects[ref.Number]; found {
			if d, ok := obj.(core.Dict); ok {
				fontDict = d.Clone()
			}
		}
	}

	names := make([]string, 0, len(fonts))
	for name := range fonts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fontNum := *next
		*next++
		objects[fontNum] = core.Dict{
			"Type":     core.Name("Font"),
			"Subtype":  core.Name("Type1"),
			"BaseFont": core.Name(fonts[name]),
		}
		fontDict[core.Name(name)] = core.Ref{Number: fontNum}
	}

	resources["Font"] = fontDict
	pageDict["Resources"] = resources
}

// Build writes an object set as a complete PDF file. The trailer's Root
// and Info references are carried over; Size is derived from the set.
func Build(objects map[int]core.Object, oldTrailer core.Dict) ([]byte, error) {
	nums := make([]int, 0, len(objects))
	for num := range objects {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	// Binary marker comment so transfer tools treat the file as binary.
	buf.Write([]byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'})

	offsets := make(map[int]int64, len(objects))
	for _, num := range nums {
		offsets[num] = int64(buf.Len())
		ind := &core.Indirect{Ref: core.Ref{Number: num}, Object: objects[num]}
		if err := core.WriteIndirect(&buf, ind); err != nil {
			return nil, fmt.Errorf("write object %d: %w", num, err)
		}
	}

	xrefOffset := int64(buf.Len())
	writeXRef(&buf, nums, offsets)

	maxNum := 0
	if len(nums) > 0 {
		maxNum = nums[len(nums)-1]
	}
	trailer := core.Dict{"Size": core.Int(maxNum + 1)}
	if root, ok := oldTrailer.Ref("Root"); ok {
		trailer["Root"] = root
	}
	if info, ok := oldTrailer.Ref("Info"); ok {
		trailer["Info"] = info
	}

	buf.WriteString("trailer\n")
	if err := core.WriteObject(&buf, trailer); err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes(), nil
}

// writeXRef emits the classic cross-reference table, one subsection per
// contiguous run of object numbers. Entry 0 is the head of the free list.
func writeXRef(buf *bytes.Buffer, nums []int, offsets map[int]int64) {
	buf.WriteString("xref\n")

	type run struct{ start, count int }
	runs := []run{{start: 0, count: 1}} // entry 0 is always present

	for _, num := range nums {
		last := &runs[len(runs)-1]
		if num == last.start+last.count {
			last.count++
		} else {
			runs = append(runs, run{start: num, count: 1})
		}
	}

	for _, r := range runs {
		fmt.Fprintf(buf, "%d %d\n", r.start, r.count)
		for num := r.start; num < r.start+r.count; num++ {
			if num == 0 {
				buf.WriteString("0000000000 65535 f \n")
				continue
			}
			fmt.Fprintf(buf, "%010d 00000 n \n", offsets[num])
		}
	}
}
