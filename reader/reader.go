package reader

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/tsawler/scribe/core"
)

// Reader provides random access to the objects of one PDF document held
// fully in memory. It is safe for concurrent reads after construction as
// long as the cache is warmed; concurrent cold reads should be guarded by
// the caller (the session layer serializes loads).
type Reader struct {
	data    []byte
	xref    *core.XRefTable
	trailer core.Dict
	version string
	cache   map[int]core.Object
}

// New parses the document skeleton (header, xref chain, trailer) and
// returns a Reader. Any failure is reported as a *ParseError.
func New(data []byte) (*Reader, error) {
	version, err := checkHeader(data)
	if err != nil {
		return nil, err
	}

	xref, err := core.ParseXRef(data)
	if err != nil {
		return nil, parseErr("cross-reference table", err)
	}

	if xref.Trailer.Has("Encrypt") {
		return nil, parseErr("document is encrypted", nil)
	}

	r := &Reader{
		data:    data,
		xref:    xref,
		trailer: xref.Trailer,
		version: version,
		cache:   make(map[int]core.Object),
	}

	// Validate the catalog up front so a truncated or corrupt body fails
	// the whole open rather than the first page access.
	if _, err := r.Catalog(); err != nil {
		return nil, parseErr("document catalog", err)
	}

	return r, nil
}

// checkHeader verifies the %PDF-x.y marker and returns the version.
func checkHeader(data []byte) (string, error) {
	if len(data) < 8 {
		return "", parseErr("file too short to be a PDF", nil)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", parseErr("missing %PDF header", nil)
	}
	end := bytes.IndexAny(data[:min(len(data), 16)], "\r\n")
	if end < 0 {
		end = 8
	}
	return string(data[5:end]), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Version returns the header version string (e.g. "1.7").
func (r *Reader) Version() string { return r.version }

// Trailer returns the trailer dictionary.
func (r *Reader) Trailer() core.Dict { return r.trailer }

// Len returns the document size in bytes.
func (r *Reader) Len() int { return len(r.data) }

// GetObject loads and caches the object with the given number.
func (r *Reader) GetObject(num int) (core.Object, error) {
	if obj, ok := r.cache[num]; ok {
		return obj, nil
	}

	entry, ok := r.xref.Get(num)
	if !ok {
		return nil, fmt.Errorf("object %d not in xref table", num)
	}
	if !entry.InUse {
		return nil, fmt.Errorf("object %d is free", num)
	}
	if entry.Offset < 0 || entry.Offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("object %d offset %d out of range", num, entry.Offset)
	}

	parser := core.NewParser(r.data)
	parser.SetResolver(r)
	parser.Seek(int(entry.Offset))

	ind, err := parser.ParseIndirect()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	if ind.Ref.Number != num {
		return nil, fmt.Errorf("object number mismatch: xref says %d, body says %d", num, ind.Ref.Number)
	}

	r.cache[num] = ind.Object
	return ind.Object, nil
}

// ResolveRef resolves an indirect reference. Implements core.Resolver.
func (r *Reader) ResolveRef(ref core.Ref) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve returns obj itself unless it is a reference, which is resolved.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.Ref); ok {
		return r.ResolveRef(ref)
	}
	return obj, nil
}

// Catalog returns the document catalog dictionary.
func (r *Reader) Catalog() (core.Dict, error) {
	rootRef, ok := r.trailer.Ref("Root")
	if !ok {
		return nil, fmt.Errorf("trailer missing /Root")
	}
	obj, err := r.ResolveRef(rootRef)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is %T, not a dictionary", obj)
	}
	return catalog, nil
}

// Info returns the document info dictionary, or nil when absent.
func (r *Reader) Info() (core.Dict, error) {
	ref, ok := r.trailer.Ref("Info")
	if !ok {
		return nil, nil
	}
	obj, err := r.ResolveRef(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve info: %w", err)
	}
	info, _ := obj.(core.Dict)
	return info, nil
}

// ObjectNumbers returns the numbers of all in-use objects in ascending
// order. The rewriter walks this list to carry every live object into the
// next document version.
func (r *Reader) ObjectNumbers() []int {
	nums := make([]int, 0, len(r.xref.Entries))
	for num, entry := range r.xref.Entries {
		if entry.InUse && num > 0 {
			nums = append(nums, num)
		}
	}
	sort.Ints(nums)
	return nums
}
