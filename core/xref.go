package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// XRefEntry is one cross-reference table entry.
type XRefEntry struct {
	Offset     int64 // byte offset of the object (in-use entries)
	Generation int
	InUse      bool
}

// XRefTable maps object numbers to their file offsets, together with the
// trailer dictionary. Incremental updates are merged newest-first, so the
// table always describes the latest version of every object.
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

// Get returns the entry for an object number.
func (x *XRefTable) Get(num int) (XRefEntry, bool) {
	e, ok := x.Entries[num]
	return e, ok
}

// maxTrailerScan bounds how far from EOF the startxref marker is searched.
const maxTrailerScan = 2048

// ParseXRef locates and parses the cross-reference table of a PDF,
// following /Prev links through incremental updates. Only classic xref
// tables are supported; cross-reference streams produce an error.
func ParseXRef(data []byte) (*XRefTable, error) {
	offset, err := findStartXRef(data)
	if err != nil {
		return nil, err
	}

	table := &XRefTable{Entries: make(map[int]XRefEntry)}
	seen := make(map[int64]bool)

	for {
		if seen[offset] {
			return nil, fmt.Errorf("circular /Prev chain at offset %d", offset)
		}
		seen[offset] = true

		trailer, err := parseXRefSection(data, offset, table)
		if err != nil {
			return nil, err
		}
		if table.Trailer == nil {
			table.Trailer = trailer
		}

		prev, ok := trailer.Float("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}

	return table, nil
}

// findStartXRef scans backwards from EOF for "startxref\n<offset>\n%%EOF".
func findStartXRef(data []byte) (int64, error) {
	tail := data
	if len(tail) > maxTrailerScan {
		tail = tail[len(tail)-maxTrailerScan:]
	}

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref marker not found")
	}

	tok := NewTokenizer(tail[idx+len("startxref"):])
	t, err := tok.Next()
	if err != nil || t.Type != TokenInteger {
		return 0, fmt.Errorf("malformed startxref offset")
	}
	offset, err := strconv.ParseInt(string(t.Value), 10, 64)
	if err != nil || offset < 0 || offset >= int64(len(data)) {
		return 0, fmt.Errorf("startxref offset %q out of range", t.Value)
	}
	return offset, nil
}

// parseXRefSection parses one "xref ... trailer <<...>>" section at offset,
// adding entries that are not already present (newer sections win).
func parseXRefSection(data []byte, offset int64, table *XRefTable) (Dict, error) {
	tok := NewTokenizer(data)
	tok.Seek(int(offset))

	t, err := tok.Next()
	if err != nil {
		return nil, err
	}
	if t.Type != TokenKeyword || string(t.Value) != "xref" {
		// A number here means the file uses a cross-reference stream.
		if t.Type == TokenInteger {
			return nil, fmt.Errorf("cross-reference streams are not supported")
		}
		return nil, fmt.Errorf("expected 'xref' at offset %d", offset)
	}

	for {
		t, err = tok.Next()
		if err != nil {
			return nil, err
		}
		if t.Type == TokenKeyword && string(t.Value) == "trailer" {
			break
		}
		if t.Type != TokenInteger {
			return nil, fmt.Errorf("expected subsection start at offset %d", t.Offset)
		}
		start, _ := strconv.Atoi(string(t.Value))

		t, err = tok.Next()
		if err != nil {
			return nil, err
		}
		if t.Type != TokenInteger {
			return nil, fmt.Errorf("expected subsection count at offset %d", t.Offset)
		}
		count, _ := strconv.Atoi(string(t.Value))

		for i := 0; i < count; i++ {
			entry, err := parseXRefEntry(tok)
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", start+i, err)
			}
			num := start + i
			if _, exists := table.Entries[num]; !exists {
				table.Entries[num] = entry
			}
		}
	}

	parser := NewParser(data)
	parser.Seek(tok.Pos())
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary")
	}
	return trailer, nil
}

// parseXRefEntry reads one "nnnnnnnnnn ggggg n" entry.
func parseXRefEntry(tok *Tokenizer) (XRefEntry, error) {
	offTok, err := tok.Next()
	if err != nil || offTok.Type != TokenInteger {
		return XRefEntry{}, fmt.Errorf("bad offset field")
	}
	genTok, err := tok.Next()
	if err != nil || genTok.Type != TokenInteger {
		return XRefEntry{}, fmt.Errorf("bad generation field")
	}
	kindTok, err := tok.Next()
	if err != nil || kindTok.Type != TokenKeyword {
		return XRefEntry{}, fmt.Errorf("bad type field")
	}

	offset, _ := strconv.ParseInt(string(offTok.Value), 10, 64)
	gen, _ := strconv.Atoi(string(genTok.Value))

	switch string(kindTok.Value) {
	case "n":
		return XRefEntry{Offset: offset, Generation: gen, InUse: true}, nil
	case "f":
		return XRefEntry{Offset: offset, Generation: gen, InUse: false}, nil
	}
	return XRefEntry{}, fmt.Errorf("unknown entry type %q", kindTok.Value)
}
