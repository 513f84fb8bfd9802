package pages

import (
	"fmt"

	"github.com/tsawler/scribe/core"
)

// Resolver resolves indirect references while walking the tree. The
// reader satisfies it.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveRef(ref core.Ref) (core.Object, error)
}

// Page is one leaf of the page tree. Inheritable attributes (Resources,
// MediaBox) are filled in from ancestors during traversal.
type Page struct {
	Dict      core.Dict
	Ref       core.Ref // indirect reference of the page object, if known
	Resources core.Dict
	MediaBox  [4]float64

	resolver Resolver
}

// Width returns the page width in points.
func (p *Page) Width() float64 { return p.MediaBox[2] - p.MediaBox[0] }

// Height returns the page height in points.
func (p *Page) Height() float64 { return p.MediaBox[3] - p.MediaBox[1] }

// Contents returns the page's content streams, decoded and concatenated
// in order. A page with no contents yields nil.
func (p *Page) Contents() ([]byte, error) {
	obj, err := p.resolver.Resolve(p.Dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("resolve contents: %w", err)
	}

	var streams []*core.Stream
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case *core.Stream:
		streams = append(streams, v)
	case core.Array:
		for i, item := range v {
			resolved, err := p.resolver.Resolve(item)
			if err != nil {
				return nil, fmt.Errorf("resolve contents[%d]: %w", i, err)
			}
			if s, ok := resolved.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
	default:
		return nil, fmt.Errorf("contents is %T, not a stream", obj)
	}

	var out []byte
	for i, s := range streams {
		data, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode content stream %d: %w", i, err)
		}
		out = append(out, data...)
		// Streams in an array are logically separated by whitespace.
		out = append(out, '\n')
	}
	return out, nil
}

// Tree is the flattened page list of one document.
type Tree struct {
	pages []*Page
}

// Load walks the page tree under the catalog and returns the flattened,
// ordered page list.
func Load(catalog core.Dict, resolver Resolver) (*Tree, error) {
	rootObj, err := resolver.Resolve(catalog.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("resolve page tree root: %w", err)
	}
	root, ok := rootObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog /Pages is %T, not a dictionary", rootObj)
	}

	t := &Tree{}
	inherited := inheritable{mediaBox: [4]float64{0, 0, 612, 792}} // US Letter fallback
	if err := t.walk(root, core.Ref{}, inherited, resolver, 0); err != nil {
		return nil, err
	}
	return t, nil
}

// Count returns the number of pages.
func (t *Tree) Count() int { return len(t.pages) }

// Page returns the page at index (0-based).
func (t *Tree) Page(index int) (*Page, error) {
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

// Pages returns all pages in document order.
func (t *Tree) Pages() []*Page { return t.pages }

type inheritable struct {
	resources core.Dict
	mediaBox  [4]float64
}

const maxTreeDepth = 64

func (t *Tree) walk(node core.Dict, ref core.Ref, inh inheritable, resolver Resolver, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	if res, err := resolver.Resolve(node.Get("Resources")); err == nil {
		if dict, ok := res.(core.Dict); ok {
			inh.resources = dict
		}
	}
	if mbObj, err := resolver.Resolve(node.Get("MediaBox")); err == nil {
		if arr, ok := mbObj.(core.Array); ok && len(arr) == 4 {
			if vals, ok := arr.Floats(); ok {
				copy(inh.mediaBox[:], vals)
			}
		}
	}

	nodeType, _ := node.Name("Type")
	switch nodeType {
	case "Page":
		t.pages = append(t.pages, &Page{
			Dict:      node,
			Ref:       ref,
			Resources: inh.resources,
			MediaBox:  inh.mediaBox,
			resolver:  resolver,
		})
		return nil

	case "Pages":
		kids, ok := node.Array("Kids")
		if !ok {
			kidsObj, err := resolver.Resolve(node.Get("Kids"))
			if err != nil {
				return fmt.Errorf("resolve /Kids: %w", err)
			}
			kids, ok = kidsObj.(core.Array)
			if !ok {
				return fmt.Errorf("/Kids is %T, not an array", kidsObj)
			}
		}
		for i, kid := range kids {
			kidRef, _ := kid.(core.Ref)
			resolved, err := resolver.Resolve(kid)
			if err != nil {
				return fmt.Errorf("resolve kid %d: %w", i, err)
			}
			kidDict, ok := resolved.(core.Dict)
			if !ok {
				return fmt.Errorf("kid %d is %T, not a dictionary", i, resolved)
			}
			if err := t.walk(kidDict, kidRef, inh, resolver, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("page tree node has type %q", nodeType)
}
