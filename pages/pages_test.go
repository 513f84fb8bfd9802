package pages_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/scribe/core"
	"github.com/tsawler/scribe/pages"
)

// mapResolver serves objects straight from a map, standing in for a full
// document reader.
type mapResolver map[int]core.Object

func (m mapResolver) ResolveRef(ref core.Ref) (core.Object, error) {
	obj, ok := m[ref.Number]
	if !ok {
		return nil, fmt.Errorf("no object %d", ref.Number)
	}
	return obj, nil
}

func (m mapResolver) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.Ref); ok {
		return m.ResolveRef(ref)
	}
	return obj, nil
}

func twoPageTree() (core.Dict, mapResolver) {
	resolver := mapResolver{
		2: core.Dict{
			"Type":     core.Name("Pages"),
			"Kids":     core.Array{core.Ref{Number: 3}, core.Ref{Number: 4}},
			"Count":    core.Int(2),
			"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(595), core.Int(842)},
			"Resources": core.Dict{
				"Font": core.Dict{"F1": core.Name("Helvetica")},
			},
		},
		3: core.Dict{
			"Type":   core.Name("Page"),
			"Parent": core.Ref{Number: 2},
		},
		4: core.Dict{
			"Type":     core.Name("Page"),
			"Parent":   core.Ref{Number: 2},
			"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(612), core.Int(792)},
			"Resources": core.Dict{
				"Font": core.Dict{"F2": core.Name("Courier")},
			},
		},
	}
	catalog := core.Dict{"Type": core.Name("Catalog"), "Pages": core.Ref{Number: 2}}
	return catalog, resolver
}

func TestLoadFlattensAndInherits(t *testing.T) {
	catalog, resolver := twoPageTree()
	tree, err := pages.Load(catalog, resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tree.Count() != 2 {
		t.Fatalf("count = %d, want 2", tree.Count())
	}

	// First page inherits both MediaBox and Resources from the parent.
	first, err := tree.Page(0)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if first.Width() != 595 || first.Height() != 842 {
		t.Errorf("page 0 size = %g x %g, want 595 x 842", first.Width(), first.Height())
	}
	fonts, _ := first.Resources.Dict("Font")
	if _, ok := fonts["F1"]; !ok {
		t.Error("page 0 did not inherit the parent font resources")
	}

	// Second page overrides both.
	second, err := tree.Page(1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if second.Width() != 612 || second.Height() != 792 {
		t.Errorf("page 1 size = %g x %g, want 612 x 792", second.Width(), second.Height())
	}
	fonts, _ = second.Resources.Dict("Font")
	if _, ok := fonts["F2"]; !ok {
		t.Error("page 1 lost its own font resources")
	}
	if second.Ref.Number != 4 {
		t.Errorf("page 1 ref = %d, want 4", second.Ref.Number)
	}
}

func TestLoadNestedTree(t *testing.T) {
	resolver := mapResolver{
		2: core.Dict{
			"Type":     core.Name("Pages"),
			"Kids":     core.Array{core.Ref{Number: 3}, core.Ref{Number: 5}},
			"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(612), core.Int(792)},
		},
		3: core.Dict{
			"Type": core.Name("Pages"),
			"Kids": core.Array{core.Ref{Number: 4}},
		},
		4: core.Dict{"Type": core.Name("Page")},
		5: core.Dict{"Type": core.Name("Page")},
	}
	catalog := core.Dict{"Pages": core.Ref{Number: 2}}

	tree, err := pages.Load(catalog, resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tree.Count() != 2 {
		t.Errorf("count = %d, want 2", tree.Count())
	}
	// Document order: the nested leaf comes first.
	if tree.Pages()[0].Ref.Number != 4 || tree.Pages()[1].Ref.Number != 5 {
		t.Errorf("order = %d, %d; want 4, 5", tree.Pages()[0].Ref.Number, tree.Pages()[1].Ref.Number)
	}
}

func TestLoadRejectsCycle(t *testing.T) {
	resolver := mapResolver{
		2: core.Dict{
			"Type": core.Name("Pages"),
			"Kids": core.Array{core.Ref{Number: 2}},
		},
	}
	catalog := core.Dict{"Pages": core.Ref{Number: 2}}
	_, err := pages.Load(catalog, resolver)
	if err == nil {
		t.Fatal("expected error for self-referencing tree")
	}
	if !strings.Contains(err.Error(), "deeper") {
		t.Errorf("error = %v", err)
	}
}

func TestPageIndexOutOfRange(t *testing.T) {
	catalog, resolver := twoPageTree()
	tree, err := pages.Load(catalog, resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := tree.Page(2); err == nil {
		t.Error("expected error for index 2")
	}
	if _, err := tree.Page(-1); err == nil {
		t.Error("expected error for index -1")
	}
}

func TestContentsConcatenation(t *testing.T) {
	resolver := mapResolver{
		2: core.Dict{
			"Type": core.Name("Pages"),
			"Kids": core.Array{core.Ref{Number: 3}},
		},
		3: core.Dict{
			"Type":     core.Name("Page"),
			"Contents": core.Array{core.Ref{Number: 4}, core.Ref{Number: 5}},
		},
		4: &core.Stream{Dict: core.Dict{"Length": core.Int(2)}, Data: []byte("q ")},
		5: &core.Stream{Dict: core.Dict{"Length": core.Int(1)}, Data: []byte("Q")},
	}
	catalog := core.Dict{"Pages": core.Ref{Number: 2}}

	tree, err := pages.Load(catalog, resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, err := tree.Page(0)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	content, err := page.Contents()
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	if string(content) != "q \nQ\n" {
		t.Errorf("contents = %q", content)
	}
}

func TestContentsAbsent(t *testing.T) {
	resolver := mapResolver{
		2: core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{core.Ref{Number: 3}}},
		3: core.Dict{"Type": core.Name("Page")},
	}
	tree, err := pages.Load(core.Dict{"Pages": core.Ref{Number: 2}}, resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, _ := tree.Page(0)
	content, err := page.Contents()
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	if content != nil {
		t.Errorf("contents = %q, want nil", content)
	}
}
