package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is the interface implemented by every PDF object type.
type Object interface {
	Kind() Kind
	String() string
}

// Kind identifies the concrete type of a PDF object.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindName
	KindArray
	KindDict
	KindStream
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindName:
		return "Name"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dict"
	case KindStream:
		return "Stream"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// Null is the PDF null object.
type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }

// Bool is a PDF boolean.
type Bool bool

func (b Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int is a PDF integer.
type Int int64

func (i Int) Kind() Kind     { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Real is a PDF real number.
type Real float64

func (r Real) Kind() Kind     { return KindReal }
func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String is a PDF string. The value holds the decoded bytes, not the
// source syntax; escaping happens at serialization time.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) String() string { return "(" + string(s) + ")" }

// Name is a PDF name such as /Type or /Font.
type Name string

func (n Name) Kind() Kind     { return KindName }
func (n Name) String() string { return "/" + string(n) }

// Array is a PDF array.
type Array []Object

func (a Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// At returns the element at index i, or nil when out of range.
func (a Array) At(i int) Object {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// FloatAt returns the element at index i as a float64. Both Int and Real
// elements qualify.
func (a Array) FloatAt(i int) (float64, bool) {
	return ToFloat(a.At(i))
}

// Floats converts the whole array to a float slice. It fails if any
// element is not numeric.
func (a Array) Floats() ([]float64, bool) {
	out := make([]float64, len(a))
	for i := range a {
		f, ok := ToFloat(a[i])
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Dict is a PDF dictionary.
type Dict map[Name]Object

func (d Dict) Kind() Kind { return KindDict }
func (d Dict) String() string {
	parts := make([]string, 0, len(d))
	for key, val := range d {
		parts = append(parts, fmt.Sprintf("/%s %s", key, val.String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get returns the value for key, or nil when absent.
func (d Dict) Get(key Name) Object { return d[key] }

// Name returns the value for key as a Name.
func (d Dict) Name(key Name) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

// Int returns the value for key as an Int.
func (d Dict) Int(key Name) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

// Float returns the value for key as a float64, accepting Int or Real.
func (d Dict) Float(key Name) (float64, bool) {
	return ToFloat(d[key])
}

// Dict returns the value for key as a Dict.
func (d Dict) Dict(key Name) (Dict, bool) {
	sub, ok := d[key].(Dict)
	return sub, ok
}

// Array returns the value for key as an Array.
func (d Dict) Array(key Name) (Array, bool) {
	a, ok := d[key].(Array)
	return a, ok
}

// Str returns the value for key as a String.
func (d Dict) Str(key Name) (String, bool) {
	s, ok := d[key].(String)
	return s, ok
}

// Ref returns the value for key as an indirect reference.
func (d Dict) Ref(key Name) (Ref, bool) {
	r, ok := d[key].(Ref)
	return r, ok
}

// Has reports whether key is present.
func (d Dict) Has(key Name) bool {
	_, ok := d[key]
	return ok
}

// Clone returns a shallow copy of the dictionary.
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Stream is a PDF stream: a dictionary plus raw (possibly filtered) data.
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) Kind() Kind { return KindStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Data))
}

// Ref is an indirect object reference ("n g R").
type Ref struct {
	Number     int
	Generation int
}

func (r Ref) Kind() Kind     { return KindRef }
func (r Ref) String() string { return fmt.Sprintf("%d %d R", r.Number, r.Generation) }

// Indirect pairs a reference with the object it points to, as parsed from
// an "n g obj ... endobj" body.
type Indirect struct {
	Ref    Ref
	Object Object
}

// ToFloat converts a numeric object (Int or Real) to float64.
func ToFloat(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// ToInt converts a numeric object to int.
func ToInt(obj Object) (int, bool) {
	switch v := obj.(type) {
	case Int:
		return int(v), true
	case Real:
		return int(v), true
	default:
		return 0, false
	}
}
