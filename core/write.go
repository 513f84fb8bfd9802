package core

import (
	"fmt"
	"io"
	"sort"
)

// WriteObject serializes obj in PDF syntax. Dictionaries are written with
// sorted keys so output is deterministic.
func WriteObject(w io.Writer, obj Object) error {
	switch v := obj.(type) {
	case nil, Null:
		_, err := io.WriteString(w, "null")
		return err

	case Bool, Int, Real, Ref:
		_, err := io.WriteString(w, v.String())
		return err

	case Name:
		return writeName(w, v)

	case String:
		return writeString(w, v)

	case Array:
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
		for i, item := range v {
			if i > 0 {
				if _, err := io.WriteString(w, " "); err != nil {
					return err
				}
			}
			if err := WriteObject(w, item); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "]")
		return err

	case Dict:
		return writeDict(w, v)

	case *Stream:
		if err := writeDict(w, v.Dict); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\nstream\n"); err != nil {
			return err
		}
		if _, err := w.Write(v.Data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\nendstream")
		return err
	}

	return fmt.Errorf("cannot serialize object of type %T", obj)
}

// WriteIndirect serializes a complete "n g obj ... endobj" body.
func WriteIndirect(w io.Writer, ind *Indirect) error {
	if _, err := fmt.Fprintf(w, "%d %d obj\n", ind.Ref.Number, ind.Ref.Generation); err != nil {
		return err
	}
	if err := WriteObject(w, ind.Object); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendobj\n")
	return err
}

func writeDict(w io.Writer, d Dict) error {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeName(w, Name(k)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := WriteObject(w, d[Name(k)]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">>")
	return err
}

// writeName escapes characters outside the regular set with #xx.
func writeName(w io.Writer, n Name) error {
	out := []byte{'/'}
	for i := 0; i < len(n); i++ {
		b := n[i]
		if b <= 0x20 || b >= 0x7f || isDelimiter(b) || b == '#' {
			out = append(out, fmt.Sprintf("#%02X", b)...)
			continue
		}
		out = append(out, b)
	}
	_, err := w.Write(out)
	return err
}

// writeString writes a literal string with backslash and octal escapes, so
// arbitrary byte content round-trips through the tokenizer.
func writeString(w io.Writer, s String) error {
	out := []byte{'('}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch b {
		case '(', ')', '\\':
			out = append(out, '\\', b)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if b < 0x20 || b >= 0x7f {
				out = append(out, fmt.Sprintf("\\%03o", b)...)
			} else {
				out = append(out, b)
			}
		}
	}
	out = append(out, ')')
	_, err := w.Write(out)
	return err
}
