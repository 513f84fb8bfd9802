package core

import (
	"bytes"
	"fmt"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenKeyword    // obj, endobj, stream, true, R, ...
	TokenInteger    // 42
	TokenReal       // 3.14
	TokenString     // (hello) with escapes resolved
	TokenHexString  // <48656C> with hex resolved
	TokenName       // /Type with # escapes resolved
	TokenArrayOpen  // [
	TokenArrayClose // ]
	TokenDictOpen   // <<
	TokenDictClose  // >>
)

// Token is a single lexical token. Value holds the decoded payload for
// strings and names, and the literal text for numbers and keywords.
type Token struct {
	Type   TokenType
	Value  []byte
	Offset int
}

// Tokenizer scans PDF syntax from a byte slice. Unlike a stream-based
// lexer it can be repositioned freely, which the xref parser and the
// stream reader rely on.
type Tokenizer struct {
	data []byte
	pos  int
}

// NewTokenizer creates a tokenizer over data starting at offset 0.
func NewTokenizer(data []byte) *Tokenizer {
	return &Tokenizer{data: data}
}

// Pos returns the current byte offset.
func (t *Tokenizer) Pos() int { return t.pos }

// Seek repositions the tokenizer.
func (t *Tokenizer) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(t.data) {
		pos = len(t.data)
	}
	t.pos = pos
}

// ReadBytes consumes and returns exactly n raw bytes, used for stream data.
func (t *Tokenizer) ReadBytes(n int) ([]byte, error) {
	if t.pos+n > len(t.data) {
		return nil, fmt.Errorf("unexpected end of input: want %d bytes, have %d", n, len(t.data)-t.pos)
	}
	out := t.data[t.pos : t.pos+n]
	t.pos += n
	return out, nil
}

// Next returns the next token, skipping whitespace and comments.
func (t *Tokenizer) Next() (Token, error) {
	t.skipIgnorable()
	if t.pos >= len(t.data) {
		return Token{Type: TokenEOF, Offset: t.pos}, nil
	}

	start := t.pos
	b := t.data[t.pos]

	switch {
	case b == '[':
		t.pos++
		return Token{Type: TokenArrayOpen, Value: t.data[start:t.pos], Offset: start}, nil
	case b == ']':
		t.pos++
		return Token{Type: TokenArrayClose, Value: t.data[start:t.pos], Offset: start}, nil
	case b == '(':
		return t.scanString()
	case b == '<':
		if t.pos+1 < len(t.data) && t.data[t.pos+1] == '<' {
			t.pos += 2
			return Token{Type: TokenDictOpen, Value: t.data[start:t.pos], Offset: start}, nil
		}
		return t.scanHexString()
	case b == '>':
		if t.pos+1 < len(t.data) && t.data[t.pos+1] == '>' {
			t.pos += 2
			return Token{Type: TokenDictClose, Value: t.data[start:t.pos], Offset: start}, nil
		}
		return Token{}, fmt.Errorf("stray '>' at offset %d", start)
	case b == '/':
		return t.scanName()
	case isDigit(b) || b == '-' || b == '+' || b == '.':
		return t.scanNumber()
	case isRegular(b):
		return t.scanKeyword()
	}

	return Token{}, fmt.Errorf("unexpected byte 0x%02x at offset %d", b, start)
}

// PeekLine returns the bytes from the current position to the next line
// break, without consuming anything. Used by the xref table parser.
func (t *Tokenizer) PeekLine() []byte {
	end := t.pos
	for end < len(t.data) && t.data[end] != '\r' && t.data[end] != '\n' {
		end++
	}
	return t.data[t.pos:end]
}

// SkipEOL consumes a single end-of-line marker (CR, LF, or CRLF) if present.
func (t *Tokenizer) SkipEOL() {
	if t.pos < len(t.data) && t.data[t.pos] == '\r' {
		t.pos++
	}
	if t.pos < len(t.data) && t.data[t.pos] == '\n' {
		t.pos++
	}
}

func (t *Tokenizer) skipIgnorable() {
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if isWhitespace(b) {
			t.pos++
			continue
		}
		if b == '%' {
			for t.pos < len(t.data) && t.data[t.pos] != '\r' && t.data[t.pos] != '\n' {
				t.pos++
			}
			continue
		}
		return
	}
}

func (t *Tokenizer) scanString() (Token, error) {
	start := t.pos
	t.pos++ // consume (
	var buf bytes.Buffer
	depth := 1

	for t.pos < len(t.data) {
		b := t.data[t.pos]
		t.pos++

		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf.Bytes(), Offset: start}, nil
			}
			buf.WriteByte(b)
		case '\\':
			if t.pos >= len(t.data) {
				return Token{}, fmt.Errorf("unterminated string escape at offset %d", t.pos)
			}
			esc := t.data[t.pos]
			t.pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			case '\r':
				// line continuation, swallow optional LF
				if t.pos < len(t.data) && t.data[t.pos] == '\n' {
					t.pos++
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := esc - '0'
				for i := 0; i < 2 && t.pos < len(t.data) && isOctal(t.data[t.pos]); i++ {
					val = val*8 + (t.data[t.pos] - '0')
					t.pos++
				}
				buf.WriteByte(val)
			default:
				buf.WriteByte(esc)
			}
		default:
			buf.WriteByte(b)
		}
	}

	return Token{}, fmt.Errorf("unterminated string starting at offset %d", start)
}

func (t *Tokenizer) scanHexString() (Token, error) {
	start := t.pos
	t.pos++ // consume <
	var digits []byte

	for t.pos < len(t.data) {
		b := t.data[t.pos]
		t.pos++
		if b == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := 0; i < len(digits); i += 2 {
				out[i/2] = hexVal(digits[i])<<4 | hexVal(digits[i+1])
			}
			return Token{Type: TokenHexString, Value: out, Offset: start}, nil
		}
		if isWhitespace(b) {
			continue
		}
		if !isHex(b) {
			return Token{}, fmt.Errorf("invalid hex digit %q at offset %d", b, t.pos-1)
		}
		digits = append(digits, b)
	}

	return Token{}, fmt.Errorf("unterminated hex string starting at offset %d", start)
}

func (t *Tokenizer) scanName() (Token, error) {
	start := t.pos
	t.pos++ // consume /
	var buf bytes.Buffer

	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		t.pos++
		if b == '#' && t.pos+1 < len(t.data) && isHex(t.data[t.pos]) && isHex(t.data[t.pos+1]) {
			buf.WriteByte(hexVal(t.data[t.pos])<<4 | hexVal(t.data[t.pos+1]))
			t.pos += 2
			continue
		}
		buf.WriteByte(b)
	}

	return Token{Type: TokenName, Value: buf.Bytes(), Offset: start}, nil
}

func (t *Tokenizer) scanNumber() (Token, error) {
	start := t.pos
	real := false

	if t.data[t.pos] == '-' || t.data[t.pos] == '+' {
		t.pos++
	}
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if b == '.' {
			if real {
				break
			}
			real = true
			t.pos++
			continue
		}
		if !isDigit(b) {
			break
		}
		t.pos++
	}

	typ := TokenInteger
	if real {
		typ = TokenReal
	}
	return Token{Type: typ, Value: t.data[start:t.pos], Offset: start}, nil
}

func (t *Tokenizer) scanKeyword() (Token, error) {
	start := t.pos
	for t.pos < len(t.data) && isRegular(t.data[t.pos]) {
		t.pos++
	}
	return Token{Type: TokenKeyword, Value: t.data[start:t.pos], Offset: start}, nil
}

// PDF whitespace: null, tab, LF, FF, CR, space.
func isWhitespace(b byte) bool {
	return b == 0 || b == '\t' || b == '\n' || b == '\f' || b == '\r' || b == ' '
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(b byte) bool {
	return !isWhitespace(b) && !isDelimiter(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isOctal(b byte) bool { return b >= '0' && b <= '7' }

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
