package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// Resolver resolves indirect references during parsing. The reader
// implements it; the parser needs it only for indirect /Length values
// on stream dictionaries.
type Resolver interface {
	ResolveRef(ref Ref) (Object, error)
}

// Parser parses PDF objects from a byte slice using a Tokenizer.
type Parser struct {
	tok      *Tokenizer
	queue    []Token // lookahead buffer
	resolver Resolver
}

// NewParser creates a parser over data.
func NewParser(data []byte) *Parser {
	return &Parser{tok: NewTokenizer(data)}
}

// SetResolver installs the resolver used for indirect stream lengths.
func (p *Parser) SetResolver(r Resolver) { p.resolver = r }

// Seek repositions the parser and discards any lookahead.
func (p *Parser) Seek(pos int) {
	p.tok.Seek(pos)
	p.queue = p.queue[:0]
}

func (p *Parser) next() (Token, error) {
	if len(p.queue) > 0 {
		t := p.queue[0]
		p.queue = p.queue[1:]
		return t, nil
	}
	return p.tok.Next()
}

func (p *Parser) peekAt(i int) (Token, error) {
	for len(p.queue) <= i {
		t, err := p.tok.Next()
		if err != nil {
			return Token{}, err
		}
		p.queue = append(p.queue, t)
	}
	return p.queue[i], nil
}

// ParseObject parses the next object: null, boolean, number, string, name,
// array, dictionary, or indirect reference. Indirect references are
// recognized by the "int int R" lookahead pattern.
func (p *Parser) ParseObject() (Object, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}

	switch t.Type {
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of input")

	case TokenKeyword:
		switch string(t.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", t.Value, t.Offset)

	case TokenInteger:
		return p.parseNumberOrRef(t)

	case TokenReal:
		f, err := strconv.ParseFloat(string(t.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad real %q at offset %d", t.Value, t.Offset)
		}
		return Real(f), nil

	case TokenString, TokenHexString:
		return String(t.Value), nil

	case TokenName:
		return Name(t.Value), nil

	case TokenArrayOpen:
		return p.parseArray()

	case TokenDictOpen:
		return p.parseDict()
	}

	return nil, fmt.Errorf("unexpected token at offset %d", t.Offset)
}

// parseNumberOrRef disambiguates an integer from an indirect reference by
// looking ahead for "gen R".
func (p *Parser) parseNumberOrRef(first Token) (Object, error) {
	num, err := strconv.ParseInt(string(first.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad integer %q at offset %d", first.Value, first.Offset)
	}

	second, err := p.peekAt(0)
	if err != nil || second.Type != TokenInteger {
		return Int(num), nil
	}
	third, err := p.peekAt(1)
	if err != nil || third.Type != TokenKeyword || !bytes.Equal(third.Value, []byte("R")) {
		return Int(num), nil
	}

	gen, err := strconv.Atoi(string(second.Value))
	if err != nil {
		return Int(num), nil
	}
	p.next() // gen
	p.next() // R
	return Ref{Number: int(num), Generation: gen}, nil
}

func (p *Parser) parseArray() (Object, error) {
	arr := Array{}
	for {
		t, err := p.peekAt(0)
		if err != nil {
			return nil, err
		}
		if t.Type == TokenArrayClose {
			p.next()
			return arr, nil
		}
		if t.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated array")
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	dict := make(Dict)
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t.Type {
		case TokenDictClose:
			return dict, nil
		case TokenName:
			val, err := p.ParseObject()
			if err != nil {
				return nil, err
			}
			dict[Name(t.Value)] = val
		case TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary")
		default:
			return nil, fmt.Errorf("dictionary key must be a name, at offset %d", t.Offset)
		}
	}
}

// ParseIndirect parses a full "n g obj ... endobj" body, including stream
// data when the object is a stream.
func (p *Parser) ParseIndirect() (*Indirect, error) {
	numTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if numTok.Type != TokenInteger {
		return nil, fmt.Errorf("expected object number at offset %d", numTok.Offset)
	}
	genTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if genTok.Type != TokenInteger {
		return nil, fmt.Errorf("expected generation number at offset %d", genTok.Offset)
	}
	objTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if objTok.Type != TokenKeyword || string(objTok.Value) != "obj" {
		return nil, fmt.Errorf("expected 'obj' keyword at offset %d", objTok.Offset)
	}

	num, _ := strconv.Atoi(string(numTok.Value))
	gen, _ := strconv.Atoi(string(genTok.Value))

	obj, err := p.ParseObject()
	if err != nil {
		return nil, err
	}

	end, err := p.next()
	if err != nil {
		return nil, err
	}

	if end.Type == TokenKeyword && string(end.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("stream keyword after non-dictionary object %d", num)
		}
		stream, err := p.readStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", num, err)
		}
		obj = stream

		end, err = p.next()
		if err != nil {
			return nil, err
		}
	}

	if end.Type != TokenKeyword || string(end.Value) != "endobj" {
		return nil, fmt.Errorf("object %d: expected 'endobj', got %q", num, end.Value)
	}

	return &Indirect{
		Ref:    Ref{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

// readStream consumes raw stream data. The tokenizer sits right after the
// "stream" keyword; an EOL separates the keyword from the data.
func (p *Parser) readStream(dict Dict) (*Stream, error) {
	if len(p.queue) != 0 {
		// Lookahead must not cross into binary data. Rewind to the start
		// of the first queued token and drop the queue.
		p.tok.Seek(p.queue[0].Offset)
		p.queue = p.queue[:0]
	}
	p.tok.SkipEOL()

	length, err := p.streamLength(dict)
	if err != nil {
		return nil, err
	}

	data, err := p.tok.ReadBytes(length)
	if err != nil {
		return nil, fmt.Errorf("stream data: %w", err)
	}

	// Copy out of the backing file buffer so the stream owns its bytes.
	owned := make([]byte, len(data))
	copy(owned, data)

	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenKeyword || string(tok.Value) != "endstream" {
		return nil, fmt.Errorf("expected 'endstream', got %q", tok.Value)
	}

	return &Stream{Dict: dict, Data: owned}, nil
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	obj := dict.Get("Length")
	if ref, ok := obj.(Ref); ok {
		if p.resolver == nil {
			return 0, fmt.Errorf("indirect /Length %s but no resolver installed", ref)
		}
		resolved, err := p.resolver.ResolveRef(ref)
		if err != nil {
			return 0, fmt.Errorf("resolve /Length: %w", err)
		}
		obj = resolved
	}
	n, ok := ToInt(obj)
	if !ok || n < 0 {
		return 0, fmt.Errorf("missing or invalid /Length")
	}
	return n, nil
}
