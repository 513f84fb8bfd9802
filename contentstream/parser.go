package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/scribe/core"
)

// Operation is one content stream operation: the operands that preceded
// an operator, and the operator itself.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parse tokenizes a decoded content stream into its operation sequence.
// Inline images (BI ... EI) are skipped; their binary payload cannot be
// tokenized and none of the extraction paths need them.
func Parse(data []byte) ([]Operation, error) {
	p := &parser{tok: core.NewTokenizer(data), data: data}
	return p.run()
}

type parser struct {
	tok      *core.Tokenizer
	data     []byte
	operands []core.Object
	ops      []Operation
}

func (p *parser) run() ([]Operation, error) {
	for {
		t, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		if t.Type == core.TokenEOF {
			break
		}
		if err := p.consume(t); err != nil {
			return nil, err
		}
	}
	return p.ops, nil
}

func (p *parser) consume(t core.Token) error {
	switch t.Type {
	case core.TokenKeyword:
		word := string(t.Value)
		switch word {
		case "true":
			p.operands = append(p.operands, core.Bool(true))
		case "false":
			p.operands = append(p.operands, core.Bool(false))
		case "null":
			p.operands = append(p.operands, core.Null{})
		case "BI":
			return p.skipInlineImage()
		default:
			p.ops = append(p.ops, Operation{Operator: word, Operands: p.operands})
			p.operands = nil
		}
		return nil

	case core.TokenInteger:
		n, err := strconv.ParseInt(string(t.Value), 10, 64)
		if err != nil {
			return fmt.Errorf("bad integer %q at offset %d", t.Value, t.Offset)
		}
		p.operands = append(p.operands, core.Int(n))
		return nil

	case core.TokenReal:
		f, err := strconv.ParseFloat(string(t.Value), 64)
		if err != nil {
			return fmt.Errorf("bad real %q at offset %d", t.Value, t.Offset)
		}
		p.operands = append(p.operands, core.Real(f))
		return nil

	case core.TokenString, core.TokenHexString:
		p.operands = append(p.operands, core.String(t.Value))
		return nil

	case core.TokenName:
		p.operands = append(p.operands, core.Name(t.Value))
		return nil

	case core.TokenArrayOpen:
		arr, err := p.parseArray()
		if err != nil {
			return err
		}
		p.operands = append(p.operands, arr)
		return nil

	case core.TokenDictOpen:
		dict, err := p.parseDict()
		if err != nil {
			return err
		}
		p.operands = append(p.operands, dict)
		return nil
	}

	return fmt.Errorf("unexpected token at offset %d", t.Offset)
}

func (p *parser) parseArray() (core.Array, error) {
	arr := core.Array{}
	for {
		t, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		switch t.Type {
		case core.TokenArrayClose:
			return arr, nil
		case core.TokenEOF:
			return nil, fmt.Errorf("unterminated array in content stream")
		}
		obj, err := p.tokenToObject(t)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *parser) parseDict() (core.Dict, error) {
	dict := make(core.Dict)
	for {
		t, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		switch t.Type {
		case core.TokenDictClose:
			return dict, nil
		case core.TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary in content stream")
		case core.TokenName:
			val, err := p.tok.Next()
			if err != nil {
				return nil, err
			}
			obj, err := p.tokenToObject(val)
			if err != nil {
				return nil, err
			}
			dict[core.Name(t.Value)] = obj
		default:
			return nil, fmt.Errorf("dictionary key must be a name at offset %d", t.Offset)
		}
	}
}

func (p *parser) tokenToObject(t core.Token) (core.Object, error) {
	switch t.Type {
	case core.TokenInteger:
		n, _ := strconv.ParseInt(string(t.Value), 10, 64)
		return core.Int(n), nil
	case core.TokenReal:
		f, _ := strconv.ParseFloat(string(t.Value), 64)
		return core.Real(f), nil
	case core.TokenString, core.TokenHexString:
		return core.String(t.Value), nil
	case core.TokenName:
		return core.Name(t.Value), nil
	case core.TokenArrayOpen:
		return p.parseArray()
	case core.TokenDictOpen:
		return p.parseDict()
	case core.TokenKeyword:
		switch string(t.Value) {
		case "true":
			return core.Bool(true), nil
		case "false":
			return core.Bool(false), nil
		case "null":
			return core.Null{}, nil
		}
	}
	return nil, fmt.Errorf("unexpected token in compound object at offset %d", t.Offset)
}

// skipInlineImage seeks past an inline image to its EI terminator.
func (p *parser) skipInlineImage() error {
	pos := p.tok.Pos()
	idx := bytes.Index(p.data[pos:], []byte("EI"))
	if idx < 0 {
		return fmt.Errorf("unterminated inline image at offset %d", pos)
	}
	p.tok.Seek(pos + idx + 2)
	p.operands = nil
	return nil
}
