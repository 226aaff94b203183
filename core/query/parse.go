package query

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

// SyntaxError reports a malformed query. Offset is a byte offset into the
// query text.
type SyntaxError struct {
	Message string
	Offset  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query syntax error at offset %d: %s", e.Offset, e.Message)
}

func (e *SyntaxError) Unwrap() error { return errors.ErrInvalidInput }

// queryLexer splits raw query text. An unterminated quote runs to the end
// of the input.
var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Quote", Pattern: `"[^"]*"?`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Term", Pattern: `[^\s()"]+`},
})

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokStrongs
	tokQuote
	tokLParen
	tokRParen
	tokOr
	tokNot
)

type qtoken struct {
	kind   tokenKind
	value  string
	offset int
}

func (t qtoken) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokQuote:
		return "quoted phrase"
	default:
		return fmt.Sprintf("%q", t.value)
	}
}

func tokenize(text string) ([]qtoken, error) {
	lex, err := queryLexer.LexString("", text)
	if err != nil {
		return nil, &SyntaxError{Message: err.Error()}
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, &SyntaxError{Message: err.Error()}
	}

	symbols := queryLexer.Symbols()
	var out []qtoken
	for _, tok := range raw {
		t := qtoken{value: tok.Value, offset: tok.Pos.Offset}
		switch tok.Type {
		case lexer.EOF:
			t.kind = tokEOF
		case symbols["Whitespace"]:
			continue
		case symbols["Quote"]:
			t.kind = tokQuote
			t.value = strings.TrimSuffix(strings.TrimPrefix(tok.Value, `"`), `"`)
		case symbols["LParen"]:
			t.kind = tokLParen
		case symbols["RParen"]:
			t.kind = tokRParen
		default:
			t.kind = classifyTerm(tok.Value)
		}
		out = append(out, t)
	}
	if len(out) == 0 || out[len(out)-1].kind != tokEOF {
		out = append(out, qtoken{kind: tokEOF, offset: len(text)})
	}
	return out, nil
}

func classifyTerm(s string) tokenKind {
	switch strings.ToUpper(s) {
	case "OR":
		return tokOr
	case "NOT":
		return tokNot
	}
	if bible.IsStrongsLiteral(s) {
		return tokStrongs
	}
	return tokWord
}

// Parse builds a query tree from text.
//
//	Or      := And ("OR" And)*
//	And     := Not+
//	Not     := "NOT" Primary | Primary
//	Primary := word | strongs | "quoted phrase" | "(" Or ")"
//
// Single-child Or and And nodes collapse to the child. OR and NOT are
// case-insensitive keywords; a Strong's literal is an upper-case H or G
// followed by digits.
func Parse(text string) (Part, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Message: "unexpected " + tok.describe(), Offset: tok.offset}
	}
	return root, nil
}

// MustParse is Parse for queries known to be valid.
func MustParse(text string) Part {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	toks []qtoken
	pos  int
}

func (p *parser) peek() qtoken { return p.toks[p.pos] }

func (p *parser) next() qtoken {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Part, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	parts := []Part{first}
	for p.peek().kind == tokOr {
		p.next()
		part, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return Or{Parts: parts}, nil
}

func (p *parser) parseAnd() (Part, error) {
	var parts []Part
	for {
		switch p.peek().kind {
		case tokOr, tokRParen, tokEOF:
			if len(parts) == 0 {
				return nil, p.unexpected()
			}
			if len(parts) == 1 {
				return parts[0], nil
			}
			return And{Parts: parts}, nil
		}
		part, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
}

func (p *parser) parseNot() (Part, error) {
	if p.peek().kind != tokNot {
		return p.parsePrimary()
	}
	p.next()
	inner, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return Not{Part: inner}, nil
}

func (p *parser) parsePrimary() (Part, error) {
	tok := p.peek()
	switch tok.kind {
	case tokWord:
		p.next()
		return NewWord(tok.value), nil
	case tokStrongs:
		p.next()
		n, err := bible.ParseStrongs(tok.value)
		if err != nil {
			return nil, &SyntaxError{Message: err.Error(), Offset: tok.offset}
		}
		return Strongs{Number: n}, nil
	case tokQuote:
		p.next()
		return phrase(tok)
	case tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokRParen {
			return nil, &SyntaxError{Message: "expected ')', found " + closing.describe(), Offset: closing.offset}
		}
		p.next()
		return inner, nil
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) unexpected() error {
	tok := p.peek()
	if tok.kind == tokEOF {
		return &SyntaxError{Message: "unexpected end of input", Offset: tok.offset}
	}
	return &SyntaxError{Message: "unexpected " + tok.describe(), Offset: tok.offset}
}

// phrase lowers a quoted span to a Sequence of its whitespace-separated
// words, each classified as a Strong's literal or a word.
func phrase(tok qtoken) (Part, error) {
	words := strings.Fields(tok.value)
	if len(words) == 0 {
		return nil, &SyntaxError{Message: "empty quoted phrase", Offset: tok.offset}
	}
	seq := Sequence{Parts: make([]Part, 0, len(words))}
	for _, w := range words {
		if bible.IsStrongsLiteral(w) {
			n, err := bible.ParseStrongs(w)
			if err != nil {
				return nil, &SyntaxError{Message: err.Error(), Offset: tok.offset}
			}
			seq.Parts = append(seq.Parts, Strongs{Number: n})
			continue
		}
		seq.Parts = append(seq.Parts, NewWord(w))
	}
	return seq, nil
}
