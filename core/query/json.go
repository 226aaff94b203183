package query

import (
	"encoding/json"
	"fmt"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

// wirePart is the tagged JSON form of a query node:
//
//	{"type":"or","content":[...]}           also "and", "sequence"
//	{"type":"not","content":{...}}
//	{"type":"strongs","strongs":"G26"}
//	{"type":"starts_with","pattern":"lov"}  also "ends_with"
//	{"type":"word","word":"love"}
type wirePart struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
	Strongs string          `json:"strongs,omitempty"`
	Pattern string          `json:"pattern,omitempty"`
	Word    string          `json:"word,omitempty"`
}

// Expr wraps a Part for embedding in JSON documents.
type Expr struct {
	Part Part
}

// MarshalJSON implements json.Marshaler.
func (e Expr) MarshalJSON() ([]byte, error) { return MarshalPart(e.Part) }

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expr) UnmarshalJSON(data []byte) error {
	p, err := UnmarshalPart(data)
	if err != nil {
		return err
	}
	e.Part = p
	return nil
}

// MarshalPart encodes a query tree.
func MarshalPart(p Part) ([]byte, error) {
	w, err := toWire(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func toWire(p Part) (wirePart, error) {
	switch p := p.(type) {
	case Or:
		return listToWire("or", p.Parts)
	case And:
		return listToWire("and", p.Parts)
	case Sequence:
		return listToWire("sequence", p.Parts)
	case Not:
		inner, err := MarshalPart(p.Part)
		if err != nil {
			return wirePart{}, err
		}
		return wirePart{Type: "not", Content: inner}, nil
	case Strongs:
		return wirePart{Type: "strongs", Strongs: p.Number.String()}, nil
	case StartsWith:
		return wirePart{Type: "starts_with", Pattern: p.Prefix}, nil
	case EndsWith:
		return wirePart{Type: "ends_with", Pattern: p.Suffix}, nil
	case Word:
		return wirePart{Type: "word", Word: p.Text}, nil
	default:
		return wirePart{}, fmt.Errorf("query: cannot encode %T", p)
	}
}

func listToWire(kind string, parts []Part) (wirePart, error) {
	children := make([]json.RawMessage, 0, len(parts))
	for _, c := range parts {
		data, err := MarshalPart(c)
		if err != nil {
			return wirePart{}, err
		}
		children = append(children, data)
	}
	content, err := json.Marshal(children)
	if err != nil {
		return wirePart{}, err
	}
	return wirePart{Type: kind, Content: content}, nil
}

// UnmarshalPart decodes a query tree. Word and pattern leaves are case
// folded on the way in.
func UnmarshalPart(data []byte) (Part, error) {
	var w wirePart
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &errors.ParseError{Format: "query JSON", Message: err.Error(), Err: err}
	}

	switch w.Type {
	case "or", "and", "sequence":
		var raw []json.RawMessage
		if err := json.Unmarshal(w.Content, &raw); err != nil {
			return nil, errors.NewParse("query JSON", "", w.Type+" content must be an array")
		}
		parts := make([]Part, 0, len(raw))
		for _, r := range raw {
			p, err := UnmarshalPart(r)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		switch w.Type {
		case "or":
			return Or{Parts: parts}, nil
		case "and":
			return And{Parts: parts}, nil
		default:
			return Sequence{Parts: parts}, nil
		}
	case "not":
		if len(w.Content) == 0 {
			return nil, errors.NewParse("query JSON", "", "not requires content")
		}
		inner, err := UnmarshalPart(w.Content)
		if err != nil {
			return nil, err
		}
		return Not{Part: inner}, nil
	case "strongs":
		n, err := bible.ParseStrongs(w.Strongs)
		if err != nil {
			return nil, errors.NewParse("query JSON", "", err.Error())
		}
		return Strongs{Number: n}, nil
	case "starts_with":
		return NewStartsWith(w.Pattern), nil
	case "ends_with":
		return NewEndsWith(w.Pattern), nil
	case "word":
		return NewWord(w.Word), nil
	default:
		return nil, errors.NewParse("query JSON", "", fmt.Sprintf("unknown node type %q", w.Type))
	}
}
