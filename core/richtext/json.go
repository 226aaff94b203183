package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireNode is the tagged JSON form shared by blocks and inlines:
// {"type":"paragraph","content":[{"type":"text","value":"..."}]}.
type wireNode struct {
	Type    string       `json:"type"`
	Value   string       `json:"value,omitempty"`
	Level   int          `json:"level,omitempty"`
	Ordered bool         `json:"ordered,omitempty"`
	Src     string       `json:"src,omitempty"`
	Alt     string       `json:"alt,omitempty"`
	Href    string       `json:"href,omitempty"`
	Content []wireNode   `json:"content,omitempty"`
	Items   [][]wireNode `json:"items,omitempty"`
}

// MarshalJSON encodes the document as an array of tagged blocks.
func (d Document) MarshalJSON() ([]byte, error) {
	nodes := make([]wireNode, 0, len(d))
	for _, b := range d {
		nodes = append(nodes, blockToWire(b))
	}
	return json.Marshal(nodes)
}

// UnmarshalJSON accepts either an array of tagged blocks or a string of
// XHTML markup.
func (d *Document) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var markup string
		if err := json.Unmarshal(data, &markup); err != nil {
			return err
		}
		doc, err := ParseXHTML(markup)
		if err != nil {
			return err
		}
		*d = doc
		return nil
	}
	if string(data) == "null" {
		*d = nil
		return nil
	}

	var nodes []wireNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return fmt.Errorf("rich text: %w", err)
	}
	doc := make(Document, 0, len(nodes))
	for _, n := range nodes {
		b, err := blockFromWire(n)
		if err != nil {
			return err
		}
		doc = append(doc, b)
	}
	*d = doc
	return nil
}

func blockToWire(b Block) wireNode {
	switch b := b.(type) {
	case Paragraph:
		return wireNode{Type: "paragraph", Content: inlinesToWire(b.Content)}
	case Heading:
		return wireNode{Type: "heading", Level: b.Level, Content: inlinesToWire(b.Content)}
	case List:
		items := make([][]wireNode, 0, len(b.Items))
		for _, item := range b.Items {
			blocks := make([]wireNode, 0, len(item))
			for _, child := range item {
				blocks = append(blocks, blockToWire(child))
			}
			items = append(items, blocks)
		}
		return wireNode{Type: "list", Ordered: b.Ordered, Items: items}
	default:
		return wireNode{Type: "horizontal_rule"}
	}
}

func inlinesToWire(content []Inline) []wireNode {
	out := make([]wireNode, 0, len(content))
	for _, n := range content {
		switch n := n.(type) {
		case Text:
			out = append(out, wireNode{Type: "text", Value: n.Value})
		case Bold:
			out = append(out, wireNode{Type: "bold", Content: inlinesToWire(n.Content)})
		case Italic:
			out = append(out, wireNode{Type: "italic", Content: inlinesToWire(n.Content)})
		case Underline:
			out = append(out, wireNode{Type: "underline", Content: inlinesToWire(n.Content)})
		case Strike:
			out = append(out, wireNode{Type: "strike", Content: inlinesToWire(n.Content)})
		case Image:
			out = append(out, wireNode{Type: "image", Src: n.Src, Alt: n.Alt})
		case Anchor:
			out = append(out, wireNode{Type: "anchor", Href: n.Href.String(), Content: inlinesToWire(n.Content)})
		case LineBreak:
			out = append(out, wireNode{Type: "line_break"})
		}
	}
	return out
}

func blockFromWire(n wireNode) (Block, error) {
	switch n.Type {
	case "paragraph":
		content, err := inlinesFromWire(n.Content)
		return Paragraph{Content: content}, err
	case "heading":
		content, err := inlinesFromWire(n.Content)
		return Heading{Level: n.Level, Content: content}, err
	case "list":
		items := make([][]Block, 0, len(n.Items))
		for _, item := range n.Items {
			blocks := make([]Block, 0, len(item))
			for _, child := range item {
				b, err := blockFromWire(child)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, b)
			}
			items = append(items, blocks)
		}
		return List{Ordered: n.Ordered, Items: items}, nil
	case "horizontal_rule":
		return HorizontalRule{}, nil
	default:
		return nil, fmt.Errorf("rich text: unknown block type %q", n.Type)
	}
}

func inlinesFromWire(nodes []wireNode) ([]Inline, error) {
	out := make([]Inline, 0, len(nodes))
	for _, n := range nodes {
		var content []Inline
		if len(n.Content) > 0 {
			var err error
			if content, err = inlinesFromWire(n.Content); err != nil {
				return nil, err
			}
		}
		switch n.Type {
		case "text":
			out = append(out, Text{Value: n.Value})
		case "bold":
			out = append(out, Bold{Content: content})
		case "italic":
			out = append(out, Italic{Content: content})
		case "underline":
			out = append(out, Underline{Content: content})
		case "strike":
			out = append(out, Strike{Content: content})
		case "image":
			out = append(out, Image{Src: n.Src, Alt: n.Alt})
		case "anchor":
			out = append(out, Anchor{Href: ParseHref(n.Href), Content: content})
		case "line_break":
			out = append(out, LineBreak{})
		default:
			return nil, fmt.Errorf("rich text: unknown inline type %q", n.Type)
		}
	}
	return out, nil
}
