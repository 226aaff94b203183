// Package richtext is the formatted-text model used for dictionary
// definitions, commentary, notes and cross-reference annotations.
package richtext

import (
	"strings"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
)

// Document is an ordered list of blocks.
type Document []Block

// Block is a paragraph-level node.
type Block interface{ block() }

// Inline is a run-level node.
type Inline interface{ inline() }

type (
	// Paragraph is a run of inline content.
	Paragraph struct{ Content []Inline }
	// Heading is a titled run; Level is 1-6.
	Heading struct {
		Level   int
		Content []Inline
	}
	// List holds items, each a sequence of blocks.
	List struct {
		Ordered bool
		Items   [][]Block
	}
	// HorizontalRule separates sections.
	HorizontalRule struct{}
)

func (Paragraph) block()      {}
func (Heading) block()        {}
func (List) block()           {}
func (HorizontalRule) block() {}

type (
	// Text is plain text.
	Text struct{ Value string }
	// Bold is strong emphasis.
	Bold struct{ Content []Inline }
	// Italic is emphasis.
	Italic struct{ Content []Inline }
	// Underline is underlined content.
	Underline struct{ Content []Inline }
	// Strike is struck-through content.
	Strike struct{ Content []Inline }
	// Image is an embedded picture; it carries no searchable text.
	Image struct{ Src, Alt string }
	// Anchor links its content somewhere.
	Anchor struct {
		Href    Href
		Content []Inline
	}
	// LineBreak is a hard break.
	LineBreak struct{}
)

func (Text) inline()      {}
func (Bold) inline()      {}
func (Italic) inline()    {}
func (Underline) inline() {}
func (Strike) inline()    {}
func (Image) inline()     {}
func (Anchor) inline()    {}
func (LineBreak) inline() {}

// HrefKind is the target type of an Anchor.
type HrefKind int

const (
	HrefURL HrefKind = iota
	HrefStrongs
	HrefRef
)

// Href is an anchor target.
type Href struct {
	Kind    HrefKind
	URL     string
	Strongs bible.StrongsNumber
	Ref     bible.RefID
}

// ParseHref interprets "strong:G26", "strongs:H430", "ref:John.3.16" or a
// plain URL. Malformed strong or ref targets fall back to URL.
func ParseHref(s string) Href {
	s = strings.TrimSpace(s)
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Href{Kind: HrefURL, URL: s}
	}
	switch strings.ToLower(scheme) {
	case "strong", "strongs":
		if n, err := bible.ParseStrongs(strings.TrimSpace(rest)); err == nil {
			return Href{Kind: HrefStrongs, Strongs: n}
		}
	case "ref", "osis":
		if r, err := bible.ParseOSISRef(rest, ""); err == nil {
			return Href{Kind: HrefRef, Ref: r}
		}
	}
	return Href{Kind: HrefURL, URL: s}
}

func (h Href) String() string {
	switch h.Kind {
	case HrefStrongs:
		return "strong:" + h.Strongs.String()
	case HrefRef:
		return "ref:" + h.Ref.String()
	default:
		return h.URL
	}
}

// Paragraphs builds a document of one plain paragraph per string.
func Paragraphs(texts ...string) Document {
	doc := make(Document, 0, len(texts))
	for _, t := range texts {
		doc = append(doc, Paragraph{Content: []Inline{Text{Value: t}}})
	}
	return doc
}

// PlainText flattens the document to text, one line per block.
func PlainText(doc Document) string {
	var sb strings.Builder
	for i, b := range doc {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeBlock(&sb, b)
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, b Block) {
	switch b := b.(type) {
	case Paragraph:
		writeInlines(sb, b.Content)
	case Heading:
		writeInlines(sb, b.Content)
	case List:
		for i, item := range b.Items {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString("- ")
			for j, child := range item {
				if j > 0 {
					sb.WriteByte(' ')
				}
				writeBlock(sb, child)
			}
		}
	case HorizontalRule:
		sb.WriteString("---")
	}
}

func writeInlines(sb *strings.Builder, content []Inline) {
	for _, n := range content {
		switch n := n.(type) {
		case Text:
			sb.WriteString(n.Value)
		case Bold:
			writeInlines(sb, n.Content)
		case Italic:
			writeInlines(sb, n.Content)
		case Underline:
			writeInlines(sb, n.Content)
		case Strike:
			writeInlines(sb, n.Content)
		case Anchor:
			writeInlines(sb, n.Content)
		case LineBreak:
			sb.WriteByte('\n')
		}
	}
}
