package richtext

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

// ParseXHTML converts a small XHTML fragment into a Document. Inline
// content outside any block element is gathered into implicit paragraphs.
// Unknown elements contribute their children.
func ParseXHTML(markup string) (Document, error) {
	root, err := xmlquery.Parse(strings.NewReader("<div>" + markup + "</div>"))
	if err != nil {
		return nil, &errors.ParseError{Format: "XHTML", Message: err.Error(), Err: err}
	}
	div := xmlquery.FindOne(root, "/div")
	if div == nil {
		return nil, errors.NewParse("XHTML", "", "empty fragment")
	}
	return blocksOf(div), nil
}

func blocksOf(parent *xmlquery.Node) Document {
	var doc Document
	var pending []Inline
	flush := func() {
		for len(pending) > 0 && isBlank(pending[0]) {
			pending = pending[1:]
		}
		for len(pending) > 0 && isBlank(pending[len(pending)-1]) {
			pending = pending[:len(pending)-1]
		}
		if len(pending) > 0 {
			doc = append(doc, Paragraph{Content: pending})
		}
		pending = nil
	}

	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			switch name := strings.ToLower(n.Data); name {
			case "p":
				flush()
				doc = append(doc, Paragraph{Content: inlinesOf(n)})
				continue
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				level, _ := strconv.Atoi(name[1:])
				doc = append(doc, Heading{Level: level, Content: inlinesOf(n)})
				continue
			case "ul", "ol":
				flush()
				doc = append(doc, listOf(n, name == "ol"))
				continue
			case "hr":
				flush()
				doc = append(doc, HorizontalRule{})
				continue
			case "div", "section", "blockquote":
				flush()
				doc = append(doc, blocksOf(n)...)
				continue
			}
		}
		pending = append(pending, inlineOf(n)...)
	}
	flush()
	return doc
}

func listOf(n *xmlquery.Node, ordered bool) List {
	list := List{Ordered: ordered}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type == xmlquery.ElementNode && strings.EqualFold(li.Data, "li") {
			list.Items = append(list.Items, []Block(blocksOf(li)))
		}
	}
	return list
}

func inlinesOf(parent *xmlquery.Node) []Inline {
	var out []Inline
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		out = append(out, inlineOf(n)...)
	}
	return out
}

func inlineOf(n *xmlquery.Node) []Inline {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		if n.Data == "" {
			return nil
		}
		return []Inline{Text{Value: n.Data}}
	case xmlquery.ElementNode:
	default:
		return nil
	}

	switch strings.ToLower(n.Data) {
	case "b", "strong":
		return []Inline{Bold{Content: inlinesOf(n)}}
	case "i", "em":
		return []Inline{Italic{Content: inlinesOf(n)}}
	case "u":
		return []Inline{Underline{Content: inlinesOf(n)}}
	case "s", "del", "strike":
		return []Inline{Strike{Content: inlinesOf(n)}}
	case "br":
		return []Inline{LineBreak{}}
	case "img":
		return []Inline{Image{Src: n.SelectAttr("src"), Alt: n.SelectAttr("alt")}}
	case "a":
		return []Inline{Anchor{Href: ParseHref(n.SelectAttr("href")), Content: inlinesOf(n)}}
	case "w":
		// OSIS-style word with a lemma attribute inside a definition.
		if lemma := n.SelectAttr("lemma"); lemma != "" {
			return []Inline{Anchor{Href: ParseHref(strings.Fields(lemma)[0]), Content: inlinesOf(n)}}
		}
	}
	return inlinesOf(n)
}

func isBlank(n Inline) bool {
	t, ok := n.(Text)
	return ok && strings.TrimSpace(t.Value) == ""
}
