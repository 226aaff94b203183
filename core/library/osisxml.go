package library

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

var (
	verseExpr = xpath.MustCompile("//verse[@osisID]")
	titleExpr = xpath.MustCompile("//work/title")
)

// LinksSuffix is appended to a bible id to name its companion link module.
const LinksSuffix = "_strongs"

// DecodeOSIS reads an OSIS XML bible with container verses
// (<verse osisID="Gen.1.1">...</verse>). Words inside <w lemma="strong:H7225">
// elements are tagged; when any are, a companion lexical-link module named
// id+"_strongs" is returned alongside the bible.
func DecodeOSIS(data []byte, id bible.ModuleID, source string) (*BibleModule, *StrongsLinksModule, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &errors.ParseError{Format: "OSIS", Path: source, Message: err.Error(), Err: err}
	}

	info := ModuleInfo{ID: id, Kind: KindBible, Name: string(id), Source: source}
	if text := xmlquery.FindOne(doc, "//osisText"); text != nil {
		if work := text.SelectAttr("osisIDWork"); work != "" {
			info.ShortName = work
		}
		info.Language = attrLocal(text, "lang")
	}
	if title := xmlquery.QuerySelector(doc, titleExpr); title != nil {
		info.Name = strings.TrimSpace(title.InnerText())
	}

	b := &BibleModule{Meta: info, Verses: make(map[bible.VerseID]*Verse)}
	links := &StrongsLinksModule{
		Meta:  ModuleInfo{ID: id + LinksSuffix, Kind: KindStrongsLinks, Name: info.Name + " Strong's links", Source: source},
		Bible: id,
		Links: make(map[bible.VerseID]*bible.LinkEntry),
	}

	for _, node := range xmlquery.QuerySelectorAll(doc, verseExpr) {
		osisID := node.SelectAttr("osisID")
		// osisID may list several verses; the first names the container.
		first, _, _ := strings.Cut(strings.TrimSpace(osisID), " ")
		atom, err := bible.ParseOSIS(first)
		if err != nil || atom.Kind != bible.AtomVerse {
			return nil, nil, errors.NewParse("OSIS", source, "bad verse osisID "+osisID)
		}
		vid := atom.Start()
		if _, dup := b.Verses[vid]; dup {
			return nil, nil, errors.NewParse("OSIS", source, "duplicate verse "+vid.String())
		}

		w := &verseWalker{}
		w.walk(node)
		b.Verses[vid] = &Verse{ID: vid, Words: w.words}
		if len(w.links) > 0 {
			links.Links[vid] = &bible.LinkEntry{Verse: vid, Words: w.links}
		}
	}
	if len(b.Verses) == 0 {
		return nil, nil, errors.NewParse("OSIS", source, "no verses found")
	}
	b.Canon = bible.NewCanon(CanonFromVerses(b.Verses), nil)

	if len(links.Links) == 0 {
		return b, nil, nil
	}
	return b, links, nil
}

type verseWalker struct {
	words []Word
	links []bible.LinkWord
}

func (w *verseWalker) walk(parent *xmlquery.Node) {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			w.words = append(w.words, SplitWords(n.Data)...)
		case xmlquery.ElementNode:
			switch n.Data {
			case "note", "title":
				continue
			case "w":
				start := len(w.words)
				w.words = append(w.words, SplitWords(n.InnerText())...)
				tags := lemmaStrongs(n.SelectAttr("lemma"))
				if len(tags) > 0 && len(w.words) > start {
					w.links = append(w.links, bible.LinkWord{
						WordRange: bible.WordRange{Start: start + 1, End: len(w.words)},
						Strongs:   tags,
					})
				}
			default:
				w.walk(n)
			}
		}
	}
}

// attrLocal finds an attribute by local name, ignoring its namespace.
func attrLocal(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// lemmaStrongs extracts "strong:H7225" style values from a lemma attribute.
func lemmaStrongs(lemma string) []bible.StrongsNumber {
	var out []bible.StrongsNumber
	for _, field := range strings.Fields(lemma) {
		_, value, ok := strings.Cut(field, ":")
		if !ok || !strings.HasPrefix(strings.ToLower(field), "strong") {
			continue
		}
		if n, err := bible.ParseStrongs(value); err == nil {
			out = append(out, n)
		}
	}
	return out
}
