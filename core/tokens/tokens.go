// Package tokens adapts verses, rich text and plain strings into indexed
// token sequences the query evaluator can match against.
package tokens

import (
	"slices"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
)

// Context is an indexed token sequence. Text is already case-folded.
type Context interface {
	Len() int
	Text(i int) string
	Strongs(i int) []bible.StrongsNumber
}

type token struct {
	text    string
	raw     string
	strongs []bible.StrongsNumber
}

// Sequence is the concrete token list every adapter produces.
type Sequence struct {
	tokens []token
}

// Len returns the number of tokens.
func (s *Sequence) Len() int { return len(s.tokens) }

// Text returns the lower-cased text of token i.
func (s *Sequence) Text(i int) string { return s.tokens[i].text }

// Raw returns token i as it appeared in the source, for display.
func (s *Sequence) Raw(i int) string { return s.tokens[i].raw }

// Strongs returns the lexical tags of token i, or nil.
func (s *Sequence) Strongs(i int) []bible.StrongsNumber { return s.tokens[i].strongs }

// NewVerseContext tokenises a verse. Token i is words[i]; its tags are the
// union of every link whose 1-based word range covers position i+1.
func NewVerseContext(words []string, links *bible.LinkEntry) *Sequence {
	s := &Sequence{tokens: make([]token, len(words))}
	for i, w := range words {
		s.tokens[i] = token{text: strings.ToLower(w), raw: w, strongs: links.TagsAt(i + 1)}
	}
	return s
}

// NewStringContext tokenises a plain title: whitespace split, characters
// that are not letters or digits removed, case folded. Words that strip to
// nothing remain as empty tokens so positions line up with the source.
func NewStringContext(s string) *Sequence {
	fields := strings.Fields(s)
	seq := &Sequence{tokens: make([]token, len(fields))}
	for i, f := range fields {
		seq.tokens[i] = token{text: strings.ToLower(strings.Map(keepAlnum, f)), raw: f}
	}
	return seq
}

func keepAlnum(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return r
	}
	return -1
}

// NewRichTextContext flattens a document depth-first. Text nodes are split
// on whitespace; every word inherits the Strong's numbers of all enclosing
// Strong's anchors.
func NewRichTextContext(doc richtext.Document) *Sequence {
	f := &flattener{}
	for _, b := range doc {
		f.block(b)
	}
	return &Sequence{tokens: f.tokens}
}

type flattener struct {
	tokens []token
}

func (f *flattener) block(b richtext.Block) {
	switch b := b.(type) {
	case richtext.Paragraph:
		f.inlines(b.Content, nil)
	case richtext.Heading:
		f.inlines(b.Content, nil)
	case richtext.List:
		for _, item := range b.Items {
			for _, child := range item {
				f.block(child)
			}
		}
	}
}

func (f *flattener) inlines(content []richtext.Inline, tags []bible.StrongsNumber) {
	for _, n := range content {
		switch n := n.(type) {
		case richtext.Text:
			for _, w := range strings.Fields(n.Value) {
				f.tokens = append(f.tokens, token{text: strings.ToLower(w), raw: w, strongs: tags})
			}
		case richtext.Bold:
			f.inlines(n.Content, tags)
		case richtext.Italic:
			f.inlines(n.Content, tags)
		case richtext.Underline:
			f.inlines(n.Content, tags)
		case richtext.Strike:
			f.inlines(n.Content, tags)
		case richtext.Anchor:
			inner := tags
			if n.Href.Kind == richtext.HrefStrongs && !slices.Contains(tags, n.Href.Strongs) {
				inner = append(slices.Clone(tags), n.Href.Strongs)
			}
			f.inlines(n.Content, inner)
		}
	}
}
