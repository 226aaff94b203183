// Package query implements the word-search query language: parsing text
// queries into a boolean tree, a tagged JSON form of the same tree, and
// evaluation against token contexts.
package query

import (
	"strings"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
)

// Part is a node of the query tree.
type Part interface{ part() }

type (
	// Or matches when any child matches; the first matching child wins.
	Or struct{ Parts []Part }
	// And matches when every child matches; positions are unioned.
	And struct{ Parts []Part }
	// Not matches, with no positions, when its child does not.
	Not struct{ Part Part }
	// Sequence matches children at consecutive positions.
	Sequence struct{ Parts []Part }
	// Strongs matches tokens tagged with Number.
	Strongs struct{ Number bible.StrongsNumber }
	// StartsWith matches tokens with the lower-cased Prefix.
	StartsWith struct{ Prefix string }
	// EndsWith matches tokens with the lower-cased Suffix.
	EndsWith struct{ Suffix string }
	// Word matches tokens equal to the lower-cased Text.
	Word struct{ Text string }
)

func (Or) part()         {}
func (And) part()        {}
func (Not) part()        {}
func (Sequence) part()   {}
func (Strongs) part()    {}
func (StartsWith) part() {}
func (EndsWith) part()   {}
func (Word) part()       {}

// NewWord returns a case-folded word leaf.
func NewWord(text string) Word { return Word{Text: strings.ToLower(text)} }

// NewStartsWith returns a case-folded prefix leaf.
func NewStartsWith(prefix string) StartsWith { return StartsWith{Prefix: strings.ToLower(prefix)} }

// NewEndsWith returns a case-folded suffix leaf.
func NewEndsWith(suffix string) EndsWith { return EndsWith{Suffix: strings.ToLower(suffix)} }

// String renders a compact debug form such as Or[Word(love), Not(Word(hate))].
func String(p Part) string {
	var sb strings.Builder
	writePart(&sb, p)
	return sb.String()
}

func writePart(sb *strings.Builder, p Part) {
	switch p := p.(type) {
	case Or:
		writeList(sb, "Or", p.Parts)
	case And:
		writeList(sb, "And", p.Parts)
	case Sequence:
		writeList(sb, "Seq", p.Parts)
	case Not:
		sb.WriteString("Not(")
		writePart(sb, p.Part)
		sb.WriteByte(')')
	case Strongs:
		sb.WriteString("Strongs(" + p.Number.String() + ")")
	case StartsWith:
		sb.WriteString("StartsWith(" + p.Prefix + ")")
	case EndsWith:
		sb.WriteString("EndsWith(" + p.Suffix + ")")
	case Word:
		sb.WriteString("Word(" + p.Text + ")")
	case nil:
		sb.WriteString("<empty>")
	}
}

func writeList(sb *strings.Builder, name string, parts []Part) {
	sb.WriteString(name)
	sb.WriteByte('[')
	for i, child := range parts {
		if i > 0 {
			sb.WriteString(", ")
		}
		writePart(sb, child)
	}
	sb.WriteByte(']')
}
