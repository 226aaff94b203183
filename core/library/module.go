// Package library holds the loaded study modules: bibles, lexical links,
// dictionaries, cross references, commentaries, notebooks, Strong's
// definitions and reading plans, and publishes them as one immutable
// snapshot once loading finishes.
package library

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
)

// ModuleKind is the variant of a module.
type ModuleKind string

const (
	KindBible        ModuleKind = "bible"
	KindStrongsLinks ModuleKind = "strongs_links"
	KindDictionary   ModuleKind = "dictionary"
	KindXRefs        ModuleKind = "xrefs"
	KindCommentary   ModuleKind = "commentary"
	KindNotebook     ModuleKind = "notebook"
	KindStrongsDefs  ModuleKind = "strongs_defs"
	KindReadings     ModuleKind = "readings"
)

// ModuleInfo is the descriptive header every module carries.
type ModuleInfo struct {
	ID          bible.ModuleID `json:"id"`
	Kind        ModuleKind     `json:"kind"`
	Name        string         `json:"name"`
	ShortName   string         `json:"short_name,omitempty"`
	Language    string         `json:"language,omitempty"`
	Description string         `json:"description,omitempty"`
	Hash        string         `json:"hash,omitempty"`
	Source      string         `json:"source,omitempty"`
}

// Module is the closed set of module variants.
type Module interface {
	Info() ModuleInfo
	meta() *ModuleInfo
}

// Word is one verse word with the punctuation that surrounds it.
type Word struct {
	Text      string `json:"text"`
	BeginPunc string `json:"begin_punc,omitempty"`
	EndPunc   string `json:"end_punc,omitempty"`
}

// Verse is the text of one verse.
type Verse struct {
	ID    bible.VerseID `json:"id"`
	Words []Word        `json:"words"`
}

// Texts returns the bare word texts.
func (v *Verse) Texts() []string {
	out := make([]string, len(v.Words))
	for i, w := range v.Words {
		out[i] = w.Text
	}
	return out
}

// String renders the verse text with punctuation.
func (v *Verse) String() string {
	parts := make([]string, len(v.Words))
	for i, w := range v.Words {
		parts[i] = w.BeginPunc + w.Text + w.EndPunc
	}
	return strings.Join(parts, " ")
}

// SplitWords turns verse text into words, peeling leading and trailing
// punctuation off each whitespace-separated field. Fields that are only
// punctuation attach to the previous word.
func SplitWords(text string) []Word {
	var words []Word
	for _, field := range strings.Fields(text) {
		begin, core, end := splitPunct(field)
		if core == "" {
			if len(words) > 0 {
				words[len(words)-1].EndPunc += " " + field
			}
			continue
		}
		words = append(words, Word{Text: core, BeginPunc: begin, EndPunc: end})
	}
	return words
}

func splitPunct(field string) (begin, core, end string) {
	start := strings.IndexFunc(field, isAlnum)
	if start < 0 {
		return "", "", field
	}
	last := strings.LastIndexFunc(field, isAlnum)
	_, size := utf8.DecodeRuneInString(field[last:])
	stop := last + size
	return field[:start], field[start:stop], field[stop:]
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// BibleModule is a translation: its canon and verse texts.
type BibleModule struct {
	Meta   ModuleInfo
	Canon  *bible.Canon
	Verses map[bible.VerseID]*Verse
}

// StrongsLinksModule overlays lexical tags onto one bible's words.
type StrongsLinksModule struct {
	Meta  ModuleInfo
	Bible bible.ModuleID
	Links map[bible.VerseID]*bible.LinkEntry
}

// DictionaryEntry is one dictionary article.
type DictionaryEntry struct {
	Term       string            `json:"term"`
	Aliases    []string          `json:"aliases,omitempty"`
	Definition richtext.Document `json:"definition"`
}

// DictionaryModule is a topical or word dictionary.
type DictionaryModule struct {
	Meta    ModuleInfo
	Entries []DictionaryEntry
}

// XRefKind distinguishes the two cross-reference shapes.
type XRefKind string

const (
	XRefDirected XRefKind = "directed"
	XRefMutual   XRefKind = "mutual"
)

// XRefEntry is a directed (source to targets) or mutual cross reference.
type XRefEntry struct {
	Kind    XRefKind
	Source  bible.RefID
	Targets []bible.RefID
	Refs    []bible.RefID
	Note    richtext.Document
}

// References returns every reference of the entry, source first.
func (e *XRefEntry) References() []bible.RefID {
	if e.Kind == XRefDirected {
		return append([]bible.RefID{e.Source}, e.Targets...)
	}
	return e.Refs
}

// XRefModule is a set of cross references.
type XRefModule struct {
	Meta    ModuleInfo
	Entries []XRefEntry
}

// CommentaryEntry comments on one or more passages.
type CommentaryEntry struct {
	References []bible.RefID
	Comment    richtext.Document
}

// CommentaryModule is a verse commentary.
type CommentaryModule struct {
	Meta    ModuleInfo
	Entries []CommentaryEntry
}

// NoteKind distinguishes notebook entries.
type NoteKind string

const (
	NoteKindNote      NoteKind = "note"
	NoteKindHighlight NoteKind = "highlight"
)

// NotebookEntry is a user note or highlight. Notes use Content; highlights
// use Description, Priority and Color. Name is optional for notes.
type NotebookEntry struct {
	Kind        NoteKind
	Name        string
	Content     richtext.Document
	Description richtext.Document
	Priority    int
	Color       string
	References  []bible.RefID
}

// NotebookModule is a user notebook.
type NotebookModule struct {
	Meta    ModuleInfo
	Entries []NotebookEntry
}

// StrongsDef is one lexicon entry.
type StrongsDef struct {
	Strongs    bible.StrongsNumber
	Word       string
	Definition richtext.Document
}

// StrongsDefsModule is a Strong's lexicon.
type StrongsDefsModule struct {
	Meta    ModuleInfo
	Entries []StrongsDef
}

// Reading is one day of a reading plan.
type Reading struct {
	Index    int
	Readings []bible.RefID
}

// ReadingsModule is a reading plan. It is never searched.
type ReadingsModule struct {
	Meta    ModuleInfo
	Entries []Reading
}

func (m *BibleModule) Info() ModuleInfo        { return m.Meta }
func (m *StrongsLinksModule) Info() ModuleInfo { return m.Meta }
func (m *DictionaryModule) Info() ModuleInfo   { return m.Meta }
func (m *XRefModule) Info() ModuleInfo         { return m.Meta }
func (m *CommentaryModule) Info() ModuleInfo   { return m.Meta }
func (m *NotebookModule) Info() ModuleInfo     { return m.Meta }
func (m *StrongsDefsModule) Info() ModuleInfo  { return m.Meta }
func (m *ReadingsModule) Info() ModuleInfo     { return m.Meta }

func (m *BibleModule) meta() *ModuleInfo        { return &m.Meta }
func (m *StrongsLinksModule) meta() *ModuleInfo { return &m.Meta }
func (m *DictionaryModule) meta() *ModuleInfo   { return &m.Meta }
func (m *XRefModule) meta() *ModuleInfo         { return &m.Meta }
func (m *CommentaryModule) meta() *ModuleInfo   { return &m.Meta }
func (m *NotebookModule) meta() *ModuleInfo     { return &m.Meta }
func (m *StrongsDefsModule) meta() *ModuleInfo  { return &m.Meta }
func (m *ReadingsModule) meta() *ModuleInfo     { return &m.Meta }
