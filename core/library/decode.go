package library

import (
	"encoding/json"
	"fmt"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
)

// moduleFile is the JSON module format. Header fields are shared; the rest
// depends on kind. References are OSIS strings ("Gen.1.1", "Matt.5.3-12")
// against the module named by "bible" (or the module itself for bibles).
//
//	{"id":"kjv","kind":"bible","name":"King James Version","short_name":"KJV",
//	 "books":[{"osis":"Gen","name":"Genesis","chapters":[31,25]}],
//	 "aliases":{"sng":"Song"},
//	 "verses":[{"ref":"Gen.1.1","text":"In the beginning God created ..."}]}
type moduleFile struct {
	ID          bible.ModuleID        `json:"id"`
	Kind        ModuleKind            `json:"kind"`
	Name        string                `json:"name"`
	ShortName   string                `json:"short_name"`
	Language    string                `json:"language"`
	Description string                `json:"description"`
	Bible       bible.ModuleID        `json:"bible"`
	Books       []bible.BookInfo      `json:"books"`
	Aliases     map[string]bible.Book `json:"aliases"`
	Verses      []verseJSON           `json:"verses"`
	Links       []linkJSON            `json:"links"`
	Entries     json.RawMessage       `json:"entries"`
}

type verseJSON struct {
	Ref   string `json:"ref"`
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

type linkJSON struct {
	Ref   string           `json:"ref"`
	Words []bible.LinkWord `json:"words"`
}

type xrefJSON struct {
	Kind    XRefKind          `json:"kind"`
	Source  string            `json:"source"`
	Targets []string          `json:"targets"`
	Refs    []string          `json:"refs"`
	Note    richtext.Document `json:"note"`
}

type commentaryJSON struct {
	Refs    []string          `json:"refs"`
	Comment richtext.Document `json:"comment"`
}

type noteJSON struct {
	Kind        NoteKind          `json:"kind"`
	Name        string            `json:"name"`
	Content     richtext.Document `json:"content"`
	Description richtext.Document `json:"description"`
	Priority    int               `json:"priority"`
	Color       string            `json:"color"`
	Refs        []string          `json:"refs"`
}

type strongsDefJSON struct {
	Strongs    bible.StrongsNumber `json:"strongs"`
	Word       string              `json:"word"`
	Definition richtext.Document   `json:"definition"`
}

type readingJSON struct {
	Index int      `json:"index"`
	Refs  []string `json:"refs"`
}

// DecodeModule decodes one JSON module. source names the file in errors.
func DecodeModule(data []byte, source string) (Module, error) {
	var f moduleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &errors.ParseError{Format: "module JSON", Path: source, Message: err.Error(), Err: err}
	}
	if f.ID == "" {
		return nil, errors.NewParse("module JSON", source, "missing id")
	}

	info := ModuleInfo{
		ID:          f.ID,
		Kind:        f.Kind,
		Name:        f.Name,
		ShortName:   f.ShortName,
		Language:    f.Language,
		Description: f.Description,
		Source:      source,
	}
	d := decoder{source: source, bible: f.Bible}

	switch f.Kind {
	case KindBible:
		d.bible = f.ID
		return d.bibleModule(info, &f)
	case KindStrongsLinks:
		return d.linksModule(info, &f)
	case KindDictionary:
		m := &DictionaryModule{Meta: info}
		return m, d.entries(f.Entries, &m.Entries)
	case KindXRefs:
		var raw []xrefJSON
		if err := d.entries(f.Entries, &raw); err != nil {
			return nil, err
		}
		m := &XRefModule{Meta: info}
		for i, e := range raw {
			entry, err := d.xref(i, e)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, entry)
		}
		return m, nil
	case KindCommentary:
		var raw []commentaryJSON
		if err := d.entries(f.Entries, &raw); err != nil {
			return nil, err
		}
		m := &CommentaryModule{Meta: info}
		for i, e := range raw {
			refs, err := d.refs(i, e.Refs)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, CommentaryEntry{References: refs, Comment: e.Comment})
		}
		return m, nil
	case KindNotebook:
		var raw []noteJSON
		if err := d.entries(f.Entries, &raw); err != nil {
			return nil, err
		}
		m := &NotebookModule{Meta: info}
		for i, e := range raw {
			entry, err := d.note(i, e)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, entry)
		}
		return m, nil
	case KindStrongsDefs:
		var raw []strongsDefJSON
		if err := d.entries(f.Entries, &raw); err != nil {
			return nil, err
		}
		m := &StrongsDefsModule{Meta: info}
		for _, e := range raw {
			m.Entries = append(m.Entries, StrongsDef(e))
		}
		return m, nil
	case KindReadings:
		var raw []readingJSON
		if err := d.entries(f.Entries, &raw); err != nil {
			return nil, err
		}
		m := &ReadingsModule{Meta: info}
		for i, e := range raw {
			refs, err := d.refs(i, e.Refs)
			if err != nil {
				return nil, err
			}
			index := e.Index
			if index == 0 {
				index = i + 1
			}
			m.Entries = append(m.Entries, Reading{Index: index, Readings: refs})
		}
		return m, nil
	case "":
		return nil, errors.NewParse("module JSON", source, "missing kind")
	default:
		return nil, errors.NewUnsupported("module kind", string(f.Kind))
	}
}

type decoder struct {
	source string
	bible  bible.ModuleID
}

func (d decoder) fail(format string, args ...any) error {
	return errors.NewParse("module JSON", d.source, fmt.Sprintf(format, args...))
}

func (d decoder) entries(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return &errors.ParseError{Format: "module JSON", Path: d.source, Message: "entries: " + err.Error(), Err: err}
	}
	return nil
}

func (d decoder) ref(s string) (bible.RefID, error) {
	if d.bible == "" {
		return bible.RefID{}, d.fail("reference %q needs a \"bible\" field", s)
	}
	r, err := bible.ParseOSISRef(s, d.bible)
	if err != nil {
		return bible.RefID{}, d.fail("%v", err)
	}
	return r, nil
}

func (d decoder) refs(entry int, raw []string) ([]bible.RefID, error) {
	out := make([]bible.RefID, 0, len(raw))
	for _, s := range raw {
		r, err := d.ref(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", entry, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (d decoder) verseID(s string) (bible.VerseID, error) {
	a, err := bible.ParseOSIS(s)
	if err != nil {
		return bible.VerseID{}, d.fail("%v", err)
	}
	if a.Kind != bible.AtomVerse {
		return bible.VerseID{}, d.fail("%q is not a verse reference", s)
	}
	return a.Start(), nil
}

func (d decoder) bibleModule(info ModuleInfo, f *moduleFile) (*BibleModule, error) {
	m := &BibleModule{Meta: info, Verses: make(map[bible.VerseID]*Verse, len(f.Verses))}
	for _, v := range f.Verses {
		id, err := d.verseID(v.Ref)
		if err != nil {
			return nil, err
		}
		if _, dup := m.Verses[id]; dup {
			return nil, d.fail("duplicate verse %s", id)
		}
		words := v.Words
		if words == nil {
			words = SplitWords(v.Text)
		}
		m.Verses[id] = &Verse{ID: id, Words: words}
	}

	books := f.Books
	if len(books) == 0 {
		books = CanonFromVerses(m.Verses)
	}
	m.Canon = bible.NewCanon(books, f.Aliases)
	return m, nil
}

func (d decoder) linksModule(info ModuleInfo, f *moduleFile) (*StrongsLinksModule, error) {
	if f.Bible == "" {
		return nil, d.fail("strongs_links module needs a \"bible\" field")
	}
	m := &StrongsLinksModule{Meta: info, Bible: f.Bible, Links: make(map[bible.VerseID]*bible.LinkEntry, len(f.Links))}
	for _, l := range f.Links {
		id, err := d.verseID(l.Ref)
		if err != nil {
			return nil, err
		}
		entry, ok := m.Links[id]
		if !ok {
			entry = &bible.LinkEntry{Verse: id}
			m.Links[id] = entry
		}
		for _, w := range l.Words {
			if w.End == 0 {
				w.End = w.Start
			}
			if w.Start < 1 || w.End < w.Start {
				return nil, d.fail("%s: invalid word range %d-%d", l.Ref, w.Start, w.End)
			}
			entry.Words = append(entry.Words, w)
		}
	}
	return m, nil
}

func (d decoder) xref(i int, e xrefJSON) (XRefEntry, error) {
	entry := XRefEntry{Kind: e.Kind, Note: e.Note}
	if entry.Kind == "" {
		entry.Kind = XRefDirected
		if e.Source == "" {
			entry.Kind = XRefMutual
		}
	}
	switch entry.Kind {
	case XRefDirected:
		src, err := d.ref(e.Source)
		if err != nil {
			return XRefEntry{}, fmt.Errorf("entry %d: %w", i, err)
		}
		entry.Source = src
		if entry.Targets, err = d.refs(i, e.Targets); err != nil {
			return XRefEntry{}, err
		}
	case XRefMutual:
		var err error
		if entry.Refs, err = d.refs(i, e.Refs); err != nil {
			return XRefEntry{}, err
		}
	default:
		return XRefEntry{}, d.fail("entry %d: unknown cross reference kind %q", i, e.Kind)
	}
	return entry, nil
}

func (d decoder) note(i int, e noteJSON) (NotebookEntry, error) {
	refs, err := d.refs(i, e.Refs)
	if err != nil {
		return NotebookEntry{}, err
	}
	entry := NotebookEntry{
		Kind:        e.Kind,
		Name:        e.Name,
		Content:     e.Content,
		Description: e.Description,
		Priority:    e.Priority,
		Color:       e.Color,
		References:  refs,
	}
	switch entry.Kind {
	case "", NoteKindNote:
		entry.Kind = NoteKindNote
	case NoteKindHighlight:
		if entry.Name == "" {
			return NotebookEntry{}, d.fail("entry %d: highlight needs a name", i)
		}
	default:
		return NotebookEntry{}, d.fail("entry %d: unknown notebook entry kind %q", i, e.Kind)
	}
	return entry, nil
}

// CanonFromVerses derives book and chapter sizes from the verses present,
// for modules that ship text without versification tables.
func CanonFromVerses(verses map[bible.VerseID]*Verse) []bible.BookInfo {
	sizes := make(map[bible.Book][]int)
	for id := range verses {
		chapters := sizes[id.Book]
		for len(chapters) < id.Chapter {
			chapters = append(chapters, 0)
		}
		chapters[id.Chapter-1] = max(chapters[id.Chapter-1], id.Verse)
		sizes[id.Book] = chapters
	}
	books := make([]bible.BookInfo, 0, len(sizes))
	for b, chapters := range sizes {
		books = append(books, bible.BookInfo{Book: b, Chapters: chapters})
	}
	return books
}
