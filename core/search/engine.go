// Package search runs compiled word searches across the modules of a
// library and orders, pages and renders the hits.
package search

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/core/query"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
	"github.com/FocuswithJustin/JuniperStudy/core/tokens"
)

// Hit is one matching verse or entry. Bible hits have Entry == -1 and
// always carry Verse; entry hits carry the first verse they refer to, or
// nil when the entry has no location.
type Hit struct {
	Module    bible.ModuleID     `json:"module"`
	Kind      library.ModuleKind `json:"kind"`
	Entry     int                `json:"entry"`
	Verse     *bible.VerseID     `json:"verse,omitempty"`
	BodyHits  []int              `json:"body_hits"`
	TitleHits []int              `json:"title_hits"`
}

// Engine fans a query out over modules. Workers bounds the verse-scan
// parallelism; zero means GOMAXPROCS.
type Engine struct {
	Workers int
}

// Search evaluates q against the named modules and returns the hits in
// canonical order. An unknown module id fails the whole search.
func (e Engine) Search(lib *library.Library, ids []bible.ModuleID, q Query, mode Mode) ([]Hit, error) {
	modules := make([]library.Module, 0, len(ids))
	for _, id := range ids {
		m, err := lib.Module(id)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}

	var hits []Hit
	for _, m := range modules {
		switch m := m.(type) {
		case *library.BibleModule:
			hits = append(hits, e.searchBible(lib, m, q)...)
		case *library.DictionaryModule:
			for i, entry := range m.Entries {
				f := fields{title: entry.Term, hasTitle: true, body: entry.Definition, hasBody: true}
				hits = appendEntry(hits, m.Meta, i, nil, q.Root, f.forMode(mode), false)
			}
		case *library.StrongsDefsModule:
			for i, entry := range m.Entries {
				f := fields{body: entry.Definition, hasBody: true}
				hits = appendEntry(hits, m.Meta, i, nil, q.Root, f.forMode(mode), false)
			}
		case *library.XRefModule:
			for i, entry := range m.Entries {
				if !xrefInRange(entry, q.Ranges) {
					continue
				}
				f := fields{body: entry.Note, hasBody: entry.Note != nil}
				hits = appendEntry(hits, m.Meta, i, firstVerse(entry.References()), q.Root, f.forMode(mode), false)
			}
		case *library.CommentaryModule:
			for i, entry := range m.Entries {
				if !anyIntersects(q.Ranges, entry.References...) {
					continue
				}
				f := fields{body: entry.Comment, hasBody: true}
				hits = appendEntry(hits, m.Meta, i, firstVerse(entry.References), q.Root, f.forMode(mode), true)
			}
		case *library.NotebookModule:
			for i, entry := range m.Entries {
				if !anyIntersects(q.Ranges, entry.References...) {
					continue
				}
				var f fields
				switch entry.Kind {
				case library.NoteKindHighlight:
					f = fields{title: entry.Name, hasTitle: true, body: entry.Description, hasBody: entry.Description != nil}
				default:
					f = fields{title: entry.Name, hasTitle: entry.Name != "", body: entry.Content, hasBody: true}
				}
				hits = appendEntry(hits, m.Meta, i, firstVerse(entry.References), q.Root, f.forMode(mode), false)
			}
		case *library.ReadingsModule, *library.StrongsLinksModule:
		default:
			panic(fmt.Sprintf("search: unhandled module type %T", m))
		}
	}

	Sort(hits)
	return hits, nil
}

// fields are the searchable parts of an entry.
type fields struct {
	title    string
	hasTitle bool
	body     richtext.Document
	hasBody  bool
}

func (f fields) forMode(mode Mode) fields {
	f.hasTitle = f.hasTitle && mode.title()
	f.hasBody = f.hasBody && mode.body()
	return f
}

// appendEntry applies the entry rule: with includeEmpty a nil root admits
// the entry unconditionally; otherwise a nil root admits nothing and a
// match in either field admits the entry.
func appendEntry(hits []Hit, meta library.ModuleInfo, index int, verse *bible.VerseID, root query.Part, f fields, includeEmpty bool) []Hit {
	hit := Hit{Module: meta.ID, Kind: meta.Kind, Entry: index, Verse: verse, BodyHits: []int{}, TitleHits: []int{}}
	if root == nil {
		if includeEmpty {
			return append(hits, hit)
		}
		return hits
	}

	matched := false
	if f.hasTitle {
		if h, ok := query.Evaluate(root, tokens.NewStringContext(f.title)); ok {
			hit.TitleHits = nonNil(h)
			matched = true
		}
	}
	if f.hasBody {
		if h, ok := query.Evaluate(root, tokens.NewRichTextContext(f.body)); ok {
			hit.BodyHits = nonNil(h)
			matched = true
		}
	}
	if !matched {
		return hits
	}
	return append(hits, hit)
}

func xrefInRange(e library.XRefEntry, ranges []Range) bool {
	if e.Kind == library.XRefDirected {
		return anyIntersects(ranges, e.Source)
	}
	return anyIntersects(ranges, e.Refs...)
}

func firstVerse(refs []bible.RefID) *bible.VerseID {
	if len(refs) == 0 {
		return nil
	}
	v := refs[0].From.Start()
	return &v
}

func nonNil(h []int) []int {
	if h == nil {
		return []int{}
	}
	return h
}

// chunk is the unit of parallel verse scanning: the verses of one chapter
// that fall inside a range.
type chunk struct {
	verses []bible.VerseID
}

func (e Engine) searchBible(lib *library.Library, b *library.BibleModule, q Query) []Hit {
	if q.Root == nil {
		return nil
	}
	var chunks []chunk
	for _, r := range q.Ranges {
		if r.Bible != b.Meta.ID {
			continue
		}
		chunks = appendChapters(chunks, b.Canon, r)
	}
	if len(chunks) == 0 {
		return nil
	}

	links := lib.LinksFor(b.Meta.ID)
	scan := func(c chunk) []Hit {
		var out []Hit
		for _, id := range c.verses {
			verse, ok := b.Verses[id]
			if !ok {
				continue
			}
			var entry *bible.LinkEntry
			if links != nil {
				entry = links.Links[id]
			}
			h, ok := query.Evaluate(q.Root, tokens.NewVerseContext(verse.Texts(), entry))
			if !ok {
				continue
			}
			v := id
			out = append(out, Hit{Module: b.Meta.ID, Kind: library.KindBible, Entry: -1, Verse: &v, BodyHits: nonNil(h), TitleHits: []int{}})
		}
		return out
	}

	var hits []Hit
	for _, part := range RunAll(e.Workers, chunks, scan) {
		hits = append(hits, part...)
	}
	return hits
}

// appendChapters splits the verses of r into one chunk per chapter.
func appendChapters(chunks []chunk, canon *bible.Canon, r Range) []chunk {
	var cur chunk
	for v := range canon.Verses(r.Start, r.End) {
		if len(cur.verses) > 0 {
			last := cur.verses[len(cur.verses)-1]
			if last.Book != v.Book || last.Chapter != v.Chapter {
				chunks = append(chunks, cur)
				cur = chunk{}
			}
		}
		cur.verses = append(cur.verses, v)
	}
	if len(cur.verses) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}
