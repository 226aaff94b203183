package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/core/query"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
	"github.com/FocuswithJustin/JuniperStudy/core/tokens"
)

// Mark says how to display one token of a hit.
type Mark struct {
	Word    bool                  // the word itself matched
	Strongs []bible.StrongsNumber // matched lexical tags of the word
}

// Highlight marks the tokens of a hit. Only positions listed in indices
// can be marked; among those, a word is marked when some leaf of root
// would match it and a tag when root names it.
func Highlight(root query.Part, indices []int, ctx tokens.Context) []Mark {
	marks := make([]Mark, ctx.Len())
	if root == nil {
		return marks
	}
	for _, i := range indices {
		if i < 0 || i >= ctx.Len() {
			continue
		}
		marks[i].Word = query.ContainsWord(root, ctx.Text(i))
		for _, s := range ctx.Strongs(i) {
			if query.ContainsStrongs(root, s) {
				marks[i].Strongs = append(marks[i].Strongs, s)
			}
		}
	}
	return marks
}

// TextRenderer renders hits as plain text. Marked words are wrapped in
// brackets and marked Strong's numbers follow their word in braces:
// "[God]{[H430]}".
type TextRenderer struct {
	Lib  *library.Library
	Root query.Part
	// ShowStrongs prints every tag of a tagged word, not just marked ones.
	ShowStrongs bool
}

// RenderGroup implements Renderer.
func (r TextRenderer) RenderGroup(g Group) ([]Rendered, error) {
	m, err := r.Lib.Module(g.Module)
	if err != nil {
		return nil, err
	}
	out := make([]Rendered, 0, len(g.Hits))
	for _, h := range g.Hits {
		var rd Rendered
		if b, ok := m.(*library.BibleModule); ok {
			rd, err = r.verse(b, h)
		} else {
			rd, err = r.entry(m, h)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, nil
}

func (r TextRenderer) verse(b *library.BibleModule, h Hit) (Rendered, error) {
	if h.Verse == nil {
		return Rendered{}, errors.Wrapf(errors.ErrInternal, "bible hit in %s has no verse", b.Meta.ID)
	}
	v, ok := b.Verses[*h.Verse]
	if !ok {
		return Rendered{}, errors.NewNotFound("verse", h.Verse.String())
	}
	var links *bible.LinkEntry
	if l := r.Lib.LinksFor(b.Meta.ID); l != nil {
		links = l.Links[v.ID]
	}
	ctx := tokens.NewVerseContext(v.Texts(), links)
	marks := Highlight(r.Root, h.BodyHits, ctx)

	words := make([]string, len(v.Words))
	for i, w := range v.Words {
		words[i] = w.BeginPunc + r.word(w.Text, ctx.Strongs(i), marks[i]) + w.EndPunc
	}
	title := fmt.Sprintf("%s (%s)", v.ID.Display(), shortName(b.Meta))
	return Rendered{Hit: h, Title: title, Text: strings.Join(words, " ")}, nil
}

func (r TextRenderer) entry(m library.Module, h Hit) (Rendered, error) {
	title, body, err := entryFields(m, h.Entry)
	if err != nil {
		return Rendered{}, err
	}
	if len(h.TitleHits) > 0 {
		title = r.tokens(tokens.NewStringContext(title), h.TitleHits)
	}
	text := r.tokens(tokens.NewRichTextContext(body), h.BodyHits)
	return Rendered{Hit: h, Title: fmt.Sprintf("%s (%s)", title, shortName(m.Info())), Text: text}, nil
}

func (r TextRenderer) tokens(ctx *tokens.Sequence, indices []int) string {
	marks := Highlight(r.Root, indices, ctx)
	words := make([]string, ctx.Len())
	for i := range words {
		words[i] = r.word(ctx.Raw(i), ctx.Strongs(i), marks[i])
	}
	return strings.Join(words, " ")
}

func (r TextRenderer) word(text string, tags []bible.StrongsNumber, mark Mark) string {
	if mark.Word {
		text = "[" + text + "]"
	}
	var shown []string
	for _, s := range tags {
		switch {
		case slices.Contains(mark.Strongs, s):
			shown = append(shown, "["+s.String()+"]")
		case r.ShowStrongs:
			shown = append(shown, s.String())
		}
	}
	if len(shown) > 0 {
		text += "{" + strings.Join(shown, ";") + "}"
	}
	return text
}

func shortName(info library.ModuleInfo) string {
	if info.ShortName != "" {
		return info.ShortName
	}
	return info.Name
}

// entryFields returns the display title and body of entry i of m. Entries
// without a title of their own are titled by their references.
func entryFields(m library.Module, i int) (string, richtext.Document, error) {
	count := 0
	var title string
	var body richtext.Document
	switch m := m.(type) {
	case *library.DictionaryModule:
		if count = len(m.Entries); i >= 0 && i < count {
			title, body = m.Entries[i].Term, m.Entries[i].Definition
		}
	case *library.StrongsDefsModule:
		if count = len(m.Entries); i >= 0 && i < count {
			e := m.Entries[i]
			title, body = strings.TrimSpace(e.Strongs.String()+" "+e.Word), e.Definition
		}
	case *library.XRefModule:
		if count = len(m.Entries); i >= 0 && i < count {
			e := m.Entries[i]
			if e.Kind == library.XRefDirected {
				title = e.Source.String() + " -> " + refList(e.Targets)
			} else {
				title = refList(e.Refs)
			}
			body = e.Note
		}
	case *library.CommentaryModule:
		if count = len(m.Entries); i >= 0 && i < count {
			title, body = refList(m.Entries[i].References), m.Entries[i].Comment
		}
	case *library.NotebookModule:
		if count = len(m.Entries); i >= 0 && i < count {
			e := m.Entries[i]
			title = e.Name
			if title == "" {
				title = refList(e.References)
			}
			body = e.Content
			if e.Kind == library.NoteKindHighlight {
				body = e.Description
			}
		}
	default:
		return "", nil, errors.NewUnsupported("rendering", string(m.Info().Kind))
	}
	if i < 0 || i >= count {
		return "", nil, errors.NewNotFound("entry", fmt.Sprintf("%s#%d", m.Info().ID, i))
	}
	return title, body, nil
}

func refList(refs []bible.RefID) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, "; ")
}
