package library

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
)

const bibleJSON = `{
	"id": "kjv", "kind": "bible", "name": "King James Version", "short_name": "KJV",
	"books": [{"osis": "Gen", "chapters": [31, 25]}, {"osis": "John", "name": "Jean", "chapters": [51]}],
	"aliases": {"Jn": "John"},
	"verses": [
		{"ref": "Gen.1.1", "text": "In the beginning God created the heaven and the earth."},
		{"ref": "John.1.1", "words": [{"text": "In"}, {"text": "the"}, {"text": "beginning", "end_punc": ","}]}
	]
}`

func TestDecodeBible(t *testing.T) {
	m, err := DecodeModule([]byte(bibleJSON), "kjv.json")
	if err != nil {
		t.Fatalf("DecodeModule failed: %v", err)
	}
	b, ok := m.(*BibleModule)
	if !ok {
		t.Fatalf("DecodeModule = %T, want *BibleModule", m)
	}
	if b.Meta.ShortName != "KJV" || b.Meta.Source != "kjv.json" {
		t.Errorf("Meta = %+v", b.Meta)
	}
	gen := b.Verses[bible.VerseID{Book: bible.Gen, Chapter: 1, Verse: 1}]
	if gen == nil || len(gen.Words) != 10 || gen.Words[9].EndPunc != "." {
		t.Errorf("Gen 1:1 = %+v", gen)
	}
	john := b.Verses[bible.VerseID{Book: bible.John, Chapter: 1, Verse: 1}]
	if john == nil || john.String() != "In the beginning," {
		t.Errorf("John 1:1 = %v", john)
	}
	if info, _ := b.Canon.Book(bible.John); info.Name != "Jean" {
		t.Errorf("John name = %q, want Jean", info.Name)
	}
	if b.Canon.VerseCount(bible.Gen, 2) != 25 {
		t.Errorf("VerseCount(Gen 2) = %d, want 25", b.Canon.VerseCount(bible.Gen, 2))
	}
	if b.Canon.Aliases()["jn"] != bible.John {
		t.Errorf("alias jn = %v, want John", b.Canon.Aliases()["jn"])
	}
}

func TestDecodeBibleDerivesCanon(t *testing.T) {
	m, err := DecodeModule([]byte(`{"id":"x","kind":"bible","verses":[{"ref":"Ruth.2.4","text":"a"}]}`), "x.json")
	if err != nil {
		t.Fatalf("DecodeModule failed: %v", err)
	}
	canon := m.(*BibleModule).Canon
	if canon.ChapterCount(bible.Ruth) != 2 || canon.VerseCount(bible.Ruth, 2) != 4 {
		t.Errorf("derived canon: chapters = %d, verses = %d", canon.ChapterCount(bible.Ruth), canon.VerseCount(bible.Ruth, 2))
	}
}

func TestDecodeLinks(t *testing.T) {
	input := `{"id":"kjv_strongs","kind":"strongs_links","bible":"kjv","links":[
		{"ref":"Gen.1.1","words":[{"start":1,"end":3,"strongs":["H7225"]},{"start":4,"strongs":["H0430"]}]},
		{"ref":"Gen.1.1","words":[{"start":4,"strongs":["H1254"]}]}
	]}`
	m, err := DecodeModule([]byte(input), "links.json")
	if err != nil {
		t.Fatalf("DecodeModule failed: %v", err)
	}
	links := m.(*StrongsLinksModule)
	if links.Bible != "kjv" {
		t.Errorf("Bible = %s, want kjv", links.Bible)
	}
	entry := links.Links[bible.VerseID{Book: bible.Gen, Chapter: 1, Verse: 1}]
	tags := entry.TagsAt(4)
	if len(tags) != 2 || tags[0].String() != "H430" || tags[1].String() != "H1254" {
		t.Errorf("TagsAt(4) = %v, want [H430 H1254]", tags)
	}
}

func TestDecodeEntries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, m Module)
	}{
		{
			"dictionary",
			`{"id":"d","kind":"dictionary","entries":[{"term":"Love","aliases":["Charity"],"definition":"<p>God is <b>love</b></p>"}]}`,
			func(t *testing.T, m Module) {
				e := m.(*DictionaryModule).Entries[0]
				if e.Term != "Love" || richtext.PlainText(e.Definition) != "God is love" {
					t.Errorf("entry = %+v", e)
				}
			},
		},
		{
			"xrefs",
			`{"id":"x","kind":"xrefs","bible":"kjv","entries":[
				{"source":"John.1.1","targets":["Gen.1.1","Gen.1.2-3"]},
				{"refs":["1John.4.8","1John.4.16"],"note":[{"type":"paragraph","content":[{"type":"text","value":"love"}]}]}
			]}`,
			func(t *testing.T, m Module) {
				x := m.(*XRefModule)
				if x.Entries[0].Kind != XRefDirected || len(x.Entries[0].Targets) != 2 || x.Entries[0].Targets[1].String() != "Gen.1.2-Gen.1.3" {
					t.Errorf("directed = %+v", x.Entries[0])
				}
				if x.Entries[1].Kind != XRefMutual || len(x.Entries[1].Refs) != 2 || x.Entries[1].Refs[0].Bible != "kjv" {
					t.Errorf("mutual = %+v", x.Entries[1])
				}
			},
		},
		{
			"commentary",
			`{"id":"c","kind":"commentary","bible":"kjv","entries":[{"refs":["John.3"],"comment":"<p>God so loved</p>"}]}`,
			func(t *testing.T, m Module) {
				e := m.(*CommentaryModule).Entries[0]
				if e.References[0].From.Kind != bible.AtomChapter {
					t.Errorf("ref = %v, want chapter atom", e.References[0])
				}
			},
		},
		{
			"notebook",
			`{"id":"n","kind":"notebook","bible":"kjv","entries":[
				{"content":"<p>note</p>","refs":["Gen.1.1"]},
				{"kind":"highlight","name":"Love","priority":2,"color":"red","refs":["1John.4.8"]}
			]}`,
			func(t *testing.T, m Module) {
				n := m.(*NotebookModule)
				if n.Entries[0].Kind != NoteKindNote || n.Entries[1].Kind != NoteKindHighlight || n.Entries[1].Priority != 2 {
					t.Errorf("entries = %+v", n.Entries)
				}
			},
		},
		{
			"strongs defs",
			`{"id":"s","kind":"strongs_defs","entries":[{"strongs":"G26","word":"agape","definition":"<p>love</p>"}]}`,
			func(t *testing.T, m Module) {
				e := m.(*StrongsDefsModule).Entries[0]
				if e.Strongs != bible.MustStrongs("G26") || e.Word != "agape" {
					t.Errorf("entry = %+v", e)
				}
			},
		},
		{
			"readings",
			`{"id":"r","kind":"readings","bible":"kjv","entries":[{"refs":["Gen.1"]},{"index":7,"refs":["John.1"]}]}`,
			func(t *testing.T, m Module) {
				r := m.(*ReadingsModule)
				if r.Entries[0].Index != 1 || r.Entries[1].Index != 7 {
					t.Errorf("entries = %+v", r.Entries)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeModule([]byte(tt.input), tt.name+".json")
			if err != nil {
				t.Fatalf("DecodeModule failed: %v", err)
			}
			tt.check(t, m)
		})
	}
}

func TestDecodeModuleErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"not json", `{`, errors.ErrInvalidInput, "module JSON"},
		{"missing id", `{"kind":"bible"}`, errors.ErrInvalidInput, "missing id"},
		{"missing kind", `{"id":"x"}`, errors.ErrInvalidInput, "missing kind"},
		{"unknown kind", `{"id":"x","kind":"hymnal"}`, errors.ErrUnsupported, "hymnal"},
		{"bad verse ref", `{"id":"x","kind":"bible","verses":[{"ref":"Gen.1","text":"a"}]}`, errors.ErrInvalidInput, "not a verse"},
		{"duplicate verse", `{"id":"x","kind":"bible","verses":[{"ref":"Gen.1.1"},{"ref":"Gen.1.1"}]}`, errors.ErrInvalidInput, "duplicate verse"},
		{"links without bible", `{"id":"x","kind":"strongs_links"}`, errors.ErrInvalidInput, "bible"},
		{"bad word range", `{"id":"x","kind":"strongs_links","bible":"kjv","links":[{"ref":"Gen.1.1","words":[{"start":3,"end":2}]}]}`, errors.ErrInvalidInput, "word range"},
		{"refs without bible", `{"id":"x","kind":"commentary","entries":[{"refs":["Gen.1.1"]}]}`, errors.ErrInvalidInput, "needs a"},
		{"bad ref", `{"id":"x","kind":"commentary","bible":"kjv","entries":[{"refs":["Nope.1.1"]}]}`, errors.ErrInvalidInput, "entry 0"},
		{"highlight without name", `{"id":"x","kind":"notebook","bible":"kjv","entries":[{"kind":"highlight"}]}`, errors.ErrInvalidInput, "needs a name"},
		{"unknown xref kind", `{"id":"x","kind":"xrefs","bible":"kjv","entries":[{"kind":"sideways","refs":[]}]}`, errors.ErrInvalidInput, "sideways"},
		{"entries not array", `{"id":"x","kind":"dictionary","entries":{}}`, errors.ErrInvalidInput, "entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeModule([]byte(tt.input), "x.json")
			if err == nil {
				t.Fatal("DecodeModule should fail")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

const osisXML = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="KJV" xml:lang="en">
    <header><work osisWork="KJV"><title>King James Version</title></work></header>
    <div type="book" osisID="Gen">
      <chapter osisID="Gen.1">
        <verse osisID="Gen.1.1"><w lemma="strong:H7225">In the beginning</w> <w lemma="strong:H0430">God</w> <w lemma="strong:H1254 lemma.TR:x">created</w> the heaven<note>a note</note> and the earth.</verse>
        <verse osisID="Gen.1.2">And the earth was without form.</verse>
      </chapter>
    </div>
  </osisText>
</osis>`

func TestDecodeOSIS(t *testing.T) {
	b, links, err := DecodeOSIS([]byte(osisXML), "kjv", "kjv.osis.xml")
	if err != nil {
		t.Fatalf("DecodeOSIS failed: %v", err)
	}
	if b.Meta.Name != "King James Version" || b.Meta.ShortName != "KJV" || b.Meta.Language != "en" {
		t.Errorf("Meta = %+v", b.Meta)
	}
	v := b.Verses[bible.VerseID{Book: bible.Gen, Chapter: 1, Verse: 1}]
	if v == nil || v.String() != "In the beginning God created the heaven and the earth." {
		t.Fatalf("Gen 1:1 = %v", v)
	}
	if b.Canon.VerseCount(bible.Gen, 1) != 2 {
		t.Errorf("VerseCount(Gen 1) = %d, want 2", b.Canon.VerseCount(bible.Gen, 1))
	}

	if links == nil || links.Meta.ID != "kjv_strongs" || links.Bible != "kjv" {
		t.Fatalf("links = %+v", links)
	}
	entry := links.Links[bible.VerseID{Book: bible.Gen, Chapter: 1, Verse: 1}]
	tests := []struct {
		word int
		want string
	}{
		{1, "H7225"}, {3, "H7225"}, {4, "H430"}, {5, "H1254"}, {6, ""},
	}
	for _, tt := range tests {
		tags := entry.TagsAt(tt.word)
		got := ""
		if len(tags) > 0 {
			got = tags[0].String()
		}
		if got != tt.want {
			t.Errorf("TagsAt(%d) = %v, want %s", tt.word, tags, tt.want)
		}
	}
	if _, ok := links.Links[bible.VerseID{Book: bible.Gen, Chapter: 1, Verse: 2}]; ok {
		t.Error("untagged verse should have no link entry")
	}
}

func TestDecodeOSISErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `<osis><verse osisID="Gen.1.1">x</wrong></osis>`},
		{"no verses", `<osis></osis>`},
		{"bad id", `<osis><verse osisID="Gen.1">x</verse></osis>`},
		{"duplicate", `<osis><verse osisID="Gen.1.1">x</verse><verse osisID="Gen.1.1">y</verse></osis>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeOSIS([]byte(tt.input), "x", "x.osis.xml"); !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("DecodeOSIS error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
