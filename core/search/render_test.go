package search_test

import (
	"testing"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/query"
	"github.com/FocuswithJustin/JuniperStudy/core/search"
	"github.com/FocuswithJustin/JuniperStudy/core/tokens"
	"github.com/FocuswithJustin/JuniperStudy/internal/testlib"
)

func TestHighlight(t *testing.T) {
	links := &bible.LinkEntry{Words: []bible.LinkWord{
		{WordRange: bible.WordRange{Start: 4, End: 4}, Strongs: []bible.StrongsNumber{bible.MustStrongs("H430")}},
		{WordRange: bible.WordRange{Start: 5, End: 5}, Strongs: []bible.StrongsNumber{bible.MustStrongs("H1254")}},
	}}
	ctx := tokens.NewVerseContext([]string{"In", "the", "beginning", "God", "created", "the", "heaven"}, links)
	root := query.MustParse("H430 the NOT heaven")

	marks := search.Highlight(root, []int{1, 3, 4, 6}, ctx)
	tests := []struct {
		index   int
		word    bool
		strongs string
	}{
		{0, false, ""},
		{1, true, ""},
		{3, false, "H430"},
		{4, false, ""},
		{5, false, ""}, // matches but is not one of the hit's positions
		{6, true, ""},  // leaves under NOT still highlight
	}
	for _, tt := range tests {
		m := marks[tt.index]
		got := ""
		if len(m.Strongs) > 0 {
			got = m.Strongs[0].String()
		}
		if m.Word != tt.word || got != tt.strongs {
			t.Errorf("marks[%d] = %+v, want word %v strongs %q", tt.index, m, tt.word, tt.strongs)
		}
	}

	if marks := search.Highlight(nil, []int{0, 1}, ctx); marks[0].Word || marks[1].Word {
		t.Error("nil root should mark nothing")
	}
	if marks := search.Highlight(root, []int{-1, 99}, ctx); len(marks) != ctx.Len() {
		t.Errorf("len(marks) = %d, want %d", len(marks), ctx.Len())
	}
}

func renderOne(t *testing.T, text string, mode search.Mode, showStrongs bool, id bible.ModuleID) []search.Rendered {
	t.Helper()
	lib := testlib.Library()
	q := mustQuery(t, lib, text)
	hits, err := search.Engine{}.Search(lib, []bible.ModuleID{id}, q, mode)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	page, err := search.Paginate(hits, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	rendered, err := search.RenderPage(page, search.TextRenderer{Lib: lib, Root: q.Root, ShowStrongs: showStrongs})
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	return rendered
}

func TestTextRenderer(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		mode        search.Mode
		showStrongs bool
		module      bible.ModuleID
		wantTitle   string
		wantText    string
	}{
		{
			"verse word", "1 John 4:8 :: god", search.ModeBody, false, testlib.KJV,
			"1 John 4:8 (KJV)", "He that loveth not knoweth not [God]; for [God] is love.",
		},
		{
			"only hit positions", "1 John 4:8 :: god OR love", search.ModeBody, false, testlib.KJV,
			"1 John 4:8 (KJV)", "He that loveth not knoweth not [God]; for [God] is love.",
		},
		{
			"verse strongs", "1 John 4:8 :: G26", search.ModeBody, false, testlib.KJV,
			"1 John 4:8 (KJV)", "He that loveth not knoweth not God; for God is love{[G26]}.",
		},
		{
			"verse all strongs", "1 John 4:8 :: G26", search.ModeBody, true, testlib.KJV,
			"1 John 4:8 (KJV)", "He that loveth{G25} not knoweth not God; for God is love{[G26]}.",
		},
		{
			"dictionary", "love", search.ModeTitleAndBody, false, testlib.Dictionary,
			"[Love] (Easton's Bible Dictionary)", "[Love] is the fulfilling of the law.",
		},
		{
			"dictionary anchor", "G3056", search.ModeBody, false, testlib.Dictionary,
			"Word (Easton's Bible Dictionary)", "The Logos{[G3056]} of God.",
		},
		{
			"directed xref", "John 1:1 :: word", search.ModeBody, false, testlib.XRefs,
			"John.1.1 -> Gen.1.1; 1John.1.1 (Treasury of Scripture Knowledge)", "In the beginning the [Word]",
		},
		{
			"commentary browse", "Gen 1 ::", search.ModeBody, false, testlib.Commentary,
			"Gen.1.1-Gen.1.3 (Matthew Henry's Commentary)", "The first verse of the Bible gives us an account of creation.",
		},
		{
			"highlight", "1 John 4 :: love", search.ModeTitle, false, testlib.Notebook,
			"[Love] (My Notes)", "The nature of God",
		},
		{
			"lexicon", "benevolence", search.ModeBody, false, testlib.Lexicon,
			"G26 agape (Strong's Greek)", "love, affection, [benevolence]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := renderOne(t, tt.query, tt.mode, tt.showStrongs, tt.module)
			if len(rendered) != 1 {
				t.Fatalf("rendered %d hits, want 1", len(rendered))
			}
			if rendered[0].Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", rendered[0].Title, tt.wantTitle)
			}
			if rendered[0].Text != tt.wantText {
				t.Errorf("Text = %q, want %q", rendered[0].Text, tt.wantText)
			}
		})
	}
}

func TestTextRendererErrors(t *testing.T) {
	lib := testlib.Library()
	r := search.TextRenderer{Lib: lib, Root: query.NewWord("love")}

	tests := []struct {
		name    string
		group   search.Group
		wantErr error
	}{
		{"unknown module", search.Group{Module: "nope", Hits: []search.Hit{{Module: "nope"}}}, errors.ErrNotFound},
		{"entry out of range", search.Group{Module: testlib.Dictionary, Hits: []search.Hit{{Module: testlib.Dictionary, Entry: 42}}}, errors.ErrNotFound},
		{"verse without text", search.Group{Module: testlib.KJV, Hits: []search.Hit{{Module: testlib.KJV, Entry: -1, Verse: &bible.VerseID{Book: bible.Jude, Chapter: 1, Verse: 1}}}}, errors.ErrNotFound},
		{"bible hit without verse", search.Group{Module: testlib.KJV, Hits: []search.Hit{{Module: testlib.KJV, Entry: -1}}}, errors.ErrInternal},
		{"readings", search.Group{Module: testlib.Readings, Hits: []search.Hit{{Module: testlib.Readings}}}, errors.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.RenderGroup(tt.group); !errors.Is(err, tt.wantErr) {
				t.Errorf("RenderGroup error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
