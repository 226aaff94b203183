package tokens

import (
	"slices"
	"testing"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
)

func texts(c Context) []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Text(i)
	}
	return out
}

func tags(c Context, i int) []string {
	var out []string
	for _, s := range c.Strongs(i) {
		out = append(out, s.String())
	}
	return out
}

func TestVerseContext(t *testing.T) {
	links := &bible.LinkEntry{
		Verse: bible.VerseID{Book: bible.Gen, Chapter: 1, Verse: 1},
		Words: []bible.LinkWord{
			{WordRange: bible.WordRange{Start: 1, End: 3}, Strongs: []bible.StrongsNumber{bible.MustStrongs("H7225")}},
			{WordRange: bible.WordRange{Start: 4, End: 4}, Strongs: []bible.StrongsNumber{bible.MustStrongs("H430")}},
			{WordRange: bible.WordRange{Start: 4, End: 5}, Strongs: []bible.StrongsNumber{bible.MustStrongs("H1254")}},
		},
	}
	ctx := NewVerseContext([]string{"In", "the", "beginning", "God", "created"}, links)

	if got, want := texts(ctx), []string{"in", "the", "beginning", "god", "created"}; !slices.Equal(got, want) {
		t.Errorf("texts = %v, want %v", got, want)
	}

	tests := []struct {
		index int
		want  []string
	}{
		{0, []string{"H7225"}},
		{2, []string{"H7225"}},
		{3, []string{"H430", "H1254"}},
		{4, []string{"H1254"}},
	}
	for _, tt := range tests {
		if got := tags(ctx, tt.index); !slices.Equal(got, tt.want) {
			t.Errorf("Strongs(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}

	plain := NewVerseContext([]string{"Jesus", "wept"}, nil)
	if plain.Strongs(0) != nil {
		t.Error("verse without links should have untagged tokens")
	}
}

func TestStringContext(t *testing.T) {
	ctx := NewStringContext("  Love's  Labour, -- (Lost) 2x ")
	want := []string{"loves", "labour", "", "lost", "2x"}
	if got := texts(ctx); !slices.Equal(got, want) {
		t.Errorf("texts = %q, want %q", got, want)
	}
	if ctx.Strongs(0) != nil {
		t.Error("string context should never carry tags")
	}
	if got := ctx.Raw(3); got != "(Lost)" {
		t.Errorf("Raw(3) = %q, want %q", got, "(Lost)")
	}

	if NewStringContext("").Len() != 0 {
		t.Error("empty string should produce no tokens")
	}
}

func TestRichTextContext(t *testing.T) {
	g26 := richtext.Href{Kind: richtext.HrefStrongs, Strongs: bible.MustStrongs("G26")}
	g25 := richtext.Href{Kind: richtext.HrefStrongs, Strongs: bible.MustStrongs("G25")}

	doc := richtext.Document{
		richtext.Heading{Level: 1, Content: []richtext.Inline{richtext.Text{Value: "Agape"}}},
		richtext.Paragraph{Content: []richtext.Inline{
			richtext.Text{Value: "God is"},
			richtext.Anchor{Href: g26, Content: []richtext.Inline{
				richtext.Bold{Content: []richtext.Inline{richtext.Text{Value: "Love itself"}}},
				richtext.Anchor{Href: g25, Content: []richtext.Inline{richtext.Text{Value: "loved"}}},
			}},
			richtext.Image{Src: "x.png", Alt: "ignored"},
			richtext.LineBreak{},
			richtext.Anchor{Href: richtext.ParseHref("https://x"), Content: []richtext.Inline{richtext.Text{Value: "link"}}},
		}},
		richtext.HorizontalRule{},
		richtext.List{Items: [][]richtext.Block{
			{richtext.Paragraph{Content: []richtext.Inline{richtext.Italic{Content: []richtext.Inline{richtext.Text{Value: "item"}}}}}},
		}},
	}

	ctx := NewRichTextContext(doc)
	want := []string{"agape", "god", "is", "love", "itself", "loved", "link", "item"}
	if got := texts(ctx); !slices.Equal(got, want) {
		t.Fatalf("texts = %v, want %v", got, want)
	}

	tagTests := []struct {
		index int
		want  []string
	}{
		{1, nil},
		{3, []string{"G26"}},
		{4, []string{"G26"}},
		{5, []string{"G26", "G25"}},
		{6, nil},
		{7, nil},
	}
	for _, tt := range tagTests {
		if got := tags(ctx, tt.index); !slices.Equal(got, tt.want) {
			t.Errorf("Strongs(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestRichTextContextSiblingAnchorsDoNotLeak(t *testing.T) {
	doc := richtext.Document{richtext.Paragraph{Content: []richtext.Inline{
		richtext.Anchor{Href: richtext.ParseHref("strong:H1"), Content: []richtext.Inline{
			richtext.Anchor{Href: richtext.ParseHref("strong:H2"), Content: []richtext.Inline{richtext.Text{Value: "a"}}},
			richtext.Anchor{Href: richtext.ParseHref("strong:H3"), Content: []richtext.Inline{richtext.Text{Value: "b"}}},
			richtext.Text{Value: "c"},
		}},
	}}}
	ctx := NewRichTextContext(doc)

	want := [][]string{{"H1", "H2"}, {"H1", "H3"}, {"H1"}}
	for i, w := range want {
		if got := tags(ctx, i); !slices.Equal(got, w) {
			t.Errorf("Strongs(%d) = %v, want %v", i, got, w)
		}
	}
}
