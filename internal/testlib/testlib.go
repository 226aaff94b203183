// Package testlib builds an in-memory library shared by package tests: a
// 66-book canon, two bibles, a lexical-link overlay and one module of every
// searchable kind.
package testlib

import (
	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
)

// Module ids of the fixture.
const (
	KJV        bible.ModuleID = "kjv"
	KJVLinks   bible.ModuleID = "kjv_strongs"
	WEB        bible.ModuleID = "web"
	Dictionary bible.ModuleID = "eastons"
	XRefs      bible.ModuleID = "tsk"
	Commentary bible.ModuleID = "mhc"
	Notebook   bible.ModuleID = "notes"
	Lexicon    bible.ModuleID = "strongs_greek"
	Readings   bible.ModuleID = "plan"
)

// DefaultVerses is the verse count given to chapters without a real one.
const DefaultVerses = 30

var verseCounts = map[bible.Book]map[int]int{
	bible.Gen:   {1: 31, 2: 25, 3: 24},
	bible.Ps:    {23: 6, 119: 176},
	bible.Matt:  {5: 48},
	bible.John:  {1: 51, 3: 36},
	bible.Rom:   {8: 39},
	bible.John1: {4: 21},
	bible.Rev:   {22: 21},
}

// Books returns the 66 Protestant books with their real chapter counts.
func Books() []bible.BookInfo {
	var out []bible.BookInfo
	for _, b := range bible.ProtestantBooks() {
		chapters := make([]int, b.DefaultChapters())
		for i := range chapters {
			chapters[i] = DefaultVerses
			if n, ok := verseCounts[b][i+1]; ok {
				chapters[i] = n
			}
		}
		out = append(out, bible.BookInfo{Book: b, Chapters: chapters})
	}
	return out
}

// Canon returns the full fixture canon.
func Canon() *bible.Canon {
	return bible.NewCanon(Books(), map[string]bible.Book{"sng": bible.Song})
}

// V is shorthand for a verse id.
func V(b bible.Book, chapter, verse int) bible.VerseID {
	return bible.VerseID{Book: b, Chapter: chapter, Verse: verse}
}

// Ref parses an OSIS reference against the KJV.
func Ref(s string) bible.RefID {
	return bible.MustParseOSISRef(s, KJV)
}

func refs(ss ...string) []bible.RefID {
	out := make([]bible.RefID, len(ss))
	for i, s := range ss {
		out[i] = Ref(s)
	}
	return out
}

func verses(text map[bible.VerseID]string) map[bible.VerseID]*library.Verse {
	out := make(map[bible.VerseID]*library.Verse, len(text))
	for id, t := range text {
		out[id] = &library.Verse{ID: id, Words: library.SplitWords(t)}
	}
	return out
}

// KJVText is the verse text of the fixture KJV.
var KJVText = map[bible.VerseID]string{
	V(bible.Gen, 1, 1):    "In the beginning God created the heaven and the earth.",
	V(bible.Gen, 1, 2):    "And the earth was without form, and void; and darkness was upon the face of the deep.",
	V(bible.Gen, 1, 3):    "And God said, Let there be light: and there was light.",
	V(bible.Ps, 23, 1):    "The LORD is my shepherd; I shall not want.",
	V(bible.John, 1, 1):   "In the beginning was the Word, and the Word was with God, and the Word was God.",
	V(bible.John, 1, 2):   "The same was in the beginning with God.",
	V(bible.John, 1, 3):   "All things were made by him; and without him was not any thing made that was made.",
	V(bible.John, 3, 16):  "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.",
	V(bible.Rom, 8, 28):   "And we know that all things work together for good to them that love God.",
	V(bible.John1, 4, 8):  "He that loveth not knoweth not God; for God is love.",
	V(bible.John1, 4, 16): "And we have known and believed the love that God hath to us. God is love.",
}

// WEBText is the verse text of the fixture WEB, a subset of books.
var WEBText = map[bible.VerseID]string{
	V(bible.Gen, 1, 1):   "In the beginning, God created the heavens and the earth.",
	V(bible.John, 1, 1):  "In the beginning was the Word, and the Word was with God, and the Word was God.",
	V(bible.John, 3, 16): "For God so loved the world, that he gave his one and only Son, that whoever believes in him should not perish, but have eternal life.",
}

func tag(start, end int, nums ...string) bible.LinkWord {
	w := bible.LinkWord{WordRange: bible.WordRange{Start: start, End: end}}
	for _, n := range nums {
		w.Strongs = append(w.Strongs, bible.MustStrongs(n))
	}
	return w
}

// Library builds a fresh fixture library.
func Library() *library.Library {
	kjv := &library.BibleModule{
		Meta:   library.ModuleInfo{ID: KJV, Name: "King James Version", ShortName: "KJV", Language: "en"},
		Canon:  Canon(),
		Verses: verses(KJVText),
	}

	webBooks := []bible.BookInfo{}
	for _, info := range Books() {
		if info.Book == bible.Gen || info.Book == bible.John {
			webBooks = append(webBooks, info)
		}
	}
	web := &library.BibleModule{
		Meta:   library.ModuleInfo{ID: WEB, Name: "World English Bible", ShortName: "WEB", Language: "en"},
		Canon:  bible.NewCanon(webBooks, nil),
		Verses: verses(WEBText),
	}

	links := &library.StrongsLinksModule{
		Meta:  library.ModuleInfo{ID: KJVLinks, Name: "KJV Strong's links"},
		Bible: KJV,
		Links: map[bible.VerseID]*bible.LinkEntry{
			V(bible.Gen, 1, 1): {Verse: V(bible.Gen, 1, 1), Words: []bible.LinkWord{
				tag(1, 3, "H7225"), tag(4, 4, "H430"), tag(5, 5, "H1254"),
			}},
			V(bible.John, 1, 1): {Verse: V(bible.John, 1, 1), Words: []bible.LinkWord{
				tag(6, 6, "G3056"), tag(9, 9, "G3056"), tag(12, 12, "G2316"), tag(15, 15, "G3056"), tag(17, 17, "G2316"),
			}},
			V(bible.John1, 4, 8): {Verse: V(bible.John1, 4, 8), Words: []bible.LinkWord{
				tag(3, 3, "G25"), tag(11, 11, "G26"),
			}},
		},
	}

	dict := &library.DictionaryModule{
		Meta: library.ModuleInfo{ID: Dictionary, Name: "Easton's Bible Dictionary"},
		Entries: []library.DictionaryEntry{
			{Term: "Love", Aliases: []string{"Charity"}, Definition: richtext.Paragraphs("Love is the fulfilling of the law.")},
			{Term: "Faith", Definition: richtext.Paragraphs("Faith is the substance of things hoped for.")},
			{Term: "Word", Definition: richtext.Document{richtext.Paragraph{Content: []richtext.Inline{
				richtext.Text{Value: "The "},
				richtext.Anchor{Href: richtext.ParseHref("strong:G3056"), Content: []richtext.Inline{richtext.Text{Value: "Logos"}}},
				richtext.Text{Value: " of God."},
			}}}},
		},
	}

	xrefs := &library.XRefModule{
		Meta: library.ModuleInfo{ID: XRefs, Name: "Treasury of Scripture Knowledge"},
		Entries: []library.XRefEntry{
			{Kind: library.XRefDirected, Source: Ref("John.1.1"), Targets: refs("Gen.1.1", "1John.1.1"), Note: richtext.Paragraphs("In the beginning the Word")},
			{Kind: library.XRefMutual, Refs: refs("1John.4.8", "1John.4.16"), Note: richtext.Paragraphs("God is love")},
		},
	}

	commentary := &library.CommentaryModule{
		Meta: library.ModuleInfo{ID: Commentary, Name: "Matthew Henry's Commentary"},
		Entries: []library.CommentaryEntry{
			{References: refs("Gen.1.1-Gen.1.3"), Comment: richtext.Paragraphs("The first verse of the Bible gives us an account of creation.")},
			{References: refs("John.3.16"), Comment: richtext.Paragraphs("Here is the love of God in giving his Son for the world.")},
		},
	}

	notebook := &library.NotebookModule{
		Meta: library.ModuleInfo{ID: Notebook, Name: "My Notes"},
		Entries: []library.NotebookEntry{
			{Kind: library.NoteKindNote, Name: "Creation", Content: richtext.Paragraphs("God spoke and light appeared."), References: refs("Gen.1")},
			{Kind: library.NoteKindHighlight, Name: "Love", Description: richtext.Paragraphs("The nature of God"), Priority: 1, Color: "yellow", References: refs("1John.4.8")},
		},
	}

	lexicon := &library.StrongsDefsModule{
		Meta: library.ModuleInfo{ID: Lexicon, Name: "Strong's Greek"},
		Entries: []library.StrongsDef{
			{Strongs: bible.MustStrongs("G26"), Word: "agape", Definition: richtext.Paragraphs("love, affection, benevolence")},
			{Strongs: bible.MustStrongs("G3056"), Word: "logos", Definition: richtext.Paragraphs("word, speech, divine expression")},
		},
	}

	plan := &library.ReadingsModule{
		Meta:    library.ModuleInfo{ID: Readings, Name: "Daily Readings"},
		Entries: []library.Reading{{Index: 1, Readings: refs("Gen.1", "John.1")}},
	}

	return library.New().MustAdd(kjv, web, links, dict, xrefs, commentary, notebook, lexicon, plan)
}
