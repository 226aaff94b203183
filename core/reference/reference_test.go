package reference

import (
	"slices"
	"testing"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

func chapters(n, verses int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = verses
	}
	return out
}

type fakeSource struct {
	canons map[bible.ModuleID]*bible.Canon
	names  []BibleName
}

func (f *fakeSource) Canon(id bible.ModuleID) (*bible.Canon, bool) {
	c, ok := f.canons[id]
	return c, ok
}

func (f *fakeSource) BibleNames() []BibleName { return f.names }

func newFakeSource() *fakeSource {
	books := []bible.BookInfo{
		{Book: bible.Gen, Chapters: chapters(50, 31)},
		{Book: bible.Judg, Chapters: chapters(21, 25)},
		{Book: bible.Ps, Chapters: chapters(150, 20)},
		{Book: bible.Song, Chapters: chapters(8, 17)},
		{Book: bible.Jonah, Chapters: []int{17, 10, 10, 11}},
		{Book: bible.Matt, Chapters: chapters(28, 48)},
		{Book: bible.John, Chapters: chapters(21, 40)},
		{Book: bible.John1, Chapters: chapters(5, 21)},
		{Book: bible.John2, Chapters: []int{13}},
		{Book: bible.John3, Chapters: []int{15}},
		{Book: bible.Jude, Chapters: []int{25}},
	}
	kjv := bible.NewCanon(books, map[string]bible.Book{"sng": bible.Song})
	web := bible.NewCanon(books[:5], nil)
	return &fakeSource{
		canons: map[bible.ModuleID]*bible.Canon{"kjv_eng": kjv, "web": web},
		names: []BibleName{
			{ID: "kjv_eng", Name: "King James Version", ShortName: "KJV"},
			{ID: "web", Name: "World English Bible", ShortName: "WEB"},
		},
	}
}

func TestResolveBookName(t *testing.T) {
	src := newFakeSource()
	canon, _ := src.Canon("kjv_eng")

	tests := []struct {
		input    string
		want     bible.Book
		wantKind BookNameErrorKind
	}{
		{"Genesis", bible.Gen, 0},
		{"gen", bible.Gen, 0},
		{"GEN", bible.Gen, 0},
		{"jud", bible.Judg, 0},
		{"Jude", bible.Jude, 0},
		{"1 John", bible.John1, 0},
		{"1John", bible.John1, 0},
		{"1 jo", bible.John1, 0},
		{"3 jn", bible.John3, 0},
		{"jn", bible.John, 0},
		{"sng", bible.Song, 0},
		{"song of songs", bible.Song, 0},
		{"Song   of Solomon", bible.Song, 0},
		{"psalm", bible.Ps, 0},
		{"4 John", bible.BookInvalid, BookDoesNotExist},
		{"Exodus", bible.BookInvalid, BookDoesNotExist},
		{"0 John", bible.BookInvalid, PrefixInvalid},
		{"99999999999 John", bible.BookInvalid, PrefixInvalid},
		{"J", bible.BookInvalid, InvalidInput},
		{"John3", bible.BookInvalid, InvalidInput},
		{"", bible.BookInvalid, InvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveBookName(tt.input, canon)
			if tt.wantKind != 0 {
				var bne *BookNameError
				if !errors.As(err, &bne) {
					t.Fatalf("ResolveBookName(%q) error = %v, want BookNameError", tt.input, err)
				}
				if bne.Kind != tt.wantKind {
					t.Errorf("ResolveBookName(%q) kind = %v, want %v", tt.input, bne.Kind, tt.wantKind)
				}
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Error("BookNameError should unwrap to ErrInvalidInput")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveBookName(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveBookName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveBookNameIgnoresAliasOutsideCanon(t *testing.T) {
	src := newFakeSource()
	web, _ := src.Canon("web")
	if _, err := ResolveBookName("jn", web); err == nil {
		t.Error("default alias to a book missing from the canon should not resolve")
	}
}

func TestParseReferences(t *testing.T) {
	src := newFakeSource()

	tests := []struct {
		input string
		want  []string
		bible bible.ModuleID
	}{
		{"John 3:16", []string{"John.3.16"}, "kjv_eng"},
		{"John 3 16", []string{"John.3.16"}, "kjv_eng"},
		{"John 3:16; Genesis 1:1-5", []string{"John.3.16", "Gen.1.1-Gen.1.5"}, "kjv_eng"},
		{"John 3 16-18", []string{"John.3.16-John.3.18"}, "kjv_eng"},
		{"Genesis 1-3", []string{"Gen.1-Gen.3"}, "kjv_eng"},
		{"Matthew 5:1–Matthew 7:29", []string{"Matt.5.1-Matt.7.29"}, "kjv_eng"},
		{"Matthew 5 - Matthew 7", []string{"Matt.5-Matt.7"}, "kjv_eng"},
		{"Jonah", []string{"Jonah"}, "kjv_eng"},
		{"1 John 4", []string{"1John.4"}, "kjv_eng"},
		{"Song of Solomon 2:1", []string{"Song.2.1"}, "kjv_eng"},
		{"  ; John 1:1 ;; ", []string{"John.1.1"}, "kjv_eng"},
		{"Genesis 1:1 (WEB)", []string{"Gen.1.1"}, "web"},
		{"Genesis 1:1 (world english)", []string{"Gen.1.1"}, "web"},
		{"", nil, "kjv_eng"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			refs, err := ParseReferences(tt.input, "kjv_eng", src)
			if err != nil {
				t.Fatalf("ParseReferences(%q) error = %v", tt.input, err)
			}
			var got []string
			for _, r := range refs {
				got = append(got, r.String())
				if r.Bible != tt.bible {
					t.Errorf("Bible = %q, want %q", r.Bible, tt.bible)
				}
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseReferences(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseReferencesErrors(t *testing.T) {
	src := newFakeSource()

	tests := []struct {
		input    string
		wantKind RefErrorKind
	}{
		{"Jonah 5", RefIDDoesNotExist},
		{"Genesis 1:32", RefIDDoesNotExist},
		{"John 0:1", ChapterCannotBeZero},
		{"John 3:0", VerseCannotBeZero},
		{"John 3:16-0", VerseCannotBeZero},
		{"John 3:16 (KJ)", UnknownBible},
		{"John 3:16 (Vulgate)", UnknownBible},
		{"John 3:18-16", RefIDDoesNotExist},
		{"Genesis 1 - John 3", RefIDDoesNotExist},
		{"3:16", InvalidRefID},
		{"John 3:16, 17", InvalidRefID},
		{"(KJV)", InvalidRefID},
		{"Hezekiah 1:1", InvalidBook},
		{"John 3:16; Jonah 5", RefIDDoesNotExist},
		{"Matthew 1:1 (WEB)", InvalidBook},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			refs, err := ParseReferences(tt.input, "kjv_eng", src)
			if refs != nil {
				t.Errorf("ParseReferences(%q) returned partial result %v", tt.input, refs)
			}
			var rpe *RefParseError
			if !errors.As(err, &rpe) {
				t.Fatalf("ParseReferences(%q) error = %v, want RefParseError", tt.input, err)
			}
			if rpe.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v (%v)", rpe.Kind, tt.wantKind, err)
			}
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error %v should be classified as invalid input", err)
			}
		})
	}
}

func TestParseReferencesDoesNotExistNamesBible(t *testing.T) {
	_, err := ParseReferences("Jonah 5", "kjv_eng", newFakeSource())
	var rpe *RefParseError
	if !errors.As(err, &rpe) {
		t.Fatalf("error = %v, want RefParseError", err)
	}
	if rpe.Bible != "King James Version" || rpe.Raw != "Jonah 5" {
		t.Errorf("error = %+v, want bible %q and raw %q", rpe, "King James Version", "Jonah 5")
	}
}

func TestParseReferencesUnknownDefaultBible(t *testing.T) {
	_, err := ParseReferences("John 3:16", "missing", newFakeSource())
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want lookup error", err)
	}
}

func TestResolveBibleName(t *testing.T) {
	src := newFakeSource()
	src.names = append(src.names, BibleName{ID: "kjva", Name: "KJV with Apocrypha", ShortName: "KJVA"})

	tests := []struct {
		name   string
		want   bible.ModuleID
		wantOK bool
	}{
		{"kjv", "kjv_eng", true},
		{"KJVA", "kjva", true},
		{"king", "kjv_eng", true},
		{"World", "web", true},
		{"kjv_eng", "kjv_eng", true},
		{"KJV_ENG", "", false},
		{"we", "", false},
		{"nasb", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveBibleName(tt.name, src)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolveBibleName(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
