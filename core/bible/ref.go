package bible

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ModuleID identifies a module in the library ("kjv_eng").
type ModuleID string

// VerseID addresses one verse. Chapter and verse are 1-based.
type VerseID struct {
	Book    Book `json:"book"`
	Chapter int  `json:"chapter"`
	Verse   int  `json:"verse"`
}

// Compare orders verse ids by book index, chapter, then verse.
func (v VerseID) Compare(o VerseID) int {
	if c := cmp.Compare(v.Book, o.Book); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Chapter, o.Chapter); c != 0 {
		return c
	}
	return cmp.Compare(v.Verse, o.Verse)
}

// Less reports whether v sorts before o.
func (v VerseID) Less(o VerseID) bool { return v.Compare(o) < 0 }

func (v VerseID) String() string {
	return v.Book.OSIS() + "." + strconv.Itoa(v.Chapter) + "." + strconv.Itoa(v.Verse)
}

// Display renders the verse as "John 3:16".
func (v VerseID) Display() string {
	return fmt.Sprintf("%s %d:%d", v.Book.Name(), v.Chapter, v.Verse)
}

// openEnd marks an unbounded chapter or verse in a canon-independent span.
const openEnd = math.MaxInt32

// AtomKind is the granularity of an Atom.
type AtomKind uint8

// Atom kinds, coarsest first.
const (
	AtomBook AtomKind = iota + 1
	AtomChapter
	AtomVerse
	AtomWord
)

var atomKindNames = map[AtomKind]string{
	AtomBook:    "book",
	AtomChapter: "chapter",
	AtomVerse:   "verse",
	AtomWord:    "word",
}

func (k AtomKind) String() string {
	if s, ok := atomKindNames[k]; ok {
		return s
	}
	return "AtomKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes the kind name.
func (k AtomKind) MarshalText() ([]byte, error) {
	s, ok := atomKindNames[k]
	if !ok {
		return nil, fmt.Errorf("invalid atom kind %d", k)
	}
	return []byte(s), nil
}

// UnmarshalText decodes a kind name.
func (k *AtomKind) UnmarshalText(text []byte) error {
	for kind, name := range atomKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown atom kind %q", text)
}

// Atom is a single location of book, chapter, verse or word granularity.
// Fields finer than Kind are zero.
type Atom struct {
	Kind    AtomKind `json:"kind"`
	Book    Book     `json:"book"`
	Chapter int      `json:"chapter,omitempty"`
	Verse   int      `json:"verse,omitempty"`
	Word    int      `json:"word,omitempty"`
}

// BookAtom returns a whole-book atom.
func BookAtom(b Book) Atom { return Atom{Kind: AtomBook, Book: b} }

// ChapterAtom returns a whole-chapter atom.
func ChapterAtom(b Book, chapter int) Atom {
	return Atom{Kind: AtomChapter, Book: b, Chapter: chapter}
}

// VerseAtom returns a single-verse atom.
func VerseAtom(b Book, chapter, verse int) Atom {
	return Atom{Kind: AtomVerse, Book: b, Chapter: chapter, Verse: verse}
}

// WordAtom returns a single-word atom. Word is 1-based.
func WordAtom(b Book, chapter, verse, word int) Atom {
	return Atom{Kind: AtomWord, Book: b, Chapter: chapter, Verse: verse, Word: word}
}

// AtomOf returns the verse atom for v.
func AtomOf(v VerseID) Atom { return VerseAtom(v.Book, v.Chapter, v.Verse) }

// Start returns the first verse covered by the atom.
func (a Atom) Start() VerseID {
	switch a.Kind {
	case AtomBook:
		return VerseID{Book: a.Book, Chapter: 1, Verse: 1}
	case AtomChapter:
		return VerseID{Book: a.Book, Chapter: a.Chapter, Verse: 1}
	default:
		return VerseID{Book: a.Book, Chapter: a.Chapter, Verse: a.Verse}
	}
}

// Span returns the inclusive verse span covered by the atom without
// consulting a canon; open ends use a sentinel larger than any real count.
func (a Atom) Span() (VerseID, VerseID) {
	switch a.Kind {
	case AtomBook:
		return a.Start(), VerseID{Book: a.Book, Chapter: openEnd, Verse: openEnd}
	case AtomChapter:
		return a.Start(), VerseID{Book: a.Book, Chapter: a.Chapter, Verse: openEnd}
	default:
		v := a.Start()
		return v, v
	}
}

func (a Atom) String() string {
	var sb strings.Builder
	sb.WriteString(a.Book.OSIS())
	if a.Kind >= AtomChapter {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(a.Chapter))
	}
	if a.Kind >= AtomVerse {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(a.Verse))
	}
	if a.Kind == AtomWord {
		sb.WriteByte('!')
		sb.WriteString(strconv.Itoa(a.Word))
	}
	return sb.String()
}

// RefID is a single atom or an inclusive range of atoms, tagged with the
// bible module whose canon it was validated against.
type RefID struct {
	Bible ModuleID `json:"bible"`
	From  Atom     `json:"from"`
	To    *Atom    `json:"to,omitempty"`
}

// SingleRef builds a single-atom RefID.
func SingleRef(bible ModuleID, a Atom) RefID {
	return RefID{Bible: bible, From: a}
}

// RangeRef builds an inclusive range RefID.
func RangeRef(bible ModuleID, from, to Atom) RefID {
	return RefID{Bible: bible, From: from, To: &to}
}

// IsRange reports whether the reference has an explicit end atom.
func (r RefID) IsRange() bool { return r.To != nil }

// Last returns the end atom, or the start atom for single references.
func (r RefID) Last() Atom {
	if r.To != nil {
		return *r.To
	}
	return r.From
}

// Span returns the canon-independent inclusive verse span of the reference.
func (r RefID) Span() (VerseID, VerseID) {
	start, _ := r.From.Span()
	_, end := r.Last().Span()
	return start, end
}

// Intersects reports whether the reference overlaps the inclusive span
// [start, end].
func (r RefID) Intersects(start, end VerseID) bool {
	rs, re := r.Span()
	return rs.Compare(end) <= 0 && start.Compare(re) <= 0
}

func (r RefID) String() string {
	if r.To == nil {
		return r.From.String()
	}
	return r.From.String() + "-" + r.To.String()
}

// WordRange is a 1-based inclusive range of word positions in a verse.
type WordRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the 1-based word index falls inside the range.
func (w WordRange) Contains(index int) bool {
	return index >= w.Start && index <= w.End
}
