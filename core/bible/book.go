// Package bible defines the scripture data model shared by every part of the
// study engine: books, verse addresses, reference atoms, Strong's numbers and
// per-module canons.
package bible

import (
	"fmt"
	"strings"
)

// Book is an OSIS book. The numeric order of the constants is the canonical
// book order and is used for every verse comparison.
type Book uint8

// Protestant canon followed by the common deuterocanonical books.
const (
	BookInvalid Book = iota
	Gen
	Exod
	Lev
	Num
	Deut
	Josh
	Judg
	Ruth
	Sam1
	Sam2
	Kgs1
	Kgs2
	Chr1
	Chr2
	Ezra
	Neh
	Esth
	Job
	Ps
	Prov
	Eccl
	Song
	Isa
	Jer
	Lam
	Ezek
	Dan
	Hos
	Joel
	Amos
	Obad
	Jonah
	Mic
	Nah
	Hab
	Zeph
	Hag
	Zech
	Mal
	Matt
	Mark
	Luke
	John
	Acts
	Rom
	Cor1
	Cor2
	Gal
	Eph
	Phil
	Col
	Thess1
	Thess2
	Tim1
	Tim2
	Titus
	Phlm
	Heb
	Jas
	Pet1
	Pet2
	John1
	John2
	John3
	Jude
	Rev
	Tob
	Jdt
	AddEsth
	Wis
	Sir
	Bar
	EpJer
	PrAzar
	Sus
	Bel
	Macc1
	Macc2
	Esd1
	Esd2
	PrMan
	bookCount
)

type bookMeta struct {
	osis     string
	name     string
	abbrev   string
	chapters int
}

var bookTable = [bookCount]bookMeta{
	{},
	{"Gen", "Genesis", "Gen", 50},
	{"Exod", "Exodus", "Ex", 40},
	{"Lev", "Leviticus", "Lev", 27},
	{"Num", "Numbers", "Num", 36},
	{"Deut", "Deuteronomy", "Deut", 34},
	{"Josh", "Joshua", "Josh", 24},
	{"Judg", "Judges", "Judg", 21},
	{"Ruth", "Ruth", "Ruth", 4},
	{"1Sam", "1 Samuel", "1 Sam", 31},
	{"2Sam", "2 Samuel", "2 Sam", 24},
	{"1Kgs", "1 Kings", "1 Kgs", 22},
	{"2Kgs", "2 Kings", "2 Kgs", 25},
	{"1Chr", "1 Chronicles", "1 Chr", 29},
	{"2Chr", "2 Chronicles", "2 Chr", 36},
	{"Ezra", "Ezra", "Ezra", 10},
	{"Neh", "Nehemiah", "Neh", 13},
	{"Esth", "Esther", "Esth", 10},
	{"Job", "Job", "Job", 42},
	{"Ps", "Psalms", "Ps", 150},
	{"Prov", "Proverbs", "Prov", 31},
	{"Eccl", "Ecclesiastes", "Eccl", 12},
	{"Song", "Song of Solomon", "Song", 8},
	{"Isa", "Isaiah", "Isa", 66},
	{"Jer", "Jeremiah", "Jer", 52},
	{"Lam", "Lamentations", "Lam", 5},
	{"Ezek", "Ezekiel", "Ezek", 48},
	{"Dan", "Daniel", "Dan", 12},
	{"Hos", "Hosea", "Hos", 14},
	{"Joel", "Joel", "Joel", 3},
	{"Amos", "Amos", "Amos", 9},
	{"Obad", "Obadiah", "Obad", 1},
	{"Jonah", "Jonah", "Jonah", 4},
	{"Mic", "Micah", "Mic", 7},
	{"Nah", "Nahum", "Nah", 3},
	{"Hab", "Habakkuk", "Hab", 3},
	{"Zeph", "Zephaniah", "Zeph", 3},
	{"Hag", "Haggai", "Hag", 2},
	{"Zech", "Zechariah", "Zech", 14},
	{"Mal", "Malachi", "Mal", 4},
	{"Matt", "Matthew", "Matt", 28},
	{"Mark", "Mark", "Mark", 16},
	{"Luke", "Luke", "Luke", 24},
	{"John", "John", "John", 21},
	{"Acts", "Acts", "Acts", 28},
	{"Rom", "Romans", "Rom", 16},
	{"1Cor", "1 Corinthians", "1 Cor", 16},
	{"2Cor", "2 Corinthians", "2 Cor", 13},
	{"Gal", "Galatians", "Gal", 6},
	{"Eph", "Ephesians", "Eph", 6},
	{"Phil", "Philippians", "Phil", 4},
	{"Col", "Colossians", "Col", 4},
	{"1Thess", "1 Thessalonians", "1 Thess", 5},
	{"2Thess", "2 Thessalonians", "2 Thess", 3},
	{"1Tim", "1 Timothy", "1 Tim", 6},
	{"2Tim", "2 Timothy", "2 Tim", 4},
	{"Titus", "Titus", "Titus", 3},
	{"Phlm", "Philemon", "Phlm", 1},
	{"Heb", "Hebrews", "Heb", 13},
	{"Jas", "James", "Jas", 5},
	{"1Pet", "1 Peter", "1 Pet", 5},
	{"2Pet", "2 Peter", "2 Pet", 3},
	{"1John", "1 John", "1 John", 5},
	{"2John", "2 John", "2 John", 1},
	{"3John", "3 John", "3 John", 1},
	{"Jude", "Jude", "Jude", 1},
	{"Rev", "Revelation", "Rev", 22},
	{"Tob", "Tobit", "Tob", 14},
	{"Jdt", "Judith", "Jdt", 16},
	{"AddEsth", "Additions to Esther", "Add Esth", 16},
	{"Wis", "Wisdom", "Wis", 19},
	{"Sir", "Sirach", "Sir", 51},
	{"Bar", "Baruch", "Bar", 5},
	{"EpJer", "Letter of Jeremiah", "Ep Jer", 1},
	{"PrAzar", "Prayer of Azariah", "Pr Azar", 1},
	{"Sus", "Susanna", "Sus", 1},
	{"Bel", "Bel and the Dragon", "Bel", 1},
	{"1Macc", "1 Maccabees", "1 Macc", 16},
	{"2Macc", "2 Maccabees", "2 Macc", 15},
	{"1Esd", "1 Esdras", "1 Esd", 9},
	{"2Esd", "2 Esdras", "2 Esd", 16},
	{"PrMan", "Prayer of Manasseh", "Pr Man", 1},
}

var osisIndex = func() map[string]Book {
	m := make(map[string]Book, bookCount)
	for b := Gen; b < bookCount; b++ {
		m[strings.ToLower(bookTable[b].osis)] = b
	}
	return m
}()

// AllBooks returns every known book in canonical order.
func AllBooks() []Book {
	out := make([]Book, 0, bookCount-1)
	for b := Gen; b < bookCount; b++ {
		out = append(out, b)
	}
	return out
}

// ProtestantBooks returns Genesis through Revelation.
func ProtestantBooks() []Book {
	out := make([]Book, 0, 66)
	for b := Gen; b <= Rev; b++ {
		out = append(out, b)
	}
	return out
}

// ParseBook resolves an OSIS book id such as "Gen" or "1John".
// Matching is case-insensitive.
func ParseBook(osis string) (Book, error) {
	if b, ok := osisIndex[strings.ToLower(strings.TrimSpace(osis))]; ok {
		return b, nil
	}
	return BookInvalid, fmt.Errorf("unknown OSIS book %q", osis)
}

// Valid reports whether b is a known book.
func (b Book) Valid() bool {
	return b > BookInvalid && b < bookCount
}

// OSIS returns the OSIS id ("1John").
func (b Book) OSIS() string {
	if !b.Valid() {
		return ""
	}
	return bookTable[b].osis
}

// Name returns the English display name ("1 John").
func (b Book) Name() string {
	if !b.Valid() {
		return ""
	}
	return bookTable[b].name
}

// Abbreviation returns the short display form ("1 John", "Gen").
func (b Book) Abbreviation() string {
	if !b.Valid() {
		return ""
	}
	return bookTable[b].abbrev
}

// DefaultChapters returns the chapter count of the book in the common
// English versification.
func (b Book) DefaultChapters() int {
	if !b.Valid() {
		return 0
	}
	return bookTable[b].chapters
}

// IsOldTestament reports whether the book is in the Hebrew scriptures.
func (b Book) IsOldTestament() bool { return b >= Gen && b <= Mal }

// IsNewTestament reports whether the book is in the New Testament.
func (b Book) IsNewTestament() bool { return b >= Matt && b <= Rev }

func (b Book) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Book(%d)", uint8(b))
	}
	return bookTable[b].osis
}

// MarshalText encodes the book as its OSIS id.
func (b Book) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid book %d", uint8(b))
	}
	return []byte(bookTable[b].osis), nil
}

// UnmarshalText decodes an OSIS id.
func (b *Book) UnmarshalText(text []byte) error {
	parsed, err := ParseBook(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
