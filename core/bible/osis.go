package bible

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// osisGrammar is the participle grammar for one OSIS atom.
// Examples: "Gen", "Gen.1", "Gen.1.1", "1John.3.16", "John.3.16!4"
//
//nolint:govet // participle grammar tags are not standard struct tags
type osisGrammar struct {
	BookPrefix string        `@Int?`
	BookName   string        `@Ident`
	Chapter    *osisChapterG `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type osisChapterG struct {
	Chapter int         `@Int`
	Verse   *osisVerseG `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type osisVerseG struct {
	Verse int  `@Int`
	Word  *int `( "!" @Int )?`
}

var osisLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[.!]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var osisParser = participle.MustBuild[osisGrammar](
	participle.Lexer(osisLexer),
	participle.Elide("Whitespace"),
)

// ParseOSIS parses a single OSIS atom such as "Gen.1.1".
func ParseOSIS(s string) (Atom, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Atom{}, fmt.Errorf("empty reference string")
	}
	parsed, err := osisParser.ParseString("", s)
	if err != nil {
		return Atom{}, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}
	book, err := ParseBook(parsed.BookPrefix + parsed.BookName)
	if err != nil {
		return Atom{}, err
	}

	atom := BookAtom(book)
	if c := parsed.Chapter; c != nil {
		atom = ChapterAtom(book, c.Chapter)
		if v := c.Verse; v != nil {
			atom = VerseAtom(book, c.Chapter, v.Verse)
			if v.Word != nil {
				atom = WordAtom(book, c.Chapter, v.Verse, *v.Word)
			}
		}
	}
	if atom.Kind >= AtomChapter && atom.Chapter == 0 {
		return Atom{}, fmt.Errorf("invalid reference %q: chapter cannot be zero", s)
	}
	if atom.Kind >= AtomVerse && atom.Verse == 0 {
		return Atom{}, fmt.Errorf("invalid reference %q: verse cannot be zero", s)
	}
	return atom, nil
}

// ParseOSISRef parses an OSIS reference or range:
//   - "Gen.1.1" (single atom)
//   - "Gen.1.1-Gen.1.5" (explicit range)
//   - "Matt.5.3-12" (numeric end at the start atom's finest level)
//   - "Gen.1-3" (chapter range)
//
// The returned RefID is tagged with bible but not checked against a canon.
func ParseOSISRef(s string, bible ModuleID) (RefID, error) {
	left, right, isRange := strings.Cut(strings.TrimSpace(s), "-")
	from, err := ParseOSIS(left)
	if err != nil {
		return RefID{}, err
	}
	if !isRange {
		return SingleRef(bible, from), nil
	}

	right = strings.TrimSpace(right)
	if n, err := strconv.Atoi(right); err == nil {
		to := from
		switch from.Kind {
		case AtomBook:
			return RefID{}, fmt.Errorf("invalid reference range %q: numeric end after a book", s)
		case AtomChapter:
			to.Chapter = n
		case AtomVerse:
			to.Verse = n
		case AtomWord:
			to.Word = n
		}
		return RangeRef(bible, from, to), nil
	}

	to, err := ParseOSIS(right)
	if err != nil {
		return RefID{}, err
	}
	return RangeRef(bible, from, to), nil
}

// MustParseOSISRef is ParseOSISRef for literals known to be valid.
func MustParseOSISRef(s string, bible ModuleID) RefID {
	r, err := ParseOSISRef(s, bible)
	if err != nil {
		panic(err)
	}
	return r
}
