package reference

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

// BibleName describes one bible module for the "(name)" suffix matcher.
type BibleName struct {
	ID        bible.ModuleID
	Name      string
	ShortName string
}

// BibleSource is the read-only view of the module library the parser needs.
type BibleSource interface {
	// Canon returns the canon of a bible module.
	Canon(id bible.ModuleID) (*bible.Canon, bool)
	// BibleNames lists the bible modules in library order.
	BibleNames() []BibleName
}

// citationLexer tokenises human-typed citations. Chapter and verse may be
// separated by a colon or whitespace; ranges accept hyphen, en dash and em dash.
var citationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `\p{L}+`},
	{Name: "Dash", Pattern: `[-–—]`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type bookG struct {
	Prefix string   `@Int?`
	Words  []string `@Word+`
}

func (b *bookG) text() string {
	name := strings.Join(b.Words, " ")
	if b.Prefix == "" {
		return name
	}
	return b.Prefix + " " + name
}

// John 3:16-18, John 3 16-18
//
//nolint:govet // participle grammar tags are not standard struct tags
type verseRangeG struct {
	Book       *bookG `@@`
	Chapter    int    `@Int Colon?`
	VerseStart int    `@Int`
	VerseEnd   int    `Dash @Int`
}

// John 3-5
//
//nolint:govet // participle grammar tags are not standard struct tags
type chapterRangeG struct {
	Book         *bookG `@@`
	ChapterStart int    `@Int`
	ChapterEnd   int    `Dash @Int`
}

// Matthew 5:1 – Matthew 7:29
//
//nolint:govet // participle grammar tags are not standard struct tags
type atomRangeG struct {
	From *atomG `@@`
	To   *atomG `Dash @@`
}

// John, John 3, John 3:16
//
//nolint:govet // participle grammar tags are not standard struct tags
type atomG struct {
	Book    *bookG    `@@`
	Chapter *chapterG `@@?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterG struct {
	Chapter int  `@Int`
	Verse   *int `( Colon? @Int )?`
}

var (
	verseRangeParser = participle.MustBuild[verseRangeG](
		participle.Lexer(citationLexer), participle.Elide("Whitespace"))
	chapterRangeParser = participle.MustBuild[chapterRangeG](
		participle.Lexer(citationLexer), participle.Elide("Whitespace"))
	atomRangeParser = participle.MustBuild[atomRangeG](
		participle.Lexer(citationLexer), participle.Elide("Whitespace"))
	atomParser = participle.MustBuild[atomG](
		participle.Lexer(citationLexer), participle.Elide("Whitespace"))
)

var bibleSuffixPattern = regexp.MustCompile(`\(\s*([^()]+?)\s*\)\s*$`)

// rawAtom is a structurally parsed atom whose book is not yet resolved.
type rawAtom struct {
	book    string
	kind    bible.AtomKind
	chapter int
	verse   int
}

func (g *atomG) raw() rawAtom {
	a := rawAtom{book: g.Book.text(), kind: bible.AtomBook}
	if g.Chapter != nil {
		a.kind = bible.AtomChapter
		a.chapter = g.Chapter.Chapter
		if g.Chapter.Verse != nil {
			a.kind = bible.AtomVerse
			a.verse = *g.Chapter.Verse
		}
	}
	return a
}

// parseStructure runs the citation grammars in priority order and returns
// the first structural match as one or two raw atoms.
func parseStructure(text string) (from rawAtom, to *rawAtom, ok bool) {
	if g, err := verseRangeParser.ParseString("", text); err == nil {
		book := g.Book.text()
		end := rawAtom{book: book, kind: bible.AtomVerse, chapter: g.Chapter, verse: g.VerseEnd}
		return rawAtom{book: book, kind: bible.AtomVerse, chapter: g.Chapter, verse: g.VerseStart}, &end, true
	}
	if g, err := chapterRangeParser.ParseString("", text); err == nil {
		book := g.Book.text()
		end := rawAtom{book: book, kind: bible.AtomChapter, chapter: g.ChapterEnd}
		return rawAtom{book: book, kind: bible.AtomChapter, chapter: g.ChapterStart}, &end, true
	}
	if g, err := atomRangeParser.ParseString("", text); err == nil {
		end := g.To.raw()
		return g.From.raw(), &end, true
	}
	if g, err := atomParser.ParseString("", text); err == nil {
		return g.raw(), nil, true
	}
	return rawAtom{}, nil, false
}

// ParseReferences parses a ";"-separated list of citations against the
// canon of defaultBible, or of the bible named by a trailing "(name)"
// suffix. Every citation must parse and exist; the first failure is
// returned and no partial result is produced.
func ParseReferences(text string, defaultBible bible.ModuleID, src BibleSource) ([]bible.RefID, error) {
	var refs []bible.RefID
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref, err := ParseReference(part, defaultBible, src)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ParseReference parses one citation. See ParseReferences.
func ParseReference(raw string, defaultBible bible.ModuleID, src BibleSource) (bible.RefID, error) {
	text := strings.TrimSpace(raw)

	bibleID := defaultBible
	if m := bibleSuffixPattern.FindStringSubmatchIndex(text); m != nil {
		name := text[m[2]:m[3]]
		id, ok := ResolveBibleName(name, src)
		if !ok {
			return bible.RefID{}, &RefParseError{Kind: UnknownBible, Raw: raw, Bible: name}
		}
		bibleID = id
		text = strings.TrimSpace(text[:m[0]])
	}

	from, to, ok := parseStructure(text)
	if !ok {
		return bible.RefID{}, &RefParseError{Kind: InvalidRefID, Raw: raw}
	}
	if err := checkZero(raw, from); err != nil {
		return bible.RefID{}, err
	}
	if to != nil {
		if err := checkZero(raw, *to); err != nil {
			return bible.RefID{}, err
		}
	}

	canon, ok := src.Canon(bibleID)
	if !ok {
		return bible.RefID{}, errors.NewNotFound("bible", string(bibleID))
	}

	fromAtom, err := resolveAtom(raw, from, canon)
	if err != nil {
		return bible.RefID{}, err
	}
	ref := bible.SingleRef(bibleID, fromAtom)
	if to != nil {
		toAtom, err := resolveAtom(raw, *to, canon)
		if err != nil {
			return bible.RefID{}, err
		}
		ref = bible.RangeRef(bibleID, fromAtom, toAtom)
	}

	if !canon.Exists(ref) {
		return bible.RefID{}, &RefParseError{Kind: RefIDDoesNotExist, Raw: raw, Bible: displayName(bibleID, src)}
	}
	return ref, nil
}

func checkZero(raw string, a rawAtom) error {
	if a.kind >= bible.AtomChapter && a.chapter == 0 {
		return &RefParseError{Kind: ChapterCannotBeZero, Raw: raw}
	}
	if a.kind >= bible.AtomVerse && a.verse == 0 {
		return &RefParseError{Kind: VerseCannotBeZero, Raw: raw}
	}
	return nil
}

func resolveAtom(raw string, a rawAtom, canon *bible.Canon) (bible.Atom, error) {
	book, err := ResolveBookName(a.book, canon)
	if err != nil {
		return bible.Atom{}, &RefParseError{Kind: InvalidBook, Raw: raw, Err: err}
	}
	switch a.kind {
	case bible.AtomChapter:
		return bible.ChapterAtom(book, a.chapter), nil
	case bible.AtomVerse:
		return bible.VerseAtom(book, a.chapter, a.verse), nil
	default:
		return bible.BookAtom(book), nil
	}
}

func displayName(id bible.ModuleID, src BibleSource) string {
	for _, b := range src.BibleNames() {
		if b.ID == id && b.Name != "" {
			return b.Name
		}
	}
	return string(id)
}

// ResolveBibleName matches a "(name)" suffix against the bible modules.
// Names shorter than three characters never match. Priority is
// case-insensitive short-name equality, then case-insensitive display-name
// prefix, then exact id equality.
func ResolveBibleName(name string, src BibleSource) (bible.ModuleID, bool) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 3 {
		return "", false
	}
	lower := strings.ToLower(name)
	bibles := src.BibleNames()

	for _, b := range bibles {
		if b.ShortName != "" && strings.ToLower(b.ShortName) == lower {
			return b.ID, true
		}
	}
	for _, b := range bibles {
		if strings.HasPrefix(strings.ToLower(b.Name), lower) {
			return b.ID, true
		}
	}
	for _, b := range bibles {
		if string(b.ID) == name {
			return b.ID, true
		}
	}
	return "", false
}
