package bible

import (
	"iter"
	"slices"
	"strings"
)

// BookInfo describes one book as a module presents it. Chapters holds the
// verse count of each chapter; len(Chapters) is the chapter count.
type BookInfo struct {
	Book         Book   `json:"osis"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Chapters     []int  `json:"chapters"`
}

// Canon is the ordered set of books of one bible module together with its
// alias table. A Canon is immutable after construction.
type Canon struct {
	books   []BookInfo
	index   map[Book]int
	aliases map[string]Book
}

// NewCanon builds a canon. Books are stored in canonical order regardless of
// input order; missing names fall back to the English display names. Alias
// keys are normalised to lower case with single spaces.
func NewCanon(books []BookInfo, aliases map[string]Book) *Canon {
	c := &Canon{
		books:   make([]BookInfo, 0, len(books)),
		index:   make(map[Book]int, len(books)),
		aliases: make(map[string]Book, len(aliases)),
	}
	for _, info := range books {
		if !info.Book.Valid() {
			continue
		}
		if info.Name == "" {
			info.Name = info.Book.Name()
		}
		if info.Abbreviation == "" {
			info.Abbreviation = info.Book.Abbreviation()
		}
		info.Chapters = slices.Clone(info.Chapters)
		c.books = append(c.books, info)
	}
	slices.SortStableFunc(c.books, func(a, b BookInfo) int { return int(a.Book) - int(b.Book) })
	c.books = slices.CompactFunc(c.books, func(a, b BookInfo) bool { return a.Book == b.Book })
	for i, info := range c.books {
		c.index[info.Book] = i
	}
	for k, b := range aliases {
		c.aliases[NormalizeName(k)] = b
	}
	return c
}

// NormalizeName lower-cases s and collapses runs of whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Books returns the books in canonical order.
func (c *Canon) Books() []BookInfo { return c.books }

// Aliases returns the module's alias table.
func (c *Canon) Aliases() map[string]Book { return c.aliases }

// Book returns the info for b.
func (c *Canon) Book(b Book) (BookInfo, bool) {
	i, ok := c.index[b]
	if !ok {
		return BookInfo{}, false
	}
	return c.books[i], true
}

// Has reports whether the canon contains b.
func (c *Canon) Has(b Book) bool {
	_, ok := c.index[b]
	return ok
}

// ChapterCount returns the number of chapters in b, or 0.
func (c *Canon) ChapterCount(b Book) int {
	info, ok := c.Book(b)
	if !ok {
		return 0
	}
	return len(info.Chapters)
}

// VerseCount returns the number of verses in chapter ch of b, or 0.
func (c *Canon) VerseCount(b Book, ch int) int {
	info, ok := c.Book(b)
	if !ok || ch < 1 || ch > len(info.Chapters) {
		return 0
	}
	return info.Chapters[ch-1]
}

// AtomExists reports whether every coordinate of a lies inside the canon.
// Word indices are not checked against verse text.
func (c *Canon) AtomExists(a Atom) bool {
	if !c.Has(a.Book) {
		return false
	}
	if a.Kind == AtomBook {
		return true
	}
	if a.Chapter < 1 || a.Chapter > c.ChapterCount(a.Book) {
		return false
	}
	if a.Kind == AtomChapter {
		return true
	}
	if a.Verse < 1 || a.Verse > c.VerseCount(a.Book, a.Chapter) {
		return false
	}
	return a.Kind != AtomWord || a.Word >= 1
}

// Exists is the existence predicate for references: every atom exists and a
// range stays within one book with from not after to.
func (c *Canon) Exists(r RefID) bool {
	if !c.AtomExists(r.From) {
		return false
	}
	if r.To == nil {
		return true
	}
	if !c.AtomExists(*r.To) || r.From.Book != r.To.Book {
		return false
	}
	return r.From.Start().Compare(r.To.Start()) <= 0
}

// End returns the last verse covered by a, resolving book and chapter atoms
// through the canon. A chapter atom ends at that chapter's own last verse.
func (c *Canon) End(a Atom) VerseID {
	switch a.Kind {
	case AtomBook:
		last := c.ChapterCount(a.Book)
		return VerseID{Book: a.Book, Chapter: last, Verse: c.VerseCount(a.Book, last)}
	case AtomChapter:
		return VerseID{Book: a.Book, Chapter: a.Chapter, Verse: c.VerseCount(a.Book, a.Chapter)}
	default:
		return a.Start()
	}
}

// Next returns the verse after v in canon order, crossing chapter and book
// boundaries. ok is false at the end of the canon.
func (c *Canon) Next(v VerseID) (VerseID, bool) {
	i, ok := c.index[v.Book]
	if !ok {
		return VerseID{}, false
	}
	info := c.books[i]
	if v.Chapter >= 1 && v.Chapter <= len(info.Chapters) && v.Verse < info.Chapters[v.Chapter-1] {
		return VerseID{Book: v.Book, Chapter: v.Chapter, Verse: v.Verse + 1}, true
	}
	for ch := v.Chapter + 1; ch <= len(info.Chapters); ch++ {
		if info.Chapters[ch-1] > 0 {
			return VerseID{Book: v.Book, Chapter: ch, Verse: 1}, true
		}
	}
	for j := i + 1; j < len(c.books); j++ {
		for ch, n := range c.books[j].Chapters {
			if n > 0 {
				return VerseID{Book: c.books[j].Book, Chapter: ch + 1, Verse: 1}, true
			}
		}
	}
	return VerseID{}, false
}

// Verses iterates the inclusive span [start, end] in canon order. The start
// verse is yielded only if it exists in the canon.
func (c *Canon) Verses(start, end VerseID) iter.Seq[VerseID] {
	return func(yield func(VerseID) bool) {
		v := start
		if !c.AtomExists(AtomOf(v)) {
			var ok bool
			if v, ok = c.Next(v); !ok {
				return
			}
		}
		for v.Compare(end) <= 0 {
			if !yield(v) {
				return
			}
			var ok bool
			if v, ok = c.Next(v); !ok {
				return
			}
		}
	}
}
