// Package reference turns human-typed scripture citations into validated
// bible references: book-name resolution, citation grammars, and the
// "(bible)" suffix matcher.
package reference

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
)

var bookNamePattern = regexp.MustCompile(`^(\d+\s*)?(\p{L}[\p{L}\s]*\p{L})$`)

// defaultAliases covers common abbreviations that are not prefixes of the
// display names. Module aliases take precedence.
var defaultAliases = map[string]bible.Book{
	"gn":             bible.Gen,
	"nm":             bible.Num,
	"dt":             bible.Deut,
	"jdg":            bible.Judg,
	"jgs":            bible.Judg,
	"1 sm":           bible.Sam1,
	"2 sm":           bible.Sam2,
	"1 kgs":          bible.Kgs1,
	"2 kgs":          bible.Kgs2,
	"psa":            bible.Ps,
	"pss":            bible.Ps,
	"qoheleth":       bible.Eccl,
	"sos":            bible.Song,
	"song of songs":  bible.Song,
	"canticles":      bible.Song,
	"ezk":            bible.Ezek,
	"mt":             bible.Matt,
	"mk":             bible.Mark,
	"mrk":            bible.Mark,
	"lk":             bible.Luke,
	"jn":             bible.John,
	"jhn":            bible.John,
	"phm":            bible.Phlm,
	"phlm":           bible.Phlm,
	"jas":            bible.Jas,
	"jm":             bible.Jas,
	"1 jn":           bible.John1,
	"2 jn":           bible.John2,
	"3 jn":           bible.John3,
	"1 pt":           bible.Pet1,
	"2 pt":           bible.Pet2,
	"revelations":    bible.Rev,
	"apocalypse":     bible.Rev,
	"ecclesiasticus": bible.Sir,
}

type bookName struct {
	prefix int // 0 when absent
	name   string
}

func (n bookName) key() string {
	if n.prefix == 0 {
		return n.name
	}
	return strconv.Itoa(n.prefix) + " " + n.name
}

// splitBookName decomposes "1 John" into {1, "john"}.
func splitBookName(s string) (bookName, *BookNameError) {
	m := bookNamePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return bookName{}, &BookNameError{Kind: InvalidInput, Input: s}
	}
	n := bookName{name: bible.NormalizeName(m[2])}
	if p := strings.TrimSpace(m[1]); p != "" {
		v, err := strconv.ParseUint(p, 10, 31)
		if err != nil || v == 0 {
			return bookName{}, &BookNameError{Kind: PrefixInvalid, Input: s}
		}
		n.prefix = int(v)
	}
	return n, nil
}

// ResolveBookName maps a human-typed book name ("1 jn", "gen",
// "Song of Solomon") to a book of canon.
//
// The alias table is consulted first. Otherwise the first book in canon
// order whose display name starts with the typed name and carries the same
// numeric prefix wins.
func ResolveBookName(input string, canon *bible.Canon) (bible.Book, error) {
	in, berr := splitBookName(input)
	if berr != nil {
		return bible.BookInvalid, berr
	}

	if b, ok := canon.Aliases()[in.key()]; ok {
		return b, nil
	}
	if b, ok := defaultAliases[in.key()]; ok && canon.Has(b) {
		return b, nil
	}

	for _, info := range canon.Books() {
		if nameMatches(info.Name, in) || (info.Name != info.Book.Name() && nameMatches(info.Book.Name(), in)) {
			return info.Book, nil
		}
	}
	return bible.BookInvalid, &BookNameError{Kind: BookDoesNotExist, Input: input}
}

func nameMatches(display string, in bookName) bool {
	candidate, err := splitBookName(display)
	if err != nil {
		return false
	}
	return candidate.prefix == in.prefix && strings.HasPrefix(candidate.name, in.name)
}
