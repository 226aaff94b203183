package bible

import (
	"fmt"
	"slices"
	"strconv"
)

// Language is the lexicon a Strong's number belongs to.
type Language uint8

const (
	Hebrew Language = iota + 1
	Greek
)

// StrongsNumber is a lexical identifier such as H7225 or G26.
type StrongsNumber struct {
	Lang   Language
	Number uint32
}

// IsStrongsLiteral reports whether s has the exact literal shape of a
// Strong's number: an upper-case H or G followed by one or more digits.
func IsStrongsLiteral(s string) bool {
	if len(s) < 2 || (s[0] != 'H' && s[0] != 'G') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseStrongs parses "H7225" or "G0026". Leading zeros are accepted and
// dropped.
func ParseStrongs(s string) (StrongsNumber, error) {
	if !IsStrongsLiteral(s) {
		return StrongsNumber{}, fmt.Errorf("invalid Strong's number %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil {
		return StrongsNumber{}, fmt.Errorf("invalid Strong's number %q: %w", s, err)
	}
	lang := Hebrew
	if s[0] == 'G' {
		lang = Greek
	}
	return StrongsNumber{Lang: lang, Number: uint32(n)}, nil
}

// MustStrongs is ParseStrongs for literals known to be valid.
func MustStrongs(s string) StrongsNumber {
	n, err := ParseStrongs(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (s StrongsNumber) String() string {
	prefix := "H"
	if s.Lang == Greek {
		prefix = "G"
	}
	return prefix + strconv.FormatUint(uint64(s.Number), 10)
}

// MarshalText encodes the number as "G26".
func (s StrongsNumber) MarshalText() ([]byte, error) {
	if s.Lang != Hebrew && s.Lang != Greek {
		return nil, fmt.Errorf("invalid Strong's language %d", s.Lang)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes "G26".
func (s *StrongsNumber) UnmarshalText(text []byte) error {
	parsed, err := ParseStrongs(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// LinkWord tags a run of verse words with lexical identifiers.
type LinkWord struct {
	WordRange
	Strongs []StrongsNumber `json:"strongs"`
}

// LinkEntry holds every lexical link for one verse.
type LinkEntry struct {
	Verse VerseID    `json:"verse"`
	Words []LinkWord `json:"words"`
}

// TagsAt returns the union of the Strong's numbers of every link covering
// the 1-based word index, in first-seen order. It returns nil when the word
// is untagged.
func (e *LinkEntry) TagsAt(index int) []StrongsNumber {
	if e == nil {
		return nil
	}
	var tags []StrongsNumber
	for _, w := range e.Words {
		if !w.Contains(index) {
			continue
		}
		for _, s := range w.Strongs {
			if !slices.Contains(tags, s) {
				tags = append(tags, s)
			}
		}
	}
	return tags
}
