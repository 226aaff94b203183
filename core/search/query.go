package search

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/core/query"
	"github.com/FocuswithJustin/JuniperStudy/core/reference"
)

// Separator splits the citation segment from the query segment.
const Separator = "::"

// Query is a compiled word search: the verse ranges it is restricted to
// and the expression to match. A nil Root is the empty query; it matches
// no verses but still lets location-only browsing return commentary.
type Query struct {
	Ranges []Range
	Root   query.Part
}

// QueryFormatError reports input with more than one "::" separator.
type QueryFormatError struct {
	Text string
}

func (e *QueryFormatError) Error() string {
	return fmt.Sprintf("invalid search %q: expected \"citations %s query\" or a query alone", e.Text, Separator)
}

func (e *QueryFormatError) Unwrap() error { return errors.ErrInvalidInput }

// ParseQuery compiles "citations :: query" or a bare query. Citations are
// parsed against defaultBible unless they name their own bible. A blank
// query segment yields a nil Root.
func ParseQuery(text string, defaultBible bible.ModuleID, lib *library.Library) (Query, error) {
	segments := strings.Split(text, Separator)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	var q Query
	var expr string
	switch len(segments) {
	case 1:
		expr = segments[0]
	case 2:
		refs, err := reference.ParseReferences(segments[0], defaultBible, lib)
		if err != nil {
			return Query{}, err
		}
		if q.Ranges, err = Ranges(refs, lib); err != nil {
			return Query{}, err
		}
		expr = segments[1]
	default:
		return Query{}, &QueryFormatError{Text: text}
	}

	if expr != "" {
		root, err := query.Parse(expr)
		if err != nil {
			return Query{}, err
		}
		q.Root = root
	}
	return q, nil
}

// Ranges lowers every reference; the first failure is returned.
func Ranges(refs []bible.RefID, lib *library.Library) ([]Range, error) {
	out := make([]Range, 0, len(refs))
	for _, ref := range refs {
		r, err := RangeFromRef(ref, lib)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// WholeBible returns one range per book of the bible's canon, for callers
// that want a search without citations to cover every verse.
func WholeBible(id bible.ModuleID, lib *library.Library) ([]Range, error) {
	b, err := lib.Bible(id)
	if err != nil {
		return nil, err
	}
	var out []Range
	for _, info := range b.Canon.Books() {
		if len(info.Chapters) == 0 {
			continue
		}
		a := bible.BookAtom(info.Book)
		out = append(out, Range{Bible: id, Start: a.Start(), End: b.Canon.End(a)})
	}
	return out, nil
}

// Mode selects which fields of a non-bible entry are matched.
type Mode string

const (
	ModeTitle        Mode = "title"
	ModeBody         Mode = "body"
	ModeTitleAndBody Mode = "title_and_body"
)

// ParseMode parses a mode name; the empty string means title_and_body.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTitleAndBody:
		return ModeTitleAndBody, nil
	case ModeTitle:
		return ModeTitle, nil
	case ModeBody:
		return ModeBody, nil
	}
	return "", &errors.ValidationError{Field: "mode", Value: s, Message: fmt.Sprintf("unknown search mode %q", s)}
}

func (m Mode) title() bool { return m == ModeTitle || m == ModeTitleAndBody }
func (m Mode) body() bool  { return m == ModeBody || m == ModeTitleAndBody }
