package search

import (
	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
)

// Range is a citation lowered to concrete verses of one bible.
type Range struct {
	Bible bible.ModuleID `json:"bible"`
	Start bible.VerseID  `json:"start"`
	End   bible.VerseID  `json:"end"`
}

// RangeFromRef lowers ref against its bible. Book and chapter atoms end at
// the last verse of that unit in the bible's canon.
func RangeFromRef(ref bible.RefID, lib *library.Library) (Range, error) {
	b, err := lib.Bible(ref.Bible)
	if err != nil {
		return Range{}, err
	}
	return Range{
		Bible: ref.Bible,
		Start: ref.From.Start(),
		End:   b.Canon.End(ref.Last()),
	}, nil
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v bible.VerseID) bool {
	return r.Start.Compare(v) <= 0 && v.Compare(r.End) <= 0
}

// Intersects reports whether ref overlaps the range. Books are shared
// across bibles, so the bible a reference is tagged with is not compared.
func (r Range) Intersects(ref bible.RefID) bool {
	return ref.Intersects(r.Start, r.End)
}

func (r Range) String() string {
	return string(r.Bible) + ":" + r.Start.String() + "-" + r.End.String()
}

func anyIntersects(ranges []Range, refs ...bible.RefID) bool {
	for _, rg := range ranges {
		for _, ref := range refs {
			if rg.Intersects(ref) {
				return true
			}
		}
	}
	return false
}
