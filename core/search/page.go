package search

import (
	"cmp"
	"slices"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
)

// Compare is the canonical hit order. Located hits come first, by verse
// then module then entry; the module tiebreak keeps the same verse from
// several bibles in a stable order. Unlocated hits follow by module and
// entry.
func Compare(a, b Hit) int {
	switch {
	case a.Verse != nil && b.Verse != nil:
		if c := a.Verse.Compare(*b.Verse); c != 0 {
			return c
		}
	case a.Verse != nil:
		return -1
	case b.Verse != nil:
		return 1
	}
	if c := cmp.Compare(a.Module, b.Module); c != 0 {
		return c
	}
	return cmp.Compare(a.Entry, b.Entry)
}

// Sort orders hits canonically.
func Sort(hits []Hit) {
	slices.SortStableFunc(hits, Compare)
}

// Page is one slice of a sorted hit list.
type Page struct {
	Hits      []Hit `json:"hits"`
	Total     int   `json:"total"`
	PageIndex int   `json:"page_index"`
	PageSize  int   `json:"page_size"`
	PageCount int   `json:"page_count"`
}

// Paginate returns hits[pageIndex*pageSize : +pageSize]. A page past the
// end is empty rather than an error.
func Paginate(hits []Hit, pageIndex, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, &errors.ValidationError{Field: "page_size", Message: "page size must be positive"}
	}
	p := Page{
		Hits:      []Hit{},
		Total:     len(hits),
		PageIndex: pageIndex,
		PageSize:  pageSize,
		PageCount: (len(hits) + pageSize - 1) / pageSize,
	}
	if pageIndex < 0 || pageIndex >= p.PageCount {
		return p, nil
	}
	start := pageIndex * pageSize
	p.Hits = hits[start:min(start+pageSize, len(hits))]
	return p, nil
}

// Group is the hits of one module within a page.
type Group struct {
	Module bible.ModuleID
	Kind   library.ModuleKind
	Hits   []Hit
}

// GroupByModule groups hits by module, in order of first appearance.
func GroupByModule(hits []Hit) []Group {
	var groups []Group
	index := make(map[bible.ModuleID]int)
	for _, h := range hits {
		i, ok := index[h.Module]
		if !ok {
			i = len(groups)
			index[h.Module] = i
			groups = append(groups, Group{Module: h.Module, Kind: h.Kind})
		}
		groups[i].Hits = append(groups[i].Hits, h)
	}
	return groups
}

// Rendered is the display form of one hit.
type Rendered struct {
	Hit   Hit    `json:"hit"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Renderer turns a group of hits from one module into display output,
// one Rendered per hit.
type Renderer interface {
	RenderGroup(g Group) ([]Rendered, error)
}

// RenderPage renders a page group by group, then restores canonical order.
func RenderPage(page Page, r Renderer) ([]Rendered, error) {
	out := make([]Rendered, 0, len(page.Hits))
	for _, g := range GroupByModule(page.Hits) {
		rendered, err := r.RenderGroup(g)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
	}
	slices.SortStableFunc(out, func(a, b Rendered) int { return Compare(a.Hit, b.Hit) })
	return out, nil
}
