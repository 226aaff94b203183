package search_test

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/core/query"
	"github.com/FocuswithJustin/JuniperStudy/core/reference"
	"github.com/FocuswithJustin/JuniperStudy/core/search"
	"github.com/FocuswithJustin/JuniperStudy/internal/testlib"
)

var allModules = []bible.ModuleID{
	testlib.KJV, testlib.WEB, testlib.KJVLinks, testlib.Dictionary, testlib.XRefs,
	testlib.Commentary, testlib.Notebook, testlib.Lexicon, testlib.Readings,
}

func mustQuery(t *testing.T, lib *library.Library, text string) search.Query {
	t.Helper()
	q, err := search.ParseQuery(text, testlib.KJV, lib)
	if err != nil {
		t.Fatalf("ParseQuery(%q) failed: %v", text, err)
	}
	return q
}

func run(t *testing.T, text string, mode search.Mode, ids ...bible.ModuleID) []search.Hit {
	t.Helper()
	lib := testlib.Library()
	hits, err := search.Engine{}.Search(lib, ids, mustQuery(t, lib, text), mode)
	if err != nil {
		t.Fatalf("Search(%q) failed: %v", text, err)
	}
	return hits
}

// describe renders a hit as "module@verse#entry body|title" for comparison.
func describe(h search.Hit) string {
	s := string(h.Module)
	if h.Verse != nil {
		s += "@" + h.Verse.String()
	}
	if h.Entry >= 0 {
		s += fmt.Sprintf("#%d", h.Entry)
	}
	return s + " " + ints(h.BodyHits) + "|" + ints(h.TitleHits)
}

func ints(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%02d", x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func describeAll(hits []search.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = describe(h)
	}
	return out
}

func TestRangeFromRef(t *testing.T) {
	lib := testlib.Library()
	tests := []struct {
		ref        string
		start, end string
	}{
		{"Gen.1.1", "Gen.1.1", "Gen.1.1"},
		{"Ps.119", "Ps.119.1", "Ps.119.176"},
		{"Gen.1.3-Gen.2", "Gen.1.3", "Gen.2.25"},
		{"Jude", "Jude.1.1", "Jude.1.30"},
		{"Rev", "Rev.1.1", "Rev.22.21"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			r, err := search.RangeFromRef(testlib.Ref(tt.ref), lib)
			if err != nil {
				t.Fatalf("RangeFromRef failed: %v", err)
			}
			if r.Bible != testlib.KJV || r.Start.String() != tt.start || r.End.String() != tt.end {
				t.Errorf("RangeFromRef(%s) = %v, want kjv %s-%s", tt.ref, r, tt.start, tt.end)
			}
		})
	}

	_, err := search.RangeFromRef(bible.MustParseOSISRef("Gen.1", testlib.Dictionary), lib)
	var lookup *errors.LookupError
	if !errors.As(err, &lookup) {
		t.Errorf("RangeFromRef on a dictionary error = %v, want LookupError", err)
	}
}

func TestRangeContainsAndIntersects(t *testing.T) {
	r := search.Range{Bible: testlib.KJV, Start: testlib.V(bible.John, 1, 1), End: testlib.V(bible.John, 1, 51)}
	if !r.Contains(testlib.V(bible.John, 1, 51)) || r.Contains(testlib.V(bible.John, 2, 1)) {
		t.Error("Contains should be inclusive of both ends only")
	}

	tests := []struct {
		ref  string
		want bool
	}{
		{"John.1.1", true},
		{"John", true},
		{"John.1.51-John.2.3", true},
		{"John.2", false},
		{"1John.1.1", false},
		{"Gen.1.1-Gen.50.26", false},
	}
	for _, tt := range tests {
		if got := r.Intersects(testlib.Ref(tt.ref)); got != tt.want {
			t.Errorf("Intersects(%s) = %v, want %v", tt.ref, got, tt.want)
		}
	}
	if !r.Intersects(bible.MustParseOSISRef("John.1.5", testlib.WEB)) {
		t.Error("Intersects should ignore the reference's bible")
	}
}

func TestParseQuery(t *testing.T) {
	lib := testlib.Library()

	q := mustQuery(t, lib, "John 1; Gen 1:1 (WEB) :: word")
	if len(q.Ranges) != 2 {
		t.Fatalf("Ranges = %v, want 2", q.Ranges)
	}
	if q.Ranges[0].Bible != testlib.KJV || q.Ranges[0].End != testlib.V(bible.John, 1, 51) {
		t.Errorf("Ranges[0] = %v", q.Ranges[0])
	}
	if q.Ranges[1].Bible != testlib.WEB {
		t.Errorf("Ranges[1].Bible = %s, want web", q.Ranges[1].Bible)
	}
	if got := query.String(q.Root); got != "Word(word)" {
		t.Errorf("Root = %s, want Word(word)", got)
	}

	q = mustQuery(t, lib, "  love OR faith ")
	if len(q.Ranges) != 0 || query.String(q.Root) != "Or[Word(love), Word(faith)]" {
		t.Errorf("bare query = %+v", q)
	}

	q = mustQuery(t, lib, "Gen 1 ::   ")
	if q.Root != nil || len(q.Ranges) != 1 {
		t.Errorf("citation-only query = %+v, want nil root and one range", q)
	}

	if q = mustQuery(t, lib, ""); q.Root != nil {
		t.Errorf("empty query root = %v, want nil", q.Root)
	}
}

func TestParseQueryErrors(t *testing.T) {
	lib := testlib.Library()

	_, err := search.ParseQuery("John 1 :: a :: b", testlib.KJV, lib)
	var format *search.QueryFormatError
	if !errors.As(err, &format) || !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("three segments error = %v, want QueryFormatError", err)
	}

	_, err = search.ParseQuery("Hezekiah 1 :: love", testlib.KJV, lib)
	var refErr *reference.RefParseError
	if !errors.As(err, &refErr) {
		t.Errorf("bad citation error = %v, want RefParseError", err)
	}

	_, err = search.ParseQuery("John 1 :: (love", testlib.KJV, lib)
	var syntax *query.SyntaxError
	if !errors.As(err, &syntax) {
		t.Errorf("bad query error = %v, want SyntaxError", err)
	}

	_, err = search.ParseQuery("John 22 (WEB) :: word", testlib.KJV, lib)
	if !errors.As(err, &refErr) || refErr.Kind != reference.RefIDDoesNotExist {
		t.Errorf("citation outside the WEB canon error = %v, want RefIDDoesNotExist", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want search.Mode
	}{
		{"", search.ModeTitleAndBody},
		{"title", search.ModeTitle},
		{"BODY", search.ModeBody},
		{"title_and_body", search.ModeTitleAndBody},
	}
	for _, tt := range tests {
		if got, err := search.ParseMode(tt.in); err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := search.ParseMode("titles"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ParseMode(titles) error = %v, want ErrInvalidInput", err)
	}
}

func TestSearchBible(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"word", "John 1 :: word", []string{"kjv@John.1.1 [05,08,14]|[]"}},
		{"strongs", "Gen 1 :: H430", []string{"kjv@Gen.1.1 [03]|[]"}},
		{"strongs and word", "John 1:1 :: G3056 God", []string{"kjv@John.1.1 [05,08,11,14,16]|[]"}},
		{"phrase first fit", `John 1 :: "the word"`, []string{"kjv@John.1.1 [04,05]|[]"}},
		{"not gives empty match", "Gen 1:1-3 :: NOT god", []string{"kjv@Gen.1.2 []|[]"}},
		{"or is left biased", "1 John 4 :: loveth OR love", []string{"kjv@1John.4.8 [02]|[]", "kjv@1John.4.16 [07,15]|[]"}},
		{"punctuation stripped", "Gen 1:1 :: earth", []string{"kjv@Gen.1.1 [09]|[]"}},
		{"no citations", "love", nil},
		{"empty query", "Gen 1 ::", nil},
		{"verse without text", "Matt 5 :: blessed", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeAll(run(t, tt.query, search.ModeTitleAndBody, testlib.KJV))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearchTranslationTiebreak(t *testing.T) {
	got := describeAll(run(t, "John 1:1; John 1:1 (WEB); Gen 1:1 (WEB) :: god", search.ModeTitleAndBody, testlib.WEB, testlib.KJV))
	want := []string{
		"web@Gen.1.1 [03]|[]",
		"kjv@John.1.1 [11,16]|[]",
		"web@John.1.1 [11,16]|[]",
	}
	if !slices.Equal(got, want) {
		t.Errorf("hits = %v, want %v", got, want)
	}
}

func TestSearchAllModules(t *testing.T) {
	got := describeAll(run(t, "Gen 1; John 1; 1 John 4 :: love", search.ModeTitleAndBody, allModules...))
	want := []string{
		"kjv@1John.4.8 [10]|[]",
		"notes@1John.4.8#1 []|[00]",
		"tsk@1John.4.8#1 [02]|[]",
		"kjv@1John.4.16 [07,15]|[]",
		"eastons#0 [00]|[00]",
	}
	if !slices.Equal(got, want) {
		t.Errorf("hits = %v, want %v", got, want)
	}
}

func TestSearchModes(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		mode   search.Mode
		module bible.ModuleID
		want   []string
	}{
		{"dictionary title", "love", search.ModeTitle, testlib.Dictionary, []string{"eastons#0 []|[00]"}},
		{"dictionary body", "love", search.ModeBody, testlib.Dictionary, []string{"eastons#0 [00]|[]"}},
		{"dictionary strongs anchor", "G3056", search.ModeBody, testlib.Dictionary, []string{"eastons#2 [01]|[]"}},
		{"dictionary aliases are not searched", "charity", search.ModeTitleAndBody, testlib.Dictionary, nil},
		{"lexicon body only", "agape", search.ModeTitleAndBody, testlib.Lexicon, nil},
		{"lexicon definition", "affection,", search.ModeBody, testlib.Lexicon, []string{"strongs_greek#0 [01]|[]"}},
		{"lexicon has no title", "affection,", search.ModeTitle, testlib.Lexicon, nil},
		{"highlight title", "1 John 4 :: love", search.ModeTitle, testlib.Notebook, []string{"notes@1John.4.8#1 []|[00]"}},
		{"highlight description", "1 John 4 :: nature", search.ModeBody, testlib.Notebook, []string{"notes@1John.4.8#1 [01]|[]"}},
		{"highlight title not in body mode", "1 John 4 :: love", search.ModeBody, testlib.Notebook, nil},
		{"note content", "Gen 1:5 :: light", search.ModeBody, testlib.Notebook, []string{"notes@Gen.1.1#0 [03]|[]"}},
		{"note outside range", "John 3 :: light", search.ModeBody, testlib.Notebook, nil},
		{"directed xref by source", "John 1:1 :: word", search.ModeBody, testlib.XRefs, []string{"tsk@John.1.1#0 [04]|[]"}},
		{"directed xref target does not place it", "Gen 1:1 :: word", search.ModeBody, testlib.XRefs, nil},
		{"xref has no title", "John 1:1 :: word", search.ModeTitle, testlib.XRefs, nil},
		{"mutual xref by any ref", "1 John 4:16 :: god", search.ModeBody, testlib.XRefs, []string{"tsk@1John.4.8#1 [00]|[]"}},
		{"commentary", "John 3 :: love", search.ModeBody, testlib.Commentary, []string{"mhc@John.3.16#1 [03]|[]"}},
		{"commentary browse", "Gen 1:2 ::", search.ModeBody, testlib.Commentary, []string{"mhc@Gen.1.1#0 []|[]"}},
		{"commentary browse needs a range", "", search.ModeBody, testlib.Commentary, nil},
		{"empty query skips other kinds", "1 John 4 ::", search.ModeTitleAndBody, testlib.Notebook, nil},
		{"readings never match", "Gen 1 :: gen", search.ModeTitleAndBody, testlib.Readings, nil},
		{"links never match", "Gen 1 :: H430", search.ModeTitleAndBody, testlib.KJVLinks, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeAll(run(t, tt.query, tt.mode, tt.module))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q, %s) = %v, want %v", tt.query, tt.mode, got, tt.want)
			}
		})
	}
}

func TestSearchUnknownModule(t *testing.T) {
	lib := testlib.Library()
	_, err := search.Engine{}.Search(lib, []bible.ModuleID{testlib.KJV, "nope"}, mustQuery(t, lib, "love"), search.ModeBody)
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Errorf("error = %v, want NotFoundError for nope", err)
	}
	if errors.Is(err, errors.ErrInvalidInput) {
		t.Error("unknown module is a lookup failure, not bad input")
	}
}

func TestSearchWholeBible(t *testing.T) {
	lib := testlib.Library()
	q := mustQuery(t, lib, "love")
	ranges, err := search.WholeBible(testlib.KJV, lib)
	if err != nil {
		t.Fatalf("WholeBible failed: %v", err)
	}
	if len(ranges) != 66 {
		t.Errorf("len(ranges) = %d, want 66", len(ranges))
	}
	q.Ranges = ranges
	hits, err := search.Engine{}.Search(lib, []bible.ModuleID{testlib.KJV}, q, search.ModeBody)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	want := []string{"kjv@Rom.8.28 [13]|[]", "kjv@1John.4.8 [10]|[]", "kjv@1John.4.16 [07,15]|[]"}
	if got := describeAll(hits); !slices.Equal(got, want) {
		t.Errorf("hits = %v, want %v", got, want)
	}
}

func TestSearchParallelDeterminism(t *testing.T) {
	lib := testlib.Library()
	q := mustQuery(t, lib, "the OR god")
	for _, id := range []bible.ModuleID{testlib.KJV, testlib.WEB} {
		ranges, err := search.WholeBible(id, lib)
		if err != nil {
			t.Fatal(err)
		}
		q.Ranges = append(q.Ranges, ranges...)
	}
	ids := []bible.ModuleID{testlib.WEB, testlib.KJV}

	serial, err := search.Engine{Workers: 1}.Search(lib, ids, q, search.ModeBody)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(serial) < 10 {
		t.Fatalf("len(hits) = %d, want at least 10", len(serial))
	}
	for _, workers := range []int{0, 2, 16} {
		for range 5 {
			got, err := search.Engine{Workers: workers}.Search(lib, ids, q, search.ModeBody)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if !reflect.DeepEqual(got, serial) {
				t.Fatalf("Workers=%d result differs from serial scan", workers)
			}
		}
	}
}

func TestSort(t *testing.T) {
	v := func(b bible.Book, c, vs int) *bible.VerseID {
		id := testlib.V(b, c, vs)
		return &id
	}
	hits := []search.Hit{
		{Module: "eastons", Entry: 2},
		{Module: "web", Entry: -1, Verse: v(bible.John, 1, 1)},
		{Module: "eastons", Entry: 0},
		{Module: "kjv", Entry: -1, Verse: v(bible.John, 1, 1)},
		{Module: "tsk", Entry: 3, Verse: v(bible.Gen, 1, 1)},
		{Module: "tsk", Entry: 1, Verse: v(bible.Gen, 1, 1)},
		{Module: "kjv", Entry: -1, Verse: v(bible.Gen, 2, 1)},
		{Module: "abc", Entry: 0},
	}
	search.Sort(hits)
	want := []string{
		"tsk@Gen.1.1#1 []|[]",
		"tsk@Gen.1.1#3 []|[]",
		"kjv@Gen.2.1 []|[]",
		"kjv@John.1.1 []|[]",
		"web@John.1.1 []|[]",
		"abc#0 []|[]",
		"eastons#0 []|[]",
		"eastons#2 []|[]",
	}
	if got := describeAll(hits); !slices.Equal(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestPaginate(t *testing.T) {
	hits := make([]search.Hit, 5)
	for i := range hits {
		hits[i] = search.Hit{Module: "eastons", Entry: i}
	}

	tests := []struct {
		page, size  int
		wantEntries []int
		wantCount   int
	}{
		{0, 2, []int{0, 1}, 3},
		{2, 2, []int{4}, 3},
		{3, 2, []int{}, 3},
		{-1, 2, []int{}, 3},
		{0, 10, []int{0, 1, 2, 3, 4}, 1},
	}
	for _, tt := range tests {
		p, err := search.Paginate(hits, tt.page, tt.size)
		if err != nil {
			t.Fatalf("Paginate(%d, %d) failed: %v", tt.page, tt.size, err)
		}
		var got []int
		for _, h := range p.Hits {
			got = append(got, h.Entry)
		}
		if !slices.Equal(got, tt.wantEntries) {
			t.Errorf("Paginate(%d, %d) entries = %v, want %v", tt.page, tt.size, got, tt.wantEntries)
		}
		if p.Total != 5 || p.PageCount != tt.wantCount || p.Hits == nil {
			t.Errorf("Paginate(%d, %d) = %+v, want total 5 and %d pages", tt.page, tt.size, p, tt.wantCount)
		}
	}

	empty, err := search.Paginate(nil, 0, 10)
	if err != nil || len(empty.Hits) != 0 || empty.PageCount != 0 {
		t.Errorf("Paginate(nil) = %+v, %v", empty, err)
	}

	for _, size := range []int{0, -3} {
		_, err := search.Paginate(hits, 0, size)
		var ve *errors.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Paginate size %d error = %v, want ValidationError", size, err)
		}
	}
}

func TestGroupByModule(t *testing.T) {
	hits := run(t, "Gen 1; John 1; 1 John 4 :: love", search.ModeTitleAndBody, allModules...)
	groups := search.GroupByModule(hits)
	var got []string
	for _, g := range groups {
		got = append(got, fmt.Sprintf("%s:%d", g.Module, len(g.Hits)))
	}
	want := []string{"kjv:2", "notes:1", "tsk:1", "eastons:1"}
	if !slices.Equal(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
	if groups[0].Kind != library.KindBible || groups[3].Kind != library.KindDictionary {
		t.Errorf("group kinds = %s, %s", groups[0].Kind, groups[3].Kind)
	}
}

type recordingRenderer struct {
	groups []bible.ModuleID
}

func (r *recordingRenderer) RenderGroup(g search.Group) ([]search.Rendered, error) {
	r.groups = append(r.groups, g.Module)
	out := make([]search.Rendered, len(g.Hits))
	for i, h := range g.Hits {
		out[i] = search.Rendered{Hit: h, Text: describe(h)}
	}
	return out, nil
}

func TestRenderPageRestoresOrder(t *testing.T) {
	hits := run(t, "Gen 1; John 1; 1 John 4 :: love", search.ModeTitleAndBody, allModules...)
	page, err := search.Paginate(hits, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	r := &recordingRenderer{}
	rendered, err := search.RenderPage(page, r)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if want := []bible.ModuleID{"kjv", "notes", "tsk", "eastons"}; !slices.Equal(r.groups, want) {
		t.Errorf("render calls = %v, want %v", r.groups, want)
	}
	var got []string
	for _, rd := range rendered {
		got = append(got, rd.Text)
	}
	if want := describeAll(hits); !slices.Equal(got, want) {
		t.Errorf("rendered order = %v, want %v", got, want)
	}
}

type failingRenderer struct{}

func (failingRenderer) RenderGroup(search.Group) ([]search.Rendered, error) {
	return nil, errors.ErrInternal
}

func TestRenderPageError(t *testing.T) {
	page := search.Page{Hits: []search.Hit{{Module: "kjv"}}}
	if _, err := search.RenderPage(page, failingRenderer{}); !errors.Is(err, errors.ErrInternal) {
		t.Errorf("error = %v, want ErrInternal", err)
	}
}
