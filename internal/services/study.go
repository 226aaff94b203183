// Package services turns API and CLI requests into library lookups and
// searches over the published module library.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/core/query"
	"github.com/FocuswithJustin/JuniperStudy/core/reference"
	"github.com/FocuswithJustin/JuniperStudy/core/search"
	"github.com/FocuswithJustin/JuniperStudy/internal/cache"
	"github.com/FocuswithJustin/JuniperStudy/internal/config"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
)

// maxCachedSearches bounds the hit cache.
const maxCachedSearches = 256

// SearchRequest is one search as submitted by a client.
type SearchRequest struct {
	// Query is "citations :: query" or a bare query.
	Query string `json:"query"`
	// AST is a pre-parsed query tree; it replaces the expression half of Query.
	AST *query.Expr `json:"ast,omitempty"`
	// Citations restricts the search further, in addition to any in Query.
	Citations string           `json:"citations,omitempty"`
	Modules   []bible.ModuleID `json:"modules,omitempty"`
	Mode      string           `json:"mode,omitempty"`
	Bible     bible.ModuleID   `json:"bible,omitempty"`
	Page      int              `json:"page"`
	Size      int              `json:"size,omitempty"`
	// Render adds display text to every hit of the page.
	Render      bool `json:"render,omitempty"`
	ShowStrongs bool `json:"show_strongs,omitempty"`
}

// SearchResponse is one page of results.
type SearchResponse struct {
	Query   string            `json:"query"`
	Mode    search.Mode       `json:"mode"`
	Modules []bible.ModuleID  `json:"modules"`
	Ranges  []search.Range    `json:"ranges"`
	Cached  bool              `json:"cached"`
	Page    search.Page       `json:"page"`
	Results []search.Rendered `json:"results,omitempty"`
}

// Reference is a parsed citation and the verses it covers.
type Reference struct {
	OSIS  string       `json:"osis"`
	Ref   bible.RefID  `json:"ref"`
	Range search.Range `json:"range"`
}

// StudyService answers queries against the library held by a Handle.
type StudyService struct {
	handle       *library.Handle
	engine       search.Engine
	defaultBible bible.ModuleID
	pageSize     int
	hits         *cache.TTLCache[string, []search.Hit]
}

// NewStudyService creates a service reading from handle.
func NewStudyService(handle *library.Handle, cfg *config.Config) *StudyService {
	return &StudyService{
		handle:       handle,
		engine:       search.Engine{Workers: cfg.Workers},
		defaultBible: bible.ModuleID(cfg.DefaultBible),
		pageSize:     cfg.PageSize,
		hits:         cache.New[string, []search.Hit](cfg.CacheTTL, maxCachedSearches),
	}
}

// Library returns the published library or the not-ready/failed error.
func (s *StudyService) Library() (*library.Library, error) {
	return s.handle.Get()
}

// Status reports the loading state.
func (s *StudyService) Status() library.Status {
	return s.handle.Status()
}

// Ready is closed once loading has finished, successfully or not.
func (s *StudyService) Ready() <-chan struct{} {
	return s.handle.Ready()
}

// Modules lists every loaded module in library order.
func (s *StudyService) Modules() ([]library.ModuleInfo, error) {
	lib, err := s.Library()
	if err != nil {
		return nil, err
	}
	modules := lib.Modules()
	out := make([]library.ModuleInfo, len(modules))
	for i, m := range modules {
		out[i] = m.Info()
	}
	return out, nil
}

// References parses human-typed citations separated by ';'.
func (s *StudyService) References(text string, bibleID bible.ModuleID) ([]Reference, error) {
	lib, err := s.Library()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewValidation("q", "citation text is required")
	}
	refs, err := reference.ParseReferences(text, s.bibleOr(bibleID), lib)
	if err != nil {
		return nil, err
	}
	out := make([]Reference, 0, len(refs))
	for _, ref := range refs {
		r, err := search.RangeFromRef(ref, lib)
		if err != nil {
			return nil, err
		}
		out = append(out, Reference{OSIS: ref.String(), Ref: ref, Range: r})
	}
	return out, nil
}

func (s *StudyService) bibleOr(id bible.ModuleID) bible.ModuleID {
	if id != "" {
		return id
	}
	return s.defaultBible
}

// compiled is a validated request ready to run.
type compiled struct {
	q       search.Query
	mode    search.Mode
	modules []bible.ModuleID
	size    int
}

func (c compiled) key() string {
	ranges := make([]string, len(c.q.Ranges))
	for i, r := range c.q.Ranges {
		ranges[i] = r.String()
	}
	mods := make([]string, len(c.modules))
	for i, m := range c.modules {
		mods[i] = string(m)
	}
	return fmt.Sprintf("%s|%s|%s|%s", c.mode, strings.Join(mods, ","), strings.Join(ranges, ","), query.String(c.q.Root))
}

func (s *StudyService) compile(lib *library.Library, req *SearchRequest) (compiled, error) {
	var c compiled
	var err error

	if c.mode, err = search.ParseMode(req.Mode); err != nil {
		return c, err
	}
	if req.Page < 0 {
		return c, errors.NewValidation("page", "must not be negative")
	}
	c.size = req.Size
	if c.size == 0 {
		c.size = s.pageSize
	}
	if c.size < 0 || c.size > config.MaxPageSize {
		return c, errors.NewValidation("size", fmt.Sprintf("must be between 1 and %d", config.MaxPageSize))
	}

	bibleID := s.bibleOr(req.Bible)
	text := strings.TrimSpace(req.Query)
	switch {
	case req.AST != nil && req.AST.Part != nil:
		if text != "" {
			return c, errors.NewValidation("ast", "give either query or ast, not both")
		}
		c.q.Root = req.AST.Part
	case text != "":
		if c.q, err = search.ParseQuery(text, bibleID, lib); err != nil {
			return c, err
		}
	case strings.TrimSpace(req.Citations) == "":
		return c, errors.NewValidation("query", "query text, ast or citations are required")
	}

	if strings.TrimSpace(req.Citations) != "" {
		refs, err := reference.ParseReferences(req.Citations, bibleID, lib)
		if err != nil {
			return c, err
		}
		extra, err := search.Ranges(refs, lib)
		if err != nil {
			return c, err
		}
		c.q.Ranges = append(c.q.Ranges, extra...)
	}

	c.modules = req.Modules
	if len(c.modules) == 0 {
		for _, m := range lib.Modules() {
			c.modules = append(c.modules, m.Info().ID)
		}
	}
	if len(c.q.Ranges) == 0 {
		if c.q.Ranges, err = wholeBibles(lib, c.modules); err != nil {
			return c, err
		}
	}
	return c, nil
}

// wholeBibles covers every selected bible when no citations were given.
func wholeBibles(lib *library.Library, ids []bible.ModuleID) ([]search.Range, error) {
	var out []search.Range
	for _, id := range ids {
		m, err := lib.Module(id)
		if err != nil {
			return nil, err
		}
		if _, ok := m.(*library.BibleModule); !ok {
			continue
		}
		r, err := search.WholeBible(id, lib)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

func (s *StudyService) run(ctx context.Context, lib *library.Library, c compiled) ([]search.Hit, bool, error) {
	key := c.key()
	if hits, ok := s.hits.Get(key); ok {
		return hits, true, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	start := time.Now()
	hits, err := s.engine.Search(lib, c.modules, c.q, c.mode)
	if err != nil {
		return nil, false, err
	}
	logging.SearchCompleted(ctx, query.String(c.q.Root), len(c.modules), len(hits), time.Since(start))
	s.hits.Set(key, hits)
	return hits, false, nil
}

// Search runs req and returns the requested page.
func (s *StudyService) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	lib, err := s.Library()
	if err != nil {
		return nil, err
	}
	c, err := s.compile(lib, req)
	if err != nil {
		return nil, err
	}
	hits, cached, err := s.run(ctx, lib, c)
	if err != nil {
		return nil, err
	}
	return s.page(lib, req, c, hits, cached, req.Page)
}

// SearchPages runs req once and calls fn with every page in order, starting
// at req.Page. An empty result still produces one page. It stops at the
// first error from fn or when ctx ends.
func (s *StudyService) SearchPages(ctx context.Context, req *SearchRequest, fn func(*SearchResponse) error) error {
	lib, err := s.Library()
	if err != nil {
		return err
	}
	c, err := s.compile(lib, req)
	if err != nil {
		return err
	}
	hits, cached, err := s.run(ctx, lib, c)
	if err != nil {
		return err
	}
	pageIndex := req.Page
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := s.page(lib, req, c, hits, cached, pageIndex)
		if err != nil {
			return err
		}
		if err := fn(resp); err != nil {
			return err
		}
		pageIndex++
		if pageIndex >= resp.Page.PageCount {
			return nil
		}
	}
}

func (s *StudyService) page(lib *library.Library, req *SearchRequest, c compiled, hits []search.Hit, cached bool, index int) (*SearchResponse, error) {
	p, err := search.Paginate(hits, index, c.size)
	if err != nil {
		return nil, err
	}
	resp := &SearchResponse{
		Mode:    c.mode,
		Modules: c.modules,
		Ranges:  c.q.Ranges,
		Cached:  cached,
		Page:    p,
	}
	if c.q.Root != nil {
		resp.Query = query.String(c.q.Root)
	}
	if resp.Ranges == nil {
		resp.Ranges = []search.Range{}
	}
	if req.Render {
		r := search.TextRenderer{Lib: lib, Root: c.q.Root, ShowStrongs: req.ShowStrongs}
		if resp.Results, err = search.RenderPage(p, r); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
