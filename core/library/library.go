package library

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/reference"
)

// Library is a set of modules keyed by id. It is built once, then shared
// read-only.
type Library struct {
	order   []bible.ModuleID
	modules map[bible.ModuleID]Module
	links   map[bible.ModuleID]*StrongsLinksModule
}

// New returns an empty library.
func New() *Library {
	return &Library{
		modules: make(map[bible.ModuleID]Module),
		links:   make(map[bible.ModuleID]*StrongsLinksModule),
	}
}

// Add registers a module. Ids must be unique and non-empty.
func (l *Library) Add(m Module) error {
	info := m.meta()
	if info.ID == "" {
		return errors.NewValidation("id", "module id is empty")
	}
	if _, dup := l.modules[info.ID]; dup {
		return &errors.ValidationError{Field: "id", Value: string(info.ID), Message: fmt.Sprintf("duplicate module id %q", info.ID)}
	}
	info.Kind = kindOf(m)
	if info.Name == "" {
		info.Name = string(info.ID)
	}
	if links, ok := m.(*StrongsLinksModule); ok {
		l.links[links.Bible] = links
	}
	l.modules[info.ID] = m
	l.order = append(l.order, info.ID)
	return nil
}

// MustAdd is Add for fixtures.
func (l *Library) MustAdd(modules ...Module) *Library {
	for _, m := range modules {
		if err := l.Add(m); err != nil {
			panic(err)
		}
	}
	return l
}

func kindOf(m Module) ModuleKind {
	switch m.(type) {
	case *BibleModule:
		return KindBible
	case *StrongsLinksModule:
		return KindStrongsLinks
	case *DictionaryModule:
		return KindDictionary
	case *XRefModule:
		return KindXRefs
	case *CommentaryModule:
		return KindCommentary
	case *NotebookModule:
		return KindNotebook
	case *StrongsDefsModule:
		return KindStrongsDefs
	case *ReadingsModule:
		return KindReadings
	}
	panic(fmt.Sprintf("library: unknown module type %T", m))
}

// Len returns the number of modules.
func (l *Library) Len() int { return len(l.order) }

// Module looks a module up by id.
func (l *Library) Module(id bible.ModuleID) (Module, error) {
	m, ok := l.modules[id]
	if !ok {
		return nil, errors.NewNotFound("module", string(id))
	}
	return m, nil
}

// Bible looks a bible up by id. A module of another kind, or a bible
// without canon data, is a lookup error.
func (l *Library) Bible(id bible.ModuleID) (*BibleModule, error) {
	m, err := l.Module(id)
	if err != nil {
		return nil, err
	}
	b, ok := m.(*BibleModule)
	if !ok {
		return nil, errors.NewLookup(string(id), "bible", "kind is "+string(m.Info().Kind))
	}
	if b.Canon == nil {
		return nil, errors.NewLookup(string(id), "bible", "no canon data")
	}
	return b, nil
}

// Modules returns every module in the order it was added.
func (l *Library) Modules() []Module {
	out := make([]Module, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.modules[id])
	}
	return out
}

// Bibles returns the bible modules in library order.
func (l *Library) Bibles() []*BibleModule {
	var out []*BibleModule
	for _, id := range l.order {
		if b, ok := l.modules[id].(*BibleModule); ok {
			out = append(out, b)
		}
	}
	return out
}

// LinksFor returns the lexical-link overlay for a bible, or nil.
func (l *Library) LinksFor(id bible.ModuleID) *StrongsLinksModule {
	return l.links[id]
}

// Canon implements reference.BibleSource.
func (l *Library) Canon(id bible.ModuleID) (*bible.Canon, bool) {
	b, err := l.Bible(id)
	if err != nil {
		return nil, false
	}
	return b.Canon, true
}

// BibleNames implements reference.BibleSource.
func (l *Library) BibleNames() []reference.BibleName {
	bibles := l.Bibles()
	out := make([]reference.BibleName, 0, len(bibles))
	for _, b := range bibles {
		out = append(out, reference.BibleName{ID: b.Meta.ID, Name: b.Meta.Name, ShortName: b.Meta.ShortName})
	}
	return out
}

var _ reference.BibleSource = (*Library)(nil)
