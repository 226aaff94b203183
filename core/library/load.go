package library

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/internal/archive"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
	"github.com/FocuswithJustin/JuniperStudy/internal/validation"
)

// Options tune LoadDir.
type Options struct {
	// NotebookDSN names an extra notebook: a postgres:// URL or a SQLite path.
	NotebookDSN string
}

// LoadDir loads every module file directly inside dir. Files with
// unrecognised extensions are skipped. Any failure fails the whole load;
// all failures are reported together.
func LoadDir(ctx context.Context, dir string, opts Options) (*Library, error) {
	start := time.Now()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIO("read library directory", dir, err)
	}

	l := &loader{ctx: ctx, lib: New()}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if err := validation.ValidateFilename(name); err != nil {
			l.fail(filepath.Join(dir, name), err)
			continue
		}
		if validation.FormatFromName(name) == validation.FormatUnknown {
			logging.Debug("skipping non-module file", "path", filepath.Join(dir, name))
			continue
		}
		l.loadFile(filepath.Join(dir, name))
	}

	if opts.NotebookDSN != "" {
		l.loadNotebook(opts.NotebookDSN, nil)
	}
	l.checkLinks()

	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	logging.LibraryLoaded(dir, l.lib.Len(), time.Since(start))
	return l.lib, nil
}

type loader struct {
	ctx  context.Context
	lib  *Library
	errs []error
}

func (l *loader) fail(source string, err error) {
	logging.ModuleLoadError(source, err)
	l.errs = append(l.errs, fmt.Errorf("%s: %w", source, err))
}

func (l *loader) add(m Module, source string, data []byte) {
	info := m.meta()
	if err := validation.ValidateModuleID(string(info.ID)); err != nil {
		l.fail(source, errors.NewValidation("id", err.Error()))
		return
	}
	if data != nil {
		info.Hash = ContentHash(data)
	}
	if err := l.lib.Add(m); err != nil {
		l.fail(source, err)
		return
	}
	logging.ModuleLoaded(string(info.ID), string(info.Kind), source, info.Hash)
}

func (l *loader) loadFile(p string) {
	stat, err := os.Stat(p)
	if err != nil {
		l.fail(p, errors.NewIO("stat", p, err))
		return
	}
	if stat.Size() > validation.MaxModuleSize {
		l.fail(p, errors.NewValidation("size", fmt.Sprintf("%d bytes exceeds limit", stat.Size())))
		return
	}

	f, err := os.Open(p)
	if err != nil {
		l.fail(p, errors.NewIO("open", p, err))
		return
	}
	format, err := validation.CheckFormat(f, p)
	f.Close()
	if err != nil {
		l.fail(p, err)
		return
	}

	switch format {
	case validation.FormatTarGZ, validation.FormatTarXZ:
		l.loadBundle(p)
	case validation.FormatSQLite:
		data, err := os.ReadFile(p)
		if err != nil {
			l.fail(p, errors.NewIO("read", p, err))
			return
		}
		l.loadNotebook(p, data)
	default:
		data, err := os.ReadFile(p)
		if err != nil {
			l.fail(p, errors.NewIO("read", p, err))
			return
		}
		l.loadData(p, filepath.Base(p), data)
	}
}

// loadData decodes an in-memory module file; name selects the format.
func (l *loader) loadData(source, name string, data []byte) {
	switch validation.FormatFromName(name) {
	case validation.FormatJSON:
		m, err := DecodeModule(data, source)
		if err != nil {
			l.fail(source, err)
			return
		}
		l.add(m, source, data)
	case validation.FormatJSONXZ:
		raw, err := decompressXZ(data)
		if err != nil {
			l.fail(source, &errors.ParseError{Format: "xz", Path: source, Message: err.Error(), Err: err})
			return
		}
		m, err := DecodeModule(raw, source)
		if err != nil {
			l.fail(source, err)
			return
		}
		l.add(m, source, raw)
	case validation.FormatOSIS:
		id := bible.ModuleID(osisModuleID(name))
		b, links, err := DecodeOSIS(data, id, source)
		if err != nil {
			l.fail(source, err)
			return
		}
		l.add(b, source, data)
		if links != nil {
			l.add(links, source, data)
		}
	default:
		l.fail(source, errors.NewUnsupported("module format", name))
	}
}

func decompressXZ(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(io.LimitReader(r, validation.MaxModuleSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > validation.MaxModuleSize {
		return nil, fmt.Errorf("decompressed module exceeds %d bytes", validation.MaxModuleSize)
	}
	return raw, nil
}

func osisModuleID(name string) string {
	base := strings.ToLower(path.Base(name))
	for _, suffix := range []string{".osis.xml", ".osis"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

func (l *loader) loadBundle(p string) {
	err := archive.Walk(p, func(h *tar.Header, r io.Reader) (bool, error) {
		if err := l.ctx.Err(); err != nil {
			return true, err
		}
		member, err := validation.SanitizeMemberPath(h.Name)
		if err != nil {
			logging.SecurityEvent("unsafe_bundle_member", "library", "bundle", p, "member", h.Name)
			l.fail(p+"!"+h.Name, err)
			return false, nil
		}
		switch validation.FormatFromName(member) {
		case validation.FormatJSON, validation.FormatJSONXZ, validation.FormatOSIS:
		default:
			return false, nil
		}
		if h.Size > validation.MaxModuleSize {
			l.fail(p+"!"+member, errors.NewValidation("size", fmt.Sprintf("%d bytes exceeds limit", h.Size)))
			return false, nil
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return true, err
		}
		l.loadData(p+"!"+member, member, data)
		return false, nil
	})
	if err != nil {
		l.fail(p, errors.NewIO("read bundle", p, err))
	}
}

func (l *loader) loadNotebook(dsn string, data []byte) {
	store, err := OpenNotebookStore(l.ctx, dsn)
	if err != nil {
		l.fail(dsn, err)
		return
	}
	defer store.Close()

	m, err := store.Load(l.ctx)
	if err != nil {
		l.fail(store.source, err)
		return
	}
	l.add(m, store.source, data)
}

// checkLinks rejects link modules whose bible is missing.
func (l *loader) checkLinks() {
	for _, m := range l.lib.Modules() {
		links, ok := m.(*StrongsLinksModule)
		if !ok {
			continue
		}
		if _, err := l.lib.Bible(links.Bible); err != nil {
			l.fail(links.Meta.Source, fmt.Errorf("links module %s: %w", links.Meta.ID, err))
		}
	}
}

// DirLoader adapts LoadDir to a Handle.
func DirLoader(dir string, opts Options) LoadFunc {
	return func(ctx context.Context) (*Library, error) {
		return LoadDir(ctx, dir, opts)
	}
}
