package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/richtext"
	"github.com/FocuswithJustin/JuniperStudy/internal/sqlite"
)

// NotebookSchema creates the tables a notebook database holds. It is valid
// for both SQLite and PostgreSQL.
const NotebookSchema = `
CREATE TABLE IF NOT EXISTS notebook_info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notebook_entries (
	id          INTEGER PRIMARY KEY,
	kind        TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	priority    INTEGER NOT NULL DEFAULT 0,
	color       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS notebook_refs (
	entry_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	ref      TEXT NOT NULL,
	PRIMARY KEY (entry_id, position)
);`

type noteRow struct {
	ID          int64  `db:"id"`
	Kind        string `db:"kind"`
	Name        string `db:"name"`
	Content     string `db:"content"`
	Description string `db:"description"`
	Priority    int    `db:"priority"`
	Color       string `db:"color"`
}

type refRow struct {
	EntryID  int64  `db:"entry_id"`
	Position int    `db:"position"`
	Ref      string `db:"ref"`
}

// NotebookStore reads and writes one notebook held in SQLite or PostgreSQL.
type NotebookStore struct {
	db     *sqlx.DB
	source string
}

// IsPostgresDSN reports whether dsn names a PostgreSQL database.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// OpenNotebookStore connects to a notebook. postgres:// DSNs use lib/pq;
// anything else is a SQLite file opened read-only.
func OpenNotebookStore(ctx context.Context, dsn string) (*NotebookStore, error) {
	var db *sqlx.DB
	var err error
	source := dsn
	if IsPostgresDSN(dsn) {
		db, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		source = "postgres notebook"
	} else {
		db, err = sqlite.OpenReadOnly(ctx, dsn)
	}
	if err != nil {
		return nil, errors.NewIO("open notebook", source, err)
	}
	return &NotebookStore{db: db, source: source}, nil
}

// NewNotebookStore wraps an open database, for writers and tests.
func NewNotebookStore(db *sqlx.DB, source string) *NotebookStore {
	return &NotebookStore{db: db, source: source}
}

// Close closes the database.
func (s *NotebookStore) Close() error { return s.db.Close() }

// Load reads the notebook. The notebook_info table must name the module id
// and the bible its references point into.
func (s *NotebookStore) Load(ctx context.Context) (*NotebookModule, error) {
	var info []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &info, `SELECT key, value FROM notebook_info`); err != nil {
		return nil, errors.NewIO("read notebook info", s.source, err)
	}
	meta := map[string]string{}
	for _, kv := range info {
		meta[kv.Key] = kv.Value
	}
	if meta["id"] == "" || meta["bible"] == "" {
		return nil, errors.NewParse("notebook", s.source, "notebook_info needs id and bible")
	}
	d := decoder{source: s.source, bible: bible.ModuleID(meta["bible"])}

	var rows []noteRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, kind, name, content, description, priority, color FROM notebook_entries ORDER BY id`); err != nil {
		return nil, errors.NewIO("read notebook entries", s.source, err)
	}
	refs, err := s.refs(ctx)
	if err != nil {
		return nil, err
	}

	m := &NotebookModule{Meta: ModuleInfo{
		ID:          bible.ModuleID(meta["id"]),
		Kind:        KindNotebook,
		Name:        meta["name"],
		Description: meta["description"],
		Source:      s.source,
	}}
	for i, row := range rows {
		raw := noteJSON{Kind: NoteKind(row.Kind), Name: row.Name, Priority: row.Priority, Color: row.Color, Refs: refs[row.ID]}
		if raw.Content, err = decodeRichColumn(row.Content); err != nil {
			return nil, d.fail("entry %d content: %v", row.ID, err)
		}
		if raw.Description, err = decodeRichColumn(row.Description); err != nil {
			return nil, d.fail("entry %d description: %v", row.ID, err)
		}
		entry, err := d.note(i, raw)
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, entry)
	}
	return m, nil
}

func (s *NotebookStore) refs(ctx context.Context) (map[int64][]string, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT entry_id, position, ref FROM notebook_refs ORDER BY entry_id, position`)
	if err != nil {
		return nil, errors.NewIO("read notebook refs", s.source, err)
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var r refRow
		if err := rows.StructScan(&r); err != nil {
			return nil, errors.NewIO("scan notebook ref", s.source, err)
		}
		out[r.EntryID] = append(out[r.EntryID], r.Ref)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("read notebook refs", s.source, err)
	}
	return out, nil
}

// Save writes a notebook, replacing any previous contents. References are
// stored as OSIS strings against bibleID.
func (s *NotebookStore) Save(ctx context.Context, m *NotebookModule, bibleID bible.ModuleID) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewIO("begin notebook write", s.source, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range strings.Split(NotebookSchema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.NewIO("create notebook schema", s.source, err)
		}
	}
	for _, table := range []string{"notebook_info", "notebook_entries", "notebook_refs"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.NewIO("clear notebook", s.source, err)
		}
	}

	insertInfo := tx.Rebind(`INSERT INTO notebook_info (key, value) VALUES (?, ?)`)
	for k, v := range map[string]string{"id": string(m.Meta.ID), "name": m.Meta.Name, "description": m.Meta.Description, "bible": string(bibleID)} {
		if _, err = tx.ExecContext(ctx, insertInfo, k, v); err != nil {
			return errors.NewIO("write notebook info", s.source, err)
		}
	}

	for i, e := range m.Entries {
		id := int64(i + 1)
		row := noteRow{ID: id, Kind: string(e.Kind), Name: e.Name, Priority: e.Priority, Color: e.Color}
		if row.Content, err = encodeRichColumn(e.Content); err != nil {
			return err
		}
		if row.Description, err = encodeRichColumn(e.Description); err != nil {
			return err
		}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO notebook_entries (id, kind, name, content, description, priority, color)
			VALUES (:id, :kind, :name, :content, :description, :priority, :color)`, row); err != nil {
			return errors.NewIO("write notebook entry", s.source, err)
		}
		for pos, r := range e.References {
			ref := refRow{EntryID: id, Position: pos, Ref: r.String()}
			if _, err = tx.NamedExecContext(ctx, `INSERT INTO notebook_refs (entry_id, position, ref) VALUES (:entry_id, :position, :ref)`, ref); err != nil {
				return errors.NewIO("write notebook ref", s.source, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewIO("commit notebook", s.source, err)
	}
	return nil
}

// decodeRichColumn accepts either a JSON rich-text document or XHTML markup.
func decodeRichColumn(s string) (richtext.Document, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "["):
		var doc richtext.Document
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return richtext.ParseXHTML(s)
	}
}

func encodeRichColumn(doc richtext.Document) (string, error) {
	if len(doc) == 0 {
		return "", nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode rich text: %w", err)
	}
	return string(data), nil
}
