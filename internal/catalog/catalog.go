// Package catalog snapshots method tables into a SQLite database so they can
// be inspected with ordinary SQL tooling.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/mop/internal/dispatch"
)

const schema = `
CREATE TABLE IF NOT EXISTS methods (
	class      TEXT    NOT NULL,
	name       TEXT    NOT NULL,
	params     TEXT    NOT NULL,
	display    TEXT    NOT NULL,
	declaring  TEXT    NOT NULL,
	origin     TEXT    NOT NULL,
	visibility TEXT    NOT NULL,
	static     INTEGER NOT NULL,
	variadic   INTEGER NOT NULL,
	seq        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS methods_by_name ON methods (class, name);
CREATE TABLE IF NOT EXISTS snapshots (
	generation INTEGER NOT NULL,
	methods    INTEGER NOT NULL,
	taken_at   TEXT    NOT NULL
);`

// Method is one exported candidate.
type Method struct {
	Class      string
	Name       string
	Params     []string
	Display    string
	Declaring  string
	Origin     string
	Visibility string
	Static     bool
	Variadic   bool
	Seq        uint64
}

// Catalog is a SQLite-backed method catalog.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog at path.
func Open(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	// :memory: databases exist per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Export replaces the catalog contents with the method tables of reg and
// records the registry generation they were taken at. It returns the number
// of methods written.
func (c *Catalog) Export(ctx context.Context, reg *dispatch.Registry) (int, error) {
	gen := reg.Generation()
	methods := Collect(reg)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM methods`); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO methods
		(class, name, params, display, declaring, origin, visibility, static, variadic, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, m := range methods {
		if _, err := stmt.ExecContext(ctx, m.Class, m.Name, strings.Join(m.Params, ","), m.Display,
			m.Declaring, m.Origin, m.Visibility, m.Static, m.Variadic, int64(m.Seq)); err != nil {
			return 0, fmt.Errorf("exporting %s: %w", m.Display, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO snapshots (generation, methods, taken_at) VALUES (?, ?, ?)`,
		int64(gen), len(methods), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(methods), nil
}

// Collect lists the candidates of reg ordered by class name, then
// registration order.
func Collect(reg *dispatch.Registry) []Method {
	classes := reg.Classes()
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	var out []Method
	for _, cls := range classes {
		for _, cand := range reg.Methods(cls) {
			params := make([]string, len(cand.Params))
			for i, p := range cand.ParamClasses() {
				params[i] = p.Name
			}
			out = append(out, Method{
				Class:      cls.Name,
				Name:       cand.Name,
				Params:     params,
				Display:    cand.String(),
				Declaring:  cand.Declaring.Name,
				Origin:     cand.Origin.String(),
				Visibility: cand.Visibility().String(),
				Static:     cand.Static(),
				Variadic:   cand.Variadic,
				Seq:        cand.Seq(),
			})
		}
	}
	return out
}

// Lookup returns the exported methods named name on class, in registration
// order. An empty name matches every method of the class.
func (c *Catalog) Lookup(ctx context.Context, class, name string) ([]Method, error) {
	query := `SELECT class, name, params, display, declaring, origin, visibility, static, variadic, seq
		FROM methods WHERE class = ?`
	args := []any{class}
	if name != "" {
		query += ` AND name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Method
	for rows.Next() {
		var m Method
		var params string
		var seq int64
		if err := rows.Scan(&m.Class, &m.Name, &params, &m.Display, &m.Declaring,
			&m.Origin, &m.Visibility, &m.Static, &m.Variadic, &seq); err != nil {
			return nil, err
		}
		if params != "" {
			m.Params = strings.Split(params, ",")
		}
		m.Seq = uint64(seq)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Generation returns the registry generation of the latest export, or 0 if
// nothing has been exported.
func (c *Catalog) Generation(ctx context.Context) (uint64, error) {
	var gen sql.NullInt64
	err := c.db.QueryRowContext(ctx, `SELECT MAX(generation) FROM snapshots`).Scan(&gen)
	if err != nil {
		return 0, err
	}
	return uint64(gen.Int64), nil
}
