// Package catalog indexes the class descriptors found in serialization
// streams into a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/dhamidi/serialdump/stream"
)

var log = commonlog.GetLogger("serialdump.catalog")

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	id INTEGER PRIMARY KEY,
	source TEXT NOT NULL,
	name TEXT NOT NULL,
	handle INTEGER NOT NULL,
	suid INTEGER NOT NULL,
	flags INTEGER NOT NULL,
	super TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS classes_source ON classes(source);
CREATE INDEX IF NOT EXISTS classes_name ON classes(name);
CREATE TABLE IF NOT EXISTS fields (
	class_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	class_name TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (class_id, position)
);
`

// Class is one indexed class descriptor.
type Class struct {
	Source           string
	Name             string
	Handle           stream.Handle
	SerialVersionUID int64
	Flags            stream.ClassDescFlags
	Super            string
	Fields           []stream.FieldInfo
}

// Catalog is a handle on the index database.
type Catalog struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the index at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection keeps ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	log.Debugf("opened catalog %s", path)
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Index stores every class descriptor of st under source, replacing
// whatever was stored for source before. It returns the number of classes
// stored.
func (c *Catalog) Index(ctx context.Context, source string, st *stream.Stream) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fields WHERE class_id IN (SELECT id FROM classes WHERE source = ?)", source); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", source, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM classes WHERE source = ?", source); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", source, err)
	}

	table := st.Classes
	for _, ci := range table.Classes() {
		if ci.Handle == stream.NoHandle {
			continue
		}
		var super string
		if sc := table.Super(ci); sc != nil {
			super = sc.Name
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO classes (source, name, handle, suid, flags, super) VALUES (?, ?, ?, ?, ?, ?)",
			source, ci.Name, int64(ci.Handle), ci.SerialVersionUID, int64(ci.Flags), super,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting class %s: %w", ci.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("class id for %s: %w", ci.Name, err)
		}

		for i, f := range ci.Fields {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO fields (class_id, position, name, type, class_name) VALUES (?, ?, ?, ?, ?)",
				id, i, f.Name, string(rune(f.Type)), f.ClassName,
			)
			if err != nil {
				return 0, fmt.Errorf("inserting field %s.%s: %w", ci.Name, f.Name, err)
			}
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Infof("indexed %d classes from %s", n, source)
	return n, nil
}

// Classes lists indexed classes whose name matches the glob pattern, ordered
// by name then source. An empty pattern matches everything.
func (c *Catalog) Classes(ctx context.Context, pattern string) ([]*Class, error) {
	if pattern == "" {
		pattern = "*"
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT id, source, name, handle, suid, flags, super FROM classes WHERE name GLOB ? ORDER BY name, source, id",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}
	defer rows.Close()

	var classes []*Class
	var ids []int64
	for rows.Next() {
		var (
			id, handle, flags int64
			cl                Class
		)
		if err := rows.Scan(&id, &cl.Source, &cl.Name, &handle, &cl.SerialVersionUID, &flags, &cl.Super); err != nil {
			return nil, fmt.Errorf("scanning class: %w", err)
		}
		cl.Handle = stream.Handle(handle)
		cl.Flags = stream.ClassDescFlags(flags)
		classes = append(classes, &cl)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}

	for i, cl := range classes {
		if cl.Fields, err = c.fields(ctx, ids[i]); err != nil {
			return nil, err
		}
	}
	return classes, nil
}

func (c *Catalog) fields(ctx context.Context, classID int64) ([]stream.FieldInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT name, type, class_name FROM fields WHERE class_id = ? ORDER BY position",
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying fields: %w", err)
	}
	defer rows.Close()

	var fields []stream.FieldInfo
	for rows.Next() {
		var f stream.FieldInfo
		var code string
		if err := rows.Scan(&f.Name, &code, &f.ClassName); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		if code == "" {
			return nil, errors.New("scanning field: empty type code")
		}
		f.Type = stream.TypeCode(code[0])
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// Sources lists every indexed source.
func (c *Catalog) Sources(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT source FROM classes ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// Describe renders a class as a one-line summary.
func (cl *Class) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %016x", cl.Name, uint64(cl.SerialVersionUID))
	if names := cl.Flags.Names(); len(names) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(names, " | "))
	}
	if cl.Super != "" {
		fmt.Fprintf(&sb, " extends %s", cl.Super)
	}
	fmt.Fprintf(&sb, " (%s)", cl.Source)
	return sb.String()
}
