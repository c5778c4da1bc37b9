// Package recording persists run-end statistics into a SQLite database so
// experiment sweeps can be queried instead of grepping logs.
package recording

import (
	"database/sql"
	"fmt"
	"os"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// StatRow is one recorded counter: which run it belongs to, which component
// reported it, and the counter's name and value.
type StatRow struct {
	Run       string
	Component string
	Name      string
	Value     int64
}

// Recorder buffers stat rows and writes them to storage.
type Recorder interface {
	// InsertStat buffers one row.
	InsertStat(row StatRow)

	// Flush writes all buffered rows.
	Flush()
}

// New opens a SQLite-backed recorder. An empty path gets a unique
// xid-suffixed name. An existing file is refused rather than appended to or
// overwritten: each database describes exactly the runs that created it.
func New(path string) (Recorder, error) {
	if path == "" {
		path = "kvcpim_stats_" + xid.New().String()
	}
	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("stats database %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open stats database %s: %w", filename, err)
	}

	_, err = db.Exec(`CREATE TABLE stats (
		run TEXT,
		component TEXT,
		name TEXT,
		value INTEGER
	)`)
	if err != nil {
		return nil, fmt.Errorf("create stats table: %w", err)
	}

	w := &sqliteWriter{db: db}
	atexit.Register(w.Flush)
	return w, nil
}

// NewRunID returns a fresh unique run identifier.
func NewRunID() string {
	return xid.New().String()
}

// sqliteWriter buffers rows and inserts them in one transaction per Flush.
type sqliteWriter struct {
	db      *sql.DB
	pending []StatRow
}

// InsertStat implements Recorder.
func (w *sqliteWriter) InsertStat(row StatRow) {
	w.pending = append(w.pending, row)
}

// Flush implements Recorder.
func (w *sqliteWriter) Flush() {
	if len(w.pending) == 0 {
		return
	}

	tx, err := w.db.Begin()
	if err != nil {
		panic(err)
	}
	stmt, err := tx.Prepare(`INSERT INTO stats (run, component, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	for _, row := range w.pending {
		if _, err := stmt.Exec(row.Run, row.Component, row.Name, row.Value); err != nil {
			panic(err)
		}
	}
	if err := stmt.Close(); err != nil {
		panic(err)
	}
	if err := tx.Commit(); err != nil {
		panic(err)
	}

	w.pending = w.pending[:0]
}
