// Package catalog records which datasets have been downloaded, where they
// live and what shape they have, in a SQLite database next to the files.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	dbFile = "catalog.db"
	// fixed width so that text order is time order
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrNotFound = errors.New("catalog: dataset not recorded")

// Entry describes one downloaded dataset.
type Entry struct {
	Name      string
	URL       string
	Path      string
	FetchedAt time.Time
	NumNodes  int
	NumEdges  int
	MaxOrder  int
}

type Catalog struct {
	db  *sql.DB
	dir string
}

// Open creates dir if needed and opens dir/catalog.db.
func Open(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	c := &Catalog{db: db, dir: dir}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return c, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) Dir() string { return c.dir }

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			name TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			path TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			num_nodes INTEGER NOT NULL,
			num_edges INTEGER NOT NULL,
			max_order INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_fetched_at ON datasets(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts or replaces the entry for e.Name.
func (c *Catalog) Record(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO datasets (name, url, path, fetched_at, num_nodes, num_edges, max_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			url = excluded.url,
			path = excluded.path,
			fetched_at = excluded.fetched_at,
			num_nodes = excluded.num_nodes,
			num_edges = excluded.num_edges,
			max_order = excluded.max_order`,
		e.Name, e.URL, e.Path, e.FetchedAt.UTC().Format(timeLayout), e.NumNodes, e.NumEdges, e.MaxOrder)
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.Name, err)
	}
	return nil
}

func (c *Catalog) Get(ctx context.Context, name string) (Entry, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT name, url, path, fetched_at, num_nodes, num_edges, max_order FROM datasets WHERE name = ?`, name)
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, err
}

// List returns all entries, most recently fetched first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, url, path, fetched_at, num_nodes, num_edges, max_order FROM datasets ORDER BY fetched_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Remove deletes the entry. The dataset file itself is left alone.
func (c *Catalog) Remove(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (Entry, error) {
	var (
		e       Entry
		fetched string
	)
	if err := s.Scan(&e.Name, &e.URL, &e.Path, &fetched, &e.NumNodes, &e.NumEdges, &e.MaxOrder); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(timeLayout, fetched)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing fetched_at %q: %w", fetched, err)
	}
	e.FetchedAt = t
	return e, nil
}
