package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

// Cache persists the last successfully fetched history per symbol and
// period in a SQLite database.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenCache opens (or creates) the cache database at path and runs
// migrations.
func OpenCache(path string) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" opens a separate database, and writes
	// are serialized by mu anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("quote cache opened: %s", path)
	return c, nil
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quotes (
			symbol     TEXT NOT NULL,
			period     TEXT NOT NULL,
			name       TEXT,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, period)
		)`,
		`CREATE TABLE IF NOT EXISTS points (
			symbol TEXT NOT NULL,
			period TEXT NOT NULL,
			idx    INTEGER NOT NULL,
			ts     INTEGER NOT NULL,
			value  REAL NOT NULL,
			PRIMARY KEY (symbol, period, idx)
		)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put replaces the cached history for q's symbol and period.
func (c *Cache) Put(ctx context.Context, q Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	period := q.Period.String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM points WHERE symbol = ? AND period = ?`, q.Symbol, period); err != nil {
		return fmt.Errorf("clear points: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quotes (symbol, period, name, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (symbol, period) DO UPDATE SET name = excluded.name, fetched_at = excluded.fetched_at`,
		q.Symbol, period, q.Name, q.FetchedAt.UnixNano()); err != nil {
		return fmt.Errorf("upsert quote: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points (symbol, period, idx, ts, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()
	for i, p := range q.Series {
		if _, err := stmt.ExecContext(ctx, q.Symbol, period, i, p.Time.UnixNano(), p.Value); err != nil {
			return fmt.Errorf("insert point %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the cached history for symbol and period, or ErrNotCached.
func (c *Cache) Get(ctx context.Context, symbol string, period Period) (Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := Quote{Symbol: symbol, Period: period}
	var (
		name      sql.NullString
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT name, fetched_at FROM quotes WHERE symbol = ? AND period = ?`,
		symbol, period.String()).Scan(&name, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, fmt.Errorf("%w: %s %s", ErrNotCached, symbol, period)
	}
	if err != nil {
		return Quote{}, fmt.Errorf("query quote: %w", err)
	}
	q.Name = name.String
	q.FetchedAt = time.Unix(0, fetchedAt)

	rows, err := c.db.QueryContext(ctx,
		`SELECT ts, value FROM points WHERE symbol = ? AND period = ? ORDER BY idx`,
		symbol, period.String())
	if err != nil {
		return Quote{}, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ts    int64
			value float64
		)
		if err := rows.Scan(&ts, &value); err != nil {
			return Quote{}, fmt.Errorf("scan point: %w", err)
		}
		q.Series = append(q.Series, plot.PricePoint{Time: time.Unix(0, ts), Value: value})
	}
	if err := rows.Err(); err != nil {
		return Quote{}, fmt.Errorf("read points: %w", err)
	}
	return q, nil
}

// CachedSource serves from the cache when the wrapped source fails.
type CachedSource struct {
	Source Source
	Cache  *Cache
}

func (c CachedSource) Fetch(ctx context.Context, symbol string, period Period) (Quote, error) {
	q, err := c.Source.Fetch(ctx, symbol, period)
	if err == nil {
		if putErr := c.Cache.Put(ctx, q); putErr != nil {
			log.Printf("failed caching %s: %v", q.Symbol, putErr)
		}
		return q, nil
	}
	if ctx.Err() != nil {
		return Quote{}, err
	}
	normalized, symErr := normalizeSymbol(symbol)
	if symErr != nil {
		return Quote{}, err
	}
	cached, cacheErr := c.Cache.Get(ctx, normalized, period)
	if cacheErr != nil {
		if !errors.Is(cacheErr, ErrNotCached) {
			log.Printf("failed reading cache: %v", cacheErr)
		}
		return Quote{}, err
	}
	log.Printf("serving cached %s %s: %v", normalized, period, err)
	cached.Stale = true
	return cached, nil
}
