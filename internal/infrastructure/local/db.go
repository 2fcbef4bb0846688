// Package local persists entities as JSON documents in a single key-value
// table of an embedded SQLite file. It is the single-user, on-device backend.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-crm-nosql/internal/domain"

	_ "modernc.org/sqlite"
)

// Key prefixes. Entity ids are ULIDs, so ordering by key lists entities in
// creation order.
const (
	prefixCustomer  = "customer:"
	prefixJob       = "job:"
	prefixUser      = "user:"
	prefixUserEmail = "user-email:"
	keyDismissals   = "notifications:dismissed"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating its parent
// directory when needed.
func Open(ctx context.Context, path string) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps an in-memory database on a single connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (d *DB) withTx(ctx context.Context, fn func(q queryer) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func getJSON(ctx context.Context, q queryer, key string, out interface{}) error {
	var raw []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func putJSON(ctx context.Context, q queryer, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, raw)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func deleteKey(ctx context.Context, q queryer, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func deletePrefix(ctx context.Context, q queryer, prefix string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM kv WHERE key >= ? AND key < ?`, prefix, prefixEnd(prefix)); err != nil {
		return fmt.Errorf("delete %s*: %w", prefix, err)
	}
	return nil
}

// scanPrefix decodes every document under prefix, in key order.
func scanPrefix[T any](ctx context.Context, q queryer, prefix string) ([]T, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT key, value FROM kv WHERE key >= ? AND key < ? ORDER BY key`, prefix, prefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("scan %s*: %w", prefix, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var (
			key string
			raw []byte
			v   T
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan %s*: %w", prefix, err)
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// prefixEnd is the smallest key greater than every key starting with p.
func prefixEnd(p string) string {
	b := []byte(p)
	b[len(b)-1]++
	return string(b)
}
