// Package session saves and restores parameter values in SQLite.
//
// Values are stored normalized, so a session restores the same control
// positions even if a parameter's domain range was changed in between.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/detent"
)

// ErrNoSession is returned when restoring a session that was never saved.
var ErrNoSession = errors.New("session: not found")

// Source lists the parameters to save. memstore.Store implements it.
type Source interface {
	IDs() []string
	Parameter(id string) detent.Parameter
}

// DB is a session database.
type DB struct {
	db    *sql.DB
	clock clockz.Clock
}

// Open opens or creates the database at path, creating its directory, and
// migrates its schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db, clock: clockz.RealClock}, nil
}

// Clock sets the clock used to timestamp saves.
func (d *DB) Clock(clock clockz.Clock) *DB {
	d.clock = clock
	return d
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Save stores the current normalized value of every parameter in src under
// name, replacing what was saved there before. It returns the number of
// values written.
func (d *DB) Save(ctx context.Context, name string, src Source) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM parameter_values WHERE session = ?`, name); err != nil {
		return 0, fmt.Errorf("clear session %q: %w", name, err)
	}

	now := d.clock.Now().UTC().Unix()
	written := 0
	for _, id := range src.IDs() {
		p := src.Parameter(id)
		if p == nil {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO parameter_values (session, parameter_id, normalized, saved_at) VALUES (?, ?, ?, ?)`,
			name, id, p.Value(), now,
		)
		if err != nil {
			return 0, fmt.Errorf("save %q: %w", id, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	return written, nil
}

// Restore writes the values saved under name into store with host
// notification, on the caller's context. Parameters the store no longer
// has are skipped. It returns the number of values restored.
func (d *DB) Restore(ctx context.Context, name string, store detent.Store) (int, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT parameter_id, normalized FROM parameter_values WHERE session = ? ORDER BY parameter_id`,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("load session %q: %w", name, err)
	}

	type saved struct {
		id         string
		normalized float64
	}
	var values []saved
	for rows.Next() {
		var s saved
		if err := rows.Scan(&s.id, &s.normalized); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan session %q: %w", name, err)
		}
		values = append(values, s)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoSession, name)
	}

	restored := 0
	for _, s := range values {
		p := store.Parameter(s.id)
		if p == nil {
			continue
		}
		p.SetValueNotifyingHost(ctx, s.normalized)
		restored++
	}
	return restored, nil
}

// Sessions lists saved session names.
func (d *DB) Sessions(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT session FROM parameter_values ORDER BY session`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a saved session.
func (d *DB) Delete(ctx context.Context, name string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM parameter_values WHERE session = ?`, name); err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	return nil
}
