package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/guerinoni/ghn/internal/model"
)

// SQLiteStore implements Cache on an in-memory SQLite database. Nothing is
// written to disk; the cache lives exactly as long as the process.
type SQLiteStore struct {
	db *sqlx.DB
}

// cachedRow is one row of the notifications table.
type cachedRow struct {
	ID       string `db:"id"`
	Position int    `db:"position"`
	Raw      string `db:"raw"`
}

// NewMemoryStore opens a private in-memory database and applies the schema.
func NewMemoryStore() (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to :memory: is a separate database; pin to one.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceAll clears the cache and inserts notifications in list order,
// recording seq as the fetch that produced them.
func (s *SQLiteStore) ReplaceAll(
	ctx context.Context,
	seq uint64,
	notifications []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}

	const query = `
		INSERT INTO notifications (
			id, position, unread, reason,
			subject_type, repo_full_name, raw
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, n := range notifications {
		raw, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshaling notification %s: %w", n.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, i, n.Unread, n.Reason,
			n.Subject.Type, n.Repository.FullName, string(raw),
		)
		if err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE fetch_state SET seq = ? WHERE id = 1", seq); err != nil {
		return fmt.Errorf("recording fetch sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns the cached notifications in list order.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Notification, error) {
	var rows []cachedRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, position, raw FROM notifications ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		n, err := decodeRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, nil
}

// GetByID returns the cached notification with the given thread id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	return s.getOne(ctx,
		"SELECT id, position, raw FROM notifications WHERE id = ?", id)
}

// GetByPosition returns the cached notification at a zero-based list index.
func (s *SQLiteStore) GetByPosition(ctx context.Context, position int) (*model.Notification, error) {
	return s.getOne(ctx,
		"SELECT id, position, raw FROM notifications WHERE position = ?", position)
}

// CountUnread returns the number of unread cached notifications.
func (s *SQLiteStore) CountUnread(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE unread = 1"); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// Seq returns the sequence number of the fetch currently cached.
func (s *SQLiteStore) Seq(ctx context.Context) (uint64, error) {
	var seq uint64
	if err := s.db.GetContext(ctx, &seq,
		"SELECT seq FROM fetch_state WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("reading fetch sequence: %w", err)
	}
	return seq, nil
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg interface{}) (*model.Notification, error) {
	var r cachedRow
	if err := s.db.GetContext(ctx, &r, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up notification: %w", err)
	}
	return decodeRow(r)
}

func decodeRow(r cachedRow) (*model.Notification, error) {
	var n model.Notification
	if err := json.Unmarshal([]byte(r.Raw), &n); err != nil {
		return nil, fmt.Errorf("decoding cached notification %s: %w", r.ID, err)
	}
	return &n, nil
}
