// Package settings stores named configuration variables for editor
// widgets in a SQLite database, optionally encrypted with SQLCipher.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kuitang/editor-steps/internal/errs"
	"github.com/kuitang/editor-steps/internal/obs"
)

const (
	maxOpenConns = 10
	maxIdleConns = 2
)

// Setting is one named configuration variable.
type Setting struct {
	Name        string
	Value       json.RawMessage
	Description string
	UpdatedAt   time.Time
}

// Store is the widget settings store.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the settings database at path. hexKey
// is an optional 64-hex-character SQLCipher key; empty means unencrypted.
func Open(path, hexKey string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create settings directory: %w", err)
		}
	}

	dsn := path + "?" + busyDSNParams
	if hexKey != "" {
		dsn = fmt.Sprintf("%s?_pragma_key=x'%s'&%s", path, hexKey, busyDSNParams)
	}
	return open(dsn, maxOpenConns)
}

// OpenInMemory opens a fresh in-memory store, used by tests and the
// fixture server's default configuration.
func OpenInMemory() (*Store, error) {
	// Every connection to :memory: is a distinct database; pin to one.
	return open(":memory:", 1)
}

func open(dsn string, maxConns int) (*Store, error) {
	db, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping settings database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize settings schema: %w", err)
	}
	return &Store{db: db, log: obs.Pkg("settings")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct access when needed.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Set stores a value under name, JSON-encoded. The description is
// preserved when the setting already exists.
func (s *Store) Set(ctx context.Context, name string, value any) error {
	if name == "" {
		return errs.New(errs.InvalidArgument, "setting name must not be empty")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "setting value is not JSON-encodable", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (name, value, description, updated_at)
		VALUES (?, ?, '', ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		name, string(encoded), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store setting %q: %w", name, err)
	}
	s.log.Debug("setting_stored", "name", name)
	return nil
}

// SetWithDescription stores a value and its description.
func (s *Store) SetWithDescription(ctx context.Context, name string, value any, description string) error {
	if err := s.Set(ctx, name, value); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings SET description = ? WHERE name = ?`, description, name)
	if err != nil {
		return fmt.Errorf("store setting description %q: %w", name, err)
	}
	return nil
}

// Get decodes the named setting into out.
func (s *Store) Get(ctx context.Context, name string, out any) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Newf(errs.NotFound, "setting %q does not exist", name)
	}
	if err != nil {
		return fmt.Errorf("load setting %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errs.Wrap(errs.Internal, fmt.Sprintf("setting %q holds malformed JSON", name), err)
	}
	return nil
}

// GetBool returns a boolean setting.
func (s *Store) GetBool(ctx context.Context, name string) (bool, error) {
	var v bool
	if err := s.Get(ctx, name, &v); err != nil {
		return false, err
	}
	return v, nil
}

// All returns every setting ordered by name.
func (s *Store) All(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value, description, updated_at
		FROM settings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var (
			item      Setting
			raw       string
			updatedAt int64
		)
		if err := rows.Scan(&item.Name, &raw, &item.Description, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		item.Value = json.RawMessage(raw)
		item.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

// Delete removes the named setting. Deleting a missing setting is not an
// error.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete setting %q: %w", name, err)
	}
	return nil
}

// Seed installs the default widget settings, leaving any existing values
// untouched.
func (s *Store) Seed(ctx context.Context) error {
	for _, d := range defaults {
		encoded, err := json.Marshal(d.value)
		if err != nil {
			return fmt.Errorf("encode default %q: %w", d.name, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO settings (name, value, description, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET description = excluded.description`,
			d.name, string(encoded), d.description, time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("seed setting %q: %w", d.name, err)
		}
	}
	s.log.Debug("settings_seeded", "count", len(defaults))
	return nil
}
