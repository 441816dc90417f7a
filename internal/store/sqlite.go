package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-dashboard/internal/user"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL,
  email           TEXT NOT NULL,
  password_hash   TEXT NOT NULL,
  favourites      TEXT NOT NULL DEFAULT '[]',
  recent_searches TEXT NOT NULL DEFAULT '[]',
  created_at      TEXT NOT NULL,
  updated_at      TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

const userColumns = `id, name, email, password_hash, favourites, recent_searches, created_at, updated_at`

// SQLiteStore keeps one row per user; favourites and recent searches live in
// JSON columns so a save stays a single UPDATE.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
// path may be ":memory:".
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, u *user.User) error {
	favs, recent, err := encodeLists(u)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, emailKey(u.Email), u.PasswordHash, favs, recent,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteStore) LoadByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, emailKey(email))
	return scanUser(row)
}

// Save rewrites every column of the user's row in one statement.
func (s *SQLiteStore) Save(ctx context.Context, u *user.User) error {
	favs, recent, err := encodeLists(u)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, favourites = ?, recent_searches = ?, created_at = ?, updated_at = ?
		 WHERE id = ?`,
		u.Name, emailKey(u.Email), u.PasswordHash, favs, recent,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt), u.ID,
	)
	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*user.User, error) {
	var (
		u                user.User
		favs, recent     string
		created, updated string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &favs, &recent, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := json.Unmarshal([]byte(favs), &u.Favourites); err != nil {
		return nil, fmt.Errorf("decode favourites of %s: %w", u.ID, err)
	}
	if err := json.Unmarshal([]byte(recent), &u.RecentSearches); err != nil {
		return nil, fmt.Errorf("decode recent searches of %s: %w", u.ID, err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", u.ID, err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", u.ID, err)
	}
	return &u, nil
}

func encodeLists(u *user.User) (string, string, error) {
	favs := u.Favourites
	if favs == nil {
		favs = []user.SavedLocation{}
	}
	recent := u.RecentSearches
	if recent == nil {
		recent = []user.RecentSearchEntry{}
	}

	fb, err := json.Marshal(favs)
	if err != nil {
		return "", "", fmt.Errorf("encode favourites: %w", err)
	}
	rb, err := json.Marshal(recent)
	if err != nil {
		return "", "", fmt.Errorf("encode recent searches: %w", err)
	}
	return string(fb), string(rb), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func sqliteDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}

	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := "_busy_timeout=5000&_journal_mode=WAL"
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + params, nil
	}
	return fmt.Sprintf("file:%s?%s", path, params), nil
}
