package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register the "sqlite" driver
)

// Schema is the SQLite schema for the account store.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	phone         TEXT NOT NULL,
	username      TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	birthday      TEXT NOT NULL DEFAULT '',
	mbti          TEXT NOT NULL DEFAULT '',
	avatar_mode   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone);
`

const userColumns = `id, phone, username, email, birthday, mbti, avatar_mode`

// SQLiteStore keeps accounts in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts Options
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) the database at path, applies the schema
// and seeds the default account into an empty table. Use ":memory:" for a
// throwaway store.
func OpenSQLiteStore(ctx context.Context, path string, opts Options) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { // #nosec G301 - Data directory needs standard permissions
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open user db %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, opts: opts.withDefaults()}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("init user schema: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := hashPassword(seedPassword, s.opts.HashCost)
	if err != nil {
		return err
	}
	u := seedUser
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, phone, username, password_hash, email, birthday, mbti, avatar_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Phone, u.Username, hash, u.Email, u.Birthday, u.MBTI, u.AvatarMode)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	s.opts.Logger.Debug("seeded user store")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Phone, &u.Username, &u.Email, &u.Birthday, &u.MBTI, &u.AvatarMode); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates a user with default profile fields.
func (s *SQLiteStore) Register(ctx context.Context, phone, password string) (*User, error) {
	phone, password, err := normaliseCredentials(phone, password)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.opts.HashCost)
	if err != nil {
		return nil, err
	}

	u := newUser(0, phone)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (phone, username, password_hash, email, birthday, mbti, avatar_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Phone, u.Username, hash, u.Email, u.Birthday, u.MBTI, u.AvatarMode)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}

	u.ID = int(id)
	s.opts.Logger.Debug("registered user", "user", u.ID)
	return &u, nil
}

// Authenticate returns the lowest-id user whose phone and password match.
func (s *SQLiteStore) Authenticate(ctx context.Context, phone, password string) (*User, error) {
	phone, password, err := normaliseCredentials(phone, password)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, password_hash FROM users WHERE phone = ? ORDER BY id`, phone)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if checkPassword(hash, password) {
			rows.Close()
			return s.Get(ctx, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return nil, ErrInvalidCredentials
}

// Get returns the user with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id int) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// Update applies a partial profile change.
func (s *SQLiteStore) Update(ctx context.Context, id int, up Update) (*User, error) {
	var hash string
	if up.Password != nil {
		var err error
		if hash, err = hashPassword(*up.Password, s.opts.HashCost); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	u, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	up.apply(u)
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET phone = ?, username = ?, email = ?, birthday = ?, mbti = ?, avatar_mode = ?
		 WHERE id = ?`,
		u.Phone, u.Username, u.Email, u.Birthday, u.MBTI, u.AvatarMode, id)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	if hash != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id); err != nil {
			return nil, fmt.Errorf("update password %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return u, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
