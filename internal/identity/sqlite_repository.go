package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    phone_number TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    full_name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// SQLiteRepository implements Repository on a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and ensures the schema exists.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

const sqliteSelectUser = `SELECT u.id, u.email, u.phone_number, u.password_hash, COALESCE(p.full_name, ''), u.created_at, u.updated_at
    FROM users u LEFT JOIN user_profiles p ON p.user_id = u.id`

// FindByEmailOrPhone fetches the first user whose email or phone number matches.
func (r *SQLiteRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (User, error) {
	if email == "" && phone == "" {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, sqliteSelectUser+`
    WHERE (? <> '' AND u.email = ?) OR (? <> '' AND u.phone_number = ?)
    LIMIT 1`, email, email, phone, phone)
	return scanSQLiteUser(row)
}

// FindByID fetches a user by identifier.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, sqliteSelectUser+` WHERE u.id = ?`, id)
	return scanSQLiteUser(row)
}

// CreateWithProfile inserts the user and profile rows in one transaction.
func (r *SQLiteRepository) CreateWithProfile(ctx context.Context, user User) (User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	created := user.CreatedAt.UTC().Format(time.RFC3339Nano)
	updated := user.UpdatedAt.UTC().Format(time.RFC3339Nano)

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, phone_number, password_hash, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`, user.ID, user.Email, user.PhoneNumber, user.PasswordHash, created, updated); err != nil {
		return User{}, translateSQLiteError("insert user", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_profiles (user_id, full_name, created_at, updated_at)
        VALUES (?, ?, ?, ?)`, user.ID, user.FullName, created, updated); err != nil {
		return User{}, translateSQLiteError("insert profile", err)
	}
	if err := tx.Commit(); err != nil {
		return User{}, translateSQLiteError("commit", err)
	}
	return user, nil
}

// Ping checks the database handle.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanSQLiteUser(row *sql.Row) (User, error) {
	var (
		user             User
		created, updated string
	)
	err := row.Scan(&user.ID, &user.Email, &user.PhoneNumber, &user.PasswordHash, &user.FullName, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if user.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return User{}, fmt.Errorf("parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return User{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return user, nil
}

func translateSQLiteError(op string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
