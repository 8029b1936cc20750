package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when a unique email or phone number already exists.
	ErrConflict = errors.New("user exists")
	// ErrUnavailable wraps connection and transaction failures of the backing store.
	ErrUnavailable = errors.New("user store unavailable")
)

const uniqueViolation = "23505"

// Repository persists users and their profiles.
type Repository interface {
	// FindByEmailOrPhone matches on whichever of email or phone is non-empty.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	// CreateWithProfile stores the user row and its profile row atomically.
	CreateWithProfile(ctx context.Context, user User) (User, error)
	Ping(ctx context.Context) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `SELECT u.id, u.email, u.phone_number, u.password_hash, COALESCE(p.full_name, ''), u.created_at, u.updated_at
    FROM users u LEFT JOIN user_profiles p ON p.user_id = u.id`

// FindByEmailOrPhone fetches the first user whose email or phone number matches.
func (r *PostgresRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (User, error) {
	if email == "" && phone == "" {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, selectUser+`
    WHERE ($1::text <> '' AND u.email = $1::text) OR ($2::text <> '' AND u.phone_number = $2::text)
    LIMIT 1`, email, phone)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, selectUser+` WHERE u.id = $1`, userID)
	return scanUser(row)
}

// CreateWithProfile inserts the user and profile rows in one transaction.
func (r *PostgresRepository) CreateWithProfile(ctx context.Context, user User) (User, error) {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return User{}, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO users (id, email, phone_number, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, userID, user.Email, user.PhoneNumber, user.PasswordHash, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		return User{}, translateError("insert user", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO user_profiles (user_id, full_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4)`, userID, user.FullName, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		return User{}, translateError("insert profile", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, translateError("commit", err)
	}
	return user, nil
}

// Ping checks connectivity to the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id   uuid.UUID
		user User
	)
	err := row.Scan(&id, &user.Email, &user.PhoneNumber, &user.PasswordHash, &user.FullName, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	user.ID = id.String()
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func translateError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
