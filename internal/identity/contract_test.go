package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ultraauth/auth-api/internal/identity"
)

func newUser(email, phone string) identity.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return identity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuv",
		FullName:     "Jane Doe",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// runRepositoryContract exercises the behaviour every Repository adapter shares.
func runRepositoryContract(t *testing.T, repo identity.Repository) {
	t.Helper()
	ctx := context.Background()

	created, err := repo.CreateWithProfile(ctx, newUser("jane@example.com", "+15550000001"))
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", created.FullName)

	t.Run("find by email", func(t *testing.T) {
		got, err := repo.FindByEmailOrPhone(ctx, "jane@example.com", "")
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, "Jane Doe", got.FullName)
		require.Equal(t, created.PasswordHash, got.PasswordHash)
		require.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("find by phone", func(t *testing.T) {
		got, err := repo.FindByEmailOrPhone(ctx, "", "+15550000001")
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.Email, got.Email)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByEmailOrPhone(ctx, "nobody@example.com", "")
		require.True(t, errors.Is(err, identity.ErrNotFound), "got %v", err)

		_, err = repo.FindByEmailOrPhone(ctx, "", "")
		require.True(t, errors.Is(err, identity.ErrNotFound), "got %v", err)

		_, err = repo.FindByID(ctx, uuid.NewString())
		require.True(t, errors.Is(err, identity.ErrNotFound), "got %v", err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.CreateWithProfile(ctx, newUser("jane@example.com", "+15550000002"))
		require.True(t, errors.Is(err, identity.ErrConflict), "got %v", err)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		_, err := repo.CreateWithProfile(ctx, newUser("other@example.com", "+15550000001"))
		require.True(t, errors.Is(err, identity.ErrConflict), "got %v", err)

		_, err = repo.FindByEmailOrPhone(ctx, "other@example.com", "")
		require.True(t, errors.Is(err, identity.ErrNotFound), "failed create must leave no user behind")
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, repo.Ping(ctx))
	})
}
