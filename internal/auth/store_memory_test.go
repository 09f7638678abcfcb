package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStore_CreateAndVerify(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "u_1", "A@Example.com ", "password123"))

	u, err := s.Verify(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "u_1", u.ID)
	require.Equal(t, "a@example.com", u.Email, "emails are stored normalized")

	_, err = s.Verify(ctx, "a@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Verify(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemStore_DuplicateEmail(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "u_1", "a@example.com", "password123"))
	require.ErrorIs(t, s.Create(ctx, "u_2", "A@example.com", "password456"), ErrEmailExists)
}
