// Package auth is the authentication collaborator: it verifies who a caller
// is and issues the tokens the cart surface trusts. The catalog and cart
// stores never look at credentials themselves.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID        string
	Email     string
	Hash      []byte
	CreatedAt time.Time
}

type UserStore interface {
	Create(ctx context.Context, id, email, password string) error
	Verify(ctx context.Context, email, password string) (User, error)
	Ping(ctx context.Context) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
