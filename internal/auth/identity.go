// Package auth abstracts over the two identity variants the service can
// run with: tokens minted locally (jwt) or verified by a hosted identity
// provider (external). Exactly one is active per process.
package auth

import (
	"context"
	"errors"
	"fmt"

	"todo-app/backend/internal/config"

	"github.com/gofrs/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Identity interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

func NewIdentity(cfg *config.Config) (Identity, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderJWT:
		return NewJWTIdentity(cfg.Auth.JWTSecret), nil
	case config.AuthProviderExternal:
		return NewExternalIdentity(cfg.Auth.ProviderURL), nil
	default:
		return nil, fmt.Errorf("unknown auth provider: %s", cfg.Auth.Provider)
	}
}
