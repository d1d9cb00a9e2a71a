package ports

import (
	"context"

	"github.com/roombook/identity-system/internal/core/domain"
)

// Session is the result of a successful registration or login: a signed
// token plus the client-safe projection of the authenticated identity.
type Session struct {
	Token    string
	Identity domain.PublicIdentity
}

// AuthService orchestrates registration, login, token validation, and
// password change. It is the single entry point transport adapters use to
// authenticate callers.
type AuthService interface {
	// Register creates a new identity. roleOverride is honored only by
	// privileged caller paths (the bootstrap-admin flow); transport
	// adapters pass nil and get RoleUser.
	Register(ctx context.Context, displayName, email, password string, roleOverride *domain.Role) (*Session, error)

	// Login authenticates by normalized email and password. Unknown email
	// and wrong password both return domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, error)

	// ValidateToken verifies the token and re-fetches the subject identity
	// to confirm it still exists and is active.
	ValidateToken(ctx context.Context, token string) (*domain.PublicIdentity, error)

	// ChangePassword re-verifies the old password before accepting the new one.
	ChangePassword(ctx context.Context, identityID, oldPassword, newPassword string) error
}
