package ports

import (
	"context"

	"github.com/roombook/identity-system/internal/core/domain"
)

// IdentityService manages existing identities. Every operation takes the
// caller's identity id, resolved upstream via AuthService.ValidateToken.
type IdentityService interface {
	Get(ctx context.Context, id string) (*domain.PublicIdentity, error)
	List(ctx context.Context) ([]domain.PublicIdentity, error)

	// Rename changes a display name. Callers may rename only themselves
	// unless they hold the administrator role.
	Rename(ctx context.Context, callerID, targetID, newName string) (*domain.PublicIdentity, error)

	// SetRole is administrator-only.
	SetRole(ctx context.Context, callerID, targetID string, role domain.Role) (*domain.PublicIdentity, error)

	// Deactivate is administrator-only and refuses the caller's own id
	// with domain.ErrCannotSelfDeactivate.
	Deactivate(ctx context.Context, callerID, targetID string) error

	// Activate is administrator-only.
	Activate(ctx context.Context, callerID, targetID string) error
}
