package ports

import (
	"context"

	"github.com/roombook/identity-system/internal/core/domain"
)

// IdentityStore is the persistence port for identity records. Adapters are
// interchangeable (file, in-memory, MongoDB); the services depend only on
// this interface.
//
// Create must perform its email-uniqueness check and the insert inside one
// critical section with respect to other writers, returning
// domain.ErrEmailAlreadyRegistered when the normalized email is taken.
// Reads never touch disk; mutations must not return success until the
// record is durably committed.
type IdentityStore interface {
	Create(ctx context.Context, identity *domain.Identity) error
	Update(ctx context.Context, identity *domain.Identity) error
	Get(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	List(ctx context.Context) ([]*domain.Identity, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	// Count reports how many identities exist; used by the bootstrap
	// seeding flow to detect an empty store.
	Count(ctx context.Context) (int, error)
}
