// Package memory provides an in-memory IdentityStore adapter, used by tests
// and demo runs that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/roombook/identity-system/internal/core/domain"
)

// IdentityRepository keeps identities in a map guarded by a reader-writer
// lock. It mirrors the file adapter's semantics minus the disk writes.
type IdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{identities: make(map[string]domain.Identity)}
}

// Create inserts a new identity. The uniqueness check and the insert happen
// under one exclusive lock acquisition.
func (r *IdentityRepository) Create(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.identities {
		if existing.Email == identity.Email {
			return domain.ErrEmailAlreadyRegistered
		}
	}
	r.identities[identity.ID] = *identity
	return nil
}

// Update replaces an existing identity by id.
func (r *IdentityRepository) Update(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.identities[identity.ID]; !ok {
		return domain.ErrIdentityNotFound
	}
	r.identities[identity.ID] = *identity
	return nil
}

func (r *IdentityRepository) Get(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.identities[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return &identity, nil
}

func (r *IdentityRepository) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, identity := range r.identities {
		if identity.Email == email {
			clone := identity
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *IdentityRepository) List(_ context.Context) ([]*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Identity, 0, len(r.identities))
	for _, identity := range r.identities {
		clone := identity
		out = append(out, &clone)
	}
	return out, nil
}

func (r *IdentityRepository) ExistsEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, identity := range r.identities {
		if identity.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *IdentityRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities), nil
}
