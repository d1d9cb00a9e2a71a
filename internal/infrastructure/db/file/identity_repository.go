// Package file provides the file-backed IdentityStore adapter: an in-memory
// index reconciled with a single JSON document on every mutation.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roombook/identity-system/internal/core/domain"
)

// identityRecord is the persisted shape of an identity. Unlike the domain
// type it serializes the credential hash; the backing file is never served
// to clients.
type identityRecord struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	CredentialHash string    `json:"credential_hash"`
	Role           string    `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type storeDocument struct {
	Identities map[string]identityRecord `json:"identities"`
}

// IdentityRepository is a durable identity store: a map guarded by one
// reader-writer lock, synchronously rewritten to disk inside the exclusive
// section of every mutation. Holding the lock across the write is a
// deliberate simplicity trade: readers always observe committed state and
// the index never diverges from the file.
type IdentityRepository struct {
	path string

	mu         sync.RWMutex
	identities map[string]domain.Identity
	loaded     bool
}

// NewIdentityRepository creates a repository backed by the JSON document at
// path. Call Init before use.
func NewIdentityRepository(path string) *IdentityRepository {
	return &IdentityRepository{
		path:       path,
		identities: make(map[string]domain.Identity),
	}
}

// Init loads the backing file into the index, or starts empty when the file
// does not exist yet (the expected first-run case), creating the parent
// directory. Idempotent; concurrent callers cannot observe a partially
// loaded index because the exclusive lock is held throughout.
func (r *IdentityRepository) Init(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.StorageError("create store directory", err)
		}
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.loaded = true
			return nil
		}
		return domain.StorageError("read store file", err)
	}

	var doc storeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.StorageError("parse store file", err)
	}

	for id, rec := range doc.Identities {
		identity, err := recordToIdentity(rec)
		if err != nil {
			return domain.StorageError("decode store record", err)
		}
		r.identities[id] = *identity
	}
	r.loaded = true
	return nil
}

// Create inserts a new identity. The email-uniqueness check, the index
// insert, and the file rewrite all happen under one exclusive lock
// acquisition, so racing registrations on the same email serialize and at
// most one succeeds. On a disk failure the index change is rolled back
// before the error is returned.
func (r *IdentityRepository) Create(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.identities {
		if existing.Email == identity.Email {
			return domain.ErrEmailAlreadyRegistered
		}
	}

	r.identities[identity.ID] = *identity
	if err := r.persistLocked(); err != nil {
		delete(r.identities, identity.ID)
		return err
	}
	return nil
}

// Update replaces an existing identity and rewrites the file while holding
// the exclusive lock, rolling the index back on write failure.
func (r *IdentityRepository) Update(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.identities[identity.ID]
	if !ok {
		return domain.ErrIdentityNotFound
	}

	r.identities[identity.ID] = *identity
	if err := r.persistLocked(); err != nil {
		r.identities[identity.ID] = prev
		return err
	}
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

// persistLocked rewrites the whole backing file. Callers must hold the
// exclusive lock. The document is written to a temp file in the same
// directory and renamed into place so a crash mid-write cannot tear the
// store file.
func (r *IdentityRepository) persistLocked() error {
	doc := storeDocument{Identities: make(map[string]identityRecord, len(r.identities))}
	for id, identity := range r.identities {
		doc.Identities[id] = identityToRecord(identity)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.StorageError("encode store file", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".identities-*.json")
	if err != nil {
		return domain.StorageError("create temp store file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.StorageError("write store file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.StorageError("close store file", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return domain.StorageError("replace store file", err)
	}
	return nil
}

func identityToRecord(identity domain.Identity) identityRecord {
	return identityRecord{
		ID:             identity.ID,
		DisplayName:    identity.DisplayName,
		Email:          identity.Email,
		CredentialHash: identity.CredentialHash,
		Role:           string(identity.Role),
		Active:         identity.Active,
		CreatedAt:      identity.CreatedAt,
		UpdatedAt:      identity.UpdatedAt,
	}
}

func recordToIdentity(rec identityRecord) (*domain.Identity, error) {
	role, ok := domain.ParseRole(rec.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q for identity %s", rec.Role, rec.ID)
	}
	return &domain.Identity{
		ID:             rec.ID,
		DisplayName:    rec.DisplayName,
		Email:          rec.Email,
		CredentialHash: rec.CredentialHash,
		Role:           role,
		Active:         rec.Active,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}
