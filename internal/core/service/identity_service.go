package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roombook/identity-system/internal/core/domain"
	"github.com/roombook/identity-system/internal/core/ports"
)

// IdentityService manages existing identities: listing, renaming, role
// changes, and activation toggles. Administrator-only gates live here, not
// in the transport layer.
type IdentityService struct {
	store ports.IdentityStore
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewIdentityService wires an IdentityService. audit may be nil.
func NewIdentityService(store ports.IdentityStore, audit ports.AuditSink, log zerolog.Logger) *IdentityService {
	return &IdentityService{store: store, audit: audit, log: log}
}

func (s *IdentityService) Get(ctx context.Context, id string) (*domain.PublicIdentity, error) {
	identity, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	public := identity.Public()
	return &public, nil
}

func (s *IdentityService) List(ctx context.Context) ([]domain.PublicIdentity, error) {
	identities, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicIdentity, 0, len(identities))
	for _, identity := range identities {
		out = append(out, identity.Public())
	}
	return out, nil
}

// Rename changes a display name. Non-administrators may rename only
// themselves.
func (s *IdentityService) Rename(ctx context.Context, callerID, targetID, newName string) (*domain.PublicIdentity, error) {
	if callerID != targetID {
		if err := s.requireAdmin(ctx, callerID); err != nil {
			return nil, err
		}
	}

	identity, err := s.store.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := identity.Rename(newName); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, identity); err != nil {
		return nil, err
	}

	s.record(ports.AuditEvent{Kind: ports.AuditRenamed, SubjectID: targetID, ActorID: callerID, Email: identity.Email})

	public := identity.Public()
	return &public, nil
}

// SetRole is administrator-only.
func (s *IdentityService) SetRole(ctx context.Context, callerID, targetID string, role domain.Role) (*domain.PublicIdentity, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	identity, err := s.store.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	identity.SetRole(role)
	if err := s.store.Update(ctx, identity); err != nil {
		return nil, err
	}

	s.log.Info().Str("identity_id", targetID).Str("role", string(role)).Str("actor_id", callerID).Msg("role changed")
	s.record(ports.AuditEvent{Kind: ports.AuditRoleChanged, SubjectID: targetID, ActorID: callerID, Email: identity.Email})

	public := identity.Public()
	return &public, nil
}

// Deactivate is administrator-only. An administrator deactivating their own
// id fails with ErrCannotSelfDeactivate, never a generic authorization
// error and never silent success.
func (s *IdentityService) Deactivate(ctx context.Context, callerID, targetID string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if callerID == targetID {
		return domain.ErrCannotSelfDeactivate
	}

	identity, err := s.store.Get(ctx, targetID)
	if err != nil {
		return err
	}
	identity.Deactivate()
	if err := s.store.Update(ctx, identity); err != nil {
		return err
	}

	s.log.Info().Str("identity_id", targetID).Str("actor_id", callerID).Msg("identity deactivated")
	s.record(ports.AuditEvent{Kind: ports.AuditDeactivated, SubjectID: targetID, ActorID: callerID, Email: identity.Email})

	return nil
}

// Activate is administrator-only.
func (s *IdentityService) Activate(ctx context.Context, callerID, targetID string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}

	identity, err := s.store.Get(ctx, targetID)
	if err != nil {
		return err
	}
	identity.Activate()
	if err := s.store.Update(ctx, identity); err != nil {
		return err
	}

	s.log.Info().Str("identity_id", targetID).Str("actor_id", callerID).Msg("identity activated")
	s.record(ports.AuditEvent{Kind: ports.AuditActivated, SubjectID: targetID, ActorID: callerID, Email: identity.Email})

	return nil
}

func (s *IdentityService) requireAdmin(ctx context.Context, callerID string) error {
	caller, err := s.store.Get(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return domain.ErrNotAuthorized
	}
	return nil
}

func (s *IdentityService) record(event ports.AuditEvent) {
	if s.audit == nil {
		return
	}
	s.audit.Record(event)
}
