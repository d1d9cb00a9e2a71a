package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roombook/identity-system/internal/core/auth"
	"github.com/roombook/identity-system/internal/core/domain"
	"github.com/roombook/identity-system/internal/core/ports"
)

// LoginThrottle limits repeated failed logins per normalized email. A nil
// implementation allows everything.
type LoginThrottle interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService implements registration, login, token validation, and
// password change on top of an IdentityStore and the crypto leaves.
type AuthService struct {
	store    ports.IdentityStore
	tokens   *auth.TokenService
	throttle LoginThrottle
	audit    ports.AuditSink
	log      zerolog.Logger
}

// NewAuthService wires an AuthService. throttle and audit may be nil.
func NewAuthService(store ports.IdentityStore, tokens *auth.TokenService, throttle LoginThrottle, audit ports.AuditSink, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		throttle: throttle,
		audit:    audit,
		log:      log,
	}
}

// Register creates a new identity and returns a fresh session for it.
// The email-uniqueness check and the insert are atomic with respect to
// concurrent registrations: the store's Create performs both inside one
// critical section, so two racing calls on the same email yield exactly
// one success.
func (s *AuthService) Register(ctx context.Context, displayName, email, password string, roleOverride *domain.Role) (*ports.Session, error) {
	normalized := domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(normalized); err != nil {
		return nil, err
	}
	if err := domain.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	// Cheap early check for a friendly failure; Create re-checks under its
	// own lock, which is the authoritative uniqueness guarantee.
	if taken, err := s.store.ExistsEmail(ctx, normalized); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrEmailAlreadyRegistered
	}

	// Hashing is memory-hard and deliberately slow; it runs before any
	// store lock is taken so its latency never blocks readers or writers.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleUser
	if roleOverride != nil {
		role = *roleOverride
	}

	identity, err := domain.NewIdentity(displayName, normalized, hash, role)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, identity); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("identity_id", identity.ID).Str("role", string(identity.Role)).Msg("identity registered")
	s.record(ports.AuditEvent{Kind: ports.AuditRegistered, SubjectID: identity.ID, Email: identity.Email})

	return &ports.Session{Token: token, Identity: identity.Public()}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password are reported identically as ErrInvalidCredentials; only after
// the password verifies does an inactive account surface as
// ErrAccountInactive.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	normalized := domain.NormalizeEmail(email)

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, normalized)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		} else if !allowed {
			s.record(ports.AuditEvent{Kind: ports.AuditLoginFailed, Email: normalized})
			return nil, domain.ErrInvalidCredentials
		}
	}

	identity, err := s.store.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.noteLoginFailure(ctx, normalized)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, identity.CredentialHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.noteLoginFailure(ctx, normalized)
		return nil, domain.ErrInvalidCredentials
	}

	if !identity.Active {
		return nil, domain.ErrAccountInactive
	}

	token, err := s.tokens.Issue(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, normalized); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	s.log.Info().Str("identity_id", identity.ID).Msg("login succeeded")
	s.record(ports.AuditEvent{Kind: ports.AuditLoginSucceeded, SubjectID: identity.ID, Email: identity.Email})

	return &ports.Session{Token: token, Identity: identity.Public()}, nil
}

// ValidateToken verifies the token and then re-fetches the subject by id.
// Tokens are stateless and cannot be revoked, so current account status is
// re-checked on every call instead of trusting the embedded claims.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.PublicIdentity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	identity, err := s.store.Get(ctx, claims.SubjectID())
	if err != nil {
		return nil, err
	}
	if !identity.Active {
		return nil, domain.ErrAccountInactive
	}

	public := identity.Public()
	return &public, nil
}

// ChangePassword re-verifies the old password before hashing and persisting
// the new one.
func (s *AuthService) ChangePassword(ctx context.Context, identityID, oldPassword, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	identity, err := s.store.Get(ctx, identityID)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(oldPassword, identity.CredentialHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	identity.SetCredentialHash(hash)
	if err := s.store.Update(ctx, identity); err != nil {
		return err
	}

	s.log.Info().Str("identity_id", identity.ID).Msg("password changed")
	s.record(ports.AuditEvent{Kind: ports.AuditPasswordChange, SubjectID: identity.ID, ActorID: identity.ID, Email: identity.Email})

	return nil
}

func (s *AuthService) noteLoginFailure(ctx context.Context, email string) {
	s.record(ports.AuditEvent{Kind: ports.AuditLoginFailed, Email: email})
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AuthService) record(event ports.AuditEvent) {
	if s.audit == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	s.audit.Record(event)
}
