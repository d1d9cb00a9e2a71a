package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roombook/identity-system/internal/core/domain"
	"github.com/roombook/identity-system/internal/core/ports"
)

// Fixed demo credentials for the seed administrator. This is a demo system;
// the account must be reconfigured before any real deployment.
const (
	SeedAdminName     = "Administrator"
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin12345"
)

// SeedAdmin creates the bootstrap administrator once at process start when
// the store is empty, and logs the issued first-access token. Returns the
// new session, or nil when seeding was skipped because identities already
// exist.
func SeedAdmin(ctx context.Context, store ports.IdentityStore, authSvc ports.AuthService, log zerolog.Logger) (*ports.Session, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking identity count: %w", err)
	}
	if count > 0 {
		log.Debug().Msg("identities exist, skipping admin seed")
		return nil, nil
	}

	role := domain.RoleAdmin
	session, err := authSvc.Register(ctx, SeedAdminName, SeedAdminEmail, SeedAdminPassword, &role)
	if err != nil {
		return nil, fmt.Errorf("creating seed administrator: %w", err)
	}

	log.Warn().
		Str("email", SeedAdminEmail).
		Str("token", session.Token).
		Msg("seed administrator created, change its password immediately")

	return session, nil
}
