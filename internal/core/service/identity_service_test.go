package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roombook/identity-system/internal/core/domain"
)

func seedIdentity(t *testing.T, store *stubStore, name, email string, role domain.Role) *domain.Identity {
	t.Helper()
	identity, err := domain.NewIdentity(name, email, "unused-hash", role)
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}
	if err := store.Create(context.Background(), identity); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return identity
}

func TestIdentityService_Rename_Self(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	user := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)

	public, err := svc.Rename(context.Background(), user.ID, user.ID, "Ana Maria")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if public.DisplayName != "Ana Maria" {
		t.Errorf("display name = %q, want %q", public.DisplayName, "Ana Maria")
	}

	stored, _ := store.Get(context.Background(), user.ID)
	if stored.DisplayName != "Ana Maria" {
		t.Errorf("rename not persisted, got %q", stored.DisplayName)
	}
}

func TestIdentityService_Rename_OtherRequiresAdmin(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	ctx := context.Background()

	admin := seedIdentity(t, store, "Root", "root@x.com", domain.RoleAdmin)
	user := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)
	other := seedIdentity(t, store, "Bob", "bob@x.com", domain.RoleUser)

	if _, err := svc.Rename(ctx, user.ID, other.ID, "Robert"); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := svc.Rename(ctx, admin.ID, other.ID, "Robert"); err != nil {
		t.Fatalf("admin rename failed: %v", err)
	}
}

func TestIdentityService_Rename_InvalidName(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	user := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)

	var ve *domain.ValidationError
	if _, err := svc.Rename(context.Background(), user.ID, user.ID, "A"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestIdentityService_SetRole(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	ctx := context.Background()

	admin := seedIdentity(t, store, "Root", "root@x.com", domain.RoleAdmin)
	user := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)

	if _, err := svc.SetRole(ctx, user.ID, user.ID, domain.RoleAdmin); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-admin, got %v", err)
	}

	public, err := svc.SetRole(ctx, admin.ID, user.ID, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	if public.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", public.Role)
	}
}

func TestIdentityService_Deactivate(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	ctx := context.Background()

	admin := seedIdentity(t, store, "Root", "root@x.com", domain.RoleAdmin)
	user := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)

	if err := svc.Deactivate(ctx, user.ID, admin.ID); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-admin, got %v", err)
	}

	if err := svc.Deactivate(ctx, admin.ID, user.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	stored, _ := store.Get(ctx, user.ID)
	if stored.Active {
		t.Error("identity should be inactive")
	}

	if err := svc.Deactivate(ctx, admin.ID, "no-such-id"); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestIdentityService_Deactivate_Self(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())

	admin := seedIdentity(t, store, "Root", "root@x.com", domain.RoleAdmin)

	err := svc.Deactivate(context.Background(), admin.ID, admin.ID)
	if !errors.Is(err, domain.ErrCannotSelfDeactivate) {
		t.Fatalf("expected ErrCannotSelfDeactivate, got %v", err)
	}
	stored, _ := store.Get(context.Background(), admin.ID)
	if !stored.Active {
		t.Error("self-deactivate must not change state")
	}
}

func TestIdentityService_Activate(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	ctx := context.Background()

	admin := seedIdentity(t, store, "Root", "root@x.com", domain.RoleAdmin)
	user := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)

	if err := svc.Deactivate(ctx, admin.ID, user.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if err := svc.Activate(ctx, user.ID, user.ID); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-admin, got %v", err)
	}
	if err := svc.Activate(ctx, admin.ID, user.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	stored, _ := store.Get(ctx, user.ID)
	if !stored.Active {
		t.Error("identity should be active again")
	}
}

func TestIdentityService_GetAndList(t *testing.T) {
	store := newStubStore()
	svc := NewIdentityService(store, nil, zerolog.Nop())
	ctx := context.Background()

	first := seedIdentity(t, store, "Ana", "ana@x.com", domain.RoleUser)
	seedIdentity(t, store, "Bob", "bob@x.com", domain.RoleUser)

	public, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if public.Email != "ana@x.com" {
		t.Errorf("unexpected identity: %+v", public)
	}

	if _, err := svc.Get(ctx, "no-such-id"); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d identities, want 2", len(all))
	}
}
