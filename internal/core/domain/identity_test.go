package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana@Example.COM", "ana@example.com"},
		{"  ana@example.com  ", "ana@example.com"},
		{"ana@example.com", "ana@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "user+tag@sub.domain.org"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{"", "no-at-sign", "@b.com", "a@", "a@nodot"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidateDisplayName(t *testing.T) {
	if err := ValidateDisplayName("Jo"); err != nil {
		t.Errorf("two characters should pass: %v", err)
	}
	if err := ValidateDisplayName(strings.Repeat("x", NameMaxLength)); err != nil {
		t.Errorf("max-length name should pass: %v", err)
	}
	// Multibyte names are measured in code points, not bytes.
	if err := ValidateDisplayName(strings.Repeat("á", NameMaxLength)); err != nil {
		t.Errorf("multibyte max-length name should pass: %v", err)
	}

	for _, name := range []string{"", "   ", "J", strings.Repeat("x", NameMaxLength+1)} {
		var ve *ValidationError
		if err := ValidateDisplayName(name); !errors.As(err, &ve) {
			t.Errorf("ValidateDisplayName(%q) = %v, want ValidationError", name, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("eight characters should pass: %v", err)
	}
	var ve *ValidationError
	if err := ValidatePassword("1234567"); !errors.As(err, &ve) {
		t.Errorf("seven characters should fail, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"admin": RoleAdmin, " User ": RoleUser, "ADMIN": RoleAdmin} {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, true", in, got, ok, want)
		}
	}
	if _, ok := ParseRole("root"); ok {
		t.Error("ParseRole(root) should fail")
	}
}

func TestNewIdentity(t *testing.T) {
	identity, err := NewIdentity("  Ana  ", "ana@x.com", "hash", RoleUser)
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}
	if identity.ID == "" {
		t.Error("id must be assigned")
	}
	if identity.DisplayName != "Ana" {
		t.Errorf("display name should be trimmed, got %q", identity.DisplayName)
	}
	if !identity.Active {
		t.Error("new identity should be active")
	}
	if !identity.CreatedAt.Equal(identity.UpdatedAt) {
		t.Error("created_at and updated_at should match at creation")
	}

	other, err := NewIdentity("Ana", "ana@x.com", "hash", RoleUser)
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}
	if other.ID == identity.ID {
		t.Error("ids must be unique")
	}
}

func TestIdentity_MutatorsTouchUpdatedAt(t *testing.T) {
	identity, err := NewIdentity("Ana", "ana@x.com", "hash", RoleUser)
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}

	before := identity.UpdatedAt
	identity.Deactivate()
	if identity.Active {
		t.Error("Deactivate should clear Active")
	}
	if identity.UpdatedAt.Before(before) {
		t.Error("UpdatedAt must not go backwards")
	}

	identity.Activate()
	if !identity.Active {
		t.Error("Activate should set Active")
	}

	identity.SetRole(RoleAdmin)
	if !identity.IsAdmin() {
		t.Error("SetRole(admin) should make IsAdmin true")
	}

	if err := identity.Rename("A"); err == nil {
		t.Error("Rename should validate the new name")
	}
	if identity.DisplayName != "Ana" {
		t.Error("failed rename must not change the name")
	}
}

func TestIdentity_JSONNeverExposesCredentialHash(t *testing.T) {
	identity, err := NewIdentity("Ana", "ana@x.com", "$argon2id$secret-material", RoleUser)
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}

	for name, v := range map[string]any{"identity": identity, "public": identity.Public()} {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if strings.Contains(string(raw), "secret-material") {
			t.Errorf("%s JSON leaks the credential hash: %s", name, raw)
		}
	}
}
