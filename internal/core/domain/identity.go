package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role distinguishes administrators from regular users.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Name and password bounds enforced at identity creation and rename.
const (
	NameMinLength     = 2
	NameMaxLength     = 100
	PasswordMinLength = 8
)

// ParseRole converts a stored or client-supplied role string to a Role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "user":
		return RoleUser, true
	}
	return "", false
}

// IsAdmin reports whether the role carries administrator privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Identity is the persisted user record. The credential hash is excluded
// from JSON client views; only the backing store serializes it.
type Identity struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	CredentialHash string    `json:"-"`
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewIdentity builds a new active identity with a fresh id. The email must
// already be normalized and the credential hash already derived.
func NewIdentity(displayName, email, credentialHash string, role Role) (*Identity, error) {
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Identity{
		ID:             uuid.NewString(),
		DisplayName:    strings.TrimSpace(displayName),
		Email:          email,
		CredentialHash: credentialHash,
		Role:           role,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Rename updates the display name, validating it first.
func (i *Identity) Rename(newName string) error {
	if err := ValidateDisplayName(newName); err != nil {
		return err
	}
	i.DisplayName = strings.TrimSpace(newName)
	i.touch()
	return nil
}

// SetRole changes the identity's role.
func (i *Identity) SetRole(role Role) {
	i.Role = role
	i.touch()
}

// SetCredentialHash replaces the stored credential hash.
func (i *Identity) SetCredentialHash(hash string) {
	i.CredentialHash = hash
	i.touch()
}

// Deactivate marks the identity as unable to authenticate.
func (i *Identity) Deactivate() {
	i.Active = false
	i.touch()
}

// Activate re-enables authentication for the identity.
func (i *Identity) Activate() {
	i.Active = true
	i.touch()
}

func (i *Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

func (i *Identity) touch() {
	i.UpdatedAt = time.Now().UTC()
}

// Public returns the client-safe projection of the identity.
func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:          i.ID,
		DisplayName: i.DisplayName,
		Email:       i.Email,
		Role:        i.Role,
		Active:      i.Active,
		CreatedAt:   i.CreatedAt,
	}
}

// PublicIdentity is the projection of Identity returned to clients.
// It never carries the credential hash.
type PublicIdentity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeEmail trims and lower-cases an email for use as the login key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateDisplayName checks the 2–100 character bound on a trimmed name.
// Length is counted in Unicode code points, not bytes.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Field: "display_name", Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(trimmed); n < NameMinLength || n > NameMaxLength {
		return &ValidationError{Field: "display_name", Reason: "must be between 2 and 100 characters"}
	}
	return nil
}

// ValidateEmail checks the minimal shape of a normalized email: a non-empty
// local part, a single @, and a domain containing a dot.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	local, dom, ok := strings.Cut(email, "@")
	if !ok || local == "" || dom == "" || !strings.Contains(dom, ".") {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	return nil
}

// ValidatePassword enforces the minimum plaintext password length.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}
