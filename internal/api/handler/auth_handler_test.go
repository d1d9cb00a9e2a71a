package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/roombook/identity-system/internal/api/middleware"
	"github.com/roombook/identity-system/internal/core/domain"
	"github.com/roombook/identity-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, displayName, email, password string, roleOverride *domain.Role) (*ports.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.Session, error)
	validateFn       func(ctx context.Context, token string) (*domain.PublicIdentity, error)
	changePasswordFn func(ctx context.Context, identityID, oldPassword, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, displayName, email, password string, roleOverride *domain.Role) (*ports.Session, error) {
	return s.registerFn(ctx, displayName, email, password, roleOverride)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*domain.PublicIdentity, error) {
	return s.validateFn(ctx, token)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, identityID, oldPassword, newPassword string) error {
	return s.changePasswordFn(ctx, identityID, oldPassword, newPassword)
}

func testPublicIdentity() domain.PublicIdentity {
	return domain.PublicIdentity{
		ID:          "id-1",
		DisplayName: "Ana",
		Email:       "ana@x.com",
		Role:        domain.RoleUser,
		Active:      true,
	}
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, displayName, email, password string, roleOverride *domain.Role) (*ports.Session, error) {
			if roleOverride != nil {
				t.Error("public registration must not carry a role override")
			}
			if displayName != "Ana" || email != "ana@x.com" || password != "password123" {
				t.Errorf("unexpected arguments: %q %q %q", displayName, email, password)
			}
			return &ports.Session{Token: "tok-123", Identity: testPublicIdentity()}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/register",
		`{"display_name":"Ana","email":"ana@x.com","password":"password123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok-123"`) {
		t.Errorf("body missing token: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "credential") {
		t.Errorf("body must not leak credential material: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"display_name":"Ana","password":"password123"}`},
		{"short password", `{"display_name":"Ana","email":"ana@x.com","password":"short"}`},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/auth/register", tt.body)
			err := h.Register(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 HTTPError, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, string, string, string, *domain.Role) (*ports.Session, error) {
			return nil, domain.ErrEmailAlreadyRegistered
		},
	}
	h := NewAuthHandler(svc)

	c, _ := newJSONContext(http.MethodPost, "/auth/register",
		`{"display_name":"Ana","email":"ana@x.com","password":"password123"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered to propagate, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.Session, error) {
			if email != "ana@x.com" || password != "password123" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.Session{Token: "tok-456", Identity: testPublicIdentity()}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/login",
		`{"email":"ana@x.com","password":"password123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/auth/login",
		`{"email":"ana@x.com","password":"wrong-password"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newJSONContext(http.MethodGet, "/auth/me", "")
	caller := testPublicIdentity()
	c.Set(middleware.CallerKey, &caller)

	if err := h.Me(c); err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"id":"id-1"`) {
		t.Errorf("body missing identity: %s", rec.Body.String())
	}
}

func TestAuthHandler_Me_NoCaller(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(http.MethodGet, "/auth/me", "")
	err := h.Me(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotID, gotOld, gotNew string
	svc := &stubAuthService{
		changePasswordFn: func(_ context.Context, identityID, oldPassword, newPassword string) error {
			gotID, gotOld, gotNew = identityID, oldPassword, newPassword
			return nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPut, "/auth/password",
		`{"old_password":"password123","new_password":"newpassword1"}`)
	caller := testPublicIdentity()
	c.Set(middleware.CallerKey, &caller)

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if gotID != "id-1" || gotOld != "password123" || gotNew != "newpassword1" {
		t.Errorf("unexpected arguments: %q %q %q", gotID, gotOld, gotNew)
	}
}
