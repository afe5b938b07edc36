package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sertifikasi-nasional/lsp-backend/internal/config"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

type fakeRoleRegistry struct {
	roles map[int64]string
	err   error
}

func (f *fakeRoleRegistry) GetRoleByID(id int64) (*domain.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &domain.Role{ID: id, Name: name}, nil
}

func newTestHandler(t *testing.T, registry RoleRegistry) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 3600
	cfg.Auth.AdminSecret = "super-secret"
	cfg.Redis.OperationTimeout = 1
	cfg.Redis.RoleCacheTTL = 60
	cfg.RabbitMQ.PublishTimeout = 1

	h, err := NewHandler(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}
	h.roles = registry
	return h
}

func nextRecorder(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMissingHeader(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	rec := httptest.NewRecorder()

	called := false
	h.auth(nextRecorder(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatalf("next should not be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMalformedScheme(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	called := false
	h.auth(nextRecorder(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatalf("next should not be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthValidTokenAttachesIdentity(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	user := &domain.User{ID: 42, Username: "budi", RoleID: 3}
	token, err := h.generateToken(user, domain.RoleAsesi)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	called := false
	h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if sub := r.Context().Value(SubCtxKey); sub != "42" {
			t.Fatalf("expected subject 42, got %v", sub)
		}
		if username := r.Context().Value(UsernameCtxKey); username != "budi" {
			t.Fatalf("expected username budi, got %v", username)
		}
		if roleID := r.Context().Value(RoleIDCtxKey); roleID != int64(3) {
			t.Fatalf("expected role id 3, got %v", roleID)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// Expired and tampered tokens must be indistinguishable to the caller: same
// status, same body.
func TestAuthExpiredAndTamperedTokensAnswerAlike(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		Username: "budi",
		RoleID:   3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Subject:   "42",
		},
	})
	expiredToken, err := expired.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	tampered := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		Username: "budi",
		RoleID:   3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   "42",
		},
	})
	tamperedToken, err := tampered.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign tampered token: %v", err)
	}

	bodies := make([]string, 0, 2)
	for _, token := range []string{expiredToken, tamperedToken} {
		req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		called := false
		h.auth(nextRecorder(&called)).ServeHTTP(rec, req)

		if called {
			t.Fatalf("next should not be called")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	if bodies[0] != bodies[1] {
		t.Fatalf("expired and tampered responses differ: %q vs %q", bodies[0], bodies[1])
	}
}

func roleRequest(roleID any) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/asesi/", nil)
	if roleID != nil {
		req = req.WithContext(context.WithValue(req.Context(), RoleIDCtxKey, roleID))
	}
	return req
}

func TestRequiredRoleAllowsMatchingRole(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{roles: map[int64]string{1: domain.RoleAdmin}})

	rec := httptest.NewRecorder()
	called := false
	h.requiredRole([]string{domain.RoleAdmin})(nextRecorder(&called)).ServeHTTP(rec, roleRequest(int64(1)))

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequiredRoleRejectsOtherRole(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{roles: map[int64]string{3: domain.RoleAsesi}})

	rec := httptest.NewRecorder()
	called := false
	h.requiredRole([]string{domain.RoleAdmin})(nextRecorder(&called)).ServeHTTP(rec, roleRequest(int64(3)))

	if called {
		t.Fatalf("next should not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequiredRoleRejectsMissingRoleContext(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	rec := httptest.NewRecorder()
	called := false
	h.requiredRole([]string{domain.RoleAdmin})(nextRecorder(&called)).ServeHTTP(rec, roleRequest(nil))

	if called {
		t.Fatalf("next should not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

// An unknown role id is an authorization failure; a broken role registry is
// an infrastructure failure. They must not share a status code.
func TestRequiredRoleDistinguishesUnknownRoleFromRegistryFailure(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{roles: map[int64]string{}})

	rec := httptest.NewRecorder()
	called := false
	h.requiredRole([]string{domain.RoleAdmin})(nextRecorder(&called)).ServeHTTP(rec, roleRequest(int64(99)))
	if called {
		t.Fatalf("next should not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unknown role: expected 403, got %d", rec.Code)
	}

	h = newTestHandler(t, &fakeRoleRegistry{err: errors.New("connection refused")})

	rec = httptest.NewRecorder()
	called = false
	h.requiredRole([]string{domain.RoleAdmin})(nextRecorder(&called)).ServeHTTP(rec, roleRequest(int64(1)))
	if called {
		t.Fatalf("next should not be called")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("registry failure: expected 500, got %d", rec.Code)
	}
}

func TestRequiredRoleEmptyListAllowsAnyRole(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{roles: map[int64]string{3: domain.RoleAsesi}})

	rec := httptest.NewRecorder()
	called := false
	h.requiredRole(nil)(nextRecorder(&called)).ServeHTTP(rec, roleRequest(int64(3)))

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
