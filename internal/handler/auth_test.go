package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// The handler is built with a nil repository on purpose: if a request that
// should be rejected before any persistence ever reaches the repository, the
// test panics.

func TestRegisterRejectsMissingFields(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"username": "budi", "password": "rahasia"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"username": "budi", "password": "rahasia", "email": "not-an-email", "full_name": "Budi Santoso", "ktp_number": "3171234567890001"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterRejectsMalformedJSON(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// A wrong admin secret must fail before validation and before any database
// access, so a caller probing the endpoint learns nothing about the payload
// schema.
func TestRegisterPrivilegedRejectsWrongSecretFirst(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"admin_secret": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register/privileged", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.RegisterPrivileged(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRegisterPrivilegedRejectsMissingSecret(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"username": "admin2", "password": "rahasia", "email": "admin2@example.com", "role_name": "Admin", "full_name": "Admin Dua"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register/privileged", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.RegisterPrivileged(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRegisterPrivilegedRejectsUnknownRoleName(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"admin_secret": "super-secret", "username": "x", "password": "y", "email": "x@example.com", "role_name": "Asesi", "full_name": "X"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register/privileged", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.RegisterPrivileged(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterPrivilegedRequiresAsesorRegNumber(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"admin_secret": "super-secret", "username": "asesor1", "password": "rahasia", "email": "asesor1@example.com", "role_name": "Asesor", "full_name": "Asesor Satu"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register/privileged", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.RegisterPrivileged(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username": "budi"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestForgotPasswordRejectsMissingEmail(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", strings.NewReader(`{"username": "budi", "new_password": "baru"}`))
	rec := httptest.NewRecorder()

	h.ForgotPassword(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
