package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/repository"
)

type fakeImportStore struct {
	calls []string
}

func (f *fakeImportStore) GetRoleByName(name string) (*domain.Role, error) {
	return &domain.Role{ID: 3, Name: name}, nil
}

func (f *fakeImportStore) GetSchemeByCode(code string) (*domain.CertificationScheme, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeImportStore) ImportAsesiRow(user *domain.User, profile *domain.AsesiProfile) (string, error) {
	f.calls = append(f.calls, user.Username)
	profile.ID = int64(len(f.calls))
	profile.UserID = profile.ID
	if user.Username == "siti" {
		return repository.ImportOutcomeUpdated, nil
	}
	return repository.ImportOutcomeCreated, nil
}

func TestMissingImportFields(t *testing.T) {
	tests := []struct {
		name    string
		row     importAsesiRow
		missing []string
	}{
		{
			name: "complete row",
			row: importAsesiRow{
				Username:           "budi",
				Email:              "budi@example.com",
				FullName:           "Budi Santoso",
				RegistrationNumber: "REG-001",
			},
			missing: []string{},
		},
		{
			name: "whitespace counts as missing",
			row: importAsesiRow{
				Username:           "  ",
				Email:              "budi@example.com",
				FullName:           "Budi Santoso",
				RegistrationNumber: "REG-001",
			},
			missing: []string{"username"},
		},
		{
			name:    "empty row misses everything",
			row:     importAsesiRow{},
			missing: []string{"username", "email", "full_name", "registration_number"},
		},
		{
			name: "optional fields do not matter",
			row: importAsesiRow{
				Username:           "budi",
				Email:              "budi@example.com",
				FullName:           "Budi Santoso",
				RegistrationNumber: "REG-001",
				KTPNumber:          "",
				SchemeCode:         "",
				Password:           "",
			},
			missing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missingImportFields(tt.row)
			if !slices.Equal(got, tt.missing) {
				t.Fatalf("expected missing %v, got %v", tt.missing, got)
			}
		})
	}
}

// A row missing a mandatory field is skipped without aborting the batch: the
// surrounding rows still land, and the returned asesi list holds only the
// rows that did.
func TestImportAsesiSkipsBadRowAndImportsTheRest(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})
	store := &fakeImportStore{}
	h.importer = store

	body := `[
		{"username": "budi", "email": "budi@example.com", "full_name": "Budi Santoso", "registration_number": "REG-001"},
		{"username": "anon", "email": "anon@example.com", "registration_number": "REG-002"},
		{"username": "siti", "email": "siti@example.com", "full_name": "Siti Wijaya", "registration_number": "REG-003"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/asesi/import", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.ImportAsesi(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Imported int `json:"imported"`
			Updated  int `json:"updated"`
			Skipped  int `json:"skipped"`
			Failed   int `json:"failed"`
			Asesi    []struct {
				RegistrationNumber string `json:"registrationNumber"`
			} `json:"asesi"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Data.Imported != 1 || resp.Data.Updated != 1 || resp.Data.Skipped != 1 || resp.Data.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", resp.Data)
	}
	if len(resp.Data.Asesi) != 2 {
		t.Fatalf("expected 2 asesi in response, got %d", len(resp.Data.Asesi))
	}
	if resp.Data.Asesi[0].RegistrationNumber != "REG-001" || resp.Data.Asesi[1].RegistrationNumber != "REG-003" {
		t.Fatalf("skipped row leaked into the asesi list: %+v", resp.Data.Asesi)
	}

	if !slices.Equal(store.calls, []string{"budi", "siti"}) {
		t.Fatalf("store saw wrong rows: %v", store.calls)
	}
}

func TestImportAsesiRejectsEmptyPayload(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodPost, "/asesi/import", strings.NewReader(`[]`))
	rec := httptest.NewRecorder()

	h.ImportAsesi(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportAsesiRejectsMalformedPayload(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodPost, "/asesi/import", strings.NewReader(`{"username": "budi"}`))
	rec := httptest.NewRecorder()

	h.ImportAsesi(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportRowError(t *testing.T) {
	duplicateUsername := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_key"}
	if got := importRowError(duplicateUsername); got != "duplicate value for username" {
		t.Fatalf("unexpected message: %q", got)
	}

	duplicateUnknown := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "some_other_key"}
	if got := importRowError(duplicateUnknown); got != "duplicate entry" {
		t.Fatalf("unexpected message: %q", got)
	}

	other := &pgconn.PgError{Code: "57014"}
	if got := importRowError(other); got != "database error" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestGetAllAsesiRejectsUnknownStatusFilter(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodGet, "/asesi/?status=lulus", nil)
	rec := httptest.NewRecorder()

	h.GetAllAsesi(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetAllAsesiRejectsBadIsBlockedFilter(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	req := httptest.NewRequest(http.MethodGet, "/asesi/?isBlocked=maybe", nil)
	rec := httptest.NewRecorder()

	h.GetAllAsesi(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAsesiRejectsMissingScheme(t *testing.T) {
	h := newTestHandler(t, &fakeRoleRegistry{})

	body := `{"username": "budi", "password": "rahasia", "email": "budi@example.com", "full_name": "Budi Santoso", "ktp_number": "3171234567890001", "registration_number": "REG-001"}`
	req := httptest.NewRequest(http.MethodPost, "/asesi/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateAsesi(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
