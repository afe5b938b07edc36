package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/metrics"
	"github.com/sertifikasi-nasional/lsp-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllAsesi(w http.ResponseWriter, r *http.Request) {
	var status *string
	var isBlocked *bool

	if v := r.URL.Query().Get("status"); v != "" {
		if !slices.Contains(domain.Statuses, v) {
			h.errorResponse(w, r, http.StatusBadRequest, "invalid status filter")
			return
		}
		status = &v
	}
	switch r.URL.Query().Get("isBlocked") {
	case "true":
		b := true
		isBlocked = &b
	case "false":
		b := false
		isBlocked = &b
	case "":
	default:
		h.errorResponse(w, r, http.StatusBadRequest, "invalid isBlocked filter")
		return
	}
	search := r.URL.Query().Get("search")

	profiles, err := h.repository.FindAllAsesi(status, isBlocked, search)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "asesi retrieved successfully", profiles)
}

// CreateAsesi is the admin-driven counterpart of self-registration: the
// caller supplies the registration number and scheme instead of the store
// generating defaults.
func (h *Handler) CreateAsesi(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username           string  `json:"username" validate:"required"`
		Password           string  `json:"password" validate:"required"`
		Email              string  `json:"email" validate:"required,email"`
		FullName           string  `json:"full_name" validate:"required"`
		KTPNumber          string  `json:"ktp_number" validate:"required"`
		RegistrationNumber string  `json:"registration_number" validate:"required"`
		SchemeID           int64   `json:"scheme_id" validate:"required"`
		PhoneNumber        *string `json:"phone_number"`
		Address            *string `json:"address"`
		Education          *string `json:"education"`
		PlottingAsesor     *string `json:"plotting_asesor"`
		PhotoURL           *string `json:"photo_url"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	role, err := h.repository.GetRoleByName(domain.RoleAsesi)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusBadRequest, "role 'Asesi' not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if _, err := h.repository.GetSchemeByID(req.SchemeID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusBadRequest, "certification scheme not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		Email:        req.Email,
		RoleID:       role.ID,
	}
	profile := &domain.AsesiProfile{
		FullName:           req.FullName,
		PhoneNumber:        req.PhoneNumber,
		Address:            req.Address,
		KTPNumber:          req.KTPNumber,
		RegistrationNumber: req.RegistrationNumber,
		Education:          req.Education,
		SchemeID:           &req.SchemeID,
		PlottingAsesor:     req.PlottingAsesor,
		PhotoURL:           req.PhotoURL,
	}

	if err := h.repository.RegisterAsesi(user, profile); err != nil {
		h.conflictOrInternal(w, r, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(domain.RoleAsesi).Inc()
	h.publishNotification(domain.NotificationMessage{
		Type:    domain.NotificationAsesiCreated,
		Title:   "Asesi Baru Ditambahkan",
		Message: fmt.Sprintf("Asesi %q dengan nomor registrasi %s telah ditambahkan oleh admin.", profile.FullName, profile.RegistrationNumber),
		UserID:  &user.ID,
		Email:   user.Email,
	})

	h.successResponse(w, r, http.StatusCreated, "asesi created successfully", map[string]any{
		"user":    user,
		"profile": profile,
	})
}

func asesiFromContext(r *http.Request) *domain.AsesiProfile {
	return r.Context().Value(AsesiCtxKey).(*domain.AsesiProfile)
}

func (h *Handler) GetAsesiByID(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, http.StatusOK, "asesi retrieved successfully", asesiFromContext(r))
}

// UpdateAsesi partially updates the editable profile fields. Verification
// status and block state are not accepted here; they change only through
// the dedicated actions.
func (h *Handler) UpdateAsesi(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName           *string `json:"full_name"`
		PhoneNumber        *string `json:"phone_number"`
		Address            *string `json:"address"`
		KTPNumber          *string `json:"ktp_number"`
		RegistrationNumber *string `json:"registration_number"`
		Education          *string `json:"education"`
		SchemeID           *int64  `json:"scheme_id"`
		PlottingAsesor     *string `json:"plotting_asesor"`
		DocumentsStatus    *string `json:"documents_status"`
		CertificateStatus  *string `json:"certificate_status"`
		PhotoURL           *string `json:"photo_url"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	profile := asesiFromContext(r)

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		profile.Address = req.Address
	}
	if req.KTPNumber != nil {
		profile.KTPNumber = *req.KTPNumber
	}
	if req.RegistrationNumber != nil {
		profile.RegistrationNumber = *req.RegistrationNumber
	}
	if req.Education != nil {
		profile.Education = req.Education
	}
	if req.SchemeID != nil {
		profile.SchemeID = req.SchemeID
	}
	if req.PlottingAsesor != nil {
		profile.PlottingAsesor = req.PlottingAsesor
	}
	if req.DocumentsStatus != nil {
		profile.DocumentsStatus = *req.DocumentsStatus
	}
	if req.CertificateStatus != nil {
		profile.CertificateStatus = *req.CertificateStatus
	}
	if req.PhotoURL != nil {
		profile.PhotoURL = req.PhotoURL
	}

	if err := h.repository.UpdateAsesiProfile(profile); err != nil {
		h.conflictOrInternal(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "asesi updated successfully", profile)
}

func (h *Handler) DeleteAsesi(w http.ResponseWriter, r *http.Request) {
	profile := asesiFromContext(r)

	if err := h.repository.DeleteAsesi(profile.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "asesi not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, http.StatusOK, "asesi deleted successfully", nil)
}

// VerifyAsesi marks the asesi as verified. Verifying an already verified
// asesi succeeds and leaves the record unchanged.
func (h *Handler) VerifyAsesi(w http.ResponseWriter, r *http.Request) {
	current := asesiFromContext(r)

	profile, err := h.repository.VerifyAsesi(current.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "asesi not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishNotification(domain.NotificationMessage{
		Type:    domain.NotificationAsesiVerified,
		Title:   "Asesi Terverifikasi",
		Message: fmt.Sprintf("Asesi %q (%s) telah diverifikasi.", profile.FullName, profile.RegistrationNumber),
		UserID:  &profile.UserID,
	})

	h.successResponse(w, r, http.StatusOK, "asesi verified successfully", profile)
}

func (h *Handler) BlockAsesi(w http.ResponseWriter, r *http.Request) {
	h.setAsesiBlocked(w, r, true)
}

func (h *Handler) UnblockAsesi(w http.ResponseWriter, r *http.Request) {
	h.setAsesiBlocked(w, r, false)
}

func (h *Handler) setAsesiBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	current := asesiFromContext(r)

	profile, err := h.repository.SetAsesiBlocked(current.ID, blocked)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "asesi not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	notificationType := domain.NotificationAsesiBlocked
	title := "Asesi Diblokir"
	message := fmt.Sprintf("Asesi %q (%s) telah diblokir.", profile.FullName, profile.RegistrationNumber)
	successMessage := "asesi blocked successfully"
	if !blocked {
		notificationType = domain.NotificationAsesiUnblocked
		title = "Blokir Asesi Dibuka"
		message = fmt.Sprintf("Blokir untuk asesi %q (%s) telah dibuka.", profile.FullName, profile.RegistrationNumber)
		successMessage = "asesi unblocked successfully"
	}

	h.publishNotification(domain.NotificationMessage{
		Type:    notificationType,
		Title:   title,
		Message: message,
		UserID:  &profile.UserID,
	})

	h.successResponse(w, r, http.StatusOK, successMessage, profile)
}

type importAsesiRow struct {
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	FullName           string  `json:"full_name"`
	RegistrationNumber string  `json:"registration_number"`
	Password           string  `json:"password"`
	KTPNumber          string  `json:"ktp_number"`
	SchemeCode         string  `json:"scheme_code"`
	PhoneNumber        *string `json:"phone_number"`
	Address            *string `json:"address"`
	Education          *string `json:"education"`
	PlottingAsesor     *string `json:"plotting_asesor"`
}

// missingImportFields reports which mandatory columns an import row lacks.
// Rows missing any of them are skipped, not failed.
func missingImportFields(row importAsesiRow) []string {
	missing := []string{}
	if strings.TrimSpace(row.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(row.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(row.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(row.RegistrationNumber) == "" {
		missing = append(missing, "registration_number")
	}
	return missing
}

// ImportAsesi bulk-creates or updates asesi accounts. Every row runs in its
// own transaction; one bad row is reported and the rest proceed.
func (h *Handler) ImportAsesi(w http.ResponseWriter, r *http.Request) {
	var rows []importAsesiRow
	if err := h.readJSON(r, &rows); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if len(rows) == 0 {
		h.errorResponse(w, r, http.StatusBadRequest, "import payload must contain at least one row")
		return
	}

	role, err := h.importer.GetRoleByName(domain.RoleAsesi)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	type rowResult struct {
		Row     int      `json:"row"`
		Status  string   `json:"status"`
		Missing []string `json:"missing,omitempty"`
		Error   string   `json:"error,omitempty"`
	}

	var imported, updated, skipped, failed int
	results := make([]rowResult, 0, len(rows))
	profiles := make([]*domain.AsesiProfile, 0, len(rows))

	for i, row := range rows {
		if missing := missingImportFields(row); len(missing) > 0 {
			skipped++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			results = append(results, rowResult{Row: i + 1, Status: "skipped", Missing: missing})
			continue
		}

		var schemeID *int64
		if row.SchemeCode != "" {
			scheme, err := h.importer.GetSchemeByCode(row.SchemeCode)
			switch {
			case err == nil:
				schemeID = &scheme.ID
			case errors.Is(err, sql.ErrNoRows):
				slog.Warn("import row references unknown scheme", "row", i+1, "scheme_code", row.SchemeCode)
			default:
				failed++
				metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
				results = append(results, rowResult{Row: i + 1, Status: "failed", Error: "scheme lookup failed"})
				continue
			}
		}

		password := row.Password
		if password == "" {
			password = h.config.Import.DefaultPassword
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			failed++
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			results = append(results, rowResult{Row: i + 1, Status: "failed", Error: "unable to hash password"})
			continue
		}

		user := &domain.User{
			Username:     row.Username,
			PasswordHash: string(passwordHash),
			Email:        row.Email,
			RoleID:       role.ID,
		}
		profile := &domain.AsesiProfile{
			FullName:           row.FullName,
			PhoneNumber:        row.PhoneNumber,
			Address:            row.Address,
			KTPNumber:          row.KTPNumber,
			RegistrationNumber: row.RegistrationNumber,
			Education:          row.Education,
			SchemeID:           schemeID,
			PlottingAsesor:     row.PlottingAsesor,
		}

		outcome, err := h.importer.ImportAsesiRow(user, profile)
		if err != nil {
			failed++
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			slog.Error("import row failed", "row", i+1, "username", row.Username, "error", err)
			results = append(results, rowResult{Row: i + 1, Status: "failed", Error: importRowError(err)})
			continue
		}

		switch outcome {
		case repository.ImportOutcomeCreated:
			imported++
		case repository.ImportOutcomeUpdated:
			updated++
		}
		metrics.ImportRowsTotal.WithLabelValues(outcome).Inc()
		profiles = append(profiles, profile)
		results = append(results, rowResult{Row: i + 1, Status: outcome})
	}

	h.publishNotification(domain.NotificationMessage{
		Type:    domain.NotificationAsesiImport,
		Title:   "Impor Asesi Selesai",
		Message: fmt.Sprintf("Impor asesi selesai: %d dibuat, %d diperbarui, %d dilewati, %d gagal.", imported, updated, skipped, failed),
	})

	// asesi holds only the rows that actually landed in the store; skipped
	// and failed rows show up in the diagnostics alone.
	h.successResponse(w, r, http.StatusOK, "import completed", map[string]any{
		"imported": imported,
		"updated":  updated,
		"skipped":  skipped,
		"failed":   failed,
		"asesi":    profiles,
		"results":  results,
	})
}

func importRowError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if field, ok := constraintFields[pgErr.ConstraintName]; ok {
			return "duplicate value for " + field
		}
		return "duplicate entry"
	}
	return "database error"
}
