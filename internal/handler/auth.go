package handler

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

type authClaims struct {
	Username string `json:"username"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name,omitempty"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(user *domain.User, roleName string) (string, error) {
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		Username: user.Username,
		RoleID:   user.RoleID,
		RoleName: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})

	return token.SignedString([]byte(h.config.JWT.Secret))
}

// Register is the public asesi self-registration: the account and its asesi
// profile are created in one transaction, the registration number is
// store-generated when absent.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string  `json:"username" validate:"required"`
		Password    string  `json:"password" validate:"required"`
		Email       string  `json:"email" validate:"required,email"`
		FullName    string  `json:"full_name" validate:"required"`
		KTPNumber   string  `json:"ktp_number" validate:"required"`
		PhoneNumber *string `json:"phone_number"`
		Address     *string `json:"address"`
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
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		KTPNumber:   req.KTPNumber,
	}

	if err := h.repository.RegisterAsesi(user, profile); err != nil {
		h.conflictOrInternal(w, r, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(domain.RoleAsesi).Inc()
	h.publishNotification(domain.NotificationMessage{
		Type:    domain.NotificationNewUser,
		Title:   "Pendaftar Asesi Baru",
		Message: fmt.Sprintf("Asesi %q dengan KTP %s telah mendaftar mandiri.", profile.FullName, profile.KTPNumber),
		UserID:  &user.ID,
		Email:   user.Email,
	})

	h.successResponse(w, r, http.StatusCreated, "asesi registered successfully", map[string]any{
		"user":    user,
		"profile": profile,
	})
}

// RegisterPrivileged creates an Admin or Asesor account. The shared secret
// is checked in constant time before anything touches the database; it is
// never logged.
func (h *Handler) RegisterPrivileged(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username" validate:"required"`
		Password    string `json:"password" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		RoleName    string `json:"role_name" validate:"required,oneof=Admin Asesor"`
		AdminSecret string `json:"admin_secret"`
		FullName    string `json:"full_name" validate:"required"`
		RegNumber   string `json:"reg_number"`

		// admin profile extras
		AvatarURL    *string `json:"avatar_url"`
		NomorInduk   *string `json:"nomor_induk"`
		NomorLisensi *string `json:"nomor_lisensi"`
		MasaBerlaku  *string `json:"masa_berlaku"`
		NomorKTP     *string `json:"nomor_ktp"`
		TTL          *string `json:"ttl"`
		Alamat       *string `json:"alamat"`
		NomorHP      *string `json:"nomor_hp"`
		Pendidikan   *string `json:"pendidikan"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.AdminSecret), []byte(h.config.Auth.AdminSecret)) != 1 {
		h.errorResponse(w, r, http.StatusForbidden, "invalid admin secret key")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.RoleName == domain.RoleAsesor && req.RegNumber == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "registration number is required for Asesor")
		return
	}

	role, err := h.repository.GetRoleByName(req.RoleName)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("role '%s' not found", req.RoleName))
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

	var profileData any
	switch req.RoleName {
	case domain.RoleAdmin:
		profile := &domain.AdminProfile{
			FullName:     req.FullName,
			AvatarURL:    req.AvatarURL,
			NomorInduk:   req.NomorInduk,
			NomorLisensi: req.NomorLisensi,
			MasaBerlaku:  req.MasaBerlaku,
			NomorKTP:     req.NomorKTP,
			TTL:          req.TTL,
			Alamat:       req.Alamat,
			NomorHP:      req.NomorHP,
			Email:        &req.Email,
			Pendidikan:   req.Pendidikan,
		}
		if err := h.repository.RegisterAdmin(user, profile); err != nil {
			h.conflictOrInternal(w, r, err)
			return
		}
		profileData = profile
	case domain.RoleAsesor:
		profile := &domain.AsesorProfile{
			FullName:  req.FullName,
			RegNumber: req.RegNumber,
		}
		if err := h.repository.RegisterAsesor(user, profile); err != nil {
			h.conflictOrInternal(w, r, err)
			return
		}
		profileData = profile
	}

	metrics.RegistrationsTotal.WithLabelValues(req.RoleName).Inc()
	h.publishNotification(domain.NotificationMessage{
		Type:    domain.NotificationPrivilegedUser,
		Title:   fmt.Sprintf("Akun %s Baru", req.RoleName),
		Message: fmt.Sprintf("Akun %s untuk %q telah dibuat.", req.RoleName, req.FullName),
		UserID:  &user.ID,
		Email:   user.Email,
	})

	h.successResponse(w, r, http.StatusCreated, fmt.Sprintf("%s registered successfully", req.RoleName), map[string]any{
		"user":    user,
		"profile": profileData,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	roleName, err := h.resolveRoleName(user.RoleID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	token, err := h.generateToken(user, roleName)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "login successful", map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"roleId":   user.RoleID,
			"roleName": roleName,
		},
	})
}

// ForgotPassword resets a password without a session. The supplied email
// must match the stored one; a wrong email fails exactly like an unknown
// username.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		NewPassword string `json:"new_password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusUnauthorized, "invalid username or email verification")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if user.Email != req.Email {
		h.errorResponse(w, r, http.StatusUnauthorized, "invalid username or email verification")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.UpdateUserPasswordByUsername(req.Username, string(passwordHash)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "password has been successfully reset, please log in with your new password", nil)
}
