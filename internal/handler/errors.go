package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres error code for a uniqueness-constraint
// violation; it is the sole arbiter of username/KTP/registration-number
// collisions (the application never trusts a pre-check alone).
const uniqueViolation = "23505"

var constraintFields = map[string]string{
	"users_username_key":                     "username",
	"users_email_key":                        "email",
	"asesi_profiles_ktp_number_key":          "ktp_number",
	"asesi_profiles_registration_number_key": "registration_number",
	"asesi_profiles_user_id_key":             "user_id",
	"asesor_profiles_user_id_key":            "user_id",
	"admin_profiles_user_id_key":             "user_id",
}

// conflictOrInternal classifies a registration/update failure: uniqueness
// violations become a 409 naming the offending field when the constraint
// identifies one, everything else is a 500.
func (h *Handler) conflictOrInternal(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if field, ok := constraintFields[pgErr.ConstraintName]; ok {
			h.errorResponse(w, r, http.StatusConflict, "duplicate value for "+field)
			return
		}
		h.errorResponse(w, r, http.StatusConflict, "duplicate entry")
		return
	}

	h.internalServerError(w, r, err)
}
