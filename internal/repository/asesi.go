package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

const asesiSelectColumns = `
	ap.id, ap.user_id, ap.full_name, ap.phone_number, ap.address, ap.ktp_number,
	ap.registration_number, ap.education, ap.status, ap.is_blocked,
	ap.scheme_id, ap.assessment_date, ap.plotting_asesor, ap.documents_status,
	ap.certificate_status, ap.photo_url, ap.created_at, ap.updated_at,
	cs.name, u.username, u.email
`

func scanAsesi(row interface{ Scan(...any) error }) (*domain.AsesiProfile, error) {
	profile := &domain.AsesiProfile{}
	dst := []any{
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.KTPNumber,
		&profile.RegistrationNumber,
		&profile.Education,
		&profile.Status,
		&profile.IsBlocked,
		&profile.SchemeID,
		&profile.AssessmentDate,
		&profile.PlottingAsesor,
		&profile.DocumentsStatus,
		&profile.CertificateStatus,
		&profile.PhotoURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&profile.SchemeName,
		&profile.Username,
		&profile.Email,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	return profile, nil
}

// FindAllAsesi lists asesi profiles with optional status, block and search
// filters. The search term matches name, registration number, username,
// email and scheme name.
func (r *Repository) FindAllAsesi(status *string, isBlocked *bool, search string) ([]*domain.AsesiProfile, error) {
	query := `
		SELECT ` + asesiSelectColumns + `
		FROM asesi_profiles ap
		JOIN users u ON ap.user_id = u.id
		LEFT JOIN certification_schemes cs ON ap.scheme_id = cs.id
		WHERE 1=1
	`
	params := []any{}

	if status != nil {
		params = append(params, *status)
		query += fmt.Sprintf(" AND ap.status = $%d", len(params))
	}
	if isBlocked != nil {
		params = append(params, *isBlocked)
		query += fmt.Sprintf(" AND ap.is_blocked = $%d", len(params))
	}
	if search != "" {
		params = append(params, "%"+search+"%")
		n := len(params)
		query += fmt.Sprintf(` AND (
			ap.full_name ILIKE $%d OR
			ap.registration_number ILIKE $%d OR
			u.username ILIKE $%d OR
			u.email ILIKE $%d OR
			cs.name ILIKE $%d
		)`, n, n, n, n, n)
	}

	query += " ORDER BY ap.created_at DESC"

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*domain.AsesiProfile, 0)
	for rows.Next() {
		profile, err := scanAsesi(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *Repository) GetAsesiByID(id int64) (*domain.AsesiProfile, error) {
	query := `
		SELECT ` + asesiSelectColumns + `
		FROM asesi_profiles ap
		JOIN users u ON ap.user_id = u.id
		LEFT JOIN certification_schemes cs ON ap.scheme_id = cs.id
		WHERE ap.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanAsesi(r.dbpool.QueryRowContext(ctx, query, id))
}

// UpdateAsesiProfile persists the editable profile fields. Status and
// is_blocked are excluded; they change only through VerifyAsesi and
// SetAsesiBlocked.
func (r *Repository) UpdateAsesiProfile(profile *domain.AsesiProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updateAsesiProfileTx(ctx, tx, profile); err != nil {
		return err
	}

	return tx.Commit()
}

// VerifyAsesi sets the status to "terverifikasi" regardless of the previous
// status, so repeated calls are idempotent.
func (r *Repository) VerifyAsesi(id int64) (*domain.AsesiProfile, error) {
	query := `
		UPDATE asesi_profiles
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING id, user_id, full_name, registration_number, status, is_blocked
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	profile := &domain.AsesiProfile{}
	dst := []any{&profile.ID, &profile.UserID, &profile.FullName, &profile.RegistrationNumber, &profile.Status, &profile.IsBlocked}
	if err := r.dbpool.QueryRowContext(ctx, query, domain.StatusTerverifikasi, id).Scan(dst...); err != nil {
		return nil, err
	}

	return profile, nil
}

func (r *Repository) SetAsesiBlocked(id int64, blocked bool) (*domain.AsesiProfile, error) {
	query := `
		UPDATE asesi_profiles
		SET is_blocked = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING id, user_id, full_name, registration_number, status, is_blocked
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	profile := &domain.AsesiProfile{}
	dst := []any{&profile.ID, &profile.UserID, &profile.FullName, &profile.RegistrationNumber, &profile.Status, &profile.IsBlocked}
	if err := r.dbpool.QueryRowContext(ctx, query, blocked, id).Scan(dst...); err != nil {
		return nil, err
	}

	return profile, nil
}

// DeleteAsesi removes the profile and its account in one transaction.
func (r *Repository) DeleteAsesi(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID int64
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM asesi_profiles WHERE id = $1`, id).Scan(&userID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM asesi_profiles WHERE id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit()
}
