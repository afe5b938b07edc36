package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

// Import row outcomes.
const (
	ImportOutcomeCreated = "created"
	ImportOutcomeUpdated = "updated"
)

// insertUserTx creates the account row. The profile insert that follows
// depends on the returned id, so within a registration transaction the
// account always commits first.
func insertUserTx(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, email, role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	args := []any{user.Username, user.PasswordHash, user.Email, user.RoleID}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		return err
	}

	return nil
}

// applyAsesiInsertDefaults fills the status columns an insert may leave
// empty. The registration number is not defaulted here; that one is
// store-generated.
func applyAsesiInsertDefaults(profile *domain.AsesiProfile) {
	if profile.Status == "" {
		profile.Status = domain.StatusBelumTerverifikasi
	}
	if profile.DocumentsStatus == "" {
		profile.DocumentsStatus = domain.DocumentsStatusDefault
	}
	if profile.CertificateStatus == "" {
		profile.CertificateStatus = domain.CertificateStatusDefault
	}
}

// insertAsesiProfileTx inserts the asesi profile row. An empty registration
// number is replaced by a store-generated one.
func insertAsesiProfileTx(ctx context.Context, tx *sql.Tx, profile *domain.AsesiProfile) error {
	applyAsesiInsertDefaults(profile)

	query := `
		INSERT INTO asesi_profiles (
			user_id, full_name, phone_number, address, ktp_number, registration_number,
			education, status, is_blocked, scheme_id, assessment_date, plotting_asesor,
			documents_status, certificate_status, photo_url
		) VALUES (
			$1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), gen_random_uuid()::text),
			$7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING id, registration_number, status, documents_status, certificate_status, created_at, updated_at
	`

	args := []any{
		profile.UserID,
		profile.FullName,
		profile.PhoneNumber,
		profile.Address,
		profile.KTPNumber,
		profile.RegistrationNumber,
		profile.Education,
		profile.Status,
		profile.IsBlocked,
		profile.SchemeID,
		profile.AssessmentDate,
		profile.PlottingAsesor,
		profile.DocumentsStatus,
		profile.CertificateStatus,
		profile.PhotoURL,
	}
	dst := []any{
		&profile.ID,
		&profile.RegistrationNumber,
		&profile.Status,
		&profile.DocumentsStatus,
		&profile.CertificateStatus,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// RegisterAsesi creates the account and its asesi profile as one atomic
// unit. On any failure both writes are rolled back; no reader can observe an
// account without its profile.
func (r *Repository) RegisterAsesi(user *domain.User, profile *domain.AsesiProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertUserTx(ctx, tx, user); err != nil {
		return err
	}

	profile.UserID = user.ID
	if err := insertAsesiProfileTx(ctx, tx, profile); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) RegisterAsesor(user *domain.User, profile *domain.AsesorProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertUserTx(ctx, tx, user); err != nil {
		return err
	}

	query := `
		INSERT INTO asesor_profiles (user_id, full_name, reg_number)
		VALUES ($1, $2, $3)
		RETURNING id, is_certified
	`

	profile.UserID = user.ID
	if err := tx.QueryRowContext(ctx, query, profile.UserID, profile.FullName, profile.RegNumber).Scan(&profile.ID, &profile.IsCertified); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) RegisterAdmin(user *domain.User, profile *domain.AdminProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertUserTx(ctx, tx, user); err != nil {
		return err
	}

	query := `
		INSERT INTO admin_profiles (
			user_id, full_name, avatar_url, nomor_induk, nomor_lisensi, masa_berlaku,
			nomor_ktp, ttl, alamat, nomor_hp, email, pendidikan
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	profile.UserID = user.ID
	args := []any{
		profile.UserID,
		profile.FullName,
		profile.AvatarURL,
		profile.NomorInduk,
		profile.NomorLisensi,
		profile.MasaBerlaku,
		profile.NomorKTP,
		profile.TTL,
		profile.Alamat,
		profile.NomorHP,
		profile.Email,
		profile.Pendidikan,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&profile.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// ImportAsesiRow applies create-or-update semantics for one import row in
// its own transaction, so a failing row never rolls back rows committed
// before it. An existing account gets its asesi profile updated (or created
// when the profile row is missing); an unknown username gets account and
// profile created together.
func (r *Repository) ImportAsesiRow(user *domain.User, profile *domain.AsesiProfile) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existingID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, user.Username).Scan(&existingID)
	switch {
	case err == nil:
		user.ID = existingID
		profile.UserID = existingID

		var profileID int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM asesi_profiles WHERE user_id = $1`, existingID).Scan(&profileID)
		switch {
		case err == nil:
			profile.ID = profileID
			if err := updateAsesiProfileTx(ctx, tx, profile); err != nil {
				return "", err
			}
			if err := tx.Commit(); err != nil {
				return "", err
			}
			return ImportOutcomeUpdated, nil
		case errors.Is(err, sql.ErrNoRows):
			// account exists but has no asesi profile yet
			if err := insertAsesiProfileTx(ctx, tx, profile); err != nil {
				return "", err
			}
			if err := tx.Commit(); err != nil {
				return "", err
			}
			return ImportOutcomeCreated, nil
		default:
			return "", err
		}
	case errors.Is(err, sql.ErrNoRows):
		if err := insertUserTx(ctx, tx, user); err != nil {
			return "", err
		}
		profile.UserID = user.ID
		if err := insertAsesiProfileTx(ctx, tx, profile); err != nil {
			return "", err
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		return ImportOutcomeCreated, nil
	default:
		return "", err
	}
}

func updateAsesiProfileTx(ctx context.Context, tx *sql.Tx, profile *domain.AsesiProfile) error {
	// status and is_blocked are intentionally not touched here; they only
	// change through the dedicated verify/block actions.
	query := `
		UPDATE asesi_profiles
		SET
			full_name = $1,
			phone_number = $2,
			address = $3,
			ktp_number = $4,
			registration_number = $5,
			education = $6,
			scheme_id = $7,
			assessment_date = $8,
			plotting_asesor = $9,
			documents_status = COALESCE(NULLIF($10, ''), documents_status),
			certificate_status = COALESCE(NULLIF($11, ''), certificate_status),
			photo_url = $12,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $13
		RETURNING status, is_blocked, documents_status, certificate_status, created_at, updated_at
	`

	args := []any{
		profile.FullName,
		profile.PhoneNumber,
		profile.Address,
		profile.KTPNumber,
		profile.RegistrationNumber,
		profile.Education,
		profile.SchemeID,
		profile.AssessmentDate,
		profile.PlottingAsesor,
		profile.DocumentsStatus,
		profile.CertificateStatus,
		profile.PhotoURL,
		profile.ID,
	}
	dst := []any{
		&profile.Status,
		&profile.IsBlocked,
		&profile.DocumentsStatus,
		&profile.CertificateStatus,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}
