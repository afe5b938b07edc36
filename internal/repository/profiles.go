package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

// userProfileRow is one row of the profile-assembly join: the account, its
// role name and the columns of all three profile variants (at most one of
// which is populated).
type userProfileRow struct {
	id       int64
	username string
	email    string
	roleID   int64
	roleName sql.NullString

	asesiFullName    sql.NullString
	asesiPhoneNumber sql.NullString
	asesiAddress     sql.NullString
	asesiKTPNumber   sql.NullString

	asesorFullName    sql.NullString
	asesorRegNumber   sql.NullString
	asesorIsCertified sql.NullBool

	adminFullName     sql.NullString
	adminAvatarURL    sql.NullString
	adminNomorInduk   sql.NullString
	adminNomorLisensi sql.NullString
	adminMasaBerlaku  sql.NullString
	adminNomorKTP     sql.NullString
	adminTTL          sql.NullString
	adminAlamat       sql.NullString
	adminNomorHP      sql.NullString
	adminEmail        sql.NullString
	adminPendidikan   sql.NullString
}

// GetUserProfileByID fetches the account and joins against all three profile
// tables in one round trip; assembly picks the variant matching the role.
// An unknown account id surfaces as sql.ErrNoRows.
func (r *Repository) GetUserProfileByID(id int64) (*domain.UserProfile, error) {
	query := `
		SELECT
			u.id, u.username, u.email, u.role_id, r.name,
			ap.full_name, ap.phone_number, ap.address, ap.ktp_number,
			asr.full_name, asr.reg_number, asr.is_certified,
			adm.full_name, adm.avatar_url, adm.nomor_induk, adm.nomor_lisensi,
			adm.masa_berlaku, adm.nomor_ktp, adm.ttl, adm.alamat, adm.nomor_hp,
			adm.email, adm.pendidikan
		FROM users u
		LEFT JOIN roles r ON u.role_id = r.id
		LEFT JOIN asesi_profiles ap ON u.id = ap.user_id
		LEFT JOIN asesor_profiles asr ON u.id = asr.user_id
		LEFT JOIN admin_profiles adm ON u.id = adm.user_id
		WHERE u.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var row userProfileRow
	dst := []any{
		&row.id, &row.username, &row.email, &row.roleID, &row.roleName,
		&row.asesiFullName, &row.asesiPhoneNumber, &row.asesiAddress, &row.asesiKTPNumber,
		&row.asesorFullName, &row.asesorRegNumber, &row.asesorIsCertified,
		&row.adminFullName, &row.adminAvatarURL, &row.adminNomorInduk, &row.adminNomorLisensi,
		&row.adminMasaBerlaku, &row.adminNomorKTP, &row.adminTTL, &row.adminAlamat, &row.adminNomorHP,
		&row.adminEmail, &row.adminPendidikan,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return assembleUserProfile(row), nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

// assembleUserProfile maps a joined row to the profile union. The role name
// alone decides the variant; a missing profile row for that role yields the
// variant with null leaves, never a mix of two variants.
func assembleUserProfile(row userProfileRow) *domain.UserProfile {
	profile := &domain.UserProfile{
		ID:       row.id,
		Username: row.username,
		Email:    row.email,
		RoleID:   row.roleID,
	}
	if row.roleName.Valid {
		profile.RoleName = row.roleName.String
	}

	switch profile.RoleName {
	case domain.RoleAsesi:
		profile.Profile = domain.AsesiProfileData{
			FullName:    nullableString(row.asesiFullName),
			PhoneNumber: nullableString(row.asesiPhoneNumber),
			Address:     nullableString(row.asesiAddress),
			KTPNumber:   nullableString(row.asesiKTPNumber),
		}
	case domain.RoleAsesor:
		profile.Profile = domain.AsesorProfileData{
			FullName:    nullableString(row.asesorFullName),
			RegNumber:   nullableString(row.asesorRegNumber),
			IsCertified: nullableBool(row.asesorIsCertified),
		}
	case domain.RoleAdmin:
		profile.Profile = domain.AdminProfileData{
			FullName:     nullableString(row.adminFullName),
			AvatarURL:    nullableString(row.adminAvatarURL),
			NomorInduk:   nullableString(row.adminNomorInduk),
			NomorLisensi: nullableString(row.adminNomorLisensi),
			MasaBerlaku:  nullableString(row.adminMasaBerlaku),
			NomorKTP:     nullableString(row.adminNomorKTP),
			TTL:          nullableString(row.adminTTL),
			Alamat:       nullableString(row.adminAlamat),
			NomorHP:      nullableString(row.adminNomorHP),
			Email:        nullableString(row.adminEmail),
			Pendidikan:   nullableString(row.adminPendidikan),
		}
	}

	return profile
}
