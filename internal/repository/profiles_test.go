package repository

import (
	"database/sql"
	"testing"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestAssembleUserProfileAsesi(t *testing.T) {
	row := userProfileRow{
		id:       1,
		username: "budi",
		email:    "budi@example.com",
		roleID:   3,
		roleName: valid(domain.RoleAsesi),

		asesiFullName:    valid("Budi Santoso"),
		asesiPhoneNumber: valid("081234567890"),
		asesiAddress:     valid("Jl. Merdeka No. 1"),
		asesiKTPNumber:   valid("3171234567890001"),

		// stray columns from other variants must be ignored
		asesorFullName: valid("Should Not Appear"),
		adminFullName:  valid("Should Not Appear"),
	}

	profile := assembleUserProfile(row)

	if profile.RoleName != domain.RoleAsesi {
		t.Fatalf("expected role %q, got %q", domain.RoleAsesi, profile.RoleName)
	}

	data, ok := profile.Profile.(domain.AsesiProfileData)
	if !ok {
		t.Fatalf("expected AsesiProfileData, got %T", profile.Profile)
	}
	if data.FullName == nil || *data.FullName != "Budi Santoso" {
		t.Fatalf("unexpected full name: %v", data.FullName)
	}
	if data.KTPNumber == nil || *data.KTPNumber != "3171234567890001" {
		t.Fatalf("unexpected ktp number: %v", data.KTPNumber)
	}
}

func TestAssembleUserProfileAsesor(t *testing.T) {
	row := userProfileRow{
		id:       2,
		username: "asesor1",
		email:    "asesor1@example.com",
		roleID:   2,
		roleName: valid(domain.RoleAsesor),

		asesorFullName:    valid("Siti Wijaya"),
		asesorRegNumber:   valid("MET-001"),
		asesorIsCertified: sql.NullBool{Bool: true, Valid: true},
	}

	profile := assembleUserProfile(row)

	data, ok := profile.Profile.(domain.AsesorProfileData)
	if !ok {
		t.Fatalf("expected AsesorProfileData, got %T", profile.Profile)
	}
	if data.RegNumber == nil || *data.RegNumber != "MET-001" {
		t.Fatalf("unexpected reg number: %v", data.RegNumber)
	}
	if data.IsCertified == nil || !*data.IsCertified {
		t.Fatalf("expected certified asesor")
	}
}

// An account whose profile row is missing still assembles: the variant
// matches the role, with every leaf null.
func TestAssembleUserProfileMissingProfileRow(t *testing.T) {
	row := userProfileRow{
		id:       3,
		username: "admin",
		email:    "admin@example.com",
		roleID:   1,
		roleName: valid(domain.RoleAdmin),
	}

	profile := assembleUserProfile(row)

	data, ok := profile.Profile.(domain.AdminProfileData)
	if !ok {
		t.Fatalf("expected AdminProfileData, got %T", profile.Profile)
	}
	if data.FullName != nil {
		t.Fatalf("expected null full name, got %v", *data.FullName)
	}
	if data.Email != nil {
		t.Fatalf("expected null email, got %v", *data.Email)
	}
}

func TestAssembleUserProfileUnknownRole(t *testing.T) {
	row := userProfileRow{
		id:       4,
		username: "ghost",
		email:    "ghost@example.com",
		roleID:   99,
	}

	profile := assembleUserProfile(row)

	if profile.RoleName != "" {
		t.Fatalf("expected empty role name, got %q", profile.RoleName)
	}
	if profile.Profile != nil {
		t.Fatalf("expected nil profile data, got %T", profile.Profile)
	}
}
