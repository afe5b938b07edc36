package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"Budi", "Siti", "Agus", "Dewi", "Rizky", "Putri", "Andi", "Sri",
	"Joko", "Ayu", "Hendra", "Fitri", "Bayu", "Indah", "Wahyu", "Ratna",
}

var lastNames = []string{
	"Santoso", "Wijaya", "Pratama", "Lestari", "Saputra", "Utami",
	"Hidayat", "Rahayu", "Kurniawan", "Anggraini", "Gunawan", "Wulandari",
}

func randomFullName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

func randomKTPNumber() string {
	digits := make([]byte, 16)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}

// GenerateRandomAsesi builds a plausible asesi account for seeding. The
// username is derived from the name so seeded data reads naturally in the
// admin UI.
func GenerateRandomAsesi(password string, schemeID *int64) (*domain.User, *domain.AsesiProfile, error) {
	fullName := randomFullName()
	username := fmt.Sprintf("%s%04d", slug.Make(fullName), rand.Intn(10000))

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	phone := fmt.Sprintf("08%010d", rand.Intn(1_000_000_000))
	address := fmt.Sprintf("Jl. %s No. %d, Jakarta", lastNames[rand.Intn(len(lastNames))], rand.Intn(200)+1)

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		Email:        strings.ReplaceAll(username, "-", ".") + "@example.com",
	}
	profile := &domain.AsesiProfile{
		FullName:           fullName,
		PhoneNumber:        &phone,
		Address:            &address,
		KTPNumber:          randomKTPNumber(),
		RegistrationNumber: uuid.NewString(),
		SchemeID:           schemeID,
	}

	return user, profile, nil
}
