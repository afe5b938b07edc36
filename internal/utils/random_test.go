package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomAsesi(t *testing.T) {
	schemeID := int64(7)
	user, profile, err := GenerateRandomAsesi("rahasia", &schemeID)
	if err != nil {
		t.Fatalf("generate random asesi: %v", err)
	}

	if user.Username == "" {
		t.Fatalf("empty username")
	}
	if user.Email == "" {
		t.Fatalf("empty email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("rahasia")); err != nil {
		t.Fatalf("password hash does not verify: %v", err)
	}

	if profile.FullName == "" {
		t.Fatalf("empty full name")
	}
	if len(profile.KTPNumber) != 16 {
		t.Fatalf("expected 16-digit ktp number, got %q", profile.KTPNumber)
	}
	for _, c := range profile.KTPNumber {
		if c < '0' || c > '9' {
			t.Fatalf("non-digit in ktp number: %q", profile.KTPNumber)
		}
	}
	if profile.RegistrationNumber == "" {
		t.Fatalf("empty registration number")
	}
	if profile.SchemeID == nil || *profile.SchemeID != schemeID {
		t.Fatalf("scheme id not carried through")
	}
}

func TestGenerateRandomAsesiDistinctUsernames(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		user, _, err := GenerateRandomAsesi("rahasia", nil)
		if err != nil {
			t.Fatalf("generate random asesi: %v", err)
		}
		seen[user.Username] = true
	}

	// names and suffixes are random, twenty rounds should not collapse to one
	if len(seen) < 2 {
		t.Fatalf("usernames show no variation")
	}
}
