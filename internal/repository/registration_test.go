package repository

import (
	"testing"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

func TestApplyAsesiInsertDefaults(t *testing.T) {
	profile := &domain.AsesiProfile{}
	applyAsesiInsertDefaults(profile)

	if profile.Status != domain.StatusBelumTerverifikasi {
		t.Fatalf("expected default status %q, got %q", domain.StatusBelumTerverifikasi, profile.Status)
	}
	if profile.DocumentsStatus != domain.DocumentsStatusDefault {
		t.Fatalf("expected default documents status %q, got %q", domain.DocumentsStatusDefault, profile.DocumentsStatus)
	}
	if profile.CertificateStatus != domain.CertificateStatusDefault {
		t.Fatalf("expected default certificate status %q, got %q", domain.CertificateStatusDefault, profile.CertificateStatus)
	}
}

func TestApplyAsesiInsertDefaultsKeepsExplicitValues(t *testing.T) {
	profile := &domain.AsesiProfile{
		Status:            domain.StatusKompeten,
		DocumentsStatus:   "Lengkap",
		CertificateStatus: "Sudah Dicetak",
	}
	applyAsesiInsertDefaults(profile)

	if profile.Status != domain.StatusKompeten {
		t.Fatalf("status overwritten: %q", profile.Status)
	}
	if profile.DocumentsStatus != "Lengkap" {
		t.Fatalf("documents status overwritten: %q", profile.DocumentsStatus)
	}
	if profile.CertificateStatus != "Sudah Dicetak" {
		t.Fatalf("certificate status overwritten: %q", profile.CertificateStatus)
	}
}
