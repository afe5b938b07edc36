package seed

import (
	"log/slog"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/repository"
)

// A starter set of certification schemes. CreateScheme upserts on the code,
// so re-running the seeder is safe.
var schemes = []domain.CertificationScheme{
	{Name: "Junior Web Developer", Code: "SKM-JWD-001"},
	{Name: "Junior Network Administrator", Code: "SKM-JNA-001"},
	{Name: "Digital Marketing", Code: "SKM-DM-001"},
	{Name: "Junior Graphic Designer", Code: "SKM-JGD-001"},
	{Name: "Database Administrator", Code: "SKM-DBA-001"},
}

func SeedSchemes(repo *repository.Repository) {
	cnt := 0
	for _, s := range schemes {
		scheme := s
		if err := repo.CreateScheme(&scheme); err != nil {
			slog.Error("unable to seed certification scheme", "code", scheme.Code, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("certification schemes seeded", slog.Int("count", cnt))
}
