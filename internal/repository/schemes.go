package repository

import (
	"context"
	"time"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

func (r *Repository) GetAllSchemes() ([]*domain.CertificationScheme, error) {
	query := `
		SELECT id, name, code FROM certification_schemes ORDER BY code
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schemes := make([]*domain.CertificationScheme, 0)
	for rows.Next() {
		scheme := &domain.CertificationScheme{}
		if err := rows.Scan(&scheme.ID, &scheme.Name, &scheme.Code); err != nil {
			return nil, err
		}
		schemes = append(schemes, scheme)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schemes, nil
}

func (r *Repository) GetSchemeByID(id int64) (*domain.CertificationScheme, error) {
	query := `
		SELECT name, code FROM certification_schemes WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	scheme := &domain.CertificationScheme{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&scheme.Name, &scheme.Code); err != nil {
		return nil, err
	}

	return scheme, nil
}

func (r *Repository) GetSchemeByCode(code string) (*domain.CertificationScheme, error) {
	query := `
		SELECT id, name FROM certification_schemes WHERE code = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	scheme := &domain.CertificationScheme{
		Code: code,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, code).Scan(&scheme.ID, &scheme.Name); err != nil {
		return nil, err
	}

	return scheme, nil
}

func (r *Repository) CreateScheme(scheme *domain.CertificationScheme) error {
	query := `
		INSERT INTO certification_schemes (name, code)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, scheme.Name, scheme.Code).Scan(&scheme.ID); err != nil {
		return err
	}

	return nil
}
