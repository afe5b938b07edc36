package repository

import (
	"context"
	"time"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

func (r *Repository) GetRoleByID(id int64) (*domain.Role, error) {
	query := `
		SELECT name FROM roles WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	role := &domain.Role{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&role.Name); err != nil {
		return nil, err
	}

	return role, nil
}

func (r *Repository) GetRoleByName(name string) (*domain.Role, error) {
	query := `
		SELECT id FROM roles WHERE name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	role := &domain.Role{
		Name: name,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&role.ID); err != nil {
		return nil, err
	}

	return role, nil
}

// EnsureRole seeds a role name at boot. Roles are reference data and are
// never created through the API surface.
func (r *Repository) EnsureRole(name string) error {
	query := `
		INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, name); err != nil {
		return err
	}

	return nil
}
