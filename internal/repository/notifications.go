package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
)

func (r *Repository) CreateNotification(n *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{n.UserID, n.Type, n.Title, n.Message, n.IsRead}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return err
	}

	return nil
}

func notificationFilters(query string, userID *int64, isRead *bool, params []any) (string, []any) {
	if userID != nil {
		params = append(params, *userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(params))
	}
	if isRead != nil {
		params = append(params, *isRead)
		query += fmt.Sprintf(" AND is_read = $%d", len(params))
	}
	return query, params
}

func (r *Repository) FindAllNotifications(userID *int64, isRead *bool, limit int, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, is_read, created_at
		FROM notifications WHERE 1=1
	`
	params := []any{}
	query, params = notificationFilters(query, userID, isRead, params)

	query += " ORDER BY created_at DESC"
	params = append(params, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(params))
	params = append(params, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(params))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		dst := []any{&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *Repository) CountNotifications(userID *int64, isRead *bool) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications WHERE 1=1
	`
	params := []any{}
	query, params = notificationFilters(query, userID, isRead, params)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var total int
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *Repository) GetNotificationByID(id int64) (*domain.Notification, error) {
	query := `
		SELECT user_id, type, title, message, is_read, created_at
		FROM notifications WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	n := &domain.Notification{
		ID: id,
	}

	dst := []any{&n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return n, nil
}

func (r *Repository) MarkNotificationRead(id int64) (*domain.Notification, error) {
	query := `
		UPDATE notifications SET is_read = TRUE WHERE id = $1
		RETURNING user_id, type, title, message, is_read, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	n := &domain.Notification{
		ID: id,
	}

	dst := []any{&n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return n, nil
}
