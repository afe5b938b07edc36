package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/metrics"
)

const notificationQueue = "notification_queue"

// publishNotification hands a domain event to the notifier queue after the
// triggering transaction has committed. Failures are logged and swallowed:
// a broken notification sink must never fail a registration.
func (h *Handler) publishNotification(msg domain.NotificationMessage) {
	if h.notifyChannel == nil {
		return
	}

	msg.EventID = uuid.NewString()

	body, err := json.Marshal(msg)
	if err != nil {
		slog.Error("unable to serialize notification event", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.notifyChannel.PublishWithContext(
		ctx,
		"",
		notificationQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("unable to publish notification event", "type", msg.Type, "event_id", msg.EventID, "error", err)
		return
	}

	metrics.NotificationEventsPublished.Inc()
}

func (h *Handler) GetAllNotifications(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	var isRead *bool

	if v := r.URL.Query().Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "invalid userId filter")
			return
		}
		userID = &id
	}
	if v := r.URL.Query().Get("isRead"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "invalid isRead filter")
			return
		}
		isRead = &b
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := h.repository.FindAllNotifications(userID, isRead, limit, (page-1)*limit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	total, err := h.repository.CountNotifications(userID, isRead)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	h.successResponse(w, r, http.StatusOK, "notifications retrieved successfully", map[string]any{
		"notifications": notifications,
		"pagination": map[string]any{
			"totalItems":   total,
			"currentPage":  page,
			"itemsPerPage": limit,
			"totalPages":   totalPages,
		},
	})
}

func (h *Handler) notificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid notification id")
		return 0, false
	}
	return id, true
}

func (h *Handler) GetNotificationByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.notificationID(w, r)
	if !ok {
		return
	}

	notification, err := h.repository.GetNotificationByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "notification not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, http.StatusOK, "notification retrieved successfully", notification)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.notificationID(w, r)
	if !ok {
		return
	}

	notification, err := h.repository.MarkNotificationRead(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "notification not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, http.StatusOK, "notification marked as read", notification)
}
