package domain

import (
	"time"
)

const (
	NotificationNewUser        = "new_user"
	NotificationPrivilegedUser = "privileged_user"
	NotificationAsesiCreated   = "asesi_created"
	NotificationAsesiVerified  = "asesi_verified"
	NotificationAsesiBlocked   = "asesi_blocked"
	NotificationAsesiUnblocked = "asesi_unblocked"
	NotificationAsesiImport    = "asesi_import"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"userId"` // nil = system-wide
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationMessage is the queue payload published after a business
// transaction commits. Email, when set, additionally triggers an account
// email from the notifier worker.
type NotificationMessage struct {
	EventID string `json:"eventId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	UserID  *int64 `json:"userId"`
	Email   string `json:"email,omitempty"`
}
