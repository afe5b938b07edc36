package domain

import (
	"time"
)

// Role names are seeded reference data; they are never created through the API.
const (
	RoleAdmin  = "Admin"
	RoleAsesor = "Asesor"
	RoleAsesi  = "Asesi"
)

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	RoleID       int64     `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
}
