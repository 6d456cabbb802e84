// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account allowed to call the upload endpoint.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Name         string
	Role         Role
	CreatorID    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
