// Package models provides data models for the campaign economics engine.
package models

import (
	"time"

	"github.com/fanbacker/internal/types"
)

// User represents a platform account
type User struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	Role      types.UserRole `json:"role" db:"role"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}
