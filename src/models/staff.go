package models

import (
	"gala/src/types"
	"time"
)

type StaffUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `gorm:"uniqueIndex" json:"email,omitempty"`
	Role         string    `gorm:"default:'staff'" json:"role,omitempty"`
	PasswordHash string    `json:"-"`
	LastActive   time.Time `json:"last_active,omitempty"`

	types.Timestamps
}
