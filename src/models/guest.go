package models

import (
	"gala/src/types"
	"time"
)

// Guest is the root entity. Registration, Payment and Checkin hang off it
// through foreign keys.
type Guest struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `gorm:"uniqueIndex" json:"email,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `gorm:"default:'pending'" json:"status,omitempty"`

	// CredentialHash is the single-use magic-link digest. Cleared on
	// consumption so a link cannot be replayed.
	CredentialHash      *string    `json:"-"`
	CredentialIssuedAt  *time.Time `json:"-"`
	CredentialExpiresAt *time.Time `json:"-"`

	// AccessCode is the short alphanumeric code for the companion app.
	AccessCode *string `json:"access_code,omitempty"`

	TableID *uint `json:"table_id,omitempty"`

	Registration *Registration `gorm:"foreignKey:guest_id" json:"registration,omitempty"`
	Table        *Table        `json:"table,omitempty"`

	types.Timestamps
}

func (g *Guest) Summary() *types.GuestSummary {
	return &types.GuestSummary{
		ID:       g.ID,
		Name:     g.Name,
		Email:    g.Email,
		Category: g.Category,
		Status:   g.Status,
	}
}
