package models

import (
	"gala/src/types"
	"time"
)

type Registration struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	GuestID    uint   `gorm:"uniqueIndex" json:"guest_id,omitempty"`
	TicketType string `json:"ticket_type,omitempty"`

	// TicketToken holds the full signed token, not a digest. A non-nil
	// value means the ticket has been issued.
	TicketToken *string `json:"-"`

	PartnerName  *string `json:"partner_name,omitempty"`
	PartnerEmail *string `json:"partner_email,omitempty"`

	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`

	Guest    Guest      `json:"guest,omitempty"`
	Payment  *Payment   `gorm:"foreignKey:registration_id" json:"payment,omitempty"`
	Checkins []*Checkin `gorm:"foreignKey:registration_id" json:"checkins,omitempty"`

	types.Timestamps
}
