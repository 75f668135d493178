package models

import (
	"gala/src/types"
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID             uint    `gorm:"primarykey" json:"id"`
	RegistrationID uint    `json:"registration_id,omitempty"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency,omitempty"`
	Method         string  `json:"method,omitempty"`
	Status         string  `gorm:"default:'pending'" json:"status,omitempty"`

	// ReferenceID correlates a payment across the checkout flow and the
	// bank-transfer confirmation path.
	ReferenceID       uuid.UUID  `gorm:"type:uuid" json:"reference_id,omitempty"`
	CheckoutSessionID *string    `json:"-"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`

	Registration Registration `json:"registration,omitempty"`

	types.Timestamps
}
