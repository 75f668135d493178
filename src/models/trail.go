package models

import (
	"gala/src/types"

	"github.com/google/uuid"
)

// TrailLog records audited actions: check-in overrides and admin status
// overrides.
type TrailLog struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type      string
	Initiator string
	Group     string

	types.Timestamps
}
