package models

import (
	"gala/src/types"
	"time"
)

// Checkin records admission to the venue. At most one non-override row
// may exist per registration; the partial unique index created in boot
// is the concurrency authority. Override rows are always allowed and
// auditable via IsOverride and StaffUserID.
type Checkin struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	RegistrationID uint      `gorm:"index" json:"registration_id,omitempty"`
	CheckedInAt    time.Time `json:"checked_in_at"`
	StaffUserID    uint      `json:"staff_user_id,omitempty"`
	IsOverride     bool      `json:"is_override"`

	Registration Registration `json:"registration,omitempty"`

	types.Timestamps
}

func (c *Checkin) Summary() *types.CheckinSummary {
	return &types.CheckinSummary{
		ID:          c.ID,
		CheckedInAt: c.CheckedInAt,
		StaffUserID: c.StaffUserID,
		IsOverride:  c.IsOverride,
	}
}
