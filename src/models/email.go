package models

import (
	"gala/src/types"
	"time"
)

type EmailTemplate struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Name    string `json:"name,omitempty"`
	Slug    string `gorm:"uniqueIndex" json:"slug,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`

	types.Timestamps
}

// ScheduledEmail is a pending send swept by the scheduler. Category and
// Status filter the guest list at send time, not at scheduling time.
type ScheduledEmail struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	TemplateID uint       `json:"template_id,omitempty"`
	Category   *string    `json:"category,omitempty"`
	Status     *string    `json:"guest_status,omitempty"`
	SendAt     time.Time  `json:"send_at"`
	State      string     `gorm:"default:'pending'" json:"state,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`

	Template EmailTemplate `gorm:"foreignKey:template_id" json:"template,omitempty"`

	types.Timestamps
}
