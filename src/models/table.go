package models

import "gala/src/types"

// Table is a seating table at the venue.
type Table struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Slug     string `gorm:"uniqueIndex" json:"slug,omitempty"`
	Capacity uint   `json:"capacity"`

	Guests []*Guest `gorm:"foreignKey:table_id" json:"guests,omitempty"`

	types.Timestamps
}
