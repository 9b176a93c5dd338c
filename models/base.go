package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base replaces gorm.Model: every table is keyed by a random UUID that is
// assigned once, on insert.
type Base struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
