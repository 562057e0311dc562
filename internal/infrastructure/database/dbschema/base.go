// Package dbschema defines the persisted row shapes and their mapping to and
// from the domain model.
package dbschema

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the common row columns.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
