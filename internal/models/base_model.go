package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared fields for all persistent models.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures UUID identifiers are generated automatically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// SoftDelete adds a reversible deletion flag instead of physical removal.
// Rows carrying it are hidden from normal queries via the Live scope and
// remain in the table until the maintenance purge removes them.
type SoftDelete struct {
	IsDeleted bool       `gorm:"default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// MarkDeleted flips the soft-delete flag and stamps the deletion time.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &now
}

// Restore clears the soft-delete flag.
func (s *SoftDelete) Restore() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

// Live scopes a query to rows that have not been soft-deleted.
func Live(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// DeletedOnly scopes a query to soft-deleted rows, used by the purge job.
func DeletedOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}
