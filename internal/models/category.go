package models

// Category labels events by topic. Writes are restricted to staff users.
type Category struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description,omitempty"`

	Events []Event `gorm:"many2many:event_categories;" json:"-"`
}

// EventCategory is the explicit join table between events and categories.
type EventCategory struct {
	EventID    string `gorm:"type:uuid;primaryKey" json:"event_id"`
	CategoryID string `gorm:"type:uuid;primaryKey" json:"category_id"`
}
