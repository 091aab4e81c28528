package models

import "time"

// EventComment is a threaded discussion entry on an event. Replies reference
// their parent comment; the parent must belong to the same event.
type EventComment struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index" json:"event_id"`
	Event   *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`

	AuthorID string `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`

	ParentID *string       `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *EventComment `gorm:"foreignKey:ParentID" json:"-"`

	Content string `gorm:"type:text;not null" json:"content"`

	SoftDelete
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
