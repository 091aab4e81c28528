package models

// EventPhoto is an uploaded image attached to an event. At most one photo per
// event carries the cover flag; the photo service keeps that invariant.
type EventPhoto struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index" json:"event_id"`
	Event   *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`

	UploadedByID string `gorm:"type:uuid;not null;index" json:"uploaded_by_id"`
	UploadedBy   *User  `gorm:"foreignKey:UploadedByID;constraint:OnDelete:CASCADE" json:"uploaded_by,omitempty"`

	URL     string `gorm:"not null" json:"url"`
	Caption string `json:"caption,omitempty"`
	IsCover bool   `gorm:"default:false;index" json:"is_cover"`
}
