package models

// ParticipantStatusAccepted is the only participant status: pending and
// rejected states live on invitations, never on participant rows.
const ParticipantStatusAccepted = "accepted"

// EventParticipant is a confirmed membership of a user in an event.
// Rows are hard-deleted on unregister; the unique (event, user) index is the
// final arbiter when two writers race to add the same membership.
type EventParticipant struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index:idx_event_participants_pair,unique" json:"event_id"`
	Event   *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`

	UserID string `gorm:"type:uuid;not null;index:idx_event_participants_pair,unique" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	Status  string `gorm:"default:accepted;not null;index" json:"status"`
	IsAdmin bool   `gorm:"default:false" json:"is_admin"`
}
