package models

import "time"

// Event lifecycle statuses.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Invitation permission levels deciding who may invite others to an event.
const (
	InvitationPermOrganizer    = "organizer"
	InvitationPermAdmins       = "admins"
	InvitationPermParticipants = "participants"
)

// Event is a meetup gathering. The organizer is implicitly a participant and
// is never stored in the participants table. MaxParticipants of nil means the
// event has no capacity limit.
type Event struct {
	BaseModel

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `json:"address,omitempty"`
	Date        time.Time `gorm:"index" json:"date"`

	Status         string `gorm:"default:published;not null;index:idx_events_status_date" json:"status"`
	InvitationPerm string `gorm:"default:participants;not null" json:"invitation_perm"`

	MaxParticipants *int `json:"max_participants"`

	OrganizerID string `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *User  `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE" json:"organizer,omitempty"`

	CountryID *string  `gorm:"type:uuid" json:"country_id,omitempty"`
	Country   *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	CityID    *string  `gorm:"type:uuid" json:"city_id,omitempty"`
	City      *City    `gorm:"foreignKey:CityID" json:"city,omitempty"`

	Categories []Category `gorm:"many2many:event_categories;" json:"categories,omitempty"`

	Participants []EventParticipant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Invitations  []EventInvitation  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`

	SoftDelete
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidEventStatus reports whether value is a known event status.
func ValidEventStatus(value string) bool {
	switch value {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// ValidInvitationPerm reports whether value is a known permission level.
func ValidInvitationPerm(value string) bool {
	switch value {
	case InvitationPermOrganizer, InvitationPermAdmins, InvitationPermParticipants:
		return true
	}
	return false
}
