package models

// Invitation statuses. Accepted and rejected are terminal: unlike friendships,
// a rejected invitation is never recycled into a new request.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
)

// EventInvitation is a pending offer of participation. Accepting it creates
// the EventParticipant row inside the same transaction.
type EventInvitation struct {
	BaseModel

	EventID string `gorm:"type:uuid;not null;index:idx_event_invitations_pair,unique" json:"event_id"`
	Event   *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`

	InvitedUserID string `gorm:"type:uuid;not null;index:idx_event_invitations_pair,unique;index:idx_event_invitations_user_status" json:"invited_user_id"`
	InvitedUser   *User  `gorm:"foreignKey:InvitedUserID;constraint:OnDelete:CASCADE" json:"invited_user,omitempty"`

	InvitedByID string `gorm:"type:uuid;not null;index" json:"invited_by_id"`
	InvitedBy   *User  `gorm:"foreignKey:InvitedByID;constraint:OnDelete:CASCADE" json:"invited_by,omitempty"`

	Status string `gorm:"default:pending;not null;index;index:idx_event_invitations_user_status" json:"status"`
}

// IsPending reports whether the invitation still awaits a response.
func (i *EventInvitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}
