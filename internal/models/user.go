package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation privacy levels controlling who may invite a user to events.
const (
	InvitationPrivacyEveryone = "everyone"
	InvitationPrivacyFriends  = "friends"
	InvitationPrivacyNone     = "none"
)

// User describes platform members. Email is the login identifier.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Password string `gorm:"not null" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	IsStaff  bool `gorm:"default:false" json:"is_staff"`

	// InvitationPrivacy is the privacy gate consulted on every invitation
	// create attempt: everyone, friends, or none.
	InvitationPrivacy string `gorm:"default:everyone;not null" json:"invitation_privacy"`

	OrganizedEvents []Event            `gorm:"foreignKey:OrganizerID" json:"-"`
	Participations  []EventParticipant `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	SoftDelete
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.InvitationPrivacy == "" {
		u.InvitationPrivacy = InvitationPrivacyEveryone
	}
	return nil
}

// ValidInvitationPrivacy reports whether value is a known privacy level.
func ValidInvitationPrivacy(value string) bool {
	switch value {
	case InvitationPrivacyEveryone, InvitationPrivacyFriends, InvitationPrivacyNone:
		return true
	}
	return false
}
