package models

// Friendship statuses. A row is "live" while pending or accepted; rejected
// rows stay behind so a later re-request can recycle them.
const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
	FriendshipStatusRejected = "rejected"
)

// Friendship is a directed request from Sender to Receiver. Once accepted the
// relationship is treated as mutual. At most one live row may exist per
// unordered user pair, in either direction.
type Friendship struct {
	BaseModel

	SenderID string `gorm:"type:uuid;not null;index:idx_friendships_pair,unique;index:idx_friendships_sender_status" json:"sender_id"`
	Sender   *User  `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`

	ReceiverID string `gorm:"type:uuid;not null;index:idx_friendships_pair,unique;index:idx_friendships_receiver_status" json:"receiver_id"`
	Receiver   *User  `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`

	Status string `gorm:"default:pending;not null;index;index:idx_friendships_sender_status;index:idx_friendships_receiver_status" json:"status"`
}

// IsPending reports whether the request still awaits a response.
func (f *Friendship) IsPending() bool {
	return f.Status == FriendshipStatusPending
}

// Involves reports whether the given user is one of the two parties.
func (f *Friendship) Involves(userID string) bool {
	return f.SenderID == userID || f.ReceiverID == userID
}

// OtherParty returns the counterpart of userID in this friendship.
// The caller must ensure userID is involved.
func (f *Friendship) OtherParty(userID string) string {
	if f.SenderID == userID {
		return f.ReceiverID
	}
	return f.SenderID
}
