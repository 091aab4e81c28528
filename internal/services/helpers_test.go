package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/database/testutil"
	"github.com/meetgrid/meetgrid/internal/models"
)

// serviceHarness wires the full service graph against one test database.
type serviceHarness struct {
	db          *gorm.DB
	audit       *AuditService
	users       *UserService
	friendships *FriendshipService
	events      *EventService
	invitations *InvitationService
	comments    *CommentService
	categories  *CategoryService
	geography   *GeographyService
	photos      *PhotoService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	audit, err := NewAuditService(db)
	require.NoError(t, err)
	friendships, err := NewFriendshipService(db, audit)
	require.NoError(t, err)
	users, err := NewUserService(db, friendships, audit)
	require.NoError(t, err)
	events, err := NewEventService(db, audit)
	require.NoError(t, err)
	invitations, err := NewInvitationService(db, events, users, audit)
	require.NoError(t, err)
	comments, err := NewCommentService(db, events)
	require.NoError(t, err)
	categories, err := NewCategoryService(db)
	require.NoError(t, err)
	geography, err := NewGeographyService(db)
	require.NoError(t, err)
	photos, err := NewPhotoService(db, events)
	require.NoError(t, err)

	return &serviceHarness{
		db:          db,
		audit:       audit,
		users:       users,
		friendships: friendships,
		events:      events,
		invitations: invitations,
		comments:    comments,
		categories:  categories,
		geography:   geography,
		photos:      photos,
	}
}

func (h *serviceHarness) createUser(t *testing.T, email string) *models.User {
	t.Helper()

	user, err := h.users.Signup(context.Background(), SignupInput{
		Email:    email,
		Name:     "User " + email,
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	return user
}

func (h *serviceHarness) createUserWithPrivacy(t *testing.T, email, privacy string) *models.User {
	t.Helper()

	user := h.createUser(t, email)
	require.NoError(t, h.db.Model(user).Update("invitation_privacy", privacy).Error)
	user.InvitationPrivacy = privacy
	return user
}

func (h *serviceHarness) createEvent(t *testing.T, organizerID string, mutate ...func(*CreateEventInput)) *models.Event {
	t.Helper()

	input := CreateEventInput{
		Title: "Go meetup",
		Date:  time.Now().Add(48 * time.Hour).UTC(),
	}
	for _, fn := range mutate {
		fn(&input)
	}

	event, err := h.events.Create(context.Background(), organizerID, input)
	require.NoError(t, err)
	return event
}

func (h *serviceHarness) befriend(t *testing.T, senderID string, receiver *models.User) {
	t.Helper()

	friendship, err := h.friendships.Create(context.Background(), senderID, receiver.Email)
	require.NoError(t, err)
	_, err = h.friendships.Respond(context.Background(), friendship.ID, receiver.ID, ActionAccept)
	require.NoError(t, err)
}

func intPtr(v int) *int { return &v }
