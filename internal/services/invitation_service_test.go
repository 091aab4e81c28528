package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetgrid/meetgrid/internal/models"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
)

func TestInvitationCreate(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-create-org@example.com")
	invited := h.createUser(t, "inv-create-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	invitation, err := h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)
	assert.Equal(t, invited.ID, invitation.InvitedUserID)
	assert.Equal(t, organizer.ID, invitation.InvitedByID)
	require.NotNil(t, invitation.Event)
	assert.Equal(t, event.ID, invitation.Event.ID)
}

func TestInvitationCreateValidationOrder(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-order-org@example.com")
	participant := h.createUser(t, "inv-order-part@example.com")
	invited := h.createUser(t, "inv-order-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	_, err := h.events.Register(ctx, event.ID, participant.ID)
	require.NoError(t, err)

	var appErr *apperrors.AppError

	// Missing event wins over everything else.
	_, err = h.invitations.Create(ctx, "00000000-0000-0000-0000-000000000000", organizer.ID, invited.Email)
	assert.ErrorIs(t, err, ErrEventNotFound)

	// Unknown invited user.
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, "ghost@example.com")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invited_user_email", appErr.Field)
	assert.Contains(t, appErr.Message, "does not exist")

	// Inviting the organizer.
	_, err = h.invitations.Create(ctx, event.ID, participant.ID, organizer.Email)
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "organizer")

	// Already a participant.
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, participant.Email)
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "already a participant")

	// Duplicate invitation, any status.
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "already been invited")
}

func TestInvitationSoftDeletedEventLooksMissing(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-gone-org@example.com")
	invited := h.createUser(t, "inv-gone-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	require.NoError(t, h.events.Delete(ctx, event.ID, organizer.ID))

	_, err := h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestInvitationPermissionLevels(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-perm-org@example.com")
	member := h.createUser(t, "inv-perm-member@example.com")
	invited := h.createUser(t, "inv-perm-guest@example.com")

	event := h.createEvent(t, organizer.ID, func(in *CreateEventInput) {
		in.InvitationPerm = models.InvitationPermOrganizer
	})
	_, err := h.events.Register(ctx, event.ID, member.ID)
	require.NoError(t, err)

	// Participants cannot invite under organizer-only permission.
	_, err = h.invitations.Create(ctx, event.ID, member.ID, invited.Email)
	assert.ErrorIs(t, err, ErrCannotInvite)

	// The organizer always can.
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)
}

func TestInvitationPrivacyGate(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-priv-org@example.com")
	closed := h.createUserWithPrivacy(t, "inv-priv-none@example.com", models.InvitationPrivacyNone)
	friendsOnly := h.createUserWithPrivacy(t, "inv-priv-friends@example.com", models.InvitationPrivacyFriends)
	event := h.createEvent(t, organizer.ID)

	var appErr *apperrors.AppError

	// none: nobody gets through.
	_, err := h.invitations.Create(ctx, event.ID, organizer.ID, closed.Email)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invited_user_email", appErr.Field)

	// friends: rejected while unacquainted, allowed once the friendship is accepted.
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, friendsOnly.Email)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invited_user_email", appErr.Field)

	h.befriend(t, organizer.ID, friendsOnly)

	invitation, err := h.invitations.Create(ctx, event.ID, organizer.ID, friendsOnly.Email)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)
}

func TestInvitationAccept(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-accept-org@example.com")
	invited := h.createUser(t, "inv-accept-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	invitation, err := h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)

	// Only the invited user may respond.
	_, err = h.invitations.Respond(ctx, invitation.ID, organizer.ID, ActionAccept)
	assert.ErrorIs(t, err, ErrNotInvited)

	accepted, err := h.invitations.Respond(ctx, invitation.ID, invited.ID, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusAccepted, accepted.Status)

	count, err := h.events.ParticipantCount(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Settled invitations reject further responses.
	_, err = h.invitations.Respond(ctx, invitation.ID, invited.ID, ActionAccept)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestInvitationAcceptFullEventStaysPending(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-full-org@example.com")
	first := h.createUser(t, "inv-full-first@example.com")
	second := h.createUser(t, "inv-full-second@example.com")

	event := h.createEvent(t, organizer.ID, func(in *CreateEventInput) {
		in.MaxParticipants = intPtr(1)
	})

	invFirst, err := h.invitations.Create(ctx, event.ID, organizer.ID, first.Email)
	require.NoError(t, err)
	invSecond, err := h.invitations.Create(ctx, event.ID, organizer.ID, second.Email)
	require.NoError(t, err)

	_, err = h.invitations.Respond(ctx, invFirst.ID, first.ID, ActionAccept)
	require.NoError(t, err)

	_, err = h.invitations.Respond(ctx, invSecond.ID, second.ID, ActionAccept)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "full")

	// The failed accept leaves the invitation pending and no participant row.
	reloaded, err := h.invitations.GetByID(ctx, invSecond.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, reloaded.Status)

	count, err := h.events.ParticipantCount(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestInvitationAcceptAlreadyParticipant(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-idem-org@example.com")
	invited := h.createUser(t, "inv-idem-guest@example.com")
	event := h.createEvent(t, organizer.ID, func(in *CreateEventInput) {
		in.MaxParticipants = intPtr(1)
	})

	invitation, err := h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)

	// The invited user registers directly before answering, filling the event.
	_, err = h.events.Register(ctx, event.ID, invited.ID)
	require.NoError(t, err)

	// Accept still succeeds: the existing membership is kept, no duplicate
	// row, and the full check does not apply to someone already inside.
	accepted, err := h.invitations.Respond(ctx, invitation.ID, invited.ID, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusAccepted, accepted.Status)

	count, err := h.events.ParticipantCount(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestInvitationRejectIsTerminal(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-rej-org@example.com")
	invited := h.createUser(t, "inv-rej-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	invitation, err := h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)

	rejected, err := h.invitations.Respond(ctx, invitation.ID, invited.ID, ActionReject)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusRejected, rejected.Status)

	// No participant row appeared.
	count, err := h.events.ParticipantCount(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// Unlike friendships, a rejected invitation blocks re-inviting.
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "already been invited")
}

func TestInvitationDelete(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-del-org@example.com")
	invited := h.createUser(t, "inv-del-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	invitation, err := h.invitations.Create(ctx, event.ID, organizer.ID, invited.Email)
	require.NoError(t, err)

	// Only the inviter can cancel.
	err = h.invitations.Delete(ctx, invitation.ID, invited.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.StatusCode)

	require.NoError(t, h.invitations.Delete(ctx, invitation.ID, organizer.ID))

	_, err = h.invitations.GetByID(ctx, invitation.ID)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationListAndStats(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "inv-list-org@example.com")
	alice := h.createUser(t, "inv-list-alice@example.com")
	bob := h.createUser(t, "inv-list-bob@example.com")
	event := h.createEvent(t, organizer.ID)
	other := h.createEvent(t, organizer.ID, func(in *CreateEventInput) {
		in.Title = "Second meetup"
	})

	invAlice, err := h.invitations.Create(ctx, event.ID, organizer.ID, alice.Email)
	require.NoError(t, err)
	_, err = h.invitations.Create(ctx, other.ID, organizer.ID, alice.Email)
	require.NoError(t, err)
	_, err = h.invitations.Create(ctx, event.ID, organizer.ID, bob.Email)
	require.NoError(t, err)

	_, err = h.invitations.Respond(ctx, invAlice.ID, alice.ID, ActionAccept)
	require.NoError(t, err)

	sent, err := h.invitations.List(ctx, organizer.ID, ListInvitationsOptions{Type: "sent"})
	require.NoError(t, err)
	assert.Len(t, sent, 3)

	received, err := h.invitations.List(ctx, alice.ID, ListInvitationsOptions{})
	require.NoError(t, err)
	assert.Len(t, received, 2)

	byEvent, err := h.invitations.List(ctx, alice.ID, ListInvitationsOptions{EventID: event.ID})
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	assert.Equal(t, invAlice.ID, byEvent[0].ID)

	pending, err := h.invitations.Pending(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	stats, err := h.invitations.Stats(ctx, organizer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Sent.Total)
	assert.EqualValues(t, 2, stats.Sent.Pending)
	assert.EqualValues(t, 1, stats.Sent.Accepted)

	aliceStats, err := h.invitations.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, aliceStats.Received.Total)
	assert.EqualValues(t, 1, aliceStats.Received.Accepted)
}
