package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/database/testutil"
	"github.com/meetgrid/meetgrid/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Email:             email,
		Name:              "User " + email,
		Password:          "not-a-real-hash",
		IsActive:          true,
		InvitationPrivacy: models.InvitationPrivacyEveryone,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCompleteElapsedEvents(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	organizer := seedUser(t, db, "maint-complete@example.com")

	past := models.Event{
		Title:       "Yesterday's standup",
		Date:        now.Add(-24 * time.Hour),
		Status:      models.EventStatusPublished,
		OrganizerID: organizer.ID,
	}
	upcoming := models.Event{
		Title:       "Tomorrow's workshop",
		Date:        now.Add(24 * time.Hour),
		Status:      models.EventStatusPublished,
		OrganizerID: organizer.ID,
	}
	pastDraft := models.Event{
		Title:       "Old draft",
		Date:        now.Add(-48 * time.Hour),
		Status:      models.EventStatusDraft,
		OrganizerID: organizer.ID,
	}
	require.NoError(t, db.Create(&past).Error)
	require.NoError(t, db.Create(&upcoming).Error)
	require.NoError(t, db.Create(&pastDraft).Error)

	n, err := CompleteElapsedEvents(context.Background(), db, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	var reloaded models.Event
	require.NoError(t, db.First(&reloaded, "id = ?", past.ID).Error)
	require.Equal(t, models.EventStatusCompleted, reloaded.Status)

	reloaded = models.Event{}
	require.NoError(t, db.First(&reloaded, "id = ?", upcoming.ID).Error)
	require.Equal(t, models.EventStatusPublished, reloaded.Status)

	reloaded = models.Event{}
	require.NoError(t, db.First(&reloaded, "id = ?", pastDraft.ID).Error)
	require.Equal(t, models.EventStatusDraft, reloaded.Status)
}

func TestPurgeSoftDeleted(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-30 * 24 * time.Hour)

	organizer := seedUser(t, db, "maint-purge-organizer@example.com")
	guest := seedUser(t, db, "maint-purge-guest@example.com")

	// Soft-deleted long before the cutoff: gets purged along with dependents.
	stale := models.Event{
		Title:       "Long gone",
		Date:        now.Add(-60 * 24 * time.Hour),
		Status:      models.EventStatusCancelled,
		OrganizerID: organizer.ID,
	}
	stale.MarkDeleted(now.Add(-45 * 24 * time.Hour))
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&models.EventParticipant{EventID: stale.ID, UserID: guest.ID}).Error)
	require.NoError(t, db.Create(&models.EventComment{EventID: stale.ID, AuthorID: guest.ID, Content: "see you there"}).Error)

	// Soft-deleted recently: still within retention, must survive.
	recent := models.Event{
		Title:       "Recently removed",
		Date:        now.Add(-5 * 24 * time.Hour),
		Status:      models.EventStatusCancelled,
		OrganizerID: organizer.ID,
	}
	recent.MarkDeleted(now.Add(-2 * 24 * time.Hour))
	require.NoError(t, db.Create(&recent).Error)

	departed := seedUser(t, db, "maint-purge-departed@example.com")
	require.NoError(t, db.Create(&models.Friendship{
		SenderID:   departed.ID,
		ReceiverID: guest.ID,
		Status:     models.FriendshipStatusAccepted,
	}).Error)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", departed.ID).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now.Add(-40 * 24 * time.Hour)}).Error)

	stats, err := PurgeSoftDeleted(context.Background(), db, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Events)
	require.Equal(t, int64(1), stats.Users)

	var count int64
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", stale.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.EventParticipant{}).Where("event_id = ?", stale.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.EventComment{}).Where("event_id = ?", stale.ID).Count(&count).Error)
	require.Zero(t, count)

	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", recent.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", departed.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Friendship{}).Where("sender_id = ?", departed.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	organizer := seedUser(t, db, "maint-runonce@example.com")
	past := models.Event{
		Title:       "Ship it retrospective",
		Date:        now.Add(-3 * time.Hour),
		Status:      models.EventStatusPublished,
		OrganizerID: organizer.ID,
	}
	require.NoError(t, db.Create(&past).Error)

	cleaner, err := NewCleaner(db, nil, WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var reloaded models.Event
	require.NoError(t, db.First(&reloaded, "id = ?", past.ID).Error)
	require.Equal(t, models.EventStatusCompleted, reloaded.Status)
}
