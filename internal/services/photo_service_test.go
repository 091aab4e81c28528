package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetgrid/meetgrid/internal/models"
)

func TestPhotoAddAndList(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "ph-add-org@example.com")
	guest := h.createUser(t, "ph-add-guest@example.com")
	event := h.createEvent(t, organizer.ID)

	photo, err := h.photos.Add(ctx, event.ID, guest.ID, AddPhotoInput{
		URL:     "https://cdn.example.com/p/1.jpg",
		Caption: "Doors opening",
	})
	require.NoError(t, err)
	assert.False(t, photo.IsCover)

	cover, err := h.photos.Add(ctx, event.ID, organizer.ID, AddPhotoInput{
		URL:     "https://cdn.example.com/p/2.jpg",
		IsCover: true,
	})
	require.NoError(t, err)
	assert.True(t, cover.IsCover)

	photos, err := h.photos.ListForEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, cover.ID, photos[0].ID)
}

func TestPhotoSingleCoverInvariant(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "ph-cover-org@example.com")
	event := h.createEvent(t, organizer.ID)

	first, err := h.photos.Add(ctx, event.ID, organizer.ID, AddPhotoInput{
		URL:     "https://cdn.example.com/p/a.jpg",
		IsCover: true,
	})
	require.NoError(t, err)

	second, err := h.photos.Add(ctx, event.ID, organizer.ID, AddPhotoInput{
		URL: "https://cdn.example.com/p/b.jpg",
	})
	require.NoError(t, err)

	_, err = h.photos.SetCover(ctx, second.ID, organizer.ID)
	require.NoError(t, err)

	var covers int64
	require.NoError(t, h.db.Model(&models.EventPhoto{}).
		Where("event_id = ? AND is_cover = ?", event.ID, true).
		Count(&covers).Error)
	assert.EqualValues(t, 1, covers)

	reloaded, err := h.photos.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsCover)
}

func TestPhotoPermissions(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	organizer := h.createUser(t, "ph-perm-org@example.com")
	uploader := h.createUser(t, "ph-perm-up@example.com")
	stranger := h.createUser(t, "ph-perm-stranger@example.com")
	event := h.createEvent(t, organizer.ID)

	photo, err := h.photos.Add(ctx, event.ID, uploader.ID, AddPhotoInput{
		URL: "https://cdn.example.com/p/perm.jpg",
	})
	require.NoError(t, err)

	_, err = h.photos.UpdateCaption(ctx, photo.ID, stranger.ID, "vandalism")
	assert.ErrorIs(t, err, ErrNotPhotoOwner)

	// Both the uploader and the organizer may edit.
	_, err = h.photos.UpdateCaption(ctx, photo.ID, uploader.ID, "group shot")
	require.NoError(t, err)
	_, err = h.photos.UpdateCaption(ctx, photo.ID, organizer.ID, "group shot, edited")
	require.NoError(t, err)

	assert.ErrorIs(t, h.photos.Delete(ctx, photo.ID, stranger.ID), ErrNotPhotoOwner)
	require.NoError(t, h.photos.Delete(ctx, photo.ID, organizer.ID))

	_, err = h.photos.GetByID(ctx, photo.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}
