package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
)

var (
	// ErrPhotoNotFound indicates the requested photo does not exist.
	ErrPhotoNotFound = apperrors.New("PHOTO_NOT_FOUND", "Photo not found", http.StatusNotFound)
	// ErrNotPhotoOwner signals a photo mutation by someone who is neither the
	// uploader nor the event organizer.
	ErrNotPhotoOwner = apperrors.New("FORBIDDEN", "Only the uploader or the organizer can modify this photo", http.StatusForbidden)
)

// AddPhotoInput carries the fields accepted on photo creation.
type AddPhotoInput struct {
	URL     string
	Caption string
	IsCover bool   `json:"is_cover"`
}

// PhotoService owns per-event photo records and the single-cover invariant:
// at most one photo per event carries the cover flag.
type PhotoService struct {
	db     *gorm.DB
	events *EventService
}

// NewPhotoService constructs a PhotoService instance.
func NewPhotoService(db *gorm.DB, events *EventService) (*PhotoService, error) {
	if db == nil {
		return nil, errors.New("photo service: db is required")
	}
	if events == nil {
		return nil, errors.New("photo service: event service is required")
	}
	return &PhotoService{db: db, events: events}, nil
}

// Add attaches a photo record to an event. Setting IsCover clears any
// previous cover in the same transaction.
func (s *PhotoService) Add(ctx context.Context, eventID, uploaderID string, input AddPhotoInput) (*models.EventPhoto, error) {
	ctx = ensureContext(ctx)

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	photo := &models.EventPhoto{
		EventID:      eventID,
		UploadedByID: uploaderID,
		URL:          input.URL,
		Caption:      input.Caption,
		IsCover:      input.IsCover,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.IsCover {
			if err := clearCover(tx, eventID); err != nil {
				return err
			}
		}
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("create photo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("photo service: add: %w", err)
	}
	return photo, nil
}

// UpdateCaption rewrites a photo caption. Uploader or organizer only.
func (s *PhotoService) UpdateCaption(ctx context.Context, id, requesterID, caption string) (*models.EventPhoto, error) {
	ctx = ensureContext(ctx)

	photo, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(photo).Update("caption", caption).Error; err != nil {
		return nil, fmt.Errorf("photo service: update caption: %w", err)
	}
	return s.GetByID(ctx, id)
}

// SetCover marks the photo as its event's cover, clearing the previous one.
func (s *PhotoService) SetCover(ctx context.Context, id, requesterID string) (*models.EventPhoto, error) {
	ctx = ensureContext(ctx)

	photo, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearCover(tx, photo.EventID); err != nil {
			return err
		}
		if err := tx.Model(&models.EventPhoto{}).
			Where("id = ?", photo.ID).
			Update("is_cover", true).Error; err != nil {
			return fmt.Errorf("set cover: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("photo service: set cover: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a photo record. Uploader or organizer only.
func (s *PhotoService) Delete(ctx context.Context, id, requesterID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.authorize(ctx, id, requesterID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.EventPhoto{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("photo service: delete: %w", err)
	}
	return nil
}

// GetByID loads a photo with its uploader preloaded.
func (s *PhotoService) GetByID(ctx context.Context, id string) (*models.EventPhoto, error) {
	ctx = ensureContext(ctx)

	var photo models.EventPhoto
	err := s.db.WithContext(ctx).
		Preload("UploadedBy").
		First(&photo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("photo service: load: %w", err)
	}
	return &photo, nil
}

// ListForEvent returns an event's photos, cover first, then newest first.
func (s *PhotoService) ListForEvent(ctx context.Context, eventID string) ([]models.EventPhoto, error) {
	ctx = ensureContext(ctx)

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	var photos []models.EventPhoto
	err := s.db.WithContext(ctx).
		Preload("UploadedBy").
		Where("event_id = ?", eventID).
		Order("is_cover DESC, created_at DESC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("photo service: list: %w", err)
	}
	return photos, nil
}

func (s *PhotoService) authorize(ctx context.Context, photoID, requesterID string) (*models.EventPhoto, error) {
	photo, err := s.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo.UploadedByID == requesterID {
		return photo, nil
	}
	event, err := s.events.GetByID(ctx, photo.EventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requesterID {
		return nil, ErrNotPhotoOwner
	}
	return photo, nil
}

func clearCover(tx *gorm.DB, eventID string) error {
	err := tx.Model(&models.EventPhoto{}).
		Where("event_id = ? AND is_cover = ?", eventID, true).
		Update("is_cover", false).Error
	if err != nil {
		return fmt.Errorf("clear cover: %w", err)
	}
	return nil
}
