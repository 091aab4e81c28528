package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
)

var (
	// ErrCommentNotFound covers missing and soft-deleted comments alike.
	ErrCommentNotFound = apperrors.New("COMMENT_NOT_FOUND", "Comment not found", http.StatusNotFound)
	// ErrNotCommentAuthor signals an author-only operation attempted by someone else.
	ErrNotCommentAuthor = apperrors.New("FORBIDDEN", "Only the author can modify this comment", http.StatusForbidden)
)

// CreateCommentInput carries the fields accepted on comment creation.
type CreateCommentInput struct {
	Content  string
	ParentID *string
}

// CommentService owns threaded event discussions. Replies reference their
// parent comment and the parent must belong to the same event.
type CommentService struct {
	db     *gorm.DB
	events *EventService
}

// NewCommentService constructs a CommentService instance.
func NewCommentService(db *gorm.DB, events *EventService) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	if events == nil {
		return nil, errors.New("comment service: event service is required")
	}
	return &CommentService{db: db, events: events}, nil
}

// Create stores a comment on an event. When ParentID is set, the parent must
// be a live comment on the same event.
func (s *CommentService) Create(ctx context.Context, eventID, authorID string, input CreateCommentInput) (*models.EventComment, error) {
	ctx = ensureContext(ctx)

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.GetByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, ErrCommentNotFound) {
				return nil, apperrors.NewFieldError("parent_id", "Parent comment does not exist")
			}
			return nil, err
		}
		if parent.EventID != eventID {
			return nil, apperrors.NewFieldError("parent_id", "Parent comment belongs to a different event")
		}
	}

	comment := &models.EventComment{
		EventID:  eventID,
		AuthorID: authorID,
		ParentID: input.ParentID,
		Content:  input.Content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create: %w", err)
	}

	return s.GetByID(ctx, comment.ID)
}

// Update rewrites a comment's content. Only the author may update.
func (s *CommentService) Update(ctx context.Context, id, requesterID, content string) (*models.EventComment, error) {
	ctx = ensureContext(ctx)

	comment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != requesterID {
		return nil, ErrNotCommentAuthor
	}

	if err := s.db.WithContext(ctx).Model(comment).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("comment service: update: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes a comment. The author or the event organizer may delete.
// Replies stay in place and keep rendering under the removed parent.
func (s *CommentService) Delete(ctx context.Context, id, requesterID string) error {
	ctx = ensureContext(ctx)

	comment, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if comment.AuthorID != requesterID {
		event, err := s.events.GetByID(ctx, comment.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerID != requesterID {
			return ErrNotCommentAuthor
		}
	}

	comment.MarkDeleted(time.Now().UTC())
	if err := s.db.WithContext(ctx).Model(comment).
		Updates(map[string]any{"is_deleted": true, "deleted_at": comment.DeletedAt}).Error; err != nil {
		return fmt.Errorf("comment service: delete: %w", err)
	}
	return nil
}

// GetByID loads a live comment with its author preloaded.
func (s *CommentService) GetByID(ctx context.Context, id string) (*models.EventComment, error) {
	ctx = ensureContext(ctx)

	var comment models.EventComment
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		Preload("Author").
		First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: load: %w", err)
	}
	return &comment, nil
}

// ListForEvent returns the live top-level comments of an event, oldest first.
func (s *CommentService) ListForEvent(ctx context.Context, eventID string) ([]models.EventComment, error) {
	ctx = ensureContext(ctx)

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	var comments []models.EventComment
	err := s.db.WithContext(ctx).
		Scopes(models.Live).
		Preload("Author").
		Where("event_id = ? AND parent_id IS NULL", eventID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: list: %w", err)
	}
	return comments, nil
}

// Replies returns the full reply subtree under a comment in breadth-first
// order. The event's live comments are loaded once and walked in memory as an
// adjacency list, so the cost stays one query regardless of thread depth.
func (s *CommentService) Replies(ctx context.Context, commentID string) ([]models.EventComment, error) {
	ctx = ensureContext(ctx)

	root, err := s.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	var all []models.EventComment
	err = s.db.WithContext(ctx).
		Scopes(models.Live).
		Preload("Author").
		Where("event_id = ? AND parent_id IS NOT NULL", root.EventID).
		Order("created_at ASC").
		Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: load replies: %w", err)
	}

	children := make(map[string][]models.EventComment, len(all))
	for _, c := range all {
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var subtree []models.EventComment
	queue := []string{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			subtree = append(subtree, child)
			queue = append(queue, child.ID)
		}
	}

	if subtree == nil {
		subtree = []models.EventComment{}
	}
	return subtree, nil
}
