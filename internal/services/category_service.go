package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
	apperrors "github.com/meetgrid/meetgrid/pkg/errors"
)

var (
	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = apperrors.New("CATEGORY_NOT_FOUND", "Category not found", http.StatusNotFound)
	// ErrStaffOnly signals a staff-only operation attempted by a regular user.
	ErrStaffOnly = apperrors.New("FORBIDDEN", "Staff access required", http.StatusForbidden)
)

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description string
}

// CategoryService owns the category catalogue. Reads are public; writes are
// restricted to staff users.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a CategoryService instance.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db}, nil
}

// Create stores a new category. Staff only.
func (s *CategoryService) Create(ctx context.Context, requester *models.User, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	if !requester.IsStaff {
		return nil, ErrStaffOnly
	}

	category := &models.Category{
		Name:        input.Name,
		Slug:        slugify(input.Name),
		Description: input.Description,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewFieldError("name", "A category with this name already exists")
		}
		return nil, fmt.Errorf("category service: create: %w", err)
	}
	return category, nil
}

// Update renames a category. Staff only.
func (s *CategoryService) Update(ctx context.Context, requester *models.User, id string, input CategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	if !requester.IsStaff {
		return nil, ErrStaffOnly
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":        input.Name,
		"slug":        slugify(input.Name),
		"description": input.Description,
	}
	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewFieldError("name", "A category with this name already exists")
		}
		return nil, fmt.Errorf("category service: update: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a category. Staff only. Join rows go with it; events stay.
func (s *CategoryService) Delete(ctx context.Context, requester *models.User, id string) error {
	ctx = ensureContext(ctx)

	if !requester.IsStaff {
		return ErrStaffOnly
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.EventCategory{}, "category_id = ?", id).Error; err != nil {
			return fmt.Errorf("category service: detach events: %w", err)
		}
		if err := tx.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("category service: delete: %w", err)
		}
		return nil
	})
}

// GetByID loads a category.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("category service: load: %w", err)
	}
	return &category, nil
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("category service: list: %w", err)
	}
	return categories, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
