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

// ErrCountryNotFound indicates the requested country does not exist.
var ErrCountryNotFound = apperrors.New("COUNTRY_NOT_FOUND", "Country not found", http.StatusNotFound)

// GeographyService serves the country and city reference data seeded at
// startup.
type GeographyService struct {
	db *gorm.DB
}

// NewGeographyService constructs a GeographyService instance.
func NewGeographyService(db *gorm.DB) (*GeographyService, error) {
	if db == nil {
		return nil, errors.New("geography service: db is required")
	}
	return &GeographyService{db: db}, nil
}

// Countries returns all countries ordered by name.
func (s *GeographyService) Countries(ctx context.Context) ([]models.Country, error) {
	ctx = ensureContext(ctx)

	var countries []models.Country
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("geography service: countries: %w", err)
	}
	return countries, nil
}

// Cities returns the cities of one country ordered by name.
func (s *GeographyService) Cities(ctx context.Context, countryID string) ([]models.City, error) {
	ctx = ensureContext(ctx)

	var country models.Country
	err := s.db.WithContext(ctx).First(&country, "id = ?", countryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("geography service: load country: %w", err)
	}

	var cities []models.City
	err = s.db.WithContext(ctx).
		Where("country_id = ?", countryID).
		Order("name ASC").
		Find(&cities).Error
	if err != nil {
		return nil, fmt.Errorf("geography service: cities: %w", err)
	}
	return cities, nil
}
