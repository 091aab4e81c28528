package database

import (
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Country{},
		&models.City{},
		&models.Category{},
		&models.Event{},
		&models.EventCategory{},
		&models.EventParticipant{},
		&models.EventInvitation{},
		&models.EventComment{},
		&models.EventPhoto{},
		&models.AuditLog{},
	)
}

// SeedData populates default categories and geography reference rows.
// Inserts are idempotent so repeated start-ups leave existing rows untouched.
func SeedData(db *gorm.DB) error {
	categories := []models.Category{
		{Name: "Technology", Slug: "technology", Description: "Programming, hardware and everything in between"},
		{Name: "Sports", Slug: "sports", Description: "From casual runs to competitive leagues"},
		{Name: "Music", Slug: "music", Description: "Concerts, jams and listening sessions"},
		{Name: "Food & Drink", Slug: "food-drink", Description: "Tastings, dinners and cooking meetups"},
		{Name: "Arts & Culture", Slug: "arts-culture", Description: "Galleries, theatre and creative workshops"},
		{Name: "Outdoors", Slug: "outdoors", Description: "Hikes, climbs and open-air gatherings"},
	}

	for _, category := range categories {
		if err := db.Where(models.Category{Slug: category.Slug}).
			Attrs(category).
			FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}

	countries := map[string][]string{
		"DE": {"Berlin", "Munich", "Hamburg"},
		"FR": {"Paris", "Lyon"},
		"GB": {"London", "Manchester"},
		"US": {"New York", "San Francisco", "Austin"},
	}
	names := map[string]string{
		"DE": "Germany",
		"FR": "France",
		"GB": "United Kingdom",
		"US": "United States",
	}

	for code, cities := range countries {
		var country models.Country
		if err := db.Where(models.Country{Code: code}).
			Attrs(models.Country{Name: names[code], Code: code}).
			FirstOrCreate(&country).Error; err != nil {
			return err
		}

		for _, cityName := range cities {
			if err := db.Where(models.City{Name: cityName, CountryID: country.ID}).
				FirstOrCreate(&models.City{}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
