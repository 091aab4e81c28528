package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetgrid/meetgrid/internal/database/testutil"
)

func TestCategoryStaffOnlyWrites(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	regular := h.createUser(t, "cat-regular@example.com")
	staff := h.createUser(t, "cat-staff@example.com")
	require.NoError(t, h.db.Model(staff).Update("is_staff", true).Error)
	staff.IsStaff = true

	_, err := h.categories.Create(ctx, regular, CategoryInput{Name: "Board Games"})
	assert.ErrorIs(t, err, ErrStaffOnly)

	category, err := h.categories.Create(ctx, staff, CategoryInput{Name: "Board Games"})
	require.NoError(t, err)
	assert.Equal(t, "board-games", category.Slug)

	_, err = h.categories.Update(ctx, regular, category.ID, CategoryInput{Name: "Tabletop"})
	assert.ErrorIs(t, err, ErrStaffOnly)

	renamed, err := h.categories.Update(ctx, staff, category.ID, CategoryInput{Name: "Tabletop"})
	require.NoError(t, err)
	assert.Equal(t, "tabletop", renamed.Slug)

	assert.ErrorIs(t, h.categories.Delete(ctx, regular, category.ID), ErrStaffOnly)
	require.NoError(t, h.categories.Delete(ctx, staff, category.ID))

	_, err = h.categories.GetByID(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryDuplicateName(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	staff := h.createUser(t, "cat-dup-staff@example.com")
	require.NoError(t, h.db.Model(staff).Update("is_staff", true).Error)
	staff.IsStaff = true

	_, err := h.categories.Create(ctx, staff, CategoryInput{Name: "Hiking"})
	require.NoError(t, err)

	_, err = h.categories.Create(ctx, staff, CategoryInput{Name: "Hiking"})
	assert.Error(t, err)
}

func TestCategoryListOrdering(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	staff := h.createUser(t, "cat-list-staff@example.com")
	require.NoError(t, h.db.Model(staff).Update("is_staff", true).Error)
	staff.IsStaff = true

	for _, name := range []string{"Zines", "Art", "Music"} {
		_, err := h.categories.Create(ctx, staff, CategoryInput{Name: name})
		require.NoError(t, err)
	}

	categories, err := h.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Art", categories[0].Name)
	assert.Equal(t, "Zines", categories[2].Name)
}

func TestGeographySeededData(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	geography, err := NewGeographyService(db)
	require.NoError(t, err)
	ctx := context.Background()

	countries, err := geography.Countries(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, countries)

	var germany *string
	for i := range countries {
		if countries[i].Code == "DE" {
			germany = &countries[i].ID
		}
	}
	require.NotNil(t, germany, "seed data should include Germany")

	cities, err := geography.Cities(ctx, *germany)
	require.NoError(t, err)
	assert.NotEmpty(t, cities)
	for _, city := range cities {
		assert.Equal(t, *germany, city.CountryID)
	}

	_, err = geography.Cities(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Board Games":     "board-games",
		"  Food & Drink ": "food--drink",
		"Tech":            "tech",
		"C++ Meetups":     "c-meetups",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), "input %q", in)
	}
}
