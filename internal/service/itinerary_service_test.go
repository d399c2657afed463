package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItineraryListByPackageOrdersByDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.pkg(t, 500, true, true)
	other := f.pkg(t, 700, true, true)

	for _, day := range []int{3, 1, 2} {
		_, err := f.itineraries.Create(ctx, ItineraryInput{
			PackageID: p.ID, Day: day, Activities: []string{"hike", " "}, Description: " day ",
		})
		require.NoError(t, err)
	}
	_, err := f.itineraries.Create(ctx, ItineraryInput{PackageID: other.ID, Day: 1})
	require.NoError(t, err)

	days, err := f.itineraries.ListByPackage(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, days, 3)
	for i, it := range days {
		assert.Equal(t, i+1, it.Day)
		assert.Equal(t, p.ID, it.Package.ID)
		assert.Equal(t, p.Name, it.Package.Name)
		assert.Equal(t, []string{"hike"}, it.Activities)
		assert.Equal(t, "day", it.Description)
	}

	all, err := f.itineraries.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestItineraryValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.pkg(t, 500, true, true)

	t.Run("unknown package", func(t *testing.T) {
		_, err := f.itineraries.Create(ctx, ItineraryInput{PackageID: 999, Day: 1})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.itineraries.ListByPackage(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	for name, in := range map[string]ItineraryInput{
		"missing package": {Day: 1},
		"day zero":        {PackageID: p.ID, Day: 0},
		"past duration":   {PackageID: p.ID, Day: p.DurationDays + 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.itineraries.Create(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	t.Run("duplicate day", func(t *testing.T) {
		_, err := f.itineraries.Create(ctx, ItineraryInput{PackageID: p.ID, Day: 2})
		require.NoError(t, err)
		_, err = f.itineraries.Create(ctx, ItineraryInput{PackageID: p.ID, Day: 2})
		assert.ErrorIs(t, err, ErrConflict)
		assert.EqualError(t, err, "conflict: itinerary day 2 already exists")
	})

	t.Run("empty package lists nothing", func(t *testing.T) {
		empty := f.pkg(t, 900, true, true)
		days, err := f.itineraries.ListByPackage(ctx, empty.ID)
		require.NoError(t, err)
		assert.Empty(t, days)
	})
}

func TestItineraryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.pkg(t, 500, true, true)

	first, err := f.itineraries.Create(ctx, ItineraryInput{PackageID: p.ID, Day: 1, Activities: []string{"arrival"}})
	require.NoError(t, err)
	second, err := f.itineraries.Create(ctx, ItineraryInput{PackageID: p.ID, Day: 2})
	require.NoError(t, err)

	_, err = f.itineraries.Update(ctx, second.ID, ItineraryInput{Day: 1})
	assert.ErrorIs(t, err, ErrConflict)

	moved, err := f.itineraries.Update(ctx, second.ID, ItineraryInput{Day: 3, Activities: []string{"departure"}, Description: "last day"})
	require.NoError(t, err)
	assert.Equal(t, 3, moved.Day)
	assert.Equal(t, p.ID, moved.PackageID)
	assert.Equal(t, []string{"departure"}, moved.Activities)

	require.NoError(t, f.itineraries.Delete(ctx, first.ID))
	_, err = f.itineraries.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.itineraries.Delete(ctx, first.ID), ErrNotFound)

	require.NoError(t, f.catalog.Delete(ctx, p.ID))
	_, err = f.itineraries.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound, "package delete cascades to its days")
}
