package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/repository"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.catalog.Create(ctx, PackageInput{
		Name: " Atacama ", Destination: "San Pedro", DurationDays: 4, PriceCents: 250000,
		Includes: []string{"transfer", " ", "guide"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Atacama", p.Name)
	assert.True(t, p.Active)
	assert.True(t, p.Available)
	assert.Equal(t, []string{"transfer", "guide"}, p.Includes)

	closed := false
	_, err = f.catalog.Create(ctx, PackageInput{
		Name: "Chiloé", Destination: "Castro", DurationDays: 2, PriceCents: 90000, Available: &closed,
	})
	require.NoError(t, err)

	bookable, err := f.catalog.List(ctx, repository.PackageFilter{OnlyBookable: true})
	require.NoError(t, err)
	require.Len(t, bookable, 1)
	assert.Equal(t, p.ID, bookable[0].ID)

	byDest, err := f.catalog.List(ctx, repository.PackageFilter{Destination: "castro"})
	require.NoError(t, err)
	assert.Len(t, byDest, 1)

	for _, in := range []PackageInput{
		{Name: "", Destination: "x", DurationDays: 1},
		{Name: "x", Destination: "", DurationDays: 1},
		{Name: "x", Destination: "x", DurationDays: 0},
		{Name: "x", Destination: "x", DurationDays: 1, PriceCents: -1},
	} {
		_, err := f.catalog.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	require.NoError(t, f.catalog.Delete(ctx, p.ID))
	_, err = f.catalog.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClients(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := f.client(t, "Ana@Example.com")
	assert.Equal(t, "ana@example.com", c.Email)

	_, err := f.clients.Create(ctx, ClientInput{Name: "Other", Email: "ana@example.com"}, nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.clients.Create(ctx, ClientInput{Name: "Other", Email: "nope"}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err := f.clients.Update(ctx, c.ID, ClientInput{Name: "Ana María", Email: "ana@example.com", Address: "Av. Brasil 10"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
	assert.Equal(t, "Av. Brasil 10", updated.Address)

	require.NoError(t, f.clients.Delete(ctx, c.ID))
	assert.ErrorIs(t, f.clients.Delete(ctx, c.ID), ErrNotFound)
}
