package model

import "time"

// Package is a purchasable tour offering.  PriceCents is the per-person
// price and is copied into each reservation at booking time, so later
// price changes never affect existing reservations.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name of the tour.
//  Description  – free text shown in the catalog.
//  Destination  – where the tour goes.
//  DurationDays – number of days, at least one.
//  PriceCents   – per-person price in cents, never negative.
//  Includes     – items included in the price.
//  Excludes     – items explicitly not included.
//  Active       – false hides the package from booking entirely.
//  Available    – false closes booking temporarily (e.g. sold out season).
type Package struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Destination  string    `json:"destination"`
	DurationDays int       `json:"duration_days"`
	PriceCents   int64     `json:"price_cents"`
	Includes     []string  `json:"includes"`
	Excludes     []string  `json:"excludes"`
	Active       bool      `json:"active"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Bookable reports whether new reservations may be created against the
// package.
func (p *Package) Bookable() bool { return p.Active && p.Available }

// PackageSummary is the subset of a package embedded in reservation reads.
type PackageSummary struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Destination  string `json:"destination"`
	DurationDays int    `json:"duration_days"`
	PriceCents   int64  `json:"price_cents"`
}
