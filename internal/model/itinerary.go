package model

import "time"

// Itinerary is one day of a package's schedule.  A package has at most
// one itinerary per day and Day never exceeds the package duration.
type Itinerary struct {
	ID          uint64         `json:"id"`
	PackageID   uint64         `json:"package_id"`
	Day         int            `json:"day"`
	Activities  []string       `json:"activities"`
	Description string         `json:"description"`
	Package     PackageSummary `json:"package"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
