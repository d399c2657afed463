package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ItineraryService manages the day-by-day schedule of packages.
type ItineraryService struct {
	itineraries ItineraryStore
	packages    PackageStore
	log         *logrus.Entry
}

func NewItineraryService(itineraries ItineraryStore, packages PackageStore, log *logrus.Logger) *ItineraryService {
	return &ItineraryService{itineraries: itineraries, packages: packages, log: log.WithField("component", "itinerary")}
}

// ItineraryInput is the editable shape of an itinerary day.  PackageID is
// only read on create.
type ItineraryInput struct {
	PackageID   uint64
	Day         int
	Activities  []string
	Description string
}

// checkDay validates the day against the package duration.
func checkDay(day int, p *model.Package) error {
	switch {
	case day < 1:
		return invalid("day must be at least 1")
	case day > p.DurationDays:
		return invalid("day %d is past the %d day duration of package %d", day, p.DurationDays, p.ID)
	}
	return nil
}

func (s *ItineraryService) Create(ctx context.Context, in ItineraryInput) (*model.Itinerary, error) {
	if in.PackageID == 0 {
		return nil, invalid("package_id is required")
	}
	p, err := s.packages.GetByID(ctx, in.PackageID)
	if err != nil {
		return nil, fromStore(err, "package", in.PackageID)
	}
	if err := checkDay(in.Day, p); err != nil {
		return nil, err
	}
	it := &model.Itinerary{
		PackageID:   p.ID,
		Day:         in.Day,
		Activities:  cleanList(in.Activities),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.itineraries.Create(ctx, it); err != nil {
		return nil, fromStore(err, "itinerary day", uint64(in.Day))
	}
	s.log.WithFields(logrus.Fields{"itinerary_id": it.ID, "package_id": it.PackageID, "day": it.Day}).Info("itinerary created")
	return it, nil
}

func (s *ItineraryService) Get(ctx context.Context, id uint64) (*model.Itinerary, error) {
	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "itinerary", id)
	}
	return it, nil
}

func (s *ItineraryService) List(ctx context.Context) ([]model.Itinerary, error) {
	return s.itineraries.List(ctx)
}

// ListByPackage returns the package's schedule ordered by day.  An
// unknown package is ErrNotFound; a package without days is an empty
// list.
func (s *ItineraryService) ListByPackage(ctx context.Context, packageID uint64) ([]model.Itinerary, error) {
	if _, err := s.packages.GetByID(ctx, packageID); err != nil {
		return nil, fromStore(err, "package", packageID)
	}
	return s.itineraries.ListByPackage(ctx, packageID)
}

// Update replaces day, activities and description.  The owning package
// never changes.
func (s *ItineraryService) Update(ctx context.Context, id uint64, in ItineraryInput) (*model.Itinerary, error) {
	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "itinerary", id)
	}
	p, err := s.packages.GetByID(ctx, it.PackageID)
	if err != nil {
		return nil, fromStore(err, "package", it.PackageID)
	}
	if err := checkDay(in.Day, p); err != nil {
		return nil, err
	}
	it.Day = in.Day
	it.Activities = cleanList(in.Activities)
	it.Description = strings.TrimSpace(in.Description)
	if err := s.itineraries.Update(ctx, it); err != nil {
		return nil, fromStore(err, "itinerary day", uint64(in.Day))
	}
	return s.Get(ctx, id)
}

func (s *ItineraryService) Delete(ctx context.Context, id uint64) error {
	return fromStore(s.itineraries.Delete(ctx, id), "itinerary", id)
}
