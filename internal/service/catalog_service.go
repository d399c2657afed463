package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// CatalogService manages tour packages.  Reservations only ever read from
// it.
type CatalogService struct {
	packages PackageStore
	log      *logrus.Entry
}

func NewCatalogService(packages PackageStore, log *logrus.Logger) *CatalogService {
	return &CatalogService{packages: packages, log: log.WithField("component", "catalog")}
}

// PackageInput is the editable shape of a package.  Active and Available
// default to true on create when left nil.
type PackageInput struct {
	Name         string
	Description  string
	Destination  string
	DurationDays int
	PriceCents   int64
	Includes     []string
	Excludes     []string
	Active       *bool
	Available    *bool
}

func (in PackageInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name is required")
	case strings.TrimSpace(in.Destination) == "":
		return invalid("destination is required")
	case in.DurationDays < 1:
		return invalid("duration_days must be at least 1")
	case in.PriceCents < 0:
		return invalid("price_cents must not be negative")
	}
	return nil
}

func (in PackageInput) apply(p *model.Package) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Destination = strings.TrimSpace(in.Destination)
	p.DurationDays = in.DurationDays
	p.PriceCents = in.PriceCents
	p.Includes = cleanList(in.Includes)
	p.Excludes = cleanList(in.Excludes)
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
}

func (s *CatalogService) Create(ctx context.Context, in PackageInput) (*model.Package, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &model.Package{Active: true, Available: true}
	in.apply(p)
	if err := s.packages.Create(ctx, p); err != nil {
		return nil, fromStore(err, "package", 0)
	}
	s.log.WithFields(logrus.Fields{"package_id": p.ID, "price_cents": p.PriceCents}).Info("package created")
	return p, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint64) (*model.Package, error) {
	p, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "package", id)
	}
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, f repository.PackageFilter) ([]model.Package, error) {
	return s.packages.List(ctx, f)
}

// Update replaces the package's editable fields.  Existing reservations
// keep the total they were booked at.
func (s *CatalogService) Update(ctx context.Context, id uint64, in PackageInput) (*model.Package, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "package", id)
	}
	in.apply(p)
	if err := s.packages.Update(ctx, p); err != nil {
		return nil, fromStore(err, "package", id)
	}
	return s.Get(ctx, id)
}

func (s *CatalogService) Delete(ctx context.Context, id uint64) error {
	return fromStore(s.packages.Delete(ctx, id), "package", id)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
