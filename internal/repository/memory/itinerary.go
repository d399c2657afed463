package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// Itineraries is the itineraries table.  (package_id, day) is unique and
// package_id must reference an existing package.
type Itineraries struct{ s *Store }

func (r *Itineraries) Create(ctx context.Context, it *model.Itinerary) error {
	if err := r.s.before("itineraries.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.packages[it.PackageID]; !ok {
		return repository.ErrNotFound
	}
	if r.taken(it.PackageID, it.Day, 0) {
		return repository.ErrConflict
	}
	it.ID = r.s.id("itineraries")
	it.CreatedAt = r.s.tick()
	it.UpdatedAt = it.CreatedAt
	row := *it
	row.Activities = append([]string{}, it.Activities...)
	put(ctx, r.s.data.itineraries, it.ID, row)
	*it = r.join(row)
	return nil
}

// taken reports whether another row already covers the day; callers hold mu.
func (r *Itineraries) taken(packageID uint64, day int, self uint64) bool {
	for id, it := range r.s.data.itineraries {
		if id != self && it.PackageID == packageID && it.Day == day {
			return true
		}
	}
	return false
}

func (r *Itineraries) GetByID(ctx context.Context, id uint64) (*model.Itinerary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.data.itineraries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.join(it)
	return &out, nil
}

func (r *Itineraries) List(ctx context.Context) ([]model.Itinerary, error) {
	return r.list(func(model.Itinerary) bool { return true }), nil
}

func (r *Itineraries) ListByPackage(ctx context.Context, packageID uint64) ([]model.Itinerary, error) {
	return r.list(func(it model.Itinerary) bool { return it.PackageID == packageID }), nil
}

func (r *Itineraries) list(keep func(model.Itinerary) bool) []model.Itinerary {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Itinerary, 0)
	for _, it := range r.s.data.itineraries {
		if keep(it) {
			out = append(out, r.join(it))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PackageID != out[j].PackageID {
			return out[i].PackageID < out[j].PackageID
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// join fills the package summary; callers hold mu.
func (r *Itineraries) join(it model.Itinerary) model.Itinerary {
	it.Activities = append([]string{}, it.Activities...)
	if p, ok := r.s.data.packages[it.PackageID]; ok {
		it.Package = model.PackageSummary{
			ID:           p.ID,
			Name:         p.Name,
			Destination:  p.Destination,
			DurationDays: p.DurationDays,
			PriceCents:   p.PriceCents,
		}
	}
	return it
}

func (r *Itineraries) Update(ctx context.Context, it *model.Itinerary) error {
	if err := r.s.before("itineraries.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.itineraries[it.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.taken(cur.PackageID, it.Day, it.ID) {
		return repository.ErrConflict
	}
	cur.Day = it.Day
	cur.Activities = append([]string{}, it.Activities...)
	cur.Description = it.Description
	cur.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.itineraries, it.ID, cur)
	return nil
}

func (r *Itineraries) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.itineraries[id]; !ok {
		return repository.ErrNotFound
	}
	del(ctx, r.s.data.itineraries, id)
	return nil
}
