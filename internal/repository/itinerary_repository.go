package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ItineraryRepo stores the day-by-day schedule of packages.  Activities
// are a JSON array; reads join the owning package.
type ItineraryRepo struct {
	db *sql.DB
}

func NewItineraryRepo(db *sql.DB) *ItineraryRepo { return &ItineraryRepo{db: db} }

const itinerarySelect = `SELECT i.id, i.package_id, i.day, i.activities, i.description, i.created_at, i.updated_at,
       p.id, p.name, p.destination, p.duration_days, p.price_cents
FROM itineraries i
JOIN packages p ON p.id = i.package_id`

// Create inserts an itinerary day.  A second row for the same package and
// day yields ErrConflict; an unknown package yields ErrNotFound.
func (r *ItineraryRepo) Create(ctx context.Context, it *model.Itinerary) error {
	acts, err := encodeActivities(it.Activities)
	if err != nil {
		return err
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO itineraries (package_id, day, activities, description) VALUES (?, ?, ?, ?)`,
		it.PackageID, it.Day, acts, it.Description)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*it = *created
	return nil
}

func (r *ItineraryRepo) GetByID(ctx context.Context, id uint64) (*model.Itinerary, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, itinerarySelect+` WHERE i.id = ?`, id)
	it, err := scanItinerary(row)
	if err != nil {
		return nil, translate(err)
	}
	return it, nil
}

// List returns every itinerary grouped by package, days ascending.
func (r *ItineraryRepo) List(ctx context.Context) ([]model.Itinerary, error) {
	return r.list(ctx, itinerarySelect+` ORDER BY i.package_id ASC, i.day ASC`)
}

// ListByPackage returns one package's schedule ordered by day.
func (r *ItineraryRepo) ListByPackage(ctx context.Context, packageID uint64) ([]model.Itinerary, error) {
	return r.list(ctx, itinerarySelect+` WHERE i.package_id = ? ORDER BY i.day ASC`, packageID)
}

func (r *ItineraryRepo) list(ctx context.Context, q string, args ...any) ([]model.Itinerary, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Itinerary, 0)
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Update overwrites day, activities and description.
func (r *ItineraryRepo) Update(ctx context.Context, it *model.Itinerary) error {
	acts, err := encodeActivities(it.Activities)
	if err != nil {
		return err
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE itineraries SET day = ?, activities = ?, description = ? WHERE id = ?`,
		it.Day, acts, it.Description, it.ID)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (r *ItineraryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM itineraries WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func scanItinerary(s rowScanner) (*model.Itinerary, error) {
	var (
		it   model.Itinerary
		acts sql.NullString
	)
	if err := s.Scan(&it.ID, &it.PackageID, &it.Day, &acts, &it.Description, &it.CreatedAt, &it.UpdatedAt,
		&it.Package.ID, &it.Package.Name, &it.Package.Destination, &it.Package.DurationDays, &it.Package.PriceCents); err != nil {
		return nil, err
	}
	it.Activities = decodeList(acts)
	return &it, nil
}

func encodeActivities(acts []string) (string, error) {
	if acts == nil {
		acts = []string{}
	}
	b, err := json.Marshal(acts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
