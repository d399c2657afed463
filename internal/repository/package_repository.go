package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
)

// PackageRepo provides CRUD operations over the packages table.  The
// includes/excludes lists are stored as JSON arrays.
type PackageRepo struct {
	db *sql.DB
}

// NewPackageRepo returns a new PackageRepo bound to the given database.
func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

// PackageFilter narrows List.  Zero values disable a filter.
type PackageFilter struct {
	Destination  string // case-insensitive substring match
	OnlyBookable bool   // active AND available
}

const packageColumns = `id, name, description, destination, duration_days, price_cents,
       includes, excludes, active, available, created_at, updated_at`

// Create inserts a package and fills its ID and timestamps.
func (r *PackageRepo) Create(ctx context.Context, p *model.Package) error {
	inc, exc, err := encodeLists(p.Includes, p.Excludes)
	if err != nil {
		return err
	}
	const q = `INSERT INTO packages (name, description, destination, duration_days, price_cents, includes, excludes, active, available)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		p.Name, p.Description, p.Destination, p.DurationDays, p.PriceCents, inc, exc, p.Active, p.Available)
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
	*p = *created
	return nil
}

// GetByID returns the package or ErrNotFound.
func (r *PackageRepo) GetByID(ctx context.Context, id uint64) (*model.Package, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id)
	p, err := scanPackage(row)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// List returns packages ordered by name.
func (r *PackageRepo) List(ctx context.Context, f PackageFilter) ([]model.Package, error) {
	var (
		where []string
		args  []any
	)
	if d := strings.TrimSpace(f.Destination); d != "" {
		where = append(where, "LOWER(destination) LIKE ?")
		args = append(args, "%"+strings.ToLower(d)+"%")
	}
	if f.OnlyBookable {
		where = append(where, "active = 1 AND available = 1")
	}
	q := `SELECT ` + packageColumns + ` FROM packages`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY name ASC, id ASC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update overwrites every editable column of the package.
func (r *PackageRepo) Update(ctx context.Context, p *model.Package) error {
	inc, exc, err := encodeLists(p.Includes, p.Excludes)
	if err != nil {
		return err
	}
	const q = `UPDATE packages SET name = ?, description = ?, destination = ?, duration_days = ?, price_cents = ?,
                      includes = ?, excludes = ?, active = ?, available = ?
               WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		p.Name, p.Description, p.Destination, p.DurationDays, p.PriceCents, inc, exc, p.Active, p.Available, p.ID)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// Delete removes a package.  Reservations keep their copied total.
func (r *PackageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(s rowScanner) (*model.Package, error) {
	var (
		p        model.Package
		inc, exc sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Destination, &p.DurationDays, &p.PriceCents,
		&inc, &exc, &p.Active, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Includes = decodeList(inc)
	p.Excludes = decodeList(exc)
	return &p, nil
}

func encodeLists(inc, exc []string) (string, string, error) {
	if inc == nil {
		inc = []string{}
	}
	if exc == nil {
		exc = []string{}
	}
	a, err := json.Marshal(inc)
	if err != nil {
		return "", "", err
	}
	b, err := json.Marshal(exc)
	if err != nil {
		return "", "", err
	}
	return string(a), string(b), nil
}

func decodeList(s sql.NullString) []string {
	out := []string{}
	if s.Valid && s.String != "" {
		_ = json.Unmarshal([]byte(s.String), &out)
	}
	return out
}
