package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ClientRepo persists client records.  Emails are normalised to lower
// case and must be unique.
type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `id, user_id, name, email, phone, address, created_at, updated_at`

// Create inserts a client.  A reused email yields ErrEmailExists.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	c.Email = normalizeEmail(c.Email)
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO clients (user_id, name, email, phone, address) VALUES (?, ?, ?, ?, ?)`,
		nullableID(c.UserID), c.Name, c.Email, c.Phone, c.Address)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrEmailExists
		}
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
	*c = *created
	return nil
}

// GetByID returns the client or ErrNotFound.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetByUserID returns the client profile linked to a login.
func (r *ClientRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Client, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE user_id = ? LIMIT 1`, userID)
	c, err := scanClient(row)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// List returns all clients ordered by name.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update overwrites name, email, phone and address.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client) error {
	c.Email = normalizeEmail(c.Email)
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return translate(err)
	}
	return affected(res)
}

// Delete removes a client.  Existing reservations keep the dangling id.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func scanClient(s rowScanner) (*model.Client, error) {
	var (
		c      model.Client
		userID sql.NullInt64
	)
	if err := s.Scan(&c.ID, &userID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		u := uint64(userID.Int64)
		c.UserID = &u
	}
	return &c, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}
