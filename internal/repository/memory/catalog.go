package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// Packages is the packages table.
type Packages struct{ s *Store }

func (r *Packages) Create(ctx context.Context, p *model.Package) error {
	if err := r.s.before("packages.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id("packages")
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	put(ctx, r.s.data.packages, p.ID, clonePackage(*p))
	return nil
}

func (r *Packages) GetByID(ctx context.Context, id uint64) (*model.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := clonePackage(p)
	return &out, nil
}

func (r *Packages) List(ctx context.Context, f repository.PackageFilter) ([]model.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dest := strings.ToLower(strings.TrimSpace(f.Destination))
	out := make([]model.Package, 0, len(r.s.data.packages))
	for _, p := range r.s.data.packages {
		if dest != "" && !strings.Contains(strings.ToLower(p.Destination), dest) {
			continue
		}
		if f.OnlyBookable && !p.Bookable() {
			continue
		}
		out = append(out, clonePackage(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Packages) Update(ctx context.Context, p *model.Package) error {
	if err := r.s.before("packages.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.packages[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := clonePackage(*p)
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.packages, p.ID, next)
	return nil
}

func (r *Packages) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.packages[id]; !ok {
		return repository.ErrNotFound
	}
	del(ctx, r.s.data.packages, id)
	for iid, it := range r.s.data.itineraries {
		if it.PackageID == id {
			del(ctx, r.s.data.itineraries, iid)
		}
	}
	return nil
}

func clonePackage(p model.Package) model.Package {
	p.Includes = append([]string{}, p.Includes...)
	p.Excludes = append([]string{}, p.Excludes...)
	return p
}

// Clients is the clients table.  Email and user_id are unique.
type Clients struct{ s *Store }

func (r *Clients) Create(ctx context.Context, c *model.Client) error {
	if err := r.s.before("clients.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if err := r.unique(c, 0); err != nil {
		return err
	}
	c.ID = r.s.id("clients")
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	put(ctx, r.s.data.clients, c.ID, *c)
	return nil
}

// unique checks email and user_id against every row but self; callers
// hold mu.
func (r *Clients) unique(c *model.Client, self uint64) error {
	for id, other := range r.s.data.clients {
		if id == self {
			continue
		}
		if other.Email == c.Email {
			return repository.ErrEmailExists
		}
		if c.UserID != nil && other.UserID != nil && *c.UserID == *other.UserID {
			return repository.ErrConflict
		}
	}
	return nil
}

func (r *Clients) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Clients) GetByUserID(ctx context.Context, userID uint64) (*model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.clients {
		if c.UserID != nil && *c.UserID == userID {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Clients) List(ctx context.Context) ([]model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Client, 0, len(r.s.data.clients))
	for _, c := range r.s.data.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Clients) Update(ctx context.Context, c *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.clients[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if err := r.unique(c, c.ID); err != nil {
		return err
	}
	cur.Name, cur.Email, cur.Phone, cur.Address = c.Name, c.Email, c.Phone, c.Address
	cur.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.clients, c.ID, cur)
	return nil
}

func (r *Clients) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.clients[id]; !ok {
		return repository.ErrNotFound
	}
	del(ctx, r.s.data.clients, id)
	return nil
}
