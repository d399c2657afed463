package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ClientService is plain CRUD over client profiles.
type ClientService struct {
	clients ClientStore
}

func NewClientService(clients ClientStore) *ClientService { return &ClientService{clients: clients} }

// ClientInput is the editable shape of a client.
type ClientInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (in ClientInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return invalid("email is not valid")
	}
	return nil
}

func (in ClientInput) apply(c *model.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = strings.TrimSpace(in.Address)
}

// Create stores a client.  userID links the profile to a login and may be
// nil for clients created by staff.
func (s *ClientService) Create(ctx context.Context, in ClientInput, userID *uint64) (*model.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &model.Client{UserID: userID}
	in.apply(c)
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, fromStore(err, "client", 0)
	}
	return c, nil
}

func (s *ClientService) Get(ctx context.Context, id uint64) (*model.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "client", id)
	}
	return c, nil
}

// ForUser returns the profile linked to a login.
func (s *ClientService) ForUser(ctx context.Context, userID uint64) (*model.Client, error) {
	c, err := s.clients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "client for user", userID)
	}
	return c, nil
}

func (s *ClientService) List(ctx context.Context) ([]model.Client, error) {
	return s.clients.List(ctx)
}

func (s *ClientService) Update(ctx context.Context, id uint64, in ClientInput) (*model.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "client", id)
	}
	in.apply(c)
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, fromStore(err, "client", id)
	}
	return s.Get(ctx, id)
}

func (s *ClientService) Delete(ctx context.Context, id uint64) error {
	return fromStore(s.clients.Delete(ctx, id), "client", id)
}
