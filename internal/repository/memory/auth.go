package memory

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// Users is the users table with a unique email.
type Users struct{ s *Store }

func (r *Users) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	if err := r.s.before("users.Create"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.data.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	now := r.s.tick()
	u := model.User{
		ID: r.s.id("users"), Email: email, PasswordHash: passwordHash, Role: role,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	put(ctx, r.s.data.users, u.ID, u)
	return u.ID, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *Users) GetByID(ctx context.Context, id uint64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *Users) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[id]; !ok {
		return repository.ErrNotFound
	}
	del(ctx, r.s.data.users, id)
	return nil
}

// Tokens is the refresh_tokens table keyed by hash.
type Tokens struct{ s *Store }

func (r *Tokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tokens[tokenHash]; ok {
		return repository.ErrConflict
	}
	put(ctx, r.s.data.tokens, tokenHash, tokenRow{userID: userID, expiresAt: exp})
	return nil
}

func (r *Tokens) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tokens[tokenHash]
	if !ok || t.revoked || now.After(t.expiresAt) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (r *Tokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.data.tokens[tokenHash]; ok {
		t.revoked = true
		put(ctx, r.s.data.tokens, tokenHash, t)
	}
	return nil
}

func (r *Tokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for h, t := range r.s.data.tokens {
		if t.userID == userID {
			t.revoked = true
			put(ctx, r.s.data.tokens, h, t)
		}
	}
	return nil
}
