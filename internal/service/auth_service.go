package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// UserStore persists logins.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthConfig is the token and hashing subset of config.Config.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// AuthService issues and revokes sessions.  Registration always creates
// a CLIENT together with its client profile.
type AuthService struct {
	cfg     AuthConfig
	users   UserStore
	tokens  TokenStore
	clients ClientStore
	log     *logrus.Entry
}

func NewAuthService(cfg AuthConfig, users UserStore, tokens TokenStore, clients ClientStore, log *logrus.Logger) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens, clients: clients, log: log.WithField("component", "auth")}
}

// SessionUser describes the authenticated user in auth responses.
type SessionUser struct {
	ID       uint64  `json:"id"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	ClientID *uint64 `json:"client_id,omitempty"`
}

// Session is a freshly issued token pair.
type Session struct {
	User    SessionUser
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
}

// Register creates a CLIENT login and its client profile.  If the profile
// cannot be stored the login is deleted again so no half-registered user
// remains.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email is not valid")
	}
	if err := utils.CheckPassword(in.Password); err != nil {
		return nil, invalid("%s", err.Error())
	}
	profile := ClientInput{Name: in.Name, Email: email, Phone: in.Phone, Address: in.Address}
	if err := profile.validate(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	uid, err := s.users.Create(ctx, email, hash, model.RoleClient)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	c := &model.Client{UserID: &uid}
	profile.apply(c)
	if err := s.clients.Create(ctx, c); err != nil {
		if derr := s.users.Delete(ctx, uid); derr != nil {
			s.log.WithError(derr).WithField("user_id", uid).Error("rollback of user after failed profile")
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create client profile: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": uid, "client_id": c.ID}).Info("client registered")
	return s.issue(ctx, model.User{ID: uid, Email: email, Role: model.RoleClient}, &c.ID)
}

// Login verifies credentials and issues a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	cid, err := s.clientIDFor(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u, cid)
}

// Refresh validates a refresh token, revokes it and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	u, err := s.userForRefresh(ctx, hash)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, fmt.Errorf("revoke refresh: %w", err)
	}
	cid, err := s.clientIDFor(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u, cid)
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (s *AuthService) RefreshAccess(ctx context.Context, raw string) (utils.AccessToken, error) {
	u, err := s.userForRefresh(ctx, utils.HashRefreshRaw(strings.TrimSpace(raw)))
	if err != nil {
		return utils.AccessToken{}, err
	}
	cid, err := s.clientIDFor(ctx, u)
	if err != nil {
		return utils.AccessToken{}, err
	}
	return s.accessFor(u, cid)
}

// Logout revokes one refresh token when raw is given, otherwise every
// token of userID.
func (s *AuthService) Logout(ctx context.Context, userID uint64, raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw != "":
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.tokens.ValidateRefresh(ctx, hash, time.Now().UTC()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
			}
			return err
		}
		return s.tokens.RevokeByHash(ctx, hash)
	case userID != 0:
		return s.tokens.RevokeAllForUser(ctx, userID)
	default:
		return invalid("provide Authorization header or refresh_token")
	}
}

// Me returns the session user for an authenticated id.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*SessionUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user", userID)
	}
	cid, err := s.clientIDFor(ctx, u)
	if err != nil {
		return nil, err
	}
	return &SessionUser{ID: u.ID, Email: u.Email, Role: u.Role, ClientID: cid}, nil
}

// SeedAdmin creates an ADMIN login unless the email is already taken.  It
// reports whether a user was created.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.Create(ctx, email, hash, model.RoleAdmin)
	if errors.Is(err, repository.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.log.WithField("user_id", id).Info("admin user seeded")
	return true, nil
}

func (s *AuthService) userForRefresh(ctx context.Context, hash string) (model.User, error) {
	uid, err := s.tokens.ValidateRefresh(ctx, hash, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("%w: invalid refresh", ErrUnauthorized)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("validate refresh: %w", err)
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("%w: invalid refresh", ErrUnauthorized)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) clientIDFor(ctx context.Context, u model.User) (*uint64, error) {
	if u.Role != model.RoleClient {
		return nil, nil
	}
	c, err := s.clients.GetByUserID(ctx, u.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	return &c.ID, nil
}

func (s *AuthService) accessFor(u model.User, clientID *uint64) (utils.AccessToken, error) {
	id := utils.Identity{UserID: u.ID, Role: u.Role}
	if clientID != nil {
		id.ClientID = *clientID
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, id, s.cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, fmt.Errorf("issue access: %w", err)
	}
	return access, nil
}

func (s *AuthService) issue(ctx context.Context, u model.User, clientID *uint64) (*Session, error) {
	access, err := s.accessFor(u, clientID)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, fmt.Errorf("save refresh: %w", err)
	}
	return &Session{
		User:    SessionUser{ID: u.ID, Email: u.Email, Role: u.Role, ClientID: clientID},
		Access:  access,
		Refresh: refresh,
	}, nil
}
