package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"go.uber.org/zap"
)

// RegisterRequest holds the fields a new account is created from.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Tel      string
}

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	UpdateFavoriteCarSpecs(ctx context.Context, id string, specs CarSpecs) (*User, error)
	SetRole(ctx context.Context, id string, role string) (*User, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    *zap.Logger
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, log *zap.Logger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
}

// Register always creates a plain user; the role in the request body is never trusted.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Name:         name,
		Email:        normalizeEmail(req.Email),
		Tel:          strings.TrimSpace(req.Tel),
		PasswordHash: hash,
		Role:         auth.RoleUser,
	}

	// The unique index decides races between concurrent registrations.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || password == "" {
		return nil, ErrMissingLogin
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	// Best effort; a failed bookkeeping write must not block the login.
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateFavoriteCarSpecs(ctx context.Context, id string, specs CarSpecs) (*User, error) {
	specs.Brand = strings.TrimSpace(specs.Brand)
	if err := s.repo.UpdateFavoriteCarSpecs(ctx, id, specs); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetRole(ctx context.Context, id string, role string) (*User, error) {
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
