package car

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nekogravitycat/car-rental-backend/internal/provider"
)

type CreateRequest struct {
	Name         string
	Brand        string
	Model        string
	Type         string
	Seats        int
	Fuel         string
	Transmission string
	PricePerDay  float64
	ProviderIDs  []string
}

// UpdateRequest holds optional changes. A non-nil ProviderIDs replaces the whole set.
type UpdateRequest struct {
	Name         *string
	Brand        *string
	Model        *string
	Type         *string
	Seats        *int
	Fuel         *string
	Transmission *string
	PricePerDay  *float64
	ProviderIDs  *[]string
}

// ProviderGetter resolves provider ids. provider.Service satisfies it.
type ProviderGetter interface {
	GetByIDs(ctx context.Context, ids []string) ([]*provider.Provider, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Car, error)
	GetByID(ctx context.Context, id string) (*Car, error)
	List(ctx context.Context, filter Filter) ([]*Car, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Car, error)
	Delete(ctx context.Context, id string) (*Car, error)
	SetImage(ctx context.Context, id string, fileID string) (previous *string, err error)
}

type service struct {
	repo      Repository
	providers ProviderGetter
}

func NewService(repo Repository, providers ProviderGetter) Service {
	return &service{repo: repo, providers: providers}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Car, error) {
	c := &Car{
		Name:         strings.TrimSpace(req.Name),
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Type:         req.Type,
		Seats:        req.Seats,
		Fuel:         req.Fuel,
		Transmission: req.Transmission,
		PricePerDay:  req.PricePerDay,
	}
	if err := validateCar(c); err != nil {
		return nil, err
	}

	ids, err := s.resolveProviders(ctx, req.ProviderIDs)
	if err != nil {
		return nil, err
	}
	c.ProviderIDs = ids

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Car, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Car, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Car, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		c.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		c.Model = strings.TrimSpace(*req.Model)
	}
	if req.Type != nil {
		c.Type = *req.Type
	}
	if req.Seats != nil {
		c.Seats = *req.Seats
	}
	if req.Fuel != nil {
		c.Fuel = *req.Fuel
	}
	if req.Transmission != nil {
		c.Transmission = *req.Transmission
	}
	if req.PricePerDay != nil {
		c.PricePerDay = *req.PricePerDay
	}
	if err := validateCar(c); err != nil {
		return nil, err
	}

	replace := req.ProviderIDs != nil
	if replace {
		ids, err := s.resolveProviders(ctx, *req.ProviderIDs)
		if err != nil {
			return nil, err
		}
		c.ProviderIDs = ids
	}

	if err := s.repo.Update(ctx, c, replace); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes the car and returns it. Cars with bookings cannot be removed.
func (s *service) Delete(ctx context.Context, id string) (*Car, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) SetImage(ctx context.Context, id string, fileID string) (*string, error) {
	return s.repo.SetImage(ctx, id, &fileID)
}

// resolveProviders validates and de-duplicates provider ids and checks they exist.
func (s *service) resolveProviders(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrInvalidProviderID
		}
		id := parsed.String()
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return out, nil
	}

	found, err := s.providers.GetByIDs(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("lookup providers: %w", err)
	}
	if len(found) != len(out) {
		return nil, ErrUnknownProvider
	}
	return out, nil
}

func validateCar(c *Car) error {
	switch {
	case c.Name == "" || utf8.RuneCountInString(c.Name) > MaxNameLength,
		c.Brand == "" || utf8.RuneCountInString(c.Brand) > MaxBrandLength,
		c.Model == "" || utf8.RuneCountInString(c.Model) > MaxModelLength,
		!slices.Contains(Types, c.Type),
		!slices.Contains(Fuels, c.Fuel),
		!slices.Contains(Transmissions, c.Transmission),
		c.Seats <= 0,
		c.PricePerDay < 0:
		return ErrInvalidField
	}
	return nil
}
