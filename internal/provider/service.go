package provider

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name    string
	Address string
	Tel     string
}

// UpdateRequest defines the fields that can be updated.
type UpdateRequest struct {
	Name    *string
	Address *string
	Tel     *string
}

// Service defines business logic for providers.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Provider, error)
	GetByID(ctx context.Context, id string) (*Provider, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Provider, error)
	List(ctx context.Context, filter Filter) ([]*Provider, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Provider, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

// NewService creates a new provider service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Provider, error) {
	p := &Provider{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Tel:     strings.TrimSpace(req.Tel),
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Provider, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByIDs(ctx context.Context, ids []string) ([]*Provider, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Provider, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Provider, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.Tel != nil {
		p.Tel = strings.TrimSpace(*req.Tel)
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(p *Provider) error {
	switch {
	case p.Name == "":
		return ErrNameRequired
	case p.Address == "":
		return ErrAddressRequired
	case p.Tel == "":
		return ErrTelRequired
	}
	return nil
}
