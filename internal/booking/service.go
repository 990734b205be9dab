package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/car"
	"github.com/nekogravitycat/car-rental-backend/internal/events"
	"github.com/nekogravitycat/car-rental-backend/internal/provider"
	"go.uber.org/zap"
)

type CreateRequest struct {
	CarID      string
	ProviderID string // optional unless Rules.RequireProvider
	StartDate  string
	EndDate    string
}

// UpdateRequest changes non-status fields only. Nil fields are kept.
type UpdateRequest struct {
	ProviderID *string
	StartDate  *string
	EndDate    *string
}

// CarGetter is the part of car.Service bookings depend on.
type CarGetter interface {
	GetByID(ctx context.Context, id string) (*car.Car, error)
}

// ProviderGetter is the part of provider.Service bookings depend on.
type ProviderGetter interface {
	GetByID(ctx context.Context, id string) (*provider.Provider, error)
}

type Service interface {
	Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, actor auth.Identity, id string) (*Booking, error)
	List(ctx context.Context, actor auth.Identity, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, actor auth.Identity, id string, req UpdateRequest) (*Booking, error)
	UpdateStatus(ctx context.Context, actor auth.Identity, id string, status string) (*Booking, error)
	Delete(ctx context.Context, actor auth.Identity, id string) (*Booking, error)
	HasReviewableBooking(ctx context.Context, userID, carID string) (bool, error)
}

type Options struct {
	Rules       Rules
	Transitions TransitionPolicy
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Rules: Rules{
			MaxActive:               3,
			RequireProvider:         true,
			PreventDuplicatePending: true,
		},
		Transitions: DefaultTransitionPolicy(),
	}
}

type service struct {
	repo      Repository
	cars      CarGetter
	providers ProviderGetter
	publisher events.Publisher
	opts      Options
	log       *zap.Logger
}

func NewService(
	repo Repository,
	cars CarGetter,
	providers ProviderGetter,
	publisher events.Publisher,
	opts Options,
	log *zap.Logger,
) Service {
	return &service{
		repo:      repo,
		cars:      cars,
		providers: providers,
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

func (s *service) Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*Booking, error) {
	// 1. References must be well formed
	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, ErrInvalidCarID
	}
	var providerID *string
	if req.ProviderID != "" {
		pid, err := uuid.Parse(req.ProviderID)
		if err != nil {
			return nil, ErrInvalidProviderID
		}
		id := pid.String()
		providerID = &id
	} else if s.opts.Rules.RequireProvider {
		return nil, ErrProviderRequired
	}

	// 2. Car must exist
	c, err := s.loadCar(ctx, carID.String())
	if err != nil {
		return nil, err
	}

	// 3. Provider must exist and offer the car
	if providerID != nil {
		if err := s.checkProvider(ctx, c, *providerID); err != nil {
			return nil, err
		}
	}

	// 4. Dates
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		UserID:     actor.UserID,
		CarID:      c.ID,
		ProviderID: providerID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: TotalPrice(start, end, c.PricePerDay),
		Status:     StatusPending,
	}

	// 5-8. Quota, duplicate check and insert run atomically
	if err := s.repo.CreateGuarded(ctx, b, s.opts.Rules); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCreated, created)
	return created, nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Identity, id string) (*Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, b.UserID, ActionView); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns every booking to admins. Everyone else sees only their own,
// regardless of the filter they asked for.
func (s *service) List(ctx context.Context, actor auth.Identity, filter Filter) ([]*Booking, int, error) {
	if !actor.IsAdmin() {
		filter = Filter{UserID: actor.UserID, Page: filter.Page, PageSize: filter.PageSize}
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor auth.Identity, id string, req UpdateRequest) (*Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, b.UserID, ActionUpdate); err != nil {
		return nil, err
	}

	if req.ProviderID != nil {
		if *req.ProviderID == "" {
			if s.opts.Rules.RequireProvider {
				return nil, ErrProviderRequired
			}
			b.ProviderID = nil
		} else {
			pid, err := uuid.Parse(*req.ProviderID)
			if err != nil {
				return nil, ErrInvalidProviderID
			}
			c, err := s.loadCar(ctx, b.CarID)
			if err != nil {
				return nil, err
			}
			newID := pid.String()
			if err := s.checkProvider(ctx, c, newID); err != nil {
				return nil, err
			}
			b.ProviderID = &newID
		}
	}

	if req.StartDate != nil || req.EndDate != nil {
		start, end := b.StartDate, b.EndDate
		if req.StartDate != nil {
			if start, err = ParseDate(*req.StartDate); err != nil {
				return nil, err
			}
		}
		if req.EndDate != nil {
			if end, err = ParseDate(*req.EndDate); err != nil {
				return nil, err
			}
		}
		if !end.After(start) {
			return nil, ErrInvalidRange
		}
		b.StartDate, b.EndDate = start, end
		// Price follows the car's current daily rate.
		b.TotalPrice = TotalPrice(start, end, b.Car.PricePerDay)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, b.ID)
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.Identity, id string, status string) (*Booking, error) {
	target, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.opts.Transitions.Check(actor, b, target); err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if entersLimits(b.Status, target) {
		updatedAt, err = s.repo.UpdateStatusGuarded(ctx, b, target, s.opts.Rules)
	} else {
		updatedAt, err = s.repo.UpdateStatus(ctx, b.ID, target)
	}
	if err != nil {
		return nil, err
	}
	previous := b.Status
	b.Status = target
	b.UpdatedAt = updatedAt

	if previous != target {
		s.publish(ctx, events.BookingStatusChanged, b)
	}
	return b, nil
}

// entersLimits reports whether moving from prev to next makes the booking count
// against a limit it was not already counted against: reopening a cancelled or
// completed booking, or putting one back to Pending.
func entersLimits(prev, next Status) bool {
	if next.Active() && !prev.Active() {
		return true
	}
	return next == StatusPending && prev != StatusPending
}

func (s *service) Delete(ctx context.Context, actor auth.Identity, id string) (*Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, b.UserID, ActionDelete); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingDeleted, b)
	return b, nil
}

func (s *service) HasReviewableBooking(ctx context.Context, userID, carID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.ExistsForUserAndCar(ctx, userID, carID, ReviewableStatuses)
}

func (s *service) load(ctx context.Context, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidBookingID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) loadCar(ctx context.Context, id string) (*car.Car, error) {
	c, err := s.cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, car.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("load car: %w", err)
	}
	return c, nil
}

func (s *service) checkProvider(ctx context.Context, c *car.Car, providerID string) error {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return ErrProviderNotFound
		}
		return fmt.Errorf("load provider: %w", err)
	}
	if !c.HasProvider(providerID) {
		return ErrInvalidAssociation
	}
	return nil
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := ParseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, end, nil
}

// publish never fails the request; a lost event is only logged.
func (s *service) publish(ctx context.Context, typ events.Type, b *Booking) {
	err := s.publisher.Publish(ctx, events.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		CarID:      b.CarID,
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to publish booking event",
			zap.String("event_type", string(typ)),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
