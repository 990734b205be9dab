package review

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/car"
)

type CreateRequest struct {
	Rating  int
	Comment string
}

type UpdateRequest struct {
	Rating  *int
	Comment *string
}

// EligibilityChecker reports whether a user has a booking that permits reviewing a car.
type EligibilityChecker interface {
	HasReviewableBooking(ctx context.Context, userID, carID string) (bool, error)
}

// CarGetter is the slice of car.Service reviews depend on.
type CarGetter interface {
	GetByID(ctx context.Context, id string) (*car.Car, error)
}

type Service interface {
	Create(ctx context.Context, actor auth.Identity, carID string, req CreateRequest) (*Review, error)
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter Filter) ([]*Review, int, error)
	Update(ctx context.Context, actor auth.Identity, id string, req UpdateRequest) (*Review, error)
	Delete(ctx context.Context, actor auth.Identity, id string) (*Review, error)
}

type service struct {
	repo     Repository
	cars     CarGetter
	bookings EligibilityChecker
}

func NewService(repo Repository, cars CarGetter, bookings EligibilityChecker) Service {
	return &service{repo: repo, cars: cars, bookings: bookings}
}

func (s *service) Create(ctx context.Context, actor auth.Identity, carID string, req CreateRequest) (*Review, error) {
	if _, err := uuid.Parse(carID); err != nil {
		return nil, ErrInvalidCarID
	}
	if _, err := s.cars.GetByID(ctx, carID); err != nil {
		return nil, err
	}

	ok, err := s.bookings.HasReviewableBooking(ctx, actor.UserID, carID)
	if err != nil {
		return nil, fmt.Errorf("check review eligibility: %w", err)
	}
	if !ok {
		return nil, ErrNotEligible
	}

	rv := &Review{
		CarID:   carID,
		UserID:  actor.UserID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := validate(rv); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, rv.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Review, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor auth.Identity, id string, req UpdateRequest) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(rv.UserID) {
		return nil, ErrForbidden
	}

	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = strings.TrimSpace(*req.Comment)
	}
	if err := validate(rv); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Delete removes a review owned by the actor, or any review for admins, and returns it.
func (s *service) Delete(ctx context.Context, actor auth.Identity, id string) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(rv.UserID) {
		return nil, ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return rv, nil
}

func validate(rv *Review) error {
	if rv.Rating < MinRating || rv.Rating > MaxRating {
		return ErrInvalidRating
	}
	if utf8.RuneCountInString(rv.Comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
