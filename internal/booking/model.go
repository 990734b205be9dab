package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "Booking not found")
	ErrCarNotFound        = apperror.New(http.StatusNotFound, "Car not found")
	ErrProviderNotFound   = apperror.New(http.StatusNotFound, "Provider not found")
	ErrUserNotFound       = apperror.New(http.StatusNotFound, "User not found")
	ErrInvalidBookingID   = apperror.New(http.StatusBadRequest, "Invalid booking ID")
	ErrInvalidCarID       = apperror.New(http.StatusBadRequest, "Invalid car ID")
	ErrInvalidProviderID  = apperror.New(http.StatusBadRequest, "Invalid provider ID")
	ErrProviderRequired   = apperror.New(http.StatusBadRequest, "Provider is required")
	ErrInvalidAssociation = apperror.New(http.StatusBadRequest, "Provider does not offer this car")
	ErrInvalidDate        = apperror.New(http.StatusBadRequest, "Invalid date format")
	ErrInvalidRange       = apperror.New(http.StatusBadRequest, "End date must be after start date")
	ErrInvalidStatus      = apperror.New(http.StatusBadRequest, "Invalid status value")
	ErrForbidden          = apperror.New(http.StatusForbidden, "Access denied")
	ErrStatusForbidden    = apperror.New(http.StatusForbidden, "Only admin can set this status")
	ErrDuplicatePending   = apperror.New(http.StatusConflict, "You already have a pending booking for this car")
	ErrInvalidTransition  = apperror.New(http.StatusConflict, "Status transition is not allowed")
)

// QuotaExceededError carries the active booking limit in its message.
func QuotaExceededError(limit int) *apperror.AppError {
	return apperror.New(http.StatusForbidden, fmt.Sprintf("Maximum %d active bookings allowed", limit))
}

// CarSummary is the car data shown alongside a booking.
type CarSummary struct {
	Name        string
	Brand       string
	Model       string
	PricePerDay float64
}

// UserSummary is the owner data shown alongside a booking.
type UserSummary struct {
	Name  string
	Tel   string
	Email string
}

type Booking struct {
	ID           string
	UserID       string
	CarID        string
	ProviderID   *string
	ProviderName *string
	StartDate    time.Time
	EndDate      time.Time
	TotalPrice   float64
	Status       Status
	Car          CarSummary
	User         UserSummary
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter scopes a booking list. Non-admin callers always have UserID set.
type Filter struct {
	UserID   string
	CarID    string
	Status   string
	Page     int
	PageSize int
}

// Rules are the configurable business limits applied whenever a booking
// enters an active or pending status.
type Rules struct {
	MaxActive               int
	RequireProvider         bool
	PreventDuplicatePending bool
}
