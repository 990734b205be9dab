package review

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "Review not found")
	ErrNotEligible    = apperror.New(http.StatusForbidden, "You can only review cars you have booked")
	ErrForbidden      = apperror.New(http.StatusForbidden, "Access denied")
	ErrInvalidRating  = apperror.New(http.StatusBadRequest, "Rating must be between 1 and 5")
	ErrCommentTooLong = apperror.New(http.StatusBadRequest, "Comment is too long")
	ErrInvalidCarID   = apperror.New(http.StatusBadRequest, "Invalid car ID")
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is a user's rating of a car they have booked.
type Review struct {
	ID        string
	CarID     string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter defines parameters for listing reviews.
type Filter struct {
	CarID    string
	Page     int
	PageSize int
}
