package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "User not found")
	ErrEmailAlreadyUsed = apperror.New(http.StatusConflict, "Email is already registered")
	ErrInvalidPassword  = apperror.New(http.StatusUnauthorized, "Invalid credentials")
	ErrMissingLogin     = apperror.New(http.StatusBadRequest, "Please provide an email and password")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "Name is required")
	ErrPasswordTooShort = apperror.New(http.StatusBadRequest, "Password must be at least 6 characters")
	ErrInvalidRole      = apperror.New(http.StatusBadRequest, "Invalid role")
)

const MinPasswordLength = 6

// CarSpecs is the car profile a user prefers. It is stored as a JSON document.
type CarSpecs struct {
	Type         string `json:"type,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Fuel         string `json:"fuel,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Seats        int    `json:"seats,omitempty"`
}

// User represents an account in the system.
type User struct {
	ID               string // UUID
	Name             string
	Email            string
	Tel              string
	PasswordHash     string
	Role             string
	FavoriteCarSpecs CarSpecs
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email string
	Name  string
	Role  string

	Page     int
	PageSize int
}
