package provider

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "Provider not found")
	ErrInUse           = apperror.New(http.StatusConflict, "Provider is referenced by existing bookings")
	ErrNameRequired    = apperror.New(http.StatusBadRequest, "Provider name is required")
	ErrAddressRequired = apperror.New(http.StatusBadRequest, "Provider address is required")
	ErrTelRequired     = apperror.New(http.StatusBadRequest, "Provider telephone is required")
)

// Provider is a rental company that offers cars.
type Provider struct {
	ID        string
	Name      string
	Address   string
	Tel       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter defines filter options for listing providers.
type Filter struct {
	Name     string
	Page     int
	PageSize int
}
