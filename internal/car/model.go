package car

import (
	"net/http"
	"slices"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "Car not found")
	ErrInUse             = apperror.New(http.StatusConflict, "Car is referenced by existing bookings")
	ErrInvalidField      = apperror.New(http.StatusBadRequest, "Invalid car details")
	ErrInvalidProviderID = apperror.New(http.StatusBadRequest, "Invalid provider ID")
	ErrUnknownProvider   = apperror.New(http.StatusBadRequest, "One or more providers do not exist")
)

// Allowed values for the enumerated car attributes.
var (
	Types         = []string{"Sedan", "SUV", "Hatchback", "Van", "Truck", "Convertible"}
	Fuels         = []string{"Petrol", "Diesel", "Electric", "Hybrid"}
	Transmissions = []string{"Manual", "Automatic"}
)

const (
	MaxNameLength  = 100
	MaxBrandLength = 50
	MaxModelLength = 50
)

// ProviderBrief is the provider summary embedded in a car.
type ProviderBrief struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Tel     string `json:"tel"`
}

// Car is a rentable vehicle and the providers that offer it.
type Car struct {
	ID           string
	Name         string
	Brand        string
	Model        string
	Type         string
	Seats        int
	Fuel         string
	Transmission string
	PricePerDay  float64
	ProviderIDs  []string
	Providers    []ProviderBrief
	ImageFileID  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasProvider reports whether the provider offers this car.
func (c *Car) HasProvider(providerID string) bool {
	return slices.Contains(c.ProviderIDs, providerID)
}

// Filter defines parameters for listing cars.
type Filter struct {
	Search       string // space separated keywords, all must match
	Type         string
	Brand        string
	Fuel         string
	Transmission string
	Seats        int
	Page         int
	PageSize     int
}
