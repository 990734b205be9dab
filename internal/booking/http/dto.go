package http

import (
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/booking"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
// The filters only apply to admins.
type ListBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,booking_status"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	CarID  string `form:"car_id" binding:"omitempty,uuid"`
}

type CarSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	PricePerDay float64 `json:"price_per_day"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Tel   string `json:"tel"`
	Email string `json:"email"`
}

type ProviderTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID         string       `json:"id"`
	Car        CarSummary   `json:"car"`
	User       UserSummary  `json:"user"`
	Provider   *ProviderTag `json:"provider"`
	StartDate  time.Time    `json:"start_date"`
	EndDate    time.Time    `json:"end_date"`
	TotalPrice float64      `json:"total_price"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID: b.ID,
		Car: CarSummary{
			ID:          b.CarID,
			Name:        b.Car.Name,
			Brand:       b.Car.Brand,
			Model:       b.Car.Model,
			PricePerDay: b.Car.PricePerDay,
		},
		User: UserSummary{
			ID:    b.UserID,
			Name:  b.User.Name,
			Tel:   b.User.Tel,
			Email: b.User.Email,
		},
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.ProviderID != nil {
		tag := ProviderTag{ID: *b.ProviderID}
		if b.ProviderName != nil {
			tag.Name = *b.ProviderName
		}
		resp.Provider = &tag
	}
	return resp
}

// CreateBookingRequest keeps ids and dates as strings so the service can
// report malformed values with its own errors, in its own order.
type CreateBookingRequest struct {
	CarID      string `json:"car_id" binding:"required"`
	ProviderID string `json:"provider_id"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

// UpdateBookingRequest has no status field; status moves through its own route.
type UpdateBookingRequest struct {
	ProviderID *string `json:"provider_id"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
