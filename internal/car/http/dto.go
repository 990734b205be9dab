package http

import (
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/car"
	"github.com/nekogravitycat/car-rental-backend/internal/file"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/request"
)

type ListCarsRequest struct {
	request.ListParams
	Search       string `form:"search"`
	Type         string `form:"type" binding:"omitempty,car_type"`
	Brand        string `form:"brand"`
	Fuel         string `form:"fuel" binding:"omitempty,car_fuel"`
	Transmission string `form:"transmission" binding:"omitempty,car_transmission"`
	Seats        int    `form:"seats" binding:"omitempty,min=1"`
}

type CarResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Brand        string              `json:"brand"`
	Model        string              `json:"model"`
	Type         string              `json:"type"`
	Seats        int                 `json:"seats"`
	Fuel         string              `json:"fuel"`
	Transmission string              `json:"transmission"`
	PricePerDay  float64             `json:"price_per_day"`
	Providers    []car.ProviderBrief `json:"providers"`
	ImageURL     *string             `json:"image_url"`
	ThumbnailURL *string             `json:"thumbnail_url"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func NewCarResponse(c *car.Car) CarResponse {
	resp := CarResponse{
		ID:           c.ID,
		Name:         c.Name,
		Brand:        c.Brand,
		Model:        c.Model,
		Type:         c.Type,
		Seats:        c.Seats,
		Fuel:         c.Fuel,
		Transmission: c.Transmission,
		PricePerDay:  c.PricePerDay,
		Providers:    c.Providers,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if resp.Providers == nil {
		resp.Providers = []car.ProviderBrief{}
	}
	if c.ImageFileID != nil {
		img := file.FileURL(*c.ImageFileID)
		thumb := file.ThumbnailURL(*c.ImageFileID)
		resp.ImageURL = &img
		resp.ThumbnailURL = &thumb
	}
	return resp
}

type CreateCarRequest struct {
	Name         string   `json:"name" binding:"required,max=100"`
	Brand        string   `json:"brand" binding:"required,max=50"`
	Model        string   `json:"model" binding:"required,max=50"`
	Type         string   `json:"type" binding:"required,car_type"`
	Seats        int      `json:"seats" binding:"required,min=1"`
	Fuel         string   `json:"fuel" binding:"required,car_fuel"`
	Transmission string   `json:"transmission" binding:"required,car_transmission"`
	PricePerDay  *float64 `json:"price_per_day" binding:"required,min=0"`
	ProviderIDs  []string `json:"provider_ids" binding:"omitempty,dive,uuid"`
}

type UpdateCarRequest struct {
	Name         *string   `json:"name" binding:"omitempty,max=100"`
	Brand        *string   `json:"brand" binding:"omitempty,max=50"`
	Model        *string   `json:"model" binding:"omitempty,max=50"`
	Type         *string   `json:"type" binding:"omitempty,car_type"`
	Seats        *int      `json:"seats" binding:"omitempty,min=1"`
	Fuel         *string   `json:"fuel" binding:"omitempty,car_fuel"`
	Transmission *string   `json:"transmission" binding:"omitempty,car_transmission"`
	PricePerDay  *float64  `json:"price_per_day" binding:"omitempty,min=0"`
	ProviderIDs  *[]string `json:"provider_ids" binding:"omitempty,dive,uuid"`
}
