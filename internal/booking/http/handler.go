package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/booking"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	actor := auth.GetIdentity(c)
	bookings, total, err := h.service.List(c.Request.Context(), actor, booking.Filter{
		UserID:   req.UserID,
		CarID:    req.CarID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	msg := "Your bookings"
	if actor.IsAdmin() {
		msg = "All bookings"
	}
	response.Page(c, http.StatusOK, msg, items, req.Page, req.Limit, total)
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.service.GetByID(c.Request.Context(), auth.GetIdentity(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking retrieved", NewBookingResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), auth.GetIdentity(c), booking.CreateRequest{
		CarID:      body.CarID,
		ProviderID: body.ProviderID,
		StartDate:  body.StartDate,
		EndDate:    body.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Booking created", NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), auth.GetIdentity(c), c.Param("id"), booking.UpdateRequest{
		ProviderID: body.ProviderID,
		StartDate:  body.StartDate,
		EndDate:    body.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking updated", NewBookingResponse(b))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), auth.GetIdentity(c), c.Param("id"), body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking status updated to "+string(b.Status), NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	b, err := h.service.Delete(c.Request.Context(), auth.GetIdentity(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking deleted", NewBookingResponse(b))
}
