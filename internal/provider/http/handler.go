package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/car-rental-backend/internal/provider"
)

type Handler struct {
	service provider.Service
}

func NewHandler(service provider.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListProvidersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	list, total, err := h.service.List(c.Request.Context(), provider.Filter{
		Name:     req.Name,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ProviderResponse, len(list))
	for i, p := range list {
		items[i] = NewProviderResponse(p)
	}

	response.Page(c, http.StatusOK, "Providers", items, req.Page, req.Limit, total)
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Provider", NewProviderResponse(p))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateProviderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), provider.CreateRequest{
		Name:    body.Name,
		Address: body.Address,
		Tel:     body.Tel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Provider created", NewProviderResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var body UpdateProviderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), uri.ID, provider.UpdateRequest{
		Name:    body.Name,
		Address: body.Address,
		Tel:     body.Tel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Provider updated", NewProviderResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Provider deleted", nil)
}
