package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/car-rental-backend/internal/car"
	"github.com/nekogravitycat/car-rental-backend/internal/file"
	fileHttp "github.com/nekogravitycat/car-rental-backend/internal/file/http"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const maxImageBytes = 5 << 20

type Handler struct {
	service     car.Service
	fileService file.Service
	fileHandler *fileHttp.Handler
	log         *zap.Logger
}

func NewHandler(service car.Service, fileService file.Service, fileHandler *fileHttp.Handler, log *zap.Logger) *Handler {
	return &Handler{
		service:     service,
		fileService: fileService,
		fileHandler: fileHandler,
		log:         log,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListCarsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	cars, total, err := h.service.List(c.Request.Context(), car.Filter{
		Search:       req.Search,
		Type:         req.Type,
		Brand:        req.Brand,
		Fuel:         req.Fuel,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		Page:         req.Page,
		PageSize:     req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CarResponse, len(cars))
	for i, item := range cars {
		items[i] = NewCarResponse(item)
	}
	response.Page(c, http.StatusOK, "Cars", items, req.Page, req.Limit, total)
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Car", NewCarResponse(item))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateCarRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), car.CreateRequest{
		Name:         body.Name,
		Brand:        body.Brand,
		Model:        body.Model,
		Type:         body.Type,
		Seats:        body.Seats,
		Fuel:         body.Fuel,
		Transmission: body.Transmission,
		PricePerDay:  *body.PricePerDay,
		ProviderIDs:  body.ProviderIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Car created", NewCarResponse(item))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var body UpdateCarRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.Update(c.Request.Context(), uri.ID, car.UpdateRequest{
		Name:         body.Name,
		Brand:        body.Brand,
		Model:        body.Model,
		Type:         body.Type,
		Seats:        body.Seats,
		Fuel:         body.Fuel,
		Transmission: body.Transmission,
		PricePerDay:  body.PricePerDay,
		ProviderIDs:  body.ProviderIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Car updated", NewCarResponse(item))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	item, err := h.service.Delete(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if item.ImageFileID != nil {
		h.dropFile(c.Request.Context(), *item.ImageFileID)
	}
	response.Success(c, http.StatusOK, "Car deleted", NewCarResponse(item))
}

// UploadImage replaces the car image. The previous file is removed once the car points at the new one.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "image",
		MaxSizeBytes:  maxImageBytes,
		AllowedTypes:  []string{"image/jpeg", "image/png"},
		ResizeImage:   true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			previous, err := h.service.SetImage(ctx, uri.ID, fileID)
			if err != nil {
				return err
			}
			if previous != nil && *previous != fileID {
				h.dropFile(ctx, *previous)
			}
			return nil
		},
	})
}

func (h *Handler) dropFile(ctx context.Context, id string) {
	if err := h.fileService.Delete(ctx, id); err != nil {
		h.log.Warn("failed to remove car image", zap.String("file_id", id), zap.Error(err))
	}
}
