package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/reviews")
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	owned := group.Group("")
	owned.Use(authMiddleware)
	{
		owned.PUT("/:id", h.Update)
		owned.DELETE("/:id", h.Delete)
	}

	// Reviews nested under their car
	cars := g.Group("/cars/:id/reviews")
	cars.GET("", h.ListForCar)
	cars.POST("", authMiddleware, h.Create)
}
