package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/car-rental-backend/internal/booking/http"
	"github.com/nekogravitycat/car-rental-backend/internal/car"
	carHttp "github.com/nekogravitycat/car-rental-backend/internal/car/http"
	"github.com/nekogravitycat/car-rental-backend/internal/file"
	fileHttp "github.com/nekogravitycat/car-rental-backend/internal/file/http"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/middleware"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/validation"
	"github.com/nekogravitycat/car-rental-backend/internal/provider"
	providerHttp "github.com/nekogravitycat/car-rental-backend/internal/provider/http"
	"github.com/nekogravitycat/car-rental-backend/internal/review"
	reviewHttp "github.com/nekogravitycat/car-rental-backend/internal/review/http"
	"github.com/nekogravitycat/car-rental-backend/internal/user"
	userHttp "github.com/nekogravitycat/car-rental-backend/internal/user/http"
	"go.uber.org/zap"
)

type RouterConfig struct {
	IsProduction   bool
	ProdOrigins    string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *zap.Logger
	DBPool         *pgxpool.Pool

	JWTManager      *auth.JWTManager
	UserService     user.Service
	FileService     file.Service
	ProviderService provider.Service
	CarService      car.Service
	BookingService  booking.Service
	ReviewService   review.Service
}

// NewRouter assembles the middleware chain and registers every module's routes under /api/v1.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := validation.Setup(validation.Enums{
		"car_type":         car.Types,
		"car_fuel":         car.Fuels,
		"car_transmission": car.Transmissions,
		"booking_status":   booking.StatusNames(),
	}); err != nil {
		return nil, err
	}

	corsCfg, err := corsConfig(cfg.IsProduction, cfg.ProdOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger),
		cors.New(corsCfg),
	)

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "Route not found")
	})

	r.GET("/healthz", healthz(cfg.DBPool))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := auth.RequireAdmin()

	fileHandler := fileHttp.NewHandler(cfg.FileService)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager, cfg.IsProduction)
	providerHandler := providerHttp.NewHandler(cfg.ProviderService)
	carHandler := carHttp.NewHandler(cfg.CarService, cfg.FileService, fileHandler, cfg.Logger)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	reviewHandler := reviewHttp.NewHandler(cfg.ReviewService)

	v1 := r.Group("/api/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)
		providerHttp.RegisterRoutes(v1, providerHandler, authMiddleware, adminMiddleware)
		carHttp.RegisterRoutes(v1, carHandler, authMiddleware, adminMiddleware)
		reviewHttp.RegisterRoutes(v1, reviewHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r, nil
}

func corsConfig(isProduction bool, prodOrigins string) (cors.Config, error) {
	config := cors.DefaultConfig()
	if isProduction {
		var origins []string
		for _, o := range strings.Split(prodOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) == 0 {
			return cors.Config{}, errors.New("PROD_ORIGINS must list at least one origin in production")
		}
		config.AllowOrigins = origins
	} else {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	config.AllowCredentials = true
	return config, nil
}

func healthz(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				_ = c.Error(err)
				response.Fail(c, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		response.Success(c, http.StatusOK, "OK", nil)
	}
}
