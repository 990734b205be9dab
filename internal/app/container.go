package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/booking"
	"github.com/nekogravitycat/car-rental-backend/internal/car"
	"github.com/nekogravitycat/car-rental-backend/internal/events"
	"github.com/nekogravitycat/car-rental-backend/internal/file"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/storage"
	"github.com/nekogravitycat/car-rental-backend/internal/provider"
	"github.com/nekogravitycat/car-rental-backend/internal/review"
	"github.com/nekogravitycat/car-rental-backend/internal/user"
	"go.uber.org/zap"
)

// BookingRules are the configurable booking limits.
type BookingRules struct {
	MaxActive               int
	RequireProvider         bool
	PreventDuplicatePending bool
	UserStatuses            []string
	EnforceTransitions      bool
}

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	Storage        storage.Storage
	Publisher      events.Publisher
	Logger         *zap.Logger
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	RateLimitRPS   float64
	RateLimitBurst int
	Booking        BookingRules
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}

	transitions, err := booking.NewTransitionPolicy(cfg.Booking.UserStatuses, cfg.Booking.EnforceTransitions)
	if err != nil {
		return nil, fmt.Errorf("booking transition policy: %w", err)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.Logger)

	// File Module
	fileRepo := file.NewRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, cfg.Storage, cfg.Logger)

	// Provider Module
	providerRepo := provider.NewPgxRepository(cfg.DBPool)
	providerService := provider.NewService(providerRepo)

	// Car Module
	carRepo := car.NewPgxRepository(cfg.DBPool)
	carService := car.NewService(carRepo, providerService)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, carService, providerService, cfg.Publisher, booking.Options{
		Rules: booking.Rules{
			MaxActive:               cfg.Booking.MaxActive,
			RequireProvider:         cfg.Booking.RequireProvider,
			PreventDuplicatePending: cfg.Booking.PreventDuplicatePending,
		},
		Transitions: transitions,
	}, cfg.Logger)

	// Review Module
	reviewRepo := review.NewPgxRepository(cfg.DBPool)
	reviewService := review.NewService(reviewRepo, carService, bookingService)

	router, err := NewRouter(RouterConfig{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
		Logger:          cfg.Logger,
		DBPool:          cfg.DBPool,
		JWTManager:      jwtManager,
		UserService:     userService,
		FileService:     fileService,
		ProviderService: providerService,
		CarService:      carService,
		BookingService:  bookingService,
		ReviewService:   reviewService,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		BookingService: bookingService,
	}, nil
}
