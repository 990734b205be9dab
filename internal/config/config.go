package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/nekogravitycat/car-rental-backend/internal/booking"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv       string `envconfig:"APP_ENV" default:"dev"`
	IsProduction bool   `ignored:"true"`
	ProdOrigins  string `envconfig:"PROD_ORIGINS"`
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	DBDSN         string `envconfig:"DB_DSN" required:"true"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"true"`

	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"24h"`
	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"12"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`

	StoragePath string `envconfig:"STORAGE_PATH" default:"./data"`

	// Booking events are only published when at least one broker is set.
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS"`
	KafkaBookingTopic string   `envconfig:"KAFKA_BOOKING_TOPIC" default:"booking-events"`

	// Booking rules
	BookingMaxActive               int      `envconfig:"BOOKING_MAX_ACTIVE" default:"3"`
	BookingRequireProvider         bool     `envconfig:"BOOKING_REQUIRE_PROVIDER" default:"true"`
	BookingPreventDuplicatePending bool     `envconfig:"BOOKING_PREVENT_DUPLICATE_PENDING" default:"true"`
	BookingUserStatuses            []string `envconfig:"BOOKING_USER_STATUSES" default:"Pending,Cancelled"`
	BookingEnforceTransitions      bool     `envconfig:"BOOKING_ENFORCE_TRANSITIONS" default:"false"`
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.IsProduction = cfg.AppEnv == PROD_STRING

	// envconfig accepts a variable that is set but empty
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.JWTAccessTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	if cfg.BookingMaxActive < 0 {
		return nil, fmt.Errorf("BOOKING_MAX_ACTIVE must not be negative")
	}
	for i, name := range cfg.BookingUserStatuses {
		name = strings.TrimSpace(name)
		if _, err := booking.ParseStatus(name); err != nil {
			return nil, fmt.Errorf("BOOKING_USER_STATUSES: unknown status %q", name)
		}
		cfg.BookingUserStatuses[i] = name
	}

	return cfg, nil
}
