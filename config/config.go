package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Checkin   CheckinConfig
	Penalty   PenaltyConfig
	RateLimit RateLimitConfig
	I18n      I18nConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// CheckinConfig controls attendance verification.
type CheckinConfig struct {
	TokenSecret          string
	TokenTTL             time.Duration
	GeofenceRadiusMeters float64
}

type PenaltyConfig struct {
	NoShowPoints int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type I18nConfig struct {
	DefaultLocale string
}

const (
	devAccessSecret  = "change-me-in-production"
	devCheckinSecret = "change-me-checkin"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "mealmate:mealmate@tcp(localhost:3306)/mealmate?charset=utf8mb4&parseTime=True&loc=UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.access_secret", devAccessSecret)
	v.SetDefault("jwt.access_expiry", 15*time.Minute)
	v.SetDefault("jwt.issuer", "mealmate")

	v.SetDefault("checkin.token_secret", devCheckinSecret)
	v.SetDefault("checkin.token_ttl", 10*time.Minute)
	v.SetDefault("checkin.geofence_radius_meters", 100.0)

	v.SetDefault("penalty.no_show_points", 10)

	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("i18n.default_locale", "ko")
}

// Load reads defaults, then config.yaml (optional), then .env and the process
// environment (DATABASE_DSN, CHECKIN_TOKEN_SECRET, ...).
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI).
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(replacer())
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config.yaml: %w", err)
		}
	}
	return fromViper(v)
}

func replacer() *strings.Replacer { return strings.NewReplacer(".", "_") }

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Env:          v.GetString("server.env"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("jwt.access_secret"),
			AccessExpiry: v.GetDuration("jwt.access_expiry"),
			Issuer:       v.GetString("jwt.issuer"),
		},
		Checkin: CheckinConfig{
			TokenSecret:          v.GetString("checkin.token_secret"),
			TokenTTL:             v.GetDuration("checkin.token_ttl"),
			GeofenceRadiusMeters: v.GetFloat64("checkin.geofence_radius_meters"),
		},
		Penalty: PenaltyConfig{
			NoShowPoints: v.GetInt("penalty.no_show_points"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		I18n: I18nConfig{
			DefaultLocale: v.GetString("i18n.default_locale"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, _ := fromViper(v)
	return cfg
}

func (c *Config) IsProduction() bool { return c.Server.Env == "production" }

func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: DATABASE_DSN is required")
	}
	if strings.TrimSpace(c.JWT.AccessSecret) == "" || strings.TrimSpace(c.Checkin.TokenSecret) == "" {
		return fmt.Errorf("config: JWT_ACCESS_SECRET and CHECKIN_TOKEN_SECRET must not be empty")
	}
	if c.IsProduction() && (c.JWT.AccessSecret == devAccessSecret || c.Checkin.TokenSecret == devCheckinSecret) {
		return fmt.Errorf("config: development secrets are not allowed in production")
	}
	if c.Checkin.GeofenceRadiusMeters <= 0 {
		return fmt.Errorf("config: CHECKIN_GEOFENCE_RADIUS_METERS must be positive")
	}
	if c.Checkin.TokenTTL <= 0 {
		return fmt.Errorf("config: CHECKIN_TOKEN_TTL must be positive")
	}
	if c.Penalty.NoShowPoints < 0 {
		return fmt.Errorf("config: PENALTY_NO_SHOW_POINTS cannot be negative")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}
