package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/configparser"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	"github.com/Temutjin2k/skytrack/pkg/validator"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode: map-service|ingest-service|store-service|api-service")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode `validate:"required,oneof=map-service ingest-service store-service api-service"`

		Log      LogConfig
		Feed     FeedConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Services ServicesConfig
		SBS      SBSConfig
		Ingest   IngestConfig
		Store    StoreConfig
		API      APIConfig
		Auth     AuthConfig
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	}

	// FeedConfig drives the map-service poller.
	FeedConfig struct {
		URL          string        `env:"FEED_URL" default:"http://localhost:3003/aircraft" validate:"required,url"`
		PollInterval time.Duration `env:"FEED_POLL_INTERVAL" default:"5s" validate:"gt=0"`
		FetchTimeout time.Duration `env:"FEED_FETCH_TIMEOUT" default:"0s" validate:"gte=0"` // 0 = no timeout
		MaxBodyBytes int64         `env:"FEED_MAX_BODY_BYTES" default:"8388608" validate:"gt=0"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"skytrack_user"`
		Password string `env:"DATABASE_PASSWORD" default:"skytrack_pass"`
		Database string `env:"DATABASE_DATABASE" default:"skytrack_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	ServicesConfig struct {
		MapService    string `env:"SERVICES_MAP_SERVICE" default:"3000"`
		IngestService string `env:"SERVICES_INGEST_SERVICE" default:"3001"`
		StoreService  string `env:"SERVICES_STORE_SERVICE" default:"3002"`
		APIService    string `env:"SERVICES_API_SERVICE" default:"3003"`
	}

	// SBSConfig points the ingest-service at a dump1090 BaseStation port.
	SBSConfig struct {
		Enabled      bool          `env:"SBS_ENABLED" default:"false"`
		Address      string        `env:"SBS_ADDRESS" default:"localhost:30003" validate:"hostname_port"`
		RetryBackoff time.Duration `env:"SBS_RETRY_BACKOFF" default:"5s" validate:"gt=0"`
	}

	IngestConfig struct {
		RatePerSecond float64 `env:"INGEST_RATE_PER_SECOND" default:"50" validate:"gt=0"`
		Burst         int     `env:"INGEST_BURST" default:"200" validate:"gt=0"`
	}

	StoreConfig struct {
		Workers   int    `env:"STORE_WORKERS" default:"8" validate:"gt=0"`
		UTCOffset string `env:"STORE_UTC_OFFSET" default:"+0200" validate:"len=5"`
	}

	APIConfig struct {
		Window      time.Duration `env:"API_WINDOW" default:"1m" validate:"gt=0"`
		AllowOrigin string        `env:"API_ALLOW_ORIGIN" default:"http://[::1]"`
	}

	AuthConfig struct {
		FeederSecret   string        `env:"AUTH_FEEDER_SECRET" default:"supersecretkey"`
		FeederTokenTTL time.Duration `env:"AUTH_FEEDER_TOKEN_TTL" default:"8760h" validate:"gt=0"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct rules of the whole configuration.
func (c *Config) Validate() error {
	v := validator.New()
	v.Struct(c)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	return nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}

// PrintConfig logs the effective configuration with secrets masked.
func PrintConfig(ctx context.Context, log logger.Logger, cfg *Config) {
	log.Info(ctx, "configuration loaded",
		"mode", cfg.Mode,
		"log_level", cfg.Log.Level,
		"feed_url", cfg.Feed.URL,
		"feed_poll_interval", cfg.Feed.PollInterval.String(),
		"feed_fetch_timeout", cfg.Feed.FetchTimeout.String(),
		"database", fmt.Sprintf("%s@%s:%s/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database),
		"rabbitmq", fmt.Sprintf("%s@%s:%s", cfg.RabbitMQ.User, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		"sbs_enabled", cfg.SBS.Enabled,
		"sbs_address", cfg.SBS.Address,
		"store_workers", cfg.Store.Workers,
		"store_utc_offset", cfg.Store.UTCOffset,
		"api_window", cfg.API.Window.String(),
		"auth_feeder_secret", mask(cfg.Auth.FeederSecret),
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
