package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/configparser"
)

func TestDefaultsAreValid(t *testing.T) {
	var cfg Config
	if err := configparser.ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	cfg.Mode = types.MapService

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Feed.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %s, want 5s", cfg.Feed.PollInterval)
	}
	if cfg.API.Window != time.Minute {
		t.Errorf("api window = %s, want 1m", cfg.API.Window)
	}
	if cfg.Store.UTCOffset != "+0200" {
		t.Errorf("utc offset = %q", cfg.Store.UTCOffset)
	}
}

func TestSampleFile(t *testing.T) {
	path := filepath.Join("..", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("sample config not found")
	}

	t.Setenv("FEED_POLL_INTERVAL", "2s")

	var cfg Config
	if err := configparser.LoadAndParseYaml(path, &cfg); err != nil {
		t.Fatalf("LoadAndParseYaml: %v", err)
	}
	cfg.Mode = types.StoreService

	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config must validate: %v", err)
	}
	if cfg.Feed.PollInterval != 2*time.Second {
		t.Errorf("environment must win over the file, got %s", cfg.Feed.PollInterval)
	}
	if cfg.Store.Workers != 8 {
		t.Errorf("workers = %d", cfg.Store.Workers)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "ride-service" }},
		{"zero poll interval", func(c *Config) { c.Feed.PollInterval = 0 }},
		{"bad feed url", func(c *Config) { c.Feed.URL = "not a url" }},
		{"bad log level", func(c *Config) { c.Log.Level = "TRACE" }},
		{"no workers", func(c *Config) { c.Store.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			if err := configparser.ParseEnv(&cfg); err != nil {
				t.Fatal(err)
			}
			cfg.Mode = types.APIService
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestGetDSN_EscapesCredentials(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "sky", Password: "p@ss:word", Database: "skytrack"}
	dsn := db.GetDSN()
	if !strings.Contains(dsn, "p%40ss%3Aword") {
		t.Errorf("password not escaped: %s", dsn)
	}

	mq := RabbitMQConfig{Host: "mq", Port: "5672", User: "guest", Password: "a/b"}
	if got := mq.GetDSN(); got != "amqp://guest:a%2Fb@mq:5672/" {
		t.Errorf("rabbit dsn = %s", got)
	}
}
