// Package config loads the process configuration from the environment:
// an env-tagged struct populated by a reflective loader, with an optional
// local .env file read first for development.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"8080"`

	StorageDir string `env:"STORAGE_DIR" envDefault:"./binaries/badgerdb"`

	EventsBaseURL            string `env:"EVENTS_BASE_URL" envDefault:"http://localhost:8081"`
	CompetitionFormatBaseURL string `env:"COMPETITION_FORMAT_BASE_URL" envDefault:"http://localhost:8082"`
	UsersBaseURL             string `env:"USERS_BASE_URL" envDefault:"http://localhost:8083"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:""`

	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`

	TimingPointListenAddr string `env:"TIMING_POINT_LISTEN_ADDR" envDefault:"localhost:4000"`
}

// Load reads a local .env file if present, then populates Config from the
// process environment. Missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
