package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvProduction Environment = "production"
)

// OwnerDeleteRule define qué pasa con las mascotas al borrar un dueño.
type OwnerDeleteRule string

const (
	OwnerDeleteCascade OwnerDeleteRule = "cascade"
	OwnerDeleteNullify OwnerDeleteRule = "nullify"
)

type Config struct {
	App struct {
		Name string      `env:"APP_NAME" envDefault:"vet-clinic"`
		Env  Environment `env:"APP_ENV" envDefault:"local"`
	}

	HTTP struct {
		Port string `env:"PORT" envDefault:"8080"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"text"`
	}

	DB struct {
		DSN     string `env:"DB_DSN"`
		Migrate bool   `env:"DB_MIGRATE" envDefault:"true"`
	}

	Store struct {
		OwnerDeleteRule OwnerDeleteRule `env:"OWNER_DELETE_RULE" envDefault:"cascade"`
	}

	Cache struct {
		Enabled  bool `env:"CACHE_ENABLED" envDefault:"true"`
		PetsSize int  `env:"CACHE_PETS_SIZE" envDefault:"512"`
	}

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
		Burst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	}
}

// Load lee la configuración desde variables de entorno.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.App.Env = Environment(strings.ToLower(strings.TrimSpace(string(cfg.App.Env))))

	rule, err := ParseOwnerDeleteRule(string(cfg.Store.OwnerDeleteRule))
	if err != nil {
		return nil, err
	}
	cfg.Store.OwnerDeleteRule = rule

	if cfg.Cache.PetsSize <= 0 {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

func ParseOwnerDeleteRule(s string) (OwnerDeleteRule, error) {
	switch OwnerDeleteRule(strings.ToLower(strings.TrimSpace(s))) {
	case OwnerDeleteCascade, "":
		return OwnerDeleteCascade, nil
	case OwnerDeleteNullify:
		return OwnerDeleteNullify, nil
	default:
		return "", fmt.Errorf("invalid OWNER_DELETE_RULE %q (expected cascade|nullify)", s)
	}
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.HTTP.Port), ":")
}
