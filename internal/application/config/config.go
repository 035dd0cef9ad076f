package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	IdentitySourcePostgres = "postgres"
	IdentitySourceREST     = "rest"
)

type Config struct {
	Debug      bool       `env:"DEBUG" envDefault:"false"`
	LogLevel   slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	Port       string     `env:"PORT" envDefault:"3000"`
	MetricPort string     `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string     `env:"DOMAIN" envDefault:"http://localhost:3000"`
	JWTSecret  string     `env:"JWT_SECRET,required,notEmpty"`

	// Timezone - в ней считаются пресеты длительности и даты без зоны
	Timezone string `env:"TIMEZONE" envDefault:"Africa/Johannesburg"`

	Booking  BookingConfig
	Identity IdentityConfig
	Redis    RedisConfig
	Postgres PostgresConfig

	location *time.Location
}

type BookingConfig struct {
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	PastTolerance  time.Duration `env:"BOOKING_PAST_TOLERANCE" envDefault:"1m"`
	DefaultPurpose string        `env:"DEFAULT_PURPOSE" envDefault:"Meeting"`
	StatusInterval time.Duration `env:"STATUS_INTERVAL" envDefault:"1m"`
}

type IdentityConfig struct {
	// Source - postgres (таблица profiles) или rest (REST API управляемого бэкенда)
	Source  string `env:"IDENTITY_SOURCE" envDefault:"postgres"`
	RESTURL string `env:"IDENTITY_REST_URL"`
	RESTKey string `env:"IDENTITY_REST_KEY"`
}

type RedisConfig struct {
	// URL пустой - события раздаются только внутри процесса
	URL     string `env:"REDIS_URL"`
	Channel string `env:"REDIS_CHANNEL" envDefault:"roombook:events"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"roombook"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

// New читает .env (если он есть), затем переменные окружения.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}

	return c.location
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	switch c.Identity.Source {
	case IdentitySourcePostgres:
	case IdentitySourceREST:
		if c.Identity.RESTURL == "" || c.Identity.RESTKey == "" {
			return errors.New("IDENTITY_REST_URL and IDENTITY_REST_KEY are required for rest identity source")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_SOURCE %q", c.Identity.Source)
	}

	if c.Booking.StatusInterval <= 0 {
		return errors.New("STATUS_INTERVAL must be positive")
	}

	// нулевой таймаут обрывал бы каждый запрос к хранилищу
	if c.Booking.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}

	return nil
}
