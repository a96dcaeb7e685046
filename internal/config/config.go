package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Run modes understood by the service. In dev mode the mailer logs
// verification links instead of dialing SMTP and the database is reset
// at startup.
const (
	RunModeDev        = "dev"
	RunModeProduction = "production"
)

// Config holds the service configuration parsed from environment variables.
type Config struct {
	HTTPPort                 int           `env:"DEFAULT_PORT"                          envDefault:"8000"`
	RunMode                  string        `env:"RUN_MODE"                              envDefault:"dev"`
	AppBaseURL               string        `env:"APP_BASE_URL"                          envDefault:"http://localhost:8000"`
	TokenTTL                 time.Duration `env:"TOKEN_TTL"                             envDefault:"1h"`
	VerificationSecretLength int           `env:"DEFAULT_EMAIL_VERIFICATION_KEY_LENGTH" envDefault:"32"`
	DefaultLocale            string        `env:"DEFAULT_LOCALE"                        envDefault:"en"`

	Mongo MongoConfig `envPrefix:"MONGODB_"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	Host         string `env:"HOST"          envDefault:"localhost"`
	Port         int    `env:"PORT"          envDefault:"27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"oxidize"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
}

// New creates a Config instance from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// Parse is like New but returns the error instead of exiting, for callers
// that want to handle configuration failures themselves.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RunMode != RunModeDev && c.RunMode != RunModeProduction {
		return fmt.Errorf("RUN_MODE must be %q or %q, got %q", RunModeDev, RunModeProduction, c.RunMode)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.VerificationSecretLength <= 0 {
		return fmt.Errorf("DEFAULT_EMAIL_VERIFICATION_KEY_LENGTH must be positive")
	}
	if c.Mongo.DatabaseName == "" {
		return fmt.Errorf("missing MONGODB_DATABASE_NAME environment variable")
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.RunMode == RunModeDev
}

// URI builds the connection string for the configured MongoDB instance.
// Credentials are percent-escaped so reserved characters in the password
// cannot corrupt the URI.
func (c *MongoConfig) URI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.DatabaseName,
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}
