package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// PDF renderer choices.
const (
	PDFRendererNative    = "native"
	PDFRendererGotenberg = "gotenberg"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	// ERPAPIURL is the base URL of the record store, e.g. http://localhost:5000/api.
	ERPAPIURL     string        `envconfig:"ERP_API_URL" default:"http://127.0.0.1:5000/api"`
	ERPAPITimeout time.Duration `envconfig:"ERP_API_TIMEOUT" default:"10s"`
	// ViewTimeout bounds the parallel reads of one page.
	ViewTimeout time.Duration `envconfig:"VIEW_TIMEOUT" default:"15s"`

	PDFRenderer  string `envconfig:"PDF_RENDERER" default:"native"`
	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	GoogleServiceAccountJSON string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// CurrencySymbol stands in for the rupee sign in natively rendered PDFs.
	CurrencySymbol string `envconfig:"CURRENCY_SYMBOL" default:"Rs."`

	// Location is the zone used to bucket sales per day.
	Location string `envconfig:"APP_TIMEZONE" default:"Asia/Kolkata"`
}

// LoadConfig reads configuration from the environment. Variables in a .env
// file in the working directory are loaded first; real environment variables
// win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if strings.TrimSpace(c.ERPAPIURL) == "" {
		return errors.New("record store url must be provided")
	}
	switch c.PDFRenderer {
	case PDFRendererNative, PDFRendererGotenberg:
	default:
		return fmt.Errorf("unknown pdf renderer %q", c.PDFRenderer)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("app timezone: %w", err)
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// TimeLocation returns the configured zone, UTC when it cannot be loaded.
func (c *Config) TimeLocation() *time.Location {
	if c == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}
