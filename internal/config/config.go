package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int    `env:"PORT" envDefault:"8080"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver         string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	MongoURI            string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase       string        `env:"MONGO_DATABASE" envDefault:"invoiceapp"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	DatabasePath        string        `env:"DATABASE_PATH" envDefault:"./shopdesk.db"`

	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	InvoiceIDPrefix     string        `env:"INVOICE_ID_PREFIX" envDefault:"INV"`
	InvoiceIDWidth      int           `env:"INVOICE_ID_WIDTH" envDefault:"5"`
	InvoiceIDRetries    int           `env:"INVOICE_ID_RETRIES" envDefault:"5"`
	InvoiceIDRetryDelay time.Duration `env:"INVOICE_ID_RETRY_DELAY" envDefault:"10ms"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	SequenceCheckSchedule string  `env:"SEQUENCE_CHECK_SCHEDULE" envDefault:"*/30 * * * *"`
	SequenceWarnRatio     float64 `env:"SEQUENCE_WARN_RATIO" envDefault:"0.9"`
}

// Load reads envPath into the environment when the file exists, then
// parses and validates the configuration. Variables already set in the
// environment win over the file.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the process runs in a local setup.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreMongo, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s; got %q", StoreMongo, StoreSQLite, StoreMemory, c.StoreDriver)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("PORT %d out of range", c.ServerPort)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.InvoiceIDWidth < 1 || c.InvoiceIDWidth > 18 {
		return fmt.Errorf("INVOICE_ID_WIDTH %d out of range [1, 18]", c.InvoiceIDWidth)
	}
	if c.InvoiceIDRetries < 0 {
		return fmt.Errorf("INVOICE_ID_RETRIES must not be negative, got %d", c.InvoiceIDRetries)
	}
	if c.SequenceWarnRatio <= 0 || c.SequenceWarnRatio > 1 {
		return fmt.Errorf("SEQUENCE_WARN_RATIO must be in (0, 1], got %v", c.SequenceWarnRatio)
	}
	return nil
}
