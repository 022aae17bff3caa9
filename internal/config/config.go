package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBDriver      string        `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost        string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string        `env:"DB_PORT" envDefault:"3306"`
	DBUser        string        `env:"DB_USER" envDefault:"helix"`
	DBPassword    string        `env:"DB_PASSWORD" envDefault:"helixpassword"`
	DBName        string        `env:"DB_NAME" envDefault:"helix_track"`
	DBPath        string        `env:"DB_PATH" envDefault:"helix_track.db"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string        `env:"REDIS_PORT" envDefault:"6379"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"default-jwt-secret-change-me"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	GinMode       string        `env:"GIN_MODE" envDefault:"debug"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty     bool          `env:"LOG_PRETTY" envDefault:"false"`
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:":8080"`
	SeedFile      string        `env:"SEED_FILE"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`

	PermissionsEnforced bool `env:"PERMISSIONS_ENFORCED" envDefault:"true"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
