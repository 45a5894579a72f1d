package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	StateBackendRedis  = "redis"
	StateBackendMemory = "memory"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	BotDebug      bool   `env:"BOT_DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	StateBackend  string `env:"STATE_BACKEND" envDefault:"redis"`

	Redis      RedisConfig    `envPrefix:"REDIS_"`
	Database   DatabaseConfig `envPrefix:"DB_"`
	Admin      AdminConfig
	Calculator CalculatorConfig
	RateLimit  RateLimitConfig `envPrefix:"RATE_"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

// DatabaseConfig configures the usage statistics database. Statistics are
// disabled when Host is empty.
type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// Validate checks that an enabled database has the fields a DSN needs.
func (d DatabaseConfig) Validate() error {
	if d.Enabled() && (d.User == "" || d.Name == "") {
		return fmt.Errorf("DB_USER and DB_NAME are required when DB_HOST is set")
	}
	return nil
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type AdminConfig struct {
	IDs []int64 `env:"ADMIN_IDS" envSeparator:","`
}

type CalculatorConfig struct {
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"R$"`
	DefaultRows    int    `env:"DEFAULT_ROWS" envDefault:"2"`
}

type RateLimitConfig struct {
	Limit  int64         `env:"LIMIT" envDefault:"30"`
	Window time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only the DB_ settings, for tools that manage the
// statistics database without running the bot.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()

	var db DatabaseConfig
	if err := env.ParseWithOptions(&db, env.Options{Prefix: "DB_"}); err != nil {
		return DatabaseConfig{}, fmt.Errorf("failed to parse database config: %w", err)
	}

	if !db.Enabled() {
		return DatabaseConfig{}, fmt.Errorf("DB_HOST is not set")
	}
	if err := db.Validate(); err != nil {
		return DatabaseConfig{}, err
	}
	return db, nil
}

func (c *Config) Validate() error {
	switch c.StateBackend {
	case StateBackendRedis, StateBackendMemory:
	default:
		return fmt.Errorf("unknown state backend %q", c.StateBackend)
	}

	if c.Calculator.DefaultRows < 1 {
		return fmt.Errorf("default rows must be at least 1, got %d", c.Calculator.DefaultRows)
	}

	return c.Database.Validate()
}

func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == chatID {
			return true
		}
	}
	return false
}
