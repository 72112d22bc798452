package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecretKey       string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	ServerPort         int           `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	DBConnectTimeout   time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	DBAutoMigrate      bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	Tx TxConfig
	R2 R2Config
}

// TxConfig - параметры повторов для транзакций под конкуренцией.
type TxConfig struct {
	MaxAttempts    uint          `env:"TX_MAX_ATTEMPTS" envDefault:"5"`
	InitialBackoff time.Duration `env:"TX_INITIAL_BACKOFF" envDefault:"20ms"`
	MaxBackoff     time.Duration `env:"TX_MAX_BACKOFF" envDefault:"500ms"`
	LockTimeout    time.Duration `env:"TX_LOCK_TIMEOUT" envDefault:"2s"`
}

type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `env:"R2_BUCKET_NAME"`
	PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Ошибку отсутствия .env не считаем фатальной.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 || c.DBConnectTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT and DB_CONNECT_TIMEOUT must be positive")
	}
	if c.Tx.MaxAttempts == 0 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1")
	}
	if c.Tx.InitialBackoff <= 0 || c.Tx.MaxBackoff < c.Tx.InitialBackoff {
		return fmt.Errorf("TX_MAX_BACKOFF (%s) must not be below TX_INITIAL_BACKOFF (%s)", c.Tx.MaxBackoff, c.Tx.InitialBackoff)
	}
	return nil
}

// SlogLevel returns the configured level; Load has already validated it.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
