package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (plus config.<env>.yaml when present),
// the optional .env file and environment overrides such as POSTGRES_DSN.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows, so every key gets a default.
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.App.Environment = env

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.frontend_url", "http://localhost:3000")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "marketplace")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("queue.key_prefix", "notifications")
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.claim_timeout", "5s")
	v.SetDefault("queue.reap_interval", "30s")
	v.SetDefault("queue.reap_batch", 100)
	v.SetDefault("queue.visibility_timeout", "5m")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.presence_ttl", "5m")

	v.SetDefault("payment.base_url", "https://sandbox.intasend.com")
	v.SetDefault("payment.secret_key", "")
	v.SetDefault("payment.publishable_key", "")
	v.SetDefault("payment.currency", "KES")
	v.SetDefault("payment.timeout", "20s")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.ses_sender", "no-reply@example.com")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validateConfig(cfg *Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if cfg.Redis.Address == "" {
		return errors.New("redis.address is required")
	}
	if cfg.Postgres.DSN == "" && cfg.Postgres.Host == "" {
		return errors.New("postgres.dsn or postgres.host is required")
	}
	if cfg.Queue.Workers <= 0 {
		cfg.Queue.Workers = 4
	}
	return nil
}
