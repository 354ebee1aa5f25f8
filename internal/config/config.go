package config

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	// DSN wins over the discrete fields when set.
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (p PostgresConfig) GetDSN() string {
	if p.DSN != "" {
		return p.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig drives the notification outbox queue and its worker pool.
type QueueConfig struct {
	KeyPrefix    string        `mapstructure:"key_prefix"`
	Workers      int           `mapstructure:"workers"`
	ClaimTimeout time.Duration `mapstructure:"claim_timeout"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	ReapBatch    int64         `mapstructure:"reap_batch"`
	// claims older than this are treated as lost and requeued
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

type PaymentConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	SecretKey      string        `mapstructure:"secret_key"`
	PublishableKey string        `mapstructure:"publishable_key"`
	Currency       string        `mapstructure:"currency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type AWSConfig struct {
	Region    string `mapstructure:"region"`
	SESSender string `mapstructure:"ses_sender"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
