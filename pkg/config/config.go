package config

import "time"

// Config holds every runtime setting for the channels bot. It is built
// once at startup and handed to each component explicitly.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Admin     AdminConfig     `mapstructure:"admin" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Gateway   GatewayConfig   `mapstructure:"gateway" validate:"required"`
	Payments  PaymentsConfig  `mapstructure:"payments"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AdminConfig gates the administrative conversation.
type AdminConfig struct {
	Password string `mapstructure:"password" validate:"required,min=8"`
}

// StorageConfig selects and configures the record store backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file postgres"`
	// Dir is the data directory for the file driver.
	Dir string `mapstructure:"dir"`

	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string for the postgres driver.
func (s StorageConfig) DSN() string {
	return "host=" + s.Host +
		" port=" + s.Port +
		" user=" + s.User +
		" password=" + s.Password +
		" dbname=" + s.Name +
		" sslmode=" + s.SSLMode
}

// GatewayConfig configures the payment processor client.
type GatewayConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	CredentialsFile string        `mapstructure:"credentials_file" validate:"required"`
	Network         string        `mapstructure:"network"`
	CreateTimeout   time.Duration `mapstructure:"create_timeout"`
	StatusTimeout   time.Duration `mapstructure:"status_timeout"`
}

// PaymentsConfig tunes the payment lifecycle engine.
type PaymentsConfig struct {
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

// BroadcastConfig tunes the admin broadcast fan-out.
type BroadcastConfig struct {
	// Delay is the pause between consecutive outbound messages.
	Delay time.Duration `mapstructure:"delay"`
}

// ServerConfig configures the metrics/health HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig enables Redis-backed admin sessions.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SentryConfig enables error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// LogConfig configures the slog pipeline.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}
