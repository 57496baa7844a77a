package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LicenseConfig controls key issuance and validation behavior.
type LicenseConfig struct {
	DurationDays     int `mapstructure:"duration_days"`
	StoreTimeoutSecs int `mapstructure:"store_timeout_secs"`
	ValidateDeadline int `mapstructure:"validate_deadline_secs"`
	SweepIntervalMin int `mapstructure:"sweep_interval_minutes"`
	SweepRetainDays  int `mapstructure:"sweep_retain_days"`
}

func (l *LicenseConfig) Duration() time.Duration {
	return time.Duration(l.DurationDays) * 24 * time.Hour
}

func (l *LicenseConfig) StoreTimeout() time.Duration {
	return time.Duration(l.StoreTimeoutSecs) * time.Second
}

func (l *LicenseConfig) ValidateTimeout() time.Duration {
	return time.Duration(l.ValidateDeadline) * time.Second
}

func (l *LicenseConfig) SweepInterval() time.Duration {
	return time.Duration(l.SweepIntervalMin) * time.Minute
}

func (l *LicenseConfig) SweepRetention() time.Duration {
	return time.Duration(l.SweepRetainDays) * 24 * time.Hour
}

// RolesConfig lists the actor IDs allowed to operate the command API.
// Admins issue without quota; issuers are quota-bound.
type RolesConfig struct {
	Admins  []string `mapstructure:"admins"`
	Issuers []string `mapstructure:"issuers"`
}

type AuthConfig struct {
	TokenSecret   string `mapstructure:"token_secret"`
	TokenExpHours int    `mapstructure:"token_exp_hours"`
}

// AssetsConfig maps asset names to downloadable references.
// Default is returned when no name is requested or entitled.
type AssetsConfig struct {
	Default string            `mapstructure:"default"`
	Catalog map[string]string `mapstructure:"catalog"`
}

// AuditConfig configures the fire-and-forget audit sink.
// WebhookURL empty disables webhook delivery; log lines are always written.
type AuditConfig struct {
	WebhookURL     string `mapstructure:"webhook_url"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	EventBufferLen int    `mapstructure:"event_buffer_len"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerWindow int  `mapstructure:"requests_per_window"`
	WindowSecs        int  `mapstructure:"window_secs"`
}

func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSecs) * time.Second
}
