package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	AWS          AWSConfig          `yaml:"aws"`
	JWT          JWTConfig          `yaml:"jwt"`
	OIDC         OIDCConfig         `yaml:"oidc"`
	APNs         APNsConfig         `yaml:"apns"`
	Log          LogConfig          `yaml:"log"`
	Reminders    RemindersConfig    `yaml:"reminders"`
	Analytics    AnalyticsConfig    `yaml:"analytics"`
	Verification VerificationConfig `yaml:"verification"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration.
// URL takes precedence over the discrete fields when set.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds S3 configuration for verification photos
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible storage, path-style addressing
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// OIDCConfig holds the external identity provider configuration
type OIDCConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Issuer   string `yaml:"issuer"`
	ClientID string `yaml:"client_id"`
}

// APNsConfig holds Apple push configuration
type APNsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	KeyFile    string `yaml:"key_file"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// RemindersConfig holds the reminder scheduler configuration
type RemindersConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// AnalyticsConfig holds analytics configuration
type AnalyticsConfig struct {
	Timezone string `yaml:"timezone"`
	Window   int    `yaml:"window"`
}

// VerificationConfig holds the scripted pill verification delays
type VerificationConfig struct {
	DetectDelay  time.Duration `yaml:"detect_delay"`
	VerifyDelay  time.Duration `yaml:"verify_delay"`
	ProcessDelay time.Duration `yaml:"process_delay"`
}

// RateLimitConfig holds limits for unauthenticated endpoints
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable"},
		AWS:      AWSConfig{Region: "us-east-1"},
		JWT:      JWTConfig{TTL: 365 * 24 * time.Hour},
		Log:      LogConfig{Level: "info"},
		Reminders: RemindersConfig{
			Enabled:  true,
			Interval: time.Minute,
		},
		Analytics: AnalyticsConfig{Timezone: "UTC", Window: 100},
		Verification: VerificationConfig{
			DetectDelay:  2 * time.Second,
			VerifyDelay:  1500 * time.Millisecond,
			ProcessDelay: 2 * time.Second,
		},
		RateLimit: RateLimitConfig{RPS: 1, Burst: 5},
	}
}

// Load reads configuration from a YAML file on top of the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AWS_S3_BUCKET"); v != "" {
		c.AWS.S3Bucket = v
	}
}

// Validate checks required values
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	if c.OIDC.Enabled && (c.OIDC.Issuer == "" || c.OIDC.ClientID == "") {
		return errors.New("oidc.issuer and oidc.client_id are required when oidc is enabled")
	}
	if c.APNs.Enabled && (c.APNs.KeyFile == "" || c.APNs.KeyID == "" || c.APNs.TeamID == "" || c.APNs.Topic == "") {
		return errors.New("apns.key_file, key_id, team_id and topic are required when apns is enabled")
	}
	if c.Analytics.Window <= 0 {
		return errors.New("analytics.window must be positive")
	}
	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("analytics.timezone: %w", err)
	}
	return nil
}

// Configured reports whether any database connection settings were provided
func (c *DatabaseConfig) Configured() bool {
	return c.URL != "" || c.Host != ""
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Location returns the timezone analytics buckets are computed in
func (c *AnalyticsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
