package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jwalitptl/passwordguard/internal/model"
)

var validate = validator.New()

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Advisory  AdvisoryConfig  `mapstructure:"advisory"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// PolicyConfig carries the tunable complexity rules. Defaults match the
// shipped policy: 12-character minimum, every class required, username
// containment rejected, enforcing mode.
type PolicyConfig struct {
	MinLength      int  `mapstructure:"min_length" validate:"gte=0"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireDigit   bool `mapstructure:"require_digit"`
	RequireSpecial bool `mapstructure:"require_special"`
	RejectUsername bool `mapstructure:"reject_username"`
	AdvisoryMode   bool `mapstructure:"advisory_mode"`
}

type AdminConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	// APIKeyHash is a bcrypt hash of the static admin key; the plaintext
	// key never appears in configuration.
	APIKeyHash string `mapstructure:"api_key_hash"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// AdvisoryConfig controls the advisory-mode violation reports.
type AdvisoryConfig struct {
	ReportEmail      string        `mapstructure:"report_email"`
	ReportCooldown   time.Duration `mapstructure:"report_cooldown"`
	ReportingEnabled bool          `mapstructure:"reporting_enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("policy.min_length", 12)
	v.SetDefault("policy.require_upper", true)
	v.SetDefault("policy.require_lower", true)
	v.SetDefault("policy.require_digit", true)
	v.SetDefault("policy.require_special", true)
	v.SetDefault("policy.reject_username", true)
	v.SetDefault("policy.advisory_mode", false)

	v.SetDefault("admin.token_expiry", 24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 100.0)
	v.SetDefault("rate_limit.burst", 200)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 5*time.Second)

	v.SetDefault("advisory.report_cooldown", time.Hour)
	v.SetDefault("advisory.reporting_enabled", false)
}

// Loader wraps the viper instance so callers can re-read the policy section
// after a config-file change.
type Loader struct {
	v *viper.Viper
}

// Load reads configuration from config.yaml (working directory or ./config),
// with environment variables overriding file values.
func Load() (*Config, *Loader, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("PASSWORDGUARD")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Defaults plus environment are a valid configuration; only a
		// malformed file is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, &Loader{v: v}, nil
}

// PolicySnapshot builds an immutable snapshot from the policy section.
func (c *Config) PolicySnapshot() model.PolicySnapshot {
	return model.PolicySnapshot{
		MinLength:      c.Policy.MinLength,
		RequireUpper:   c.Policy.RequireUpper,
		RequireLower:   c.Policy.RequireLower,
		RequireDigit:   c.Policy.RequireDigit,
		RequireSpecial: c.Policy.RequireSpecial,
		RejectUsername: c.Policy.RejectUsername,
		AdvisoryMode:   c.Policy.AdvisoryMode,
	}
}

// ReloadPolicy re-reads the config file and returns a fresh snapshot.
func (l *Loader) ReloadPolicy() (model.PolicySnapshot, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return model.PolicySnapshot{}, fmt.Errorf("failed to re-read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return model.PolicySnapshot{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.StructPartial(&cfg, "Policy.MinLength"); err != nil {
		return model.PolicySnapshot{}, fmt.Errorf("invalid policy configuration: %w", err)
	}
	return cfg.PolicySnapshot(), nil
}

// WatchPolicy invokes onChange with a freshly built snapshot whenever the
// config file changes on disk.
func (l *Loader) WatchPolicy(onChange func(model.PolicySnapshot)) {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := l.v.Unmarshal(&cfg); err != nil {
			return
		}
		onChange(cfg.PolicySnapshot())
	})
	l.v.WatchConfig()
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
