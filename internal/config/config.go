package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	Notify    NotifyConfig    `yaml:"notify"`
	Sweeper   SweeperConfig   `yaml:"sweeper"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains the health/admin listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the redis connection used for the sweep lock
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SendGridConfig contains the email channel settings
type SendGridConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// FirebaseConfig contains the FCM push channel settings
type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// NotifyConfig tunes the dispatcher retry behavior
type NotifyConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	ChannelTimeout time.Duration
}

// UnmarshalYAML accepts durations in time.ParseDuration form ("500ms", "10s").
func (n *NotifyConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxAttempts    int    `yaml:"max_attempts"`
		BaseDelay      string `yaml:"base_delay"`
		ChannelTimeout string `yaml:"channel_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	n.MaxAttempts = raw.MaxAttempts
	var err error
	if n.BaseDelay, err = parseDuration(raw.BaseDelay); err != nil {
		return fmt.Errorf("notify.base_delay: %w", err)
	}
	if n.ChannelTimeout, err = parseDuration(raw.ChannelTimeout); err != nil {
		return fmt.Errorf("notify.channel_timeout: %w", err)
	}
	return nil
}

// SweeperConfig drives the pending-order sweep
type SweeperConfig struct {
	// Cron spec with seconds precision, e.g. "0 * * * * *" for every minute.
	Spec        string
	WarnAfter   time.Duration
	RejectAfter time.Duration
	LockKey     string
	LockTTL     time.Duration
}

func (s *SweeperConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Spec        string `yaml:"spec"`
		WarnAfter   string `yaml:"warn_after"`
		RejectAfter string `yaml:"reject_after"`
		LockKey     string `yaml:"lock_key"`
		LockTTL     string `yaml:"lock_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	s.Spec = raw.Spec
	s.LockKey = raw.LockKey
	var err error
	if s.WarnAfter, err = parseDuration(raw.WarnAfter); err != nil {
		return fmt.Errorf("sweeper.warn_after: %w", err)
	}
	if s.RejectAfter, err = parseDuration(raw.RejectAfter); err != nil {
		return fmt.Errorf("sweeper.reject_after: %w", err)
	}
	if s.LockTTL, err = parseDuration(raw.LockTTL); err != nil {
		return fmt.Errorf("sweeper.lock_ttl: %w", err)
	}
	return nil
}

// parseDuration treats an absent value as zero so defaults can fill it in.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM"); val != "" {
		c.SendGrid.From = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Firebase.CredentialsFile = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
}

func (c *Config) applyDefaults() {
	if c.Notify.MaxAttempts == 0 {
		c.Notify.MaxAttempts = 3
	}
	if c.Notify.BaseDelay == 0 {
		c.Notify.BaseDelay = 500 * time.Millisecond
	}
	if c.Notify.ChannelTimeout == 0 {
		c.Notify.ChannelTimeout = 10 * time.Second
	}
	if c.Sweeper.Spec == "" {
		c.Sweeper.Spec = "0 * * * * *"
	}
	if c.Sweeper.WarnAfter == 0 {
		c.Sweeper.WarnAfter = 2 * time.Minute
	}
	if c.Sweeper.RejectAfter == 0 {
		c.Sweeper.RejectAfter = 5 * time.Minute
	}
	if c.Sweeper.LockKey == "" {
		c.Sweeper.LockKey = "lock:sweep:pending-orders"
	}
	if c.Sweeper.LockTTL == 0 {
		c.Sweeper.LockTTL = 55 * time.Second
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

// Validate checks that required configuration values are present
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Sweeper.WarnAfter >= c.Sweeper.RejectAfter {
		return fmt.Errorf("sweeper warn_after must be below reject_after")
	}
	return nil
}

// GetDatabaseConnectionString builds the lib/pq connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.Database, c.Database.SSLMode)
}
