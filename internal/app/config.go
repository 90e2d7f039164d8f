package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the RSVP service.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Admin         AdminConfig        `mapstructure:"admin"`
	Store         StoreConfig        `mapstructure:"store"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Firebase      FirebaseConfig     `mapstructure:"firebase"`
	Email         EmailConfig        `mapstructure:"email"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Monitoring    MonitoringConfig   `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	HSTS              bool          `mapstructure:"hsts"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// AdminConfig holds the shared admin login. Blank values fall back to built-in defaults.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
}

// StoreConfig selects the RSVP persistence backend.
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"`
	Collection  string        `mapstructure:"collection"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
}

// DatabaseConfig describes connection options for the supported SQL databases.
type DatabaseConfig struct {
	Driver    string        `mapstructure:"driver"`
	Path      string        `mapstructure:"path"`
	DSN       string        `mapstructure:"dsn"`
	Postgres  DBAuthConfig  `mapstructure:"postgres"`
	MySQL     DBAuthConfig  `mapstructure:"mysql"`
	SlowQuery time.Duration `mapstructure:"slow_query"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// FirebaseConfig carries the service account used for Firestore.
type FirebaseConfig struct {
	ProjectID   string `mapstructure:"project_id"`
	ClientEmail string `mapstructure:"client_email"`
	PrivateKey  string `mapstructure:"private_key"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SendGridConfig routes outbound email through the SendGrid API instead of SMTP.
type SendGridConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	APIKey   string        `mapstructure:"api_key"`
	From     string        `mapstructure:"from"`
	FromName string        `mapstructure:"from_name"`
	Host     string        `mapstructure:"host"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NotificationConfig controls guest confirmations and the admin digest.
type NotificationConfig struct {
	Confirmation ConfirmationConfig `mapstructure:"confirmation"`
	Digest       DigestConfig       `mapstructure:"digest"`
}

// ConfirmationConfig toggles the email sent to guests after they respond.
type ConfirmationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	EventName string `mapstructure:"event_name"`
	ReplyTo   string `mapstructure:"reply_to"`
}

// DigestConfig schedules the stats summary mail and gauge refresh.
type DigestConfig struct {
	Recipients    []string `mapstructure:"recipients"`
	Schedule      string   `mapstructure:"schedule"`
	StatsSchedule string   `mapstructure:"stats_schedule"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig tunes health probes.
type HealthConfig struct {
	MaintenanceMaxAge time.Duration `mapstructure:"maintenance_max_age"`
}

// legacyEnv maps config keys to the unprefixed variable names deployments already use.
var legacyEnv = map[string]string{
	"server.port":            "PORT",
	"admin.username":         "ADMIN_USERNAME",
	"admin.password":         "ADMIN_PASSWORD",
	"firebase.project_id":    "FIREBASE_PROJECT_ID",
	"firebase.client_email":  "FIREBASE_CLIENT_EMAIL",
	"firebase.private_key":   "FIREBASE_PRIVATE_KEY",
	"email.sendgrid.api_key": "SENDGRID_API_KEY",
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Prefixed variables (WEDDING_ADMIN_USERNAME) win over the legacy names (ADMIN_USERNAME).
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("WEDDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver() {
	case StoreDriverSQL:
	case StoreDriverFirestore:
		if strings.TrimSpace(c.Firebase.ProjectID) == "" {
			return errors.New("config: firebase.project_id is required for the firestore store")
		}
	default:
		return fmt.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}

	if c.Email.SendGrid.Enabled && strings.TrimSpace(c.Email.SendGrid.APIKey) == "" {
		return errors.New("config: email.sendgrid.api_key is required when sendgrid is enabled")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.hsts", false)
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.token", "")

	v.SetDefault("store.driver", StoreDriverSQL)
	v.SetDefault("store.collection", "rsvps")
	v.SetDefault("store.ping_timeout", "2s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/wedding.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.slow_query", "200ms")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "wedding")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "wedding")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.client_email", "")
	v.SetDefault("firebase.private_key", "")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from", "")
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")
	v.SetDefault("email.sendgrid.enabled", false)
	v.SetDefault("email.sendgrid.api_key", "")
	v.SetDefault("email.sendgrid.from", "")
	v.SetDefault("email.sendgrid.from_name", "")
	v.SetDefault("email.sendgrid.host", "")
	v.SetDefault("email.sendgrid.timeout", "10s")

	v.SetDefault("notifications.confirmation.enabled", false)
	v.SetDefault("notifications.confirmation.event_name", "")
	v.SetDefault("notifications.confirmation.reply_to", "")
	v.SetDefault("notifications.digest.recipients", []string{})
	v.SetDefault("notifications.digest.schedule", "0 8 * * *")
	v.SetDefault("notifications.digest.stats_schedule", "@every 5m")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.maintenance_max_age", "26h")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
