package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Data        DataConfig        `yaml:"data"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Auth        AuthConfig        `yaml:"auth"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Attachments.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig points at the directory holding jobs, checklist and profile.
// With Watch set, edits made by other processes are picked up live.
type DataConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the attachment database location. An empty path
// runs without attachment storage.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether attachment storage is configured.
func (c *SQLiteConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// AttachmentsConfig bounds uploads and content leases.
type AttachmentsConfig struct {
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	OpenTTL        time.Duration `yaml:"open_ttl"`
	DownloadTTL    time.Duration `yaml:"download_ttl"`
}

// Validate validates the attachments configuration.
func (c *AttachmentsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.OpenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.DownloadTTL, validation.Required, validation.Min(time.Second)),
	)
}

// MetricsConfig toggles the Prometheus endpoint at /metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Path:  "./data",
			Watch: true,
		},
		SQLite: SQLiteConfig{
			Path: "./jobtrail.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Attachments: AttachmentsConfig{
			MaxUploadBytes: 50 << 20,
			OpenTTL:        60 * time.Second,
			DownloadTTL:    5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
