package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dagaz/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Store     StoreConfig       `yaml:"store"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
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

// StoreConfig selects and locates the persistence backend.
//
// Backend is either "sqlite" (durable default) or "jsonfile" (the simple
// fallback store; its data file may be edited by external tools and is
// watched for changes).
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(store.BackendSQLite, store.BackendJSONFile)),
		validation.Field(&c.Path, validation.Required),
	)
}

// SchedulerConfig holds the reminder tick settings, in seconds. The tick
// only has to be short enough to catch the reminder window.
type SchedulerConfig struct {
	TickSeconds   int `yaml:"tick_seconds"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Validate validates the scheduler configuration.
func (c *SchedulerConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TickSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.WindowSeconds, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.WindowSeconds < c.TickSeconds {
		return fmt.Errorf("scheduler: window (%ds) must not be shorter than the tick (%ds)",
			c.WindowSeconds, c.TickSeconds)
	}
	return nil
}

// Interval returns the tick interval.
func (c *SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// Window returns the reminder window.
func (c *SchedulerConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
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
	// Normalise empty mode to "disabled" for backward compatibility.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Backend: store.BackendSQLite,
			Path:    "./dagaz.db",
		},
		Scheduler: SchedulerConfig{
			TickSeconds:   15,
			WindowSeconds: 60,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
