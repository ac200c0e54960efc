package internal

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mauropereiira/Moldavite-sub001/internal/lifecycle"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Editor EditorConfig      `yaml:"editor"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Editor.Validate()
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

// VaultConfig holds the vault directory and how long trashed notes are kept.
type VaultConfig struct {
	Path      string `yaml:"path"`
	TrashDays int    `yaml:"trash_days"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.TrashDays, validation.Min(1), validation.Max(365)),
	)
}

// EditorConfig holds the editing session settings.
//
// AutoLockMinutes 0 disables the idle lock of unlocked notes. An empty
// template id makes new daily or weekly notes start out empty.
type EditorConfig struct {
	AutoSaveDelay   time.Duration `yaml:"auto_save_delay"`
	AutoLockMinutes int           `yaml:"auto_lock_minutes"`
	ActivityEvents  []string      `yaml:"activity_events"`
	MaxPinnedTabs   int           `yaml:"max_pinned_tabs"`
	DailyTemplate   string        `yaml:"daily_template"`
	WeeklyTemplate  string        `yaml:"weekly_template"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AutoSaveDelay, validation.Required, validation.Min(100*time.Millisecond), validation.Max(time.Minute)),
		validation.Field(&c.AutoLockMinutes, validation.Min(0), validation.Max(24*60)),
		validation.Field(&c.ActivityEvents, validation.Required),
		validation.Field(&c.MaxPinnedTabs, validation.Required, validation.Min(1), validation.Max(50)),
	)
}

// LifecycleOptions maps the section onto editing-session options.
func (c *EditorConfig) LifecycleOptions() []lifecycle.Option {
	return []lifecycle.Option{
		lifecycle.WithAutoSaveDelay(c.AutoSaveDelay),
		lifecycle.WithAutoLock(c.AutoLockMinutes, c.ActivityEvents),
		lifecycle.WithMaxPinned(c.MaxPinnedTabs),
		lifecycle.WithTemplates(c.DailyTemplate, c.WeeklyTemplate),
	}
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
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
		Vault: VaultConfig{
			Path:      "./vault",
			TrashDays: 7,
		},
		SQLite: SQLiteConfig{
			Path: "./moldavite.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Editor: EditorConfig{
			AutoSaveDelay:  lifecycle.DefaultAutoSaveDelay,
			ActivityEvents: slices.Clone(lifecycle.DefaultActivityEvents),
			MaxPinnedTabs:  lifecycle.DefaultMaxPinned,
		},
	}
}
