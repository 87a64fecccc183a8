package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/gantt/internal/chart"
	"github.com/starford/gantt/internal/generator"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Render    RenderConfig      `yaml:"render"`
	Auth      AuthConfig        `yaml:"auth"`
	Profiles  []ProfileConfig   `yaml:"profiles"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("profiles: at least one profile is required")
	}
	seen := make(map[string]struct{}, len(c.Profiles))
	for i := range c.Profiles {
		p := &c.Profiles[i]
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("profiles[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// ProfileSpecs converts the profile entries for generator.LoadProfiles.
func (c *Config) ProfileSpecs() []generator.ProfileSpec {
	specs := make([]generator.ProfileSpec, len(c.Profiles))
	for i, p := range c.Profiles {
		specs[i] = generator.ProfileSpec{Name: p.Name, Prefix: p.Prefix, Config: p.Config}
	}
	return specs
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

// WorkspaceConfig holds the directory that CSV, target and profile paths are relative to.
type WorkspaceConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CatalogConfig holds the SQLite render catalog location.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RenderConfig holds the drawing settings shared by every profile.
type RenderConfig struct {
	Format     string `yaml:"format"`
	Workers    int    `yaml:"workers"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FontFamily string `yaml:"font_family"`
	FontWeight string `yaml:"font_weight"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required, validation.In(chart.FormatSVG, chart.FormatPNG)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Width, validation.Required, validation.Min(100)),
		validation.Field(&c.Height, validation.Required, validation.Min(100)),
		validation.Field(&c.FontFamily, validation.Required),
		validation.Field(&c.FontWeight, validation.In("normal", "bold")),
	)
}

// Options returns the chart render options.
func (c *RenderConfig) Options() chart.RenderOptions {
	return chart.RenderOptions{
		FontFamily: c.FontFamily,
		FontWeight: c.FontWeight,
		Width:      c.Width,
		Height:     c.Height,
		Format:     c.Format,
	}.WithDefaults()
}

// ProfileConfig binds a chart configuration document to the exports whose
// base name starts with Prefix.
type ProfileConfig struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
	Config string `yaml:"config"`
}

// Validate validates the profile entry.
func (c *ProfileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Config, validation.Required),
	)
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

// NewDefaultConfig returns a new Config with sensible default values.
// The default profile renders every export under csv/ with config_0.json.
func NewDefaultConfig() *Config {
	opts := chart.DefaultRenderOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Workspace: WorkspaceConfig{
			Path: ".",
		},
		Catalog: CatalogConfig{
			Path: "./gantt.db",
		},
		Render: RenderConfig{
			Format:     opts.Format,
			Workers:    4,
			Width:      opts.Width,
			Height:     opts.Height,
			FontFamily: opts.FontFamily,
			FontWeight: opts.FontWeight,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Profiles: []ProfileConfig{
			{Name: "0", Config: "config_0.json"},
		},
	}
}
