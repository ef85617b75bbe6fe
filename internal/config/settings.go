package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the read-only tool configuration passed into every authoring entry point.
type Settings struct {
	UseDragRadius     bool    `mapstructure:"use_drag_radius"`     // UseDragRadius commits the dragged radius instead of DefaultRadius.
	DefaultRadius     float64 `mapstructure:"default_radius"`      // DefaultRadius in meters for sectors.
	DefaultBeamwidth  float64 `mapstructure:"default_beamwidth"`   // DefaultBeamwidth in degrees for committed sectors.
	DefaultSiteRadius float64 `mapstructure:"default_site_radius"` // DefaultSiteRadius in meters for site sectors.
	DefaultLineColor  string  `mapstructure:"default_line_color"`  // DefaultLineColor is the stroke colour.
	DefaultLineWidth  int     `mapstructure:"default_line_width"`  // DefaultLineWidth is the stroke width in pixels.
	DefaultTextColor  string  `mapstructure:"default_text_color"`  // DefaultTextColor is the label colour.
}

// Limits accepted by the settings dialog of the authoring tools.
const (
	MinRadius    = 10
	MaxRadius    = 10000
	MinBeamwidth = 10
	MaxBeamwidth = 180
	MinLineWidth = 1
	MaxLineWidth = 10
)

// ErrInvalidSettings is returned by Validate.
var ErrInvalidSettings = errors.New("invalid tool settings")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// DefaultSettings returns the factory defaults.
func DefaultSettings() Settings {
	return Settings{
		UseDragRadius:     true,
		DefaultRadius:     100,
		DefaultBeamwidth:  30,
		DefaultSiteRadius: 100,
		DefaultLineColor:  "#FFFF00",
		DefaultLineWidth:  2,
		DefaultTextColor:  "#000000",
	}
}

// LoadSettings reads tool settings from a YAML file (optional, empty path
// skips it) and SHOOTER_SETTINGS_* environment overrides.
func LoadSettings(path string) (Settings, error) {
	vpr := viper.New()
	def := DefaultSettings()
	vpr.SetDefault("use_drag_radius", def.UseDragRadius)
	vpr.SetDefault("default_radius", def.DefaultRadius)
	vpr.SetDefault("default_beamwidth", def.DefaultBeamwidth)
	vpr.SetDefault("default_site_radius", def.DefaultSiteRadius)
	vpr.SetDefault("default_line_color", def.DefaultLineColor)
	vpr.SetDefault("default_line_width", def.DefaultLineWidth)
	vpr.SetDefault("default_text_color", def.DefaultTextColor)

	vpr.SetEnvPrefix("SHOOTER_SETTINGS")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	if path != "" {
		vpr.SetConfigFile(path)
		if err := vpr.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var settings Settings
	if err := vpr.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// Validate checks the settings against the ranges offered to the operator.
func (s Settings) Validate() error {
	switch {
	case s.DefaultRadius < MinRadius || s.DefaultRadius > MaxRadius:
		return fmt.Errorf("%w: default_radius %v outside [%d, %d]", ErrInvalidSettings, s.DefaultRadius, MinRadius, MaxRadius)
	case s.DefaultSiteRadius < MinRadius || s.DefaultSiteRadius > MaxRadius:
		return fmt.Errorf("%w: default_site_radius %v outside [%d, %d]",
			ErrInvalidSettings, s.DefaultSiteRadius, MinRadius, MaxRadius)
	case s.DefaultBeamwidth < MinBeamwidth || s.DefaultBeamwidth > MaxBeamwidth:
		return fmt.Errorf("%w: default_beamwidth %v outside [%d, %d]",
			ErrInvalidSettings, s.DefaultBeamwidth, MinBeamwidth, MaxBeamwidth)
	case s.DefaultLineWidth < MinLineWidth || s.DefaultLineWidth > MaxLineWidth:
		return fmt.Errorf("%w: default_line_width %d outside [%d, %d]",
			ErrInvalidSettings, s.DefaultLineWidth, MinLineWidth, MaxLineWidth)
	case !colorPattern.MatchString(s.DefaultLineColor):
		return fmt.Errorf("%w: default_line_color %q", ErrInvalidSettings, s.DefaultLineColor)
	case !colorPattern.MatchString(s.DefaultTextColor):
		return fmt.Errorf("%w: default_text_color %q", ErrInvalidSettings, s.DefaultTextColor)
	}

	return nil
}
