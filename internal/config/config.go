package config

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// LayoutMode defines how tiled windows are arranged on a screen.
type LayoutMode string

const (
	LayoutModeAuto        LayoutMode = "auto"         // Dynamic grid based on count.
	LayoutModeVertical    LayoutMode = "vertical"     // Single column stack.
	LayoutModeHorizontal  LayoutMode = "horizontal"   // Single row side-by-side.
	LayoutModeMasterStack LayoutMode = "master-stack" // Master pane left, stack column right.
	LayoutModeMonocle     LayoutMode = "monocle"      // Every window fills the screen.
)

// Margins represents per-edge insets in pixels.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// Config is the effective daemon configuration.
type Config struct {
	// MouseAdjustLayout lets a finished mouse resize change the layout
	// instead of being reverted.
	MouseAdjustLayout bool `yaml:"mouse_adjust_layout"`

	Layout             LayoutMode `yaml:"layout"`
	MasterWidthPercent int        `yaml:"master_width_percent"` // 10-90
	GapSize            int        `yaml:"gap_size"`
	ScreenPadding      Margins    `yaml:"screen_padding"`

	// FloatClasses are WM_CLASS values that are managed but never tiled.
	FloatClasses []string `yaml:"float_classes,omitempty"`
	// IgnoreClasses are WM_CLASS values that are not managed at all.
	IgnoreClasses []string `yaml:"ignore_classes,omitempty"`

	PointerPollMS int    `yaml:"pointer_poll_ms"`
	LogLevel      string `yaml:"log_level"`
}

const (
	DefaultMasterWidthPercent = 55
	DefaultGapSize            = 8
	DefaultPointerPollMS      = 50

	MinMasterWidthPercent = 10
	MaxMasterWidthPercent = 90
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		MouseAdjustLayout:  true,
		Layout:             LayoutModeMasterStack,
		MasterWidthPercent: DefaultMasterWidthPercent,
		GapSize:            DefaultGapSize,
		FloatClasses:       []string{"Pinentry", "Yad", "Zenity"},
		PointerPollMS:      DefaultPointerPollMS,
		LogLevel:           "info",
	}
}

// ValidationError points at the offending key, and at its position in the
// file when it came from one.
type ValidationError struct {
	Path   string
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.File, e.Line, e.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Layout {
	case LayoutModeAuto, LayoutModeVertical, LayoutModeHorizontal, LayoutModeMasterStack, LayoutModeMonocle:
	default:
		return &ValidationError{Path: "layout", Err: fmt.Errorf("layout must be one of: auto, vertical, horizontal, master-stack, monocle")}
	}
	if c.MasterWidthPercent < MinMasterWidthPercent || c.MasterWidthPercent > MaxMasterWidthPercent {
		return &ValidationError{Path: "master_width_percent", Err: fmt.Errorf("master_width_percent must be between %d and %d", MinMasterWidthPercent, MaxMasterWidthPercent)}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	if c.PointerPollMS < 10 {
		return &ValidationError{Path: "pointer_poll_ms", Err: fmt.Errorf("pointer_poll_ms must be >= 10")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	for _, class := range c.FloatClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "float_classes", Err: fmt.Errorf("float_classes contains an empty class name")}
		}
	}
	for _, class := range c.IgnoreClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "ignore_classes", Err: fmt.Errorf("ignore_classes contains an empty class name")}
		}
	}
	return nil
}

// IsFloatClass reports whether windows of this class are kept floating.
func (c *Config) IsFloatClass(class string) bool {
	return containsFold(c.FloatClasses, class)
}

// IsIgnoredClass reports whether windows of this class are left alone.
func (c *Config) IsIgnoredClass(class string) bool {
	return containsFold(c.IgnoreClasses, class)
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel maps a config log level onto slog.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
