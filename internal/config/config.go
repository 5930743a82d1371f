// Package config loads ScoreScribble settings from a YAML file and lets
// command-line flags override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"ScoreScribble/internal/state"
	"ScoreScribble/internal/stroke"
	"ScoreScribble/internal/surface"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen       = "127.0.0.1:7878"
	DefaultInstance     = "ScoreScribble"
	DefaultPollInterval = 500 * time.Millisecond
	minPollInterval     = 50 * time.Millisecond
)

type Pen struct {
	Color string  `yaml:"color"`
	Width float64 `yaml:"width"`
}

type Eraser struct {
	Width float64 `yaml:"width"`
}

type Text struct {
	BaseFontSize float64 `yaml:"base_font_size"`
	FontSizeGain float64 `yaml:"font_size_gain"`
	LineHeight   float64 `yaml:"line_height"`
}

type Bridge struct {
	Listen    string `yaml:"listen"`
	Advertise bool   `yaml:"advertise"`
	Instance  string `yaml:"instance"`
}

// Config is the full settings file.
type Config struct {
	Pen          Pen           `yaml:"pen"`
	Eraser       Eraser        `yaml:"eraser"`
	Text         Text          `yaml:"text"`
	// PollInterval only applies to hosts that cannot report size changes;
	// the desktop window and the bridge both report them.
	PollInterval time.Duration `yaml:"poll_interval"`
	Bridge       Bridge        `yaml:"bridge"`
	Header       bool          `yaml:"header"`
}

// Default returns the built-in settings.
func Default() Config {
	ts := state.DefaultToolState()
	return Config{
		Pen:    Pen{Color: ts.PenColor.Hex(), Width: ts.PenWidth},
		Eraser: Eraser{Width: ts.EraserWidth},
		Text: Text{
			BaseFontSize: stroke.DefaultBaseFontSize,
			FontSizeGain: stroke.DefaultFontSizeGain,
			LineHeight:   surface.DefaultLineHeightFactor,
		},
		PollInterval: DefaultPollInterval,
		Bridge:       Bridge{Listen: DefaultListen, Instance: DefaultInstance},
		Header:       true,
	}
}

// Load reads path on top of the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate clamps widths and intervals into range and rejects values that
// cannot be repaired.
func (c *Config) Validate() error {
	if _, err := state.ParseRGB(c.Pen.Color); err != nil {
		return fmt.Errorf("pen color: %w", err)
	}
	c.Pen.Width = state.ClampWidth(c.Pen.Width)
	c.Eraser.Width = state.ClampWidth(c.Eraser.Width)
	if c.PollInterval < minPollInterval {
		c.PollInterval = minPollInterval
	}
	d := Default().Text
	if c.Text.BaseFontSize <= 0 {
		c.Text.BaseFontSize = d.BaseFontSize
	}
	if c.Text.FontSizeGain < 0 {
		c.Text.FontSizeGain = d.FontSizeGain
	}
	if c.Text.LineHeight <= 0 {
		c.Text.LineHeight = d.LineHeight
	}
	if c.Bridge.Instance == "" {
		c.Bridge.Instance = DefaultInstance
	}
	return nil
}

// ToolState returns the initial tool state the settings describe.
func (c Config) ToolState() state.ToolState {
	ts := state.DefaultToolState()
	if rgb, err := state.ParseRGB(c.Pen.Color); err == nil {
		ts.PenColor = rgb
	}
	ts.PenWidth = c.Pen.Width
	ts.EraserWidth = c.Eraser.Width
	return ts.Normalize()
}

// StrokeOptions returns the stroke engine options the settings describe.
func (c Config) StrokeOptions() []stroke.Option {
	return []stroke.Option{
		stroke.WithFontSize(c.Text.BaseFontSize, c.Text.FontSizeGain),
		stroke.WithLineHeight(c.Text.LineHeight),
	}
}

// RegisterFlags adds the flags that override file settings to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("pen-color", d.Pen.Color, "Pen color as #rrggbb")
	flags.Float64("pen-width", d.Pen.Width, "Pen width in logical pixels (1-100)")
	flags.Float64("eraser-width", d.Eraser.Width, "Eraser width in logical pixels (1-100)")
	flags.Duration("poll-interval", d.PollInterval, "Size polling interval for hosts without resize events (unused by the desktop window and the bridge)")
	flags.String("listen", d.Bridge.Listen, "Websocket bridge listen address")
	flags.Bool("advertise", d.Bridge.Advertise, "Advertise the bridge on the LAN via mDNS")
	flags.Bool("header", d.Header, "Show the toolbar header")
}

// ApplyFlags copies every flag set on the command line over c.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "pen-color":
			c.Pen.Color, err = flags.GetString(f.Name)
		case "pen-width":
			c.Pen.Width, err = flags.GetFloat64(f.Name)
		case "eraser-width":
			c.Eraser.Width, err = flags.GetFloat64(f.Name)
		case "poll-interval":
			c.PollInterval, err = flags.GetDuration(f.Name)
		case "listen":
			c.Bridge.Listen, err = flags.GetString(f.Name)
		case "advertise":
			c.Bridge.Advertise, err = flags.GetBool(f.Name)
		case "header":
			c.Header, err = flags.GetBool(f.Name)
		}
	})
	if err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	return nil
}
