package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/photon"
)

type Config struct {
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Font    FontConfig    `toml:"font" yaml:"font"`
	Demo    DemoConfig    `toml:"demo" yaml:"demo"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
}

type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Resizable bool   `toml:"resizable" yaml:"resizable"`
	TPS       int    `toml:"tps" yaml:"tps"`
}

type RenderConfig struct {
	Backend       string `toml:"backend" yaml:"backend"` // "auto", "wgpu", "ebiten" or "software"
	BatchCapacity int    `toml:"batch_capacity" yaml:"batch_capacity"`
	ClearColor    string `toml:"clear_color" yaml:"clear_color"` // "#rrggbb" or "#rrggbbaa"
}

type FontConfig struct {
	Path        string  `toml:"path" yaml:"path"` // empty uses the embedded Go font
	PixelHeight float64 `toml:"pixel_height" yaml:"pixel_height"`
	AtlasSize   int     `toml:"atlas_size" yaml:"atlas_size"`
}

type DemoConfig struct {
	Text    string         `toml:"text" yaml:"text"`
	X       float32        `toml:"x" yaml:"x"`
	Y       float32        `toml:"y" yaml:"y"`
	Size    float32        `toml:"size" yaml:"size"`
	Spacing float32        `toml:"spacing" yaml:"spacing"`
	Sprites []SpriteConfig `toml:"sprites" yaml:"sprites"`
}

// SpriteConfig places one textured sprite. An empty Texture draws a
// generated checkerboard.
type SpriteConfig struct {
	Texture string  `toml:"texture" yaml:"texture"`
	Layout  string  `toml:"layout" yaml:"layout"` // "rgba", "rgb" or "red"
	X       float32 `toml:"x" yaml:"x"`
	Y       float32 `toml:"y" yaml:"y"`
	Width   float32 `toml:"width" yaml:"width"`
	Height  float32 `toml:"height" yaml:"height"`
	Color   string  `toml:"color" yaml:"color"`
	Bounce  bool    `toml:"bounce" yaml:"bounce"`

	layout photon.PixelLayout
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type OutputConfig struct {
	PNG    string `toml:"png" yaml:"png"`       // headless snapshot path
	Frames int    `toml:"frames" yaml:"frames"` // frames rendered in headless mode
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, cfg.validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "photon",
			Width:     1280,
			Height:    720,
			Resizable: true,
			TPS:       60,
		},
		Render: RenderConfig{
			Backend:       "auto",
			BatchCapacity: photon.DefaultBatchCapacity,
			ClearColor:    "#1a1a2e",
		},
		Font: FontConfig{
			PixelHeight: 65,
			AtlasSize:   4096,
		},
		Demo: DemoConfig{
			Text:    "Hello, Photon!",
			X:       0,
			Y:       50,
			Size:    0.15,
			Spacing: 0.5,
			Sprites: []SpriteConfig{
				{X: 10, Y: 10, Width: 30, Height: 30, Color: "#ffffff"},
				{X: 120, Y: 60, Width: 25, Height: 25, Color: "#ff8040", Bounce: true},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			PNG:    "photon.png",
			Frames: 60,
		},
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.TPS <= 0 {
		errs = append(errs, fmt.Errorf("window.tps %d must be positive", c.Window.TPS))
	}
	if c.Render.BatchCapacity <= 0 {
		errs = append(errs, fmt.Errorf("render.batch_capacity %d must be positive", c.Render.BatchCapacity))
	}
	if _, err := photon.ParseHex(c.Render.ClearColor); err != nil {
		errs = append(errs, fmt.Errorf("render.clear_color: %w", err))
	}
	if c.Font.PixelHeight <= 0 || c.Font.AtlasSize <= 0 {
		errs = append(errs, errors.New("font.pixel_height and font.atlas_size must be positive"))
	}
	if c.Output.Frames < 1 {
		errs = append(errs, fmt.Errorf("output.frames %d must be at least 1", c.Output.Frames))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	for i := range c.Demo.Sprites {
		s := &c.Demo.Sprites[i]
		layout, err := photon.ParsePixelLayout(s.Layout)
		if err != nil {
			errs = append(errs, fmt.Errorf("demo.sprites[%d]: %w", i, err))
		}
		s.layout = layout
		if s.Width <= 0 || s.Height <= 0 {
			errs = append(errs, fmt.Errorf("demo.sprites[%d]: size must be positive", i))
		}
		if s.Color == "" {
			s.Color = "#ffffff"
		}
		if _, err := photon.ParseHex(s.Color); err != nil {
			errs = append(errs, fmt.Errorf("demo.sprites[%d].color: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
