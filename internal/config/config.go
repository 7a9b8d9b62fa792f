// Package config loads the board settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"

	"MandalaBoard/internal/mandala"

	"github.com/BurntSushi/toml"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the board settings. Field names double as TOML keys.
type Config struct {
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	Margin    float64 `toml:"margin"`
	Sectors   int     `toml:"sectors"`
	LineWidth float64 `toml:"line_width"`
	Ink       string  `toml:"ink"`

	// FillLimit caps the pixels a single region fill may paint. Zero
	// means the canvas area, i.e. no truncation.
	FillLimit int `toml:"fill_limit"`

	Port int `toml:"port"`

	Palettes [][]string `toml:"palettes"`
}

// Default returns the built-in settings: an 800x800 canvas split into 16
// sectors.
func Default() Config {
	c := Config{
		Width:     800,
		Height:    800,
		Margin:    40,
		Sectors:   16,
		LineWidth: mandala.DefaultLineWidth,
		Ink:       mandala.DefaultInk.Hex(),
		Port:      8888,
	}
	for _, p := range mandala.DefaultPalettes {
		codes := make([]string, len(p))
		for i, col := range p {
			codes[i] = col.Hex()
		}
		c.Palettes = append(c.Palettes, codes)
	}
	return c
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the settings against what the engine accepts.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if _, err := c.Geometry(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.LineWidth <= 0 {
		return fmt.Errorf("%w: line_width %g", ErrInvalid, c.LineWidth)
	}
	if _, err := mandala.ParseHex(c.Ink); err != nil {
		return fmt.Errorf("%w: ink: %w", ErrInvalid, err)
	}
	if c.FillLimit < 0 {
		return fmt.Errorf("%w: fill_limit %d", ErrInvalid, c.FillLimit)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	_, err := c.ParsePalettes()
	return err
}

// Geometry derives the disk layout from the canvas size.
func (c Config) Geometry() (mandala.Geometry, error) {
	return mandala.GeometryForCanvas(c.Width, c.Height, c.Margin, c.Sectors)
}

// InkColor returns the parsed stroke colour.
func (c Config) InkColor() mandala.Color {
	ink, err := mandala.ParseHex(c.Ink)
	if err != nil {
		return mandala.DefaultInk
	}
	return ink
}

// ParsePalettes converts the hex palettes. White is rejected: a white
// fill colour leaves the region white.
func (c Config) ParsePalettes() ([]mandala.Palette, error) {
	if len(c.Palettes) == 0 {
		return nil, fmt.Errorf("%w: no palettes", ErrInvalid)
	}
	out := make([]mandala.Palette, 0, len(c.Palettes))
	for i, codes := range c.Palettes {
		if len(codes) == 0 {
			return nil, fmt.Errorf("%w: palette %d is empty", ErrInvalid, i)
		}
		p := make(mandala.Palette, len(codes))
		for j, s := range codes {
			col, err := mandala.ParseHex(s)
			if err != nil {
				return nil, fmt.Errorf("%w: palette %d: %w", ErrInvalid, i, err)
			}
			if col.IsWhite() {
				return nil, fmt.Errorf("%w: palette %d contains white", ErrInvalid, i)
			}
			p[j] = col
		}
		out = append(out, p)
	}
	return out, nil
}
