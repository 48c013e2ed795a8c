// Package config holds the settings shared by the extract and api commands.
//
// Values are layered, lowest precedence first: defaults from New, the YAML
// file named by REPERTOIRE_CONFIG, REPERTOIRE_* environment variables, and
// finally command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Depth is the number of plies kept from each game.
	Depth int `koanf:"depth"`

	// Color is the default side to extract; empty means it must be given.
	Color string `koanf:"color"`

	// Format selects pgn or json output.
	Format string `koanf:"format"`

	// LineWidth wraps PGN movetext; negative disables wrapping.
	LineWidth int `koanf:"line_width"`

	// Opponent is the placeholder name for the other side.
	Opponent string `koanf:"opponent"`

	// Annotator fills the Annotator header.
	Annotator string `koanf:"annotator"`

	// Addr is the api listen address.
	Addr string `koanf:"addr"`

	// MaxUploadMB caps the size of a PGN upload to the api.
	MaxUploadMB int `koanf:"max_upload_mb"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Depth:       10,
		Format:      "pgn",
		LineWidth:   80,
		Opponent:    "Opponent",
		Annotator:   "Opening Repertoire Extractor",
		Addr:        ":8007",
		MaxUploadMB: 64,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidConfig, c.Depth)
	}
	switch strings.ToLower(c.Format) {
	case "pgn", "json":
	default:
		return fmt.Errorf("%w: format must be pgn or json, got %q", ErrInvalidConfig, c.Format)
	}
	switch strings.ToLower(c.Color) {
	case "", "white", "black", "w", "b":
	default:
		return fmt.Errorf("%w: color must be white or black, got %q", ErrInvalidConfig, c.Color)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("%w: max_upload_mb must be at least 1", ErrInvalidConfig)
	}
	return nil
}
