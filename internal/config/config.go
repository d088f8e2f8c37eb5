// Package config loads textcore settings from TOML and reloads them when
// the file changes.
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[bus]
//	delivery_timeout = "2s"
//	endpoint_capacity = 128
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textcore/internal/logging"
)

// Config is the full set of settings.
type Config struct {
	Log LogConfig `toml:"log"`
	Bus BusConfig `toml:"bus"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// BusConfig configures change notification.
type BusConfig struct {
	// DeliveryTimeout bounds a single delivery. Zero waits forever.
	DeliveryTimeout Duration `toml:"delivery_timeout"`

	// EndpointCapacity is the buffer size of channel endpoints created
	// for subscribers.
	EndpointCapacity int `toml:"endpoint_capacity"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// UnmarshalText parses strings such as "1.5s".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Bus: BusConfig{
			DeliveryTimeout:  Duration(5 * time.Second),
			EndpointCapacity: 64,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data on top of the defaults and validates the result.
// source names the data in errors.
func Parse(source string, data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return Config{}, pe
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

// Validate checks the settings for values no component can use.
func (c Config) Validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}
	if c.Bus.DeliveryTimeout < 0 {
		return fmt.Errorf("%w: bus.delivery_timeout must not be negative", ErrInvalidValue)
	}
	if c.Bus.EndpointCapacity < 0 {
		return fmt.Errorf("%w: bus.endpoint_capacity must not be negative", ErrInvalidValue)
	}
	return nil
}

// Encode renders the settings as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
