// Package config loads winstream CLI settings.
//
// Configuration comes from a single optional YAML file named by the
// --config flag or, failing that, the WINSTREAM_CONFIG environment
// variable. Without either, Default is used. Command-line flags override
// whatever the file sets.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/winstream/core/binio"
	"github.com/FocuswithJustin/winstream/core/encoding"
	apperrors "github.com/FocuswithJustin/winstream/core/errors"
	"github.com/FocuswithJustin/winstream/internal/logging"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "WINSTREAM_CONFIG"

// Config is the CLI configuration.
type Config struct {
	// Endianness is the default byte order: "little" or "big".
	Endianness string `yaml:"endianness"`

	// Encoding is the default text encoding, by WHATWG name.
	Encoding string `yaml:"encoding"`

	// ChunkSize is the read size used when streaming window contents.
	ChunkSize int `yaml:"chunk_size"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endianness: "little",
		Encoding:   "utf-8",
		ChunkSize:  32 * 1024,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the file at path, or at $WINSTREAM_CONFIG when path is empty.
// With neither set it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the YAML file at path. Keys it omits keep
// their default values; unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if apperrors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFound("config file", path)
		}
		return nil, apperrors.NewIO("read", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !apperrors.Is(err, io.EOF) {
		var typeErr *yaml.TypeError
		if apperrors.As(err, &typeErr) {
			return nil, apperrors.NewParse("config", path, strings.Join(typeErr.Errors, "; "))
		}
		return nil, apperrors.NewParse("config", path, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate checks that every setting names something known.
func (c *Config) Validate() error {
	if _, err := binio.ParseEndianness(c.Endianness); err != nil {
		return err
	}
	if _, err := encoding.Lookup(c.Encoding); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return apperrors.NewValidation("chunk_size", "must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return apperrors.NewValidation("log.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return apperrors.NewValidation("log.format", err.Error())
	}
	return nil
}

// ByteOrder returns the configured endianness.
func (c *Config) ByteOrder() binio.Endianness {
	order, _ := binio.ParseEndianness(c.Endianness)
	return order
}

// TextEncoding returns the configured encoding, or UTF-8 if it does not
// resolve.
func (c *Config) TextEncoding() encoding.Encoding {
	enc, err := encoding.Lookup(c.Encoding)
	if err != nil {
		return encoding.UTF8
	}
	return enc
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
