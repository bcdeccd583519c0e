// Package config loads bigtext settings from TOML or YAML files and the environment
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/tempfile"
)

// EnvPrefix prefixes every environment override, e.g. BIGTEXT_CHUNK_SIZE
const EnvPrefix = "BIGTEXT"

// Output naming schemes
const (
	NamingUnique  = "unique"  // <dir>/<name>.<id>.temp<n>
	NamingSibling = "sibling" // <source>.temp<n>, next to the source
)

// Format is a configuration file format
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Config holds the complete application configuration
type Config struct {
	ChunkSize       int          `toml:"chunk_size" yaml:"chunk_size"`
	Encoding        string       `toml:"encoding" yaml:"encoding"`
	Locale          string       `toml:"locale" yaml:"locale"`
	OutputDir       string       `toml:"output_dir" yaml:"output_dir"`
	OutputNaming    string       `toml:"output_naming" yaml:"output_naming"`
	DataDir         string       `toml:"data_dir" yaml:"data_dir"`
	Journal         bool         `toml:"journal" yaml:"journal"`
	LengthCacheSize int          `toml:"length_cache_size" yaml:"length_cache_size"`
	LogLevel        string       `toml:"log_level" yaml:"log_level"`
	Server          ServerConfig `toml:"server" yaml:"server"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ChunkSize:       chunking.DefaultChunkSize,
		Encoding:        chunking.DefaultEncoding,
		OutputNaming:    NamingUnique,
		Journal:         true,
		LengthCacheSize: 256,
		LogLevel:        "info",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3457,
		},
	}
}

// Load reads path over the defaults. The format follows the file extension:
// .yaml and .yml are YAML, anything else is TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := cfg.decode(content, detectFormat(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat determines the configuration format from the file extension
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func (c *Config) decode(content []byte, format Format) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, c); err != nil {
			return fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		if _, err := toml.Decode(string(content), c); err != nil {
			return fmt.Errorf("TOML parse error: %w", err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from BIGTEXT_* environment variables
func (c *Config) ApplyEnv() error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s_%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s_%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	num("CHUNK_SIZE", &c.ChunkSize)
	str("ENCODING", &c.Encoding)
	str("LOCALE", &c.Locale)
	str("OUTPUT_DIR", &c.OutputDir)
	str("OUTPUT_NAMING", &c.OutputNaming)
	str("DATA_DIR", &c.DataDir)
	flag("JOURNAL", &c.Journal)
	num("LENGTH_CACHE_SIZE", &c.LengthCacheSize)
	str("LOG_LEVEL", &c.LogLevel)
	str("HOST", &c.Server.Host)
	num("PORT", &c.Server.Port)

	return errors.Join(errs...)
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error

	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize))
	}
	if _, err := chunking.LookupEncoding(c.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("encoding: %w", err))
	}
	if _, err := c.Namer(); err != nil {
		errs = append(errs, err)
	}
	if c.LengthCacheSize < 0 {
		errs = append(errs, fmt.Errorf("length_cache_size must not be negative, got %d", c.LengthCacheSize))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Namer returns the output path scheme selected by OutputNaming
func (c *Config) Namer() (tempfile.Namer, error) {
	switch strings.ToLower(strings.TrimSpace(c.OutputNaming)) {
	case "", NamingUnique:
		return tempfile.UniqueIn(c.OutputDir), nil
	case NamingSibling:
		if c.OutputDir != "" {
			return nil, fmt.Errorf("output_naming %q writes next to the source and cannot be combined with output_dir", NamingSibling)
		}
		return tempfile.SiblingNamer(), nil
	default:
		return nil, fmt.Errorf("output_naming must be %q or %q, got %q", NamingUnique, NamingSibling, c.OutputNaming)
	}
}

// ResolveDataDir returns DataDir, defaulting to ~/.bigtext and expanding a leading ~
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir != "" && !strings.HasPrefix(dir, "~") {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if dir == "" {
		return filepath.Join(home, ".bigtext"), nil
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
}
