package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression"
)

const (
	DefaultPort          = "8080"
	DefaultEnvironment   = "development"
	DefaultMaxFileSize   = 50 * 1024 * 1024  // 50MB
	DefaultMaxOutputSize = 256 * 1024 * 1024 // 256MB
	DefaultLogLevel      = "info"

	MinLevel = -1
	MaxLevel = 9
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"

	validEnvironments = map[string]struct{}{
		"development": {},
		"production":  {},
		"test":        {},
	}
)

// Config holds the application configuration
type Config struct {
	Port        string `toml:"port"`
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	// MaxFileSize bounds uploads, in bytes.
	MaxFileSize int64 `toml:"max_file_size"`
	// MaxOutputSize bounds decompressed output, in bytes.
	MaxOutputSize int64  `toml:"max_output_size"`
	Algorithm     string `toml:"algorithm"`
	Level         int    `toml:"level"`
	Encoding      string `toml:"encoding"`
}

// Load builds the configuration from, in increasing precedence: defaults,
// the TOML file named by CONFIG_FILE, and environment variables (a .env file
// in the working directory is loaded into the environment first).
func Load() (*Config, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:          DefaultPort,
		Environment:   DefaultEnvironment,
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
		MaxOutputSize: DefaultMaxOutputSize,
		Algorithm:     compression.DefaultAlgorithm,
		Level:         compression.DefaultLevel,
		Encoding:      compression.EncodingNone,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readTOML(path, cfg); err != nil {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "error reading environment")
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "error validating config")
	}

	return cfg, nil
}

func readTOML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read '%s'", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "unable to parse '%s'", path)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("GO_ENV", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Algorithm = getEnv("DEFAULT_ALGORITHM", cfg.Algorithm)
	cfg.Encoding = getEnv("DEFAULT_ENCODING", cfg.Encoding)

	var err error
	if cfg.MaxFileSize, err = getEnvInt64("MAX_FILE_SIZE", cfg.MaxFileSize); err != nil {
		return err
	}
	if cfg.MaxOutputSize, err = getEnvInt64("MAX_OUTPUT_SIZE", cfg.MaxOutputSize); err != nil {
		return err
	}
	level, err := getEnvInt64("DEFAULT_LEVEL", int64(cfg.Level))
	if err != nil {
		return err
	}
	cfg.Level = int(level)
	return nil
}

// Validate checks that every field holds a usable value.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.Errorf("port '%s' must be a number between 1 and 65535", cfg.Port)
	}

	if _, ok := validEnvironments[cfg.Environment]; !ok {
		return errors.Errorf("unknown environment '%s'", cfg.Environment)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	if cfg.MaxFileSize <= 0 {
		return errors.Errorf("max file size must be positive (got %d)", cfg.MaxFileSize)
	}

	if cfg.MaxOutputSize <= 0 {
		return errors.Errorf("max output size must be positive (got %d)", cfg.MaxOutputSize)
	}

	if !compression.IsValidAlgorithm(cfg.Algorithm) {
		return errors.Errorf("unsupported algorithm '%s'", cfg.Algorithm)
	}

	if cfg.Level < MinLevel || cfg.Level > MaxLevel {
		return errors.Errorf("level must be between %d and %d (got %d)", MinLevel, MaxLevel, cfg.Level)
	}

	if !compression.IsValidEncoding(cfg.Encoding) {
		return errors.Errorf("unsupported encoding '%s'", cfg.Encoding)
	}

	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", key)
	}
	return n, nil
}
