// Package config loads the settings of the notation-mapper tools: defaults, then an optional YAML
// file, then NOTATION_* environment variables. Command line flags are applied by the caller.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"notation-mapper/internal/log"
	"notation-mapper/value"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NOTATION_"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete tool configuration.
type Config struct {
	Log      log.Config     `yaml:"log"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Password PasswordConfig `yaml:"password"`
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
}

// PipelineConfig tunes schema builds.
type PipelineConfig struct {
	// Parallelism is the number of entities built at once.
	Parallelism int `yaml:"parallelism"`
	// Strict turns warnings into a failed build.
	Strict bool `yaml:"strict"`
	// Manifest is an optional YAML marker manifest.
	Manifest string `yaml:"manifest"`
}

// PasswordConfig configures the password algorithm registry.
type PasswordConfig struct {
	Default    string `yaml:"default"`
	Iterations int    `yaml:"pbkdf2_iterations"`
	Size       int    `yaml:"pbkdf2_size"`
	// Salt is base64; empty keeps the built-in salt.
	Salt string `yaml:"pbkdf2_salt"`
}

// DatabaseConfig is the target of `apply`.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// OutputConfig selects where and how generated artifacts are written.
type OutputConfig struct {
	Format string `yaml:"format"`
	// Dir receives generated files; empty writes them next to the package sources.
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: log.DefaultConfig(),
		Pipeline: PipelineConfig{
			Parallelism: 1,
		},
		Password: PasswordConfig{
			Default:    "sha256",
			Iterations: value.DefaultPBKDF2Iterations,
			Size:       value.DefaultPBKDF2Size,
		},
		Database: DatabaseConfig{
			Schema:          "public",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A missing path is not an
// error when it is empty.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	cfg.Log.Level = log.Level(env.str("LOG_LEVEL", string(cfg.Log.Level)))
	cfg.Log.Format = log.Format(env.str("LOG_FORMAT", string(cfg.Log.Format)))
	cfg.Log.Output = env.str("LOG_OUTPUT", cfg.Log.Output)

	cfg.Pipeline.Parallelism = env.int("PARALLELISM", cfg.Pipeline.Parallelism)
	cfg.Pipeline.Strict = env.bool("STRICT", cfg.Pipeline.Strict)
	cfg.Pipeline.Manifest = env.str("MANIFEST", cfg.Pipeline.Manifest)

	cfg.Password.Default = env.str("PASSWORD_DEFAULT", cfg.Password.Default)
	cfg.Password.Iterations = env.int("PBKDF2_ITERATIONS", cfg.Password.Iterations)
	cfg.Password.Size = env.int("PBKDF2_SIZE", cfg.Password.Size)
	cfg.Password.Salt = env.str("PBKDF2_SALT", cfg.Password.Salt)

	cfg.Database.DSN = env.str("DB_DSN", cfg.Database.DSN)
	cfg.Database.Schema = env.str("DB_SCHEMA", cfg.Database.Schema)
	cfg.Database.MaxOpenConns = env.int("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = env.int("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = env.duration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.Output.Format = env.str("OUTPUT_FORMAT", cfg.Output.Format)
	cfg.Output.Dir = env.str("OUTPUT_DIR", cfg.Output.Dir)

	return env.err
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func (r *envReader) str(key, fallback string) string {
	if v, ok := r.get(key); ok {
		return v
	}

	return fallback
}

func (r *envReader) int(key string, fallback int) int {
	v, ok := r.get(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalid, EnvPrefix, key, v))
		return fallback
	}

	return n
}

func (r *envReader) bool(key string, fallback bool) bool {
	v, ok := r.get(key)
	if !ok {
		return fallback
	}

	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		r.err = multierr.Append(r.err, fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, EnvPrefix, key, v))
		return fallback
	}
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := r.get(key)
	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%w: %s%s=%q is not a duration", ErrInvalid, EnvPrefix, key, v))
		return fallback
	}

	return d
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs error

	if _, err := log.ParseLevel(string(c.Log.Level)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: log.level: %w", ErrInvalid, err))
	}

	switch c.Log.Format {
	case log.FormatJSON, log.FormatConsole:
	default:
		errs = multierr.Append(errs, fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format))
	}

	if c.Pipeline.Parallelism < 1 {
		errs = multierr.Append(errs, fmt.Errorf("%w: pipeline.parallelism must be at least 1", ErrInvalid))
	}

	if c.Password.Iterations < 1 {
		errs = multierr.Append(errs, fmt.Errorf("%w: password.pbkdf2_iterations must be positive", ErrInvalid))
	}

	if c.Password.Size < 16 {
		errs = multierr.Append(errs, fmt.Errorf("%w: password.pbkdf2_size must be at least 16", ErrInvalid))
	}

	if c.Password.Salt != "" {
		if _, err := base64.StdEncoding.DecodeString(c.Password.Salt); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: password.pbkdf2_salt is not base64", ErrInvalid))
		}
	}

	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: database connection limits must not be negative", ErrInvalid))
	}

	switch c.Output.Format {
	case "yaml", "json":
	default:
		errs = multierr.Append(errs, fmt.Errorf("%w: output.format %q", ErrInvalid, c.Output.Format))
	}

	return errs
}

// ApplyPassword installs the configured pbkdf2 parameters and default algorithm into reg.
func (c Config) ApplyPassword(reg *value.AlgorithmRegistry) error {
	salt := []byte(value.DefaultPBKDF2Salt)
	if c.Password.Salt != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.Password.Salt)
		if err != nil {
			return fmt.Errorf("%w: password.pbkdf2_salt: %w", ErrInvalid, err)
		}

		salt = decoded
	}

	alg, err := value.NewPBKDF2(salt, c.Password.Size, c.Password.Iterations)
	if err != nil {
		return err
	}

	reg.Replace(alg)

	return reg.SetDefault(c.Password.Default)
}
