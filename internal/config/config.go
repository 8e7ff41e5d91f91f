// Package config provides Viper-based configuration loading for the roll server.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RollServerConfig holds the dice service gRPC settings.
type RollServerConfig struct {
	// GRPCHost is the bind address for the dice service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the dice service.
	GRPCPort int `mapstructure:"grpc_port"`
	// ShutdownTimeout bounds how long graceful shutdown may take.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (r RollServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.GRPCHost, r.GRPCPort)
}

// EngineConfig bounds what callers may ask of the roll engine.
type EngineConfig struct {
	// DefaultSwing applies when neither the request nor its preset sets one.
	DefaultSwing float64 `mapstructure:"default_swing"`
	// MaxGroups caps the number of groups per request; 0 = unlimited.
	MaxGroups int `mapstructure:"max_groups"`
	// MaxCount caps the dice count of a single group; 0 = unlimited.
	MaxCount int `mapstructure:"max_count"`
	// MaxSides caps the face count of a single group; 0 = unlimited.
	MaxSides int `mapstructure:"max_sides"`
	// MaxTrials caps the trials of one Simulate request.
	MaxTrials int `mapstructure:"max_trials"`
	// Workers is the simulator's goroutine count.
	Workers int `mapstructure:"workers"`
}

// Limits returns the request limits for dice.Validate.
func (e EngineConfig) Limits() dice.Limits {
	return dice.Limits{MaxGroups: e.MaxGroups, MaxCount: e.MaxCount, MaxSides: e.MaxSides}
}

// ContentConfig locates preset and script content on disk.
type ContentConfig struct {
	// PresetsDir holds *.yaml presets; empty = built-in presets only.
	PresetsDir string `mapstructure:"presets_dir"`
	// ScriptsDir holds *.lua effect scripts; empty = built-in effects only.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// InstructionLimit is the Lua opcode budget per hook call; 0 = default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	RollServer RollServerConfig `mapstructure:"rollserver"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRollServer(c.RollServer); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateRollServer(r RollServerConfig) error {
	var errs []string
	if r.GRPCHost == "" {
		errs = append(errs, "rollserver.grpc_host must not be empty")
	}
	if r.GRPCPort < 1 || r.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("rollserver.grpc_port must be 1-65535, got %d", r.GRPCPort))
	}
	if r.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("rollserver.shutdown_timeout must be positive, got %s", r.ShutdownTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if math.IsNaN(e.DefaultSwing) || e.DefaultSwing < 0 || e.DefaultSwing > 1 {
		errs = append(errs, fmt.Sprintf("engine.default_swing must be in [0, 1], got %v", e.DefaultSwing))
	}
	if e.MaxGroups < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_groups must be >= 0, got %d", e.MaxGroups))
	}
	if e.MaxCount < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_count must be >= 0, got %d", e.MaxCount))
	}
	if e.MaxSides < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_sides must be >= 0, got %d", e.MaxSides))
	}
	if e.MaxGroups > 0 && e.MaxCount > 0 && e.MaxSides > 0 &&
		float64(e.MaxGroups)*float64(e.MaxCount)*float64(e.MaxSides) > dice.MaxExactSum {
		errs = append(errs, fmt.Sprintf("engine.max_groups * max_count * max_sides must not exceed %d, got %d * %d * %d",
			int64(dice.MaxExactSum), e.MaxGroups, e.MaxCount, e.MaxSides))
	}
	if e.MaxTrials < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_trials must be >= 1, got %d", e.MaxTrials))
	}
	if e.Workers < 1 {
		errs = append(errs, fmt.Sprintf("engine.workers must be >= 1, got %d", e.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.InstructionLimit < 0 {
		return fmt.Errorf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SWINGDICE_ prefix
	v.SetEnvPrefix("SWINGDICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default settings.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rollserver.grpc_host", "127.0.0.1")
	v.SetDefault("rollserver.grpc_port", 50061)
	v.SetDefault("rollserver.shutdown_timeout", "10s")

	v.SetDefault("engine.default_swing", 0.5)
	v.SetDefault("engine.max_groups", 64)
	v.SetDefault("engine.max_count", 1_000_000_000)
	v.SetDefault("engine.max_sides", 100_000)
	v.SetDefault("engine.max_trials", 100_000)
	v.SetDefault("engine.workers", 4)

	v.SetDefault("content.presets_dir", "content/presets")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.instruction_limit", 0)
}
