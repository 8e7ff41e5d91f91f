package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RollServer: RollServerConfig{
			GRPCHost:        "127.0.0.1",
			GRPCPort:        50061,
			ShutdownTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			DefaultSwing: 0.5,
			MaxGroups:    64,
			MaxCount:     1_000_000_000,
			MaxSides:     100_000,
			MaxTrials:    100_000,
			Workers:      4,
		},
		Content: ContentConfig{
			PresetsDir: "content/presets",
			ScriptsDir: "content/scripts",
		},
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestRollServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "127.0.0.1:50061", cfg.RollServer.Addr())
}

func TestEngineLimits(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, dice.Limits{MaxGroups: 64, MaxCount: 1_000_000_000, MaxSides: 100_000}, cfg.Engine.Limits())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: console
rollserver:
  grpc_host: 0.0.0.0
  grpc_port: 6000
  shutdown_timeout: 3s
engine:
  default_swing: 1
  max_trials: 500
content:
  scripts_dir: ""
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0:6000", cfg.RollServer.Addr())
	assert.Equal(t, 3*time.Second, cfg.RollServer.ShutdownTimeout)
	assert.Equal(t, 1.0, cfg.Engine.DefaultSwing)
	assert.Equal(t, 500, cfg.Engine.MaxTrials)
	// Unset keys keep their defaults.
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, "content/presets", cfg.Content.PresetsDir)
	assert.Equal(t, "", cfg.Content.ScriptsDir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SWINGDICE_ROLLSERVER_GRPC_PORT", "7000")
	t.Setenv("SWINGDICE_ENGINE_DEFAULT_SWING", "0.25")
	path := writeConfig(t, "logging:\n  level: info\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.RollServer.GRPCPort)
	assert.Equal(t, 0.25, cfg.Engine.DefaultSwing)
}

func TestLoad_RepoDevConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "dev.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 100_000, cfg.Content.InstructionLimit)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "engine:\n  default_swing: 2\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.default_swing")
}

func TestLoadFromViper_Defaults(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.RollServer.ShutdownTimeout)
	assert.Equal(t, 0.5, cfg.Engine.DefaultSwing)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateRollServer(t *testing.T) {
	cfg := validConfig()
	cfg.RollServer.GRPCHost = ""
	cfg.RollServer.ShutdownTimeout = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollserver.grpc_host")
	assert.Contains(t, err.Error(), "rollserver.shutdown_timeout")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Engine.Workers = 0
	cfg.Engine.MaxTrials = 0
	cfg.Content.InstructionLimit = -1
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.level", "engine.workers", "engine.max_trials", "content.instruction_limit"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateEngineNegativeLimits(t *testing.T) {
	for _, mutate := range []func(*EngineConfig){
		func(e *EngineConfig) { e.MaxGroups = -1 },
		func(e *EngineConfig) { e.MaxCount = -1 },
		func(e *EngineConfig) { e.MaxSides = -1 },
	} {
		cfg := validConfig()
		mutate(&cfg.Engine)
		assert.Error(t, cfg.Validate())
	}
}

func TestValidateEngineLimitsFitExactSums(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.MaxSides = 1_000_000
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.max_groups * max_count * max_sides")

	cfg.Engine.MaxSides = 0
	assert.NoError(t, cfg.Validate(), "an unlimited dimension is bounded per request instead")
}

func TestValidateEngineNaNSwing(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.DefaultSwing = math.NaN()
	assert.Error(t, cfg.Validate())
}

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.RollServer.GRPCPort = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.RollServer.GRPCPort = port
		if err := cfg.Validate(); err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyDefaultSwingRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		swing := rapid.Float64Range(0, 1).Draw(t, "swing")
		cfg := validConfig()
		cfg.Engine.DefaultSwing = swing
		if err := cfg.Validate(); err != nil {
			t.Fatalf("swing %v rejected: %v", swing, err)
		}
		cfg.Engine.DefaultSwing = swing + 1.0001
		if err := cfg.Validate(); err == nil {
			t.Fatalf("swing %v accepted", cfg.Engine.DefaultSwing)
		}
	})
}
