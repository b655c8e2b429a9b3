// Package config provides unified configuration loading for the substrate
// process. It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all substrate configuration settings: the capacity,
// timing, and logging surface the process needs at startup.
type Config struct {
	// Graph contains capacity limits for the node/edge arenas and external
	// collaborator registries.
	Graph GraphConfig `json:"graph" yaml:"graph"`

	// Tick contains pacing and persistence scheduling settings.
	Tick TickConfig `json:"tick" yaml:"tick"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Persistence contains settings for the snapshot files and the
	// optional SQLite decision event log.
	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`
}

// GraphConfig configures hard capacities for the graph store and the
// external collaborator registries.
type GraphConfig struct {
	// NodeCap is the maximum number of live nodes. Must be > 0.
	NodeCap int `json:"node_cap" yaml:"node_cap"`

	// EdgeCap is the maximum number of live edges. Must be > 0.
	EdgeCap int `json:"edge_cap" yaml:"edge_cap"`

	// DetectorCap is the maximum number of sensory detectors.
	DetectorCap int `json:"detector_cap" yaml:"detector_cap"`

	// MacroCap is the maximum number of registered macros.
	MacroCap int `json:"macro_cap" yaml:"macro_cap"`
}

// TickConfig configures the tick driver's pacing and persistence schedule.
type TickConfig struct {
	// PeriodMillis is the target wall-clock duration of one tick, in
	// milliseconds. 0 disables pacing (runs as fast as possible).
	PeriodMillis int `json:"period_millis" yaml:"period_millis"`

	// SnapshotPeriod is the number of ticks between persistence snapshots.
	SnapshotPeriod int `json:"snapshot_period" yaml:"snapshot_period"`

	// StatsPeriod is the number of ticks between summary statistics lines.
	StatsPeriod int `json:"stats_period" yaml:"stats_period"`

	// HomeostatPeriod is the number of ticks between homeostatic controller
	// passes.
	HomeostatPeriod int `json:"homeostat_period" yaml:"homeostat_period"`
}

// LoggingConfig configures the substrate's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" and "trace" enable decision logging to
	// <DataDir>/decisions.jsonl; no per-edge updates are logged at either.
	Level string `json:"level" yaml:"level"`
}

// PersistenceConfig configures where snapshot and event-log files live.
type PersistenceConfig struct {
	// DataDir is the directory holding nodes.bin, edges.bin, decisions.jsonl,
	// and the optional SQLite event log.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// EventLog enables the optional append-only SQLite log of growth/prune/
	// controller decisions (internal/persistence/sqlitelog). Independent of
	// the JSONL DecisionLogger, which is gated purely by Logging.Level.
	EventLog bool `json:"event_log" yaml:"event_log"`
}

// Default returns a Config with reasonable out-of-the-box defaults.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			NodeCap:     8192,
			EdgeCap:     65536,
			DetectorCap: 128,
			MacroCap:    512,
		},
		Tick: TickConfig{
			PeriodMillis:    50,
			SnapshotPeriod:  2000,
			StatsPeriod:     100,
			HomeostatPeriod: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Persistence: PersistenceConfig{
			DataDir:  ".substrate",
			EventLog: false,
		},
	}
}

// Load loads configuration from the default location and environment
// variables. Order: defaults -> <dataDir>/config.yaml -> environment
// variables. dataDir is resolved from SUBSTRATE_DATA_DIR, or the default's
// DataDir if unset.
func Load() (*Config, error) {
	cfg := Default()

	dataDir := cfg.Persistence.DataDir
	if v := os.Getenv("SUBSTRATE_DATA_DIR"); v != "" {
		dataDir = v
	}

	configPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fileCfg, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		cfg = fileCfg
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file, starting from
// defaults so unset fields keep their default value.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a startable process.
// A non-nil error here is a fatal initialization error and must cause
// the caller to exit nonzero before the tick loop starts.
func (c *Config) Validate() error {
	if c.Graph.NodeCap <= 0 {
		return fmt.Errorf("graph.node_cap must be > 0, got %d", c.Graph.NodeCap)
	}
	if c.Graph.EdgeCap <= 0 {
		return fmt.Errorf("graph.edge_cap must be > 0, got %d", c.Graph.EdgeCap)
	}
	if c.Graph.DetectorCap <= 0 {
		return fmt.Errorf("graph.detector_cap must be > 0, got %d", c.Graph.DetectorCap)
	}
	if c.Graph.MacroCap <= 0 {
		return fmt.Errorf("graph.macro_cap must be > 0, got %d", c.Graph.MacroCap)
	}
	if c.Tick.PeriodMillis < 0 {
		return fmt.Errorf("tick.period_millis must be >= 0, got %d", c.Tick.PeriodMillis)
	}
	if c.Tick.SnapshotPeriod <= 0 {
		return fmt.Errorf("tick.snapshot_period must be > 0, got %d", c.Tick.SnapshotPeriod)
	}
	if c.Tick.StatsPeriod <= 0 {
		return fmt.Errorf("tick.stats_period must be > 0, got %d", c.Tick.StatsPeriod)
	}
	if c.Tick.HomeostatPeriod <= 0 {
		return fmt.Errorf("tick.homeostat_period must be > 0, got %d", c.Tick.HomeostatPeriod)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Persistence.DataDir == "" {
		return fmt.Errorf("persistence.data_dir must not be empty")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUBSTRATE_NODE_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.NodeCap = n
		}
	}
	if v := os.Getenv("SUBSTRATE_EDGE_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.EdgeCap = n
		}
	}
	if v := os.Getenv("SUBSTRATE_DETECTOR_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.DetectorCap = n
		}
	}
	if v := os.Getenv("SUBSTRATE_MACRO_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.MacroCap = n
		}
	}
	if v := os.Getenv("SUBSTRATE_TICK_PERIOD_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tick.PeriodMillis = n
		}
	}
	if v := os.Getenv("SUBSTRATE_SNAPSHOT_PERIOD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tick.SnapshotPeriod = n
		}
	}
	if v := os.Getenv("SUBSTRATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SUBSTRATE_DATA_DIR"); v != "" {
		cfg.Persistence.DataDir = v
	}
	if v := os.Getenv("SUBSTRATE_EVENT_LOG"); v != "" {
		cfg.Persistence.EventLog = v == "true" || v == "1"
	}
}
