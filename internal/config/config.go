package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim       SimConfig       `toml:"sim"`
	World     WorldConfig     `toml:"world"`
	Planter   PlanterConfig   `toml:"planter"`
	Data      DataConfig      `toml:"data"`
	Scripting ScriptingConfig `toml:"scripting"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type SimConfig struct {
	Seed       uint64        `toml:"seed"`        // 0 = derived from start time
	FrameDelta float64       `toml:"frame_delta"` // simulated units per step
	MaxSteps   int           `toml:"max_steps"`   // 0 = run until interrupted
	Pace       time.Duration `toml:"pace"`        // wall time per step, 0 = as fast as possible
	StartTime  int64         // set at boot, not from config
}

// WorldConfig bounds the grid. Min is inclusive, Max exclusive.
type WorldConfig struct {
	MinX int32 `toml:"min_x"`
	MinY int32 `toml:"min_y"`
	MaxX int32 `toml:"max_x"`
	MaxY int32 `toml:"max_y"`
}

type PlanterConfig struct {
	Delay    float64 `toml:"delay"`    // simulated units between request and commit
	Interval int     `toml:"interval"` // steps between automatic requests, 0 = off
}

type DataConfig struct {
	SpawnList string `toml:"spawn_list"` // empty = built-in list
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty = built-in scripts
}

type TelemetryConfig struct {
	OutputDir string `toml:"output_dir"` // empty = off
	Window    int    `toml:"window"`     // steps per CSV row
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty = journal off
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushEvery      int           `toml:"flush_every"` // steps between journal flushes
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Sim.StartTime = time.Now().Unix()
	if cfg.Sim.Seed == 0 {
		cfg.Sim.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sim.FrameDelta < 0 {
		return fmt.Errorf("sim.frame_delta must not be negative, got %v", c.Sim.FrameDelta)
	}
	if c.Sim.MaxSteps < 0 {
		return fmt.Errorf("sim.max_steps must not be negative, got %d", c.Sim.MaxSteps)
	}
	if c.World.MaxX <= c.World.MinX || c.World.MaxY <= c.World.MinY {
		return fmt.Errorf("world bounds are empty: [%d,%d)x[%d,%d)",
			c.World.MinX, c.World.MaxX, c.World.MinY, c.World.MaxY)
	}
	if c.Planter.Delay < 0 {
		return fmt.Errorf("planter.delay must not be negative, got %v", c.Planter.Delay)
	}
	if c.Planter.Interval < 0 {
		return fmt.Errorf("planter.interval must not be negative, got %d", c.Planter.Interval)
	}
	if c.Telemetry.Window < 1 {
		return fmt.Errorf("telemetry.window must be at least 1, got %d", c.Telemetry.Window)
	}
	if c.Database.FlushEvery < 1 {
		return fmt.Errorf("database.flush_every must be at least 1, got %d", c.Database.FlushEvery)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			FrameDelta: 16,
		},
		World: WorldConfig{
			MinX: -100,
			MinY: -100,
			MaxX: 100,
			MaxY: 100,
		},
		Planter: PlanterConfig{
			Delay:    1000,
			Interval: 250,
		},
		Telemetry: TelemetryConfig{
			Window: 60,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			FlushEvery:      60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
