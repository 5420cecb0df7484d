package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// DefaultPath is the config file looked up in the process working
// directory. EnvPath overrides it when set.
const (
	DefaultPath = "config.json"
	EnvPath     = "MMOGATE_CONFIG"
)

// Gateway holds the full gateway process configuration.
type Gateway struct {
	Database    DatabaseConfig `json:"database"`
	GameServer  ServerConfig   `json:"game_server"`
	ChunkServer ServerConfig   `json:"chunk_server"`
	Dispatch    DispatchConfig `json:"dispatch"`
	Tick        TickConfig     `json:"tick"`
	LogLevel    string         `json:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DBName   string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.DBName,
	)
}

// ServerConfig is one listen/dial endpoint with its connection cap.
type ServerConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	MaxClients int    `json:"max_clients"`
}

// Addr returns host:port for net.Listen / net.Dial.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DispatchConfig tunes how many events each dispatch loop drains per pass.
// The ping queue runs with its own smaller batch so pings stay responsive
// under load.
type DispatchConfig struct {
	BatchSize     int `json:"batch_size"`
	PingBatchSize int `json:"ping_batch_size"`
}

// TickConfig holds the periodic task cadences.
type TickConfig struct {
	FlushIntervalSec     int `json:"flush_interval_sec"`
	WanderIntervalMs     int `json:"wander_interval_ms"`
	TelemetryIntervalSec int `json:"telemetry_interval_sec"`
}

// FlushInterval is the character write-back cadence.
func (t TickConfig) FlushInterval() time.Duration {
	return time.Duration(t.FlushIntervalSec) * time.Second
}

// WanderInterval is the mob movement cadence.
func (t TickConfig) WanderInterval() time.Duration {
	return time.Duration(t.WanderIntervalMs) * time.Millisecond
}

// TelemetryInterval is the chunk-peer telemetry cadence.
func (t TickConfig) TelemetryInterval() time.Duration {
	return time.Duration(t.TelemetryIntervalSec) * time.Second
}

// Default returns the gateway config with development defaults.
func Default() Gateway {
	return Gateway{
		Database: DatabaseConfig{
			DBName:   "mmogate",
			User:     "mmogate",
			Password: "mmogate",
			Host:     "127.0.0.1",
			Port:     5432,
		},
		GameServer: ServerConfig{
			Host:       "0.0.0.0",
			Port:       7777,
			MaxClients: 1000,
		},
		ChunkServer: ServerConfig{
			Host:       "127.0.0.1",
			Port:       7100,
			MaxClients: 1,
		},
		Dispatch: DispatchConfig{
			BatchSize:     10,
			PingBatchSize: 1,
		},
		Tick: TickConfig{
			FlushIntervalSec:     10,
			WanderIntervalMs:     300,
			TelemetryIntervalSec: 10,
		},
		LogLevel: "info",
	}
}

// Load reads the gateway config from a JSON file. A missing file yields
// defaults; a malformed one is an error. Zero or negative tunables are
// reset to their defaults.
func Load(path string) (Gateway, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// LoadFromEnv loads from $MMOGATE_CONFIG when set, DefaultPath otherwise.
func LoadFromEnv() (Gateway, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

func (g *Gateway) normalize() {
	def := Default()
	if g.Dispatch.BatchSize < 1 {
		g.Dispatch.BatchSize = def.Dispatch.BatchSize
	}
	if g.Dispatch.PingBatchSize < 1 {
		g.Dispatch.PingBatchSize = def.Dispatch.PingBatchSize
	}
	if g.Tick.FlushIntervalSec < 1 {
		g.Tick.FlushIntervalSec = def.Tick.FlushIntervalSec
	}
	if g.Tick.WanderIntervalMs < 1 {
		g.Tick.WanderIntervalMs = def.Tick.WanderIntervalMs
	}
	if g.Tick.TelemetryIntervalSec < 1 {
		g.Tick.TelemetryIntervalSec = def.Tick.TelemetryIntervalSec
	}
}
