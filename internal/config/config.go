// Package config defines service configuration and how it is loaded.
package config

import (
	"runtime"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of match shard workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds each shard's command queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the remembered ball event ids.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreDriver is memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the sqlite database file.
	StorePath string `koanf:"store_path"`

	// MaxOvers caps the overs limit accepted for a new match.
	MaxOvers int `koanf:"max_overs"`

	// EnforceBowlerRest forbids a bowler from bowling consecutive overs.
	EnforceBowlerRest bool `koanf:"enforce_bowler_rest"`

	// WSWriteTimeoutMS bounds a single websocket write.
	WSWriteTimeoutMS int `koanf:"ws_write_timeout_ms"`

	// WSSendBuffer is the per-subscriber backlog of snapshots.
	WSSendBuffer int `koanf:"ws_send_buffer"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         1024,
		DedupeSize:        100_000,
		StoreDriver:       StoreMemory,
		StorePath:         "crease.db",
		MaxOvers:          50,
		EnforceBowlerRest: true,
		WSWriteTimeoutMS:  5000,
		WSSendBuffer:      32,
	}
}
