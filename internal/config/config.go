// Package config loads the OBC core's tunable parameters from a JSON
// file: read the whole file, unmarshal into a typed struct, then apply
// defaults for anything the file left zero-valued.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Config holds every tunable named in the external interface section:
// deployment timing, uplink watchdog, EPS monitor cadence, the long-uptime
// reset interval, bulk-downlink pacing, replay-protection toggle, and the
// per-packet downlink payload ceiling.
type Config struct {
	// AntDeployStartupSec is the uptime, in seconds, at which the bootup FSM
	// starts attempting antenna deployment.
	AntDeployStartupSec uint32 `json:"ant_deploy_startup_sec"`

	// MaxNoUplinkSec is how long the RF switch controller waits without an
	// uplink before forcing control_mode back to ToggleEveryBeacon.
	MaxNoUplinkSec uint32 `json:"max_no_uplink_sec"`

	// EpsMonitorIntervalMs is the minimum spacing between EPS over-current
	// checks performed by the supervisor.
	EpsMonitorIntervalMs uint32 `json:"eps_monitor_interval_ms"`

	// Stm32SystemResetIntervalMs triggers an unconditional system reset once
	// exceeded, as a latch-up recovery of last resort.
	Stm32SystemResetIntervalMs uint64 `json:"stm32_system_reset_interval_ms"`

	// BulkDownlinkDelayPerPacketMs paces the bulk file downlink task.
	BulkDownlinkDelayPerPacketMs uint32 `json:"bulk_downlink_delay_per_packet_ms"`

	// TcmdRequireUniqueTssent turns on replay protection in the agenda.
	TcmdRequireUniqueTssent bool `json:"tcmd_require_unique_tssent"`

	// Ax100DownlinkMaxBytes bounds the application payload of one downlink
	// frame, so the KISS-encoded result still fits a 255-byte radio frame.
	Ax100DownlinkMaxBytes uint32 `json:"ax100_downlink_max_bytes"`

	// LogDirectory is where the lazy file log sink creates its rotation
	// files. Flight builds leave it at the default "/logs"; tests and
	// ground-support tooling redirect it.
	LogDirectory string `json:"log_directory"`
}

// Flight defaults for every tunable.
const (
	DefaultAntDeployStartupSec          = 30 * 60
	DefaultMaxNoUplinkSec               = 15 * 60
	DefaultEpsMonitorIntervalMs         = 60_000
	DefaultStm32SystemResetIntervalMs   = uint64(30) * 24 * 60 * 60 * 1000 // ~30 days
	DefaultBulkDownlinkDelayPerPacketMs = 208
	DefaultAx100DownlinkMaxBytes        = 200
	DefaultLogDirectory                 = "/logs"
)

// applyDefaults fills in zero-valued fields with the firmware's defaults.
func (c *Config) applyDefaults() {
	if c.AntDeployStartupSec == 0 {
		c.AntDeployStartupSec = DefaultAntDeployStartupSec
	}
	if c.MaxNoUplinkSec == 0 {
		c.MaxNoUplinkSec = DefaultMaxNoUplinkSec
	}
	if c.EpsMonitorIntervalMs == 0 {
		c.EpsMonitorIntervalMs = DefaultEpsMonitorIntervalMs
	}
	if c.Stm32SystemResetIntervalMs == 0 {
		c.Stm32SystemResetIntervalMs = DefaultStm32SystemResetIntervalMs
	}
	if c.BulkDownlinkDelayPerPacketMs == 0 {
		c.BulkDownlinkDelayPerPacketMs = DefaultBulkDownlinkDelayPerPacketMs
	}
	if c.Ax100DownlinkMaxBytes == 0 {
		c.Ax100DownlinkMaxBytes = DefaultAx100DownlinkMaxBytes
	}
	if len(c.LogDirectory) == 0 {
		c.LogDirectory = DefaultLogDirectory
	}
}

// Default returns a Config with every field set to its firmware
// default, for callers (e.g. a bench run with no config file) that
// don't load one from disk.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// GetConfigFromFile reads and parses the JSON config file at path.
func GetConfigFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer file.Close()

	return getConfigFromReader(file)
}

func getConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}
