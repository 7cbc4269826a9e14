package config

import (
	"strings"
	"testing"
)

func TestGetConfigFromReaderAppliesDefaults(t *testing.T) {
	cfg, err := getConfigFromReader(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AntDeployStartupSec != DefaultAntDeployStartupSec {
		t.Errorf("AntDeployStartupSec = %d, want %d", cfg.AntDeployStartupSec, DefaultAntDeployStartupSec)
	}
	if cfg.MaxNoUplinkSec != DefaultMaxNoUplinkSec {
		t.Errorf("MaxNoUplinkSec = %d, want %d", cfg.MaxNoUplinkSec, DefaultMaxNoUplinkSec)
	}
	if cfg.Ax100DownlinkMaxBytes != DefaultAx100DownlinkMaxBytes {
		t.Errorf("Ax100DownlinkMaxBytes = %d, want %d", cfg.Ax100DownlinkMaxBytes, DefaultAx100DownlinkMaxBytes)
	}
	if cfg.LogDirectory != DefaultLogDirectory {
		t.Errorf("LogDirectory = %q, want %q", cfg.LogDirectory, DefaultLogDirectory)
	}
}

func TestGetConfigFromReaderHonorsOverrides(t *testing.T) {
	cfg, err := getConfigFromReader(strings.NewReader(`{"max_no_uplink_sec": 42, "tcmd_require_unique_tssent": true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxNoUplinkSec != 42 {
		t.Errorf("MaxNoUplinkSec = %d, want 42", cfg.MaxNoUplinkSec)
	}
	if !cfg.TcmdRequireUniqueTssent {
		t.Errorf("TcmdRequireUniqueTssent = false, want true")
	}
}

func TestGetConfigFromReaderRejectsBadJSON(t *testing.T) {
	if _, err := getConfigFromReader(strings.NewReader(`not json`)); err == nil {
		t.Errorf("expected error for invalid JSON")
	}
}
