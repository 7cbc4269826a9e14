// Package fsm implements the bootup/operation state machine: a
// four-state machine gating radio transmission and antenna deployment
// during the first orbits, evaluated in a fixed priority order on
// every tick. Uplink-received overrides everything, then the bench/RBF
// override, then the bypass file, then per-state deployment timing.
package fsm

import (
	"os"
	"time"
)

// State is one of the four operation states.
type State uint8

const (
	StateBootedAndWaiting State = iota
	StateDeploying
	StateNominalWithRadioTX
	StateNominalWithoutRadioTX
)

func (s State) String() string {
	switch s {
	case StateBootedAndWaiting:
		return "booted_and_waiting"
	case StateDeploying:
		return "deploying"
	case StateNominalWithRadioTX:
		return "nominal_with_radio_tx"
	case StateNominalWithoutRadioTX:
		return "nominal_without_radio_tx"
	default:
		return "unknown"
	}
}

// RBFPosition is the remove-before-flight pin reading.
type RBFPosition uint8

const (
	RBFFlying RBFPosition = iota
	RBFBench
)

// BypassFilePath is the file whose mere presence forces
// NominalWithRadioTX.
const BypassFilePath = "/bypass_deployment_and_enable_radio.txt"

// DefaultAntDeployStartupSec is the default uptime threshold (seconds)
// at which deployment begins.
const DefaultAntDeployStartupSec = 1800

// DeploymentTimeoutUptime is the uptime past which the FSM gives up on
// antenna-deployment sensors and assumes the burn succeeded.
const DeploymentTimeoutUptime = 4 * time.Hour

// AntennaSensors reports whether all 4 antennas show deployed on at
// least one of the two redundant I2C buses. The deployment driver
// implements it; the FSM only consumes this narrow contract.
type AntennaSensors interface {
	AllDeployed() (bool, error)
}

// FileExists abstracts the filesystem presence check so tests don't need
// a real littlefs/NAND mount.
type FileExists func(path string) bool

func osFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Inputs is everything the FSM reads to decide its next state on one
// tick. Grouping these as a value (rather than reading globals
// directly) keeps Evaluate a pure function.
type Inputs struct {
	UptimeSec             uint64
	RBF                   RBFPosition
	AnyUplinkEverReceived bool
	AntennaSensors        AntennaSensors
	FileExists            FileExists
	AntDeployStartupSec   uint64
}

// Evaluate computes the next state given the current state and a
// fresh set of Inputs. It is a pure function: no I/O beyond the
// FileExists/AntennaSensors callbacks the caller supplies.
func Evaluate(current State, in Inputs) State {
	fileExists := in.FileExists
	if fileExists == nil {
		fileExists = osFileExists
	}

	// Common rules, evaluated in every state, highest priority first.
	if in.AnyUplinkEverReceived {
		return StateNominalWithRadioTX
	}
	if in.RBF == RBFBench {
		return StateNominalWithoutRadioTX
	}
	if fileExists(BypassFilePath) {
		return StateNominalWithRadioTX
	}

	switch current {
	case StateBootedAndWaiting:
		startupSec := in.AntDeployStartupSec
		if startupSec == 0 {
			startupSec = DefaultAntDeployStartupSec
		}
		if in.RBF == RBFFlying && in.UptimeSec >= startupSec {
			return StateDeploying
		}
		if allDeployed(in.AntennaSensors) {
			return StateNominalWithRadioTX
		}
		return StateBootedAndWaiting

	case StateDeploying:
		if allDeployed(in.AntennaSensors) {
			return StateNominalWithRadioTX
		}
		if time.Duration(in.UptimeSec)*time.Second >= DeploymentTimeoutUptime {
			return StateNominalWithRadioTX
		}
		return StateDeploying

	default:
		// NominalWithRadioTX and NominalWithoutRadioTX never lead back
		// to BootedAndWaiting or Deploying for the remainder of the
		// boot. The common rules above (uplink received, RBF bench,
		// bypass file) can still move between the two nominal states.
		return current
	}
}

func allDeployed(sensors AntennaSensors) bool {
	if sensors == nil {
		return false
	}
	ok, err := sensors.AllDeployed()
	return err == nil && ok
}
