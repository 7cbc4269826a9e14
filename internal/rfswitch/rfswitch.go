// Package rfswitch implements the antenna-switch controller:
// policy-driven selection of one of two antennas, with a forced reset
// to the toggle-every-beacon policy if no uplink has been seen for too
// long (a ground operator who force-pinned the wrong antenna would
// otherwise be unreachable forever).
package rfswitch

import (
	"strings"
	"sync"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
)

// Antenna identifies one of the two physical antennas.
type Antenna uint8

const (
	Antenna1 Antenna = 1
	Antenna2 Antenna = 2
)

// ControlMode selects the policy the controller uses to pick an antenna.
type ControlMode uint8

const (
	ModeToggleEveryBeacon ControlMode = iota
	ModeForceAnt1
	ModeForceAnt2
	ModeUseADCSNormal
	ModeUseADCSFlipped
)

func (m ControlMode) String() string {
	switch m {
	case ModeToggleEveryBeacon:
		return "toggle_every_beacon"
	case ModeForceAnt1:
		return "force_ant1"
	case ModeForceAnt2:
		return "force_ant2"
	case ModeUseADCSNormal:
		return "use_adcs_normal"
	case ModeUseADCSFlipped:
		return "use_adcs_flipped"
	default:
		return "unknown"
	}
}

// ModeFromString parses a forgiving set of case-insensitive string
// aliases for a control mode; telecommand-driven mode changes shouldn't
// require the ground operator to get capitalization exactly right.
func ModeFromString(s string) (ControlMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toggle", "toggle_every_beacon", "togglebeacon":
		return ModeToggleEveryBeacon, true
	case "force1", "force_ant1", "forceant1", "ant1":
		return ModeForceAnt1, true
	case "force2", "force_ant2", "forceant2", "ant2":
		return ModeForceAnt2, true
	case "adcs", "adcs_normal", "use_adcs_normal", "useadcsnormal":
		return ModeUseADCSNormal, true
	case "adcs_flipped", "use_adcs_flipped", "useadcsflipped":
		return ModeUseADCSFlipped, true
	default:
		return 0, false
	}
}

// GPIO drives the physical RF switch: low selects antenna 1, high
// selects antenna 2.
type GPIO interface {
	SetHigh(high bool) error
}

// ADCS supplies the attitude controller's estimated roll angle, in
// milli-degrees within [0, 360000). The attitude-controller driver
// implements it; rfswitch only consumes this narrow contract.
type ADCS interface {
	EstimatedRollMilliDeg() (int32, error)
}

// Controller is the RF switch background subtask. Construct with New.
type Controller struct {
	mutex sync.Mutex

	gpio GPIO
	adcs ADCS
	clk  clock.Clock
	logs *logging.Logger

	active       Antenna
	mode         ControlMode
	maxNoUplink  time.Duration
	lastUplinkAt time.Time
}

// New creates a Controller starting in ToggleEveryBeacon mode with
// antenna 1 active, the power-on default.
func New(gpio GPIO, adcs ADCS, clk clock.Clock, logs *logging.Logger, maxNoUplink time.Duration) *Controller {
	return &Controller{
		gpio:         gpio,
		adcs:         adcs,
		clk:          clk,
		logs:         logs,
		active:       Antenna1,
		mode:         ModeToggleEveryBeacon,
		maxNoUplink:  maxNoUplink,
		lastUplinkAt: clk.Now(),
	}
}

// SetMode changes the control policy. Telecommand handlers call this
// directly.
func (c *Controller) SetMode(mode ControlMode) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.mode = mode
}

// Mode returns the current control policy.
func (c *Controller) Mode() ControlMode {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.mode
}

// ActiveAntenna returns the antenna currently selected.
func (c *Controller) ActiveAntenna() Antenna {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.active
}

// NoteUplink records that an uplink was just received, resetting the
// no-uplink recovery timer.
func (c *Controller) NoteUplink() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lastUplinkAt = c.clk.Now()
}

// SinceLastUplink reports how long it has been since the last uplink
// was noted, for the beacon's since_last_uplink_ms field.
func (c *Controller) SinceLastUplink() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.clk.Now().Sub(c.lastUplinkAt)
}

// checkRecoveryLocked forces the mode back to ToggleEveryBeacon if no
// uplink has been seen for the configured recovery window.
func (c *Controller) checkRecoveryLocked() {
	if c.maxNoUplink <= 0 {
		return
	}
	if c.clk.Now().Sub(c.lastUplinkAt) >= c.maxNoUplink && c.mode != ModeToggleEveryBeacon {
		c.mode = ModeToggleEveryBeacon
		if c.logs != nil {
			c.logs.Log(logging.SubsystemOBC, logging.SeverityNormal, logging.AllSinks,
				"no uplinks received for %s, reverting RF switch to toggle-every-beacon", c.maxNoUplink)
		}
	}
}

// selectByRoll maps a roll angle in milli-degrees to an antenna; flip
// inverts the result.
func selectByRoll(rollMilliDeg int32, flip bool) (Antenna, bool) {
	if rollMilliDeg < 0 || rollMilliDeg >= 360_000 {
		return 0, false
	}
	inBand := (rollMilliDeg >= 0 && rollMilliDeg < 45_000) ||
		(rollMilliDeg >= 135_000 && rollMilliDeg < 225_000) ||
		(rollMilliDeg >= 315_000 && rollMilliDeg < 360_000)

	ant := Antenna1
	if inBand {
		ant = Antenna2
	}
	if flip {
		ant = Antenna(3 - uint8(ant))
	}
	return ant, true
}

// Update runs one controller tick: check the no-uplink recovery
// timeout, then resolve the active antenna per the current mode,
// driving the GPIO if it changed. Called from the supervisor at its 3s
// cadence, after any beacon-triggered toggle (see ToggleForBeacon) has
// already happened.
func (c *Controller) Update() error {
	c.mutex.Lock()
	c.checkRecoveryLocked()
	mode := c.mode
	current := c.active
	c.mutex.Unlock()

	var next Antenna
	switch mode {
	case ModeForceAnt1:
		next = Antenna1
	case ModeForceAnt2:
		next = Antenna2
	case ModeUseADCSNormal, ModeUseADCSFlipped:
		roll, err := c.adcs.EstimatedRollMilliDeg()
		if err != nil {
			c.revertToToggle("ADCS read failed: %v", err)
			return nil
		}
		ant, ok := selectByRoll(roll, mode == ModeUseADCSFlipped)
		if !ok {
			c.revertToToggle("ADCS roll %d milli-deg out of range", roll)
			return nil
		}
		next = ant
	case ModeToggleEveryBeacon:
		next = current
	default:
		next = current
	}

	return c.setActive(next)
}

func (c *Controller) revertToToggle(format string, args ...any) {
	c.mutex.Lock()
	c.mode = ModeToggleEveryBeacon
	c.mutex.Unlock()
	if c.logs != nil {
		c.logs.Log(logging.SubsystemADCS, logging.SeverityError, logging.AllSinks, format, args...)
	}
}

// ToggleForBeacon flips the active antenna, intended to be called at
// the start of every beacon transmission when mode is
// ToggleEveryBeacon. Callers must yield >=20ms before transmitting so
// the physical switch settles.
func (c *Controller) ToggleForBeacon() error {
	c.mutex.Lock()
	mode := c.mode
	current := c.active
	c.mutex.Unlock()

	if mode != ModeToggleEveryBeacon {
		return nil
	}
	next := Antenna1
	if current == Antenna1 {
		next = Antenna2
	}
	return c.setActive(next)
}

func (c *Controller) setActive(next Antenna) error {
	c.mutex.Lock()
	changed := next != c.active
	c.mutex.Unlock()

	if !changed {
		return nil
	}
	if err := c.gpio.SetHigh(next == Antenna2); err != nil {
		return err
	}

	c.mutex.Lock()
	c.active = next
	c.mutex.Unlock()
	return nil
}
