// Package supervisor implements the background-upkeep task: a
// fixed-order, 3s-cadence tick performing beacon emission, EPS
// over-current monitoring, the long-uptime latch-up-recovery reset, RF
// switch update, and log-file sync/rotation, plus the hardware-watchdog
// pet wrapper and the safe-mode check.
package supervisor

import (
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/logging"
	"github.com/cts1-flightsoftware/obc-core/internal/rfswitch"
)

// TickInterval is the supervisor's cadence.
const TickInterval = 3 * time.Second

// BeaconEmitter sends one beacon downlink packet.
type BeaconEmitter interface {
	EmitBeacon() error
}

// EpsMonitor queries the EPS for over-current channels and disables any
// flagged one. The EPS driver implements it.
type EpsMonitor interface {
	CheckOverCurrent() (disabledChannels []string, err error)
}

// SystemResetter performs the unconditional NVIC system reset used as
// the latch-up recovery of last resort.
type SystemResetter interface {
	Reset()
}

// LogRotator syncs/closes the current log file. Satisfied by
// *filesink.Sink's HandleSyncAndClose.
type LogRotator interface {
	HandleSyncAndClose()
}

// UptimeSource reports monotonic uptime in milliseconds.
type UptimeSource interface {
	UptimeMs() uint64
}

// Yield is the cooperative-kernel yield primitive between discrete work
// items. In production it's a short sleep; in tests, a no-op.
type Yield func()

// Config wires the supervisor's collaborators. EpsMonitorInterval and
// SystemResetInterval are read from internal/config.Config.
type Config struct {
	Beacon              BeaconEmitter
	Eps                 EpsMonitor
	Resetter            SystemResetter
	RFSwitch            *rfswitch.Controller
	LogRotator          LogRotator
	Uptime              UptimeSource
	Logs                *logging.Logger
	Yield               Yield
	EpsMonitorInterval  time.Duration
	SystemResetInterval time.Duration
}

// Supervisor runs the background-upkeep tick loop.
type Supervisor struct {
	cfg            Config
	lastEpsCheckMs uint64
	resetTriggered bool
}

// New creates a Supervisor from cfg. A nil Yield is replaced with a
// no-op.
func New(cfg Config) *Supervisor {
	if cfg.Yield == nil {
		cfg.Yield = func() {}
	}
	return &Supervisor{cfg: cfg}
}

// Tick performs one pass of the fixed-order upkeep sequence: beacon
// (toggling the RF switch first, so the toggle happens-before the
// transmission on this task), EPS over-current check, long-uptime
// reset, RF switch update, log file sync/rotate, each step separated
// by a yield.
func (s *Supervisor) Tick() {
	cfg := s.cfg

	if cfg.RFSwitch != nil && cfg.RFSwitch.Mode() == rfswitch.ModeToggleEveryBeacon {
		_ = cfg.RFSwitch.ToggleForBeacon()
		cfg.Yield() // let the physical switch settle before transmitting
	}
	if cfg.Beacon != nil {
		if err := cfg.Beacon.EmitBeacon(); err != nil && cfg.Logs != nil {
			cfg.Logs.Log(logging.SubsystemOBC, logging.SeverityError, logging.AllSinks,
				"beacon emission failed: %v", err)
		}
	}
	cfg.Yield()

	s.checkEpsOverCurrent()
	cfg.Yield()

	s.checkSystemReset()
	cfg.Yield()

	if cfg.RFSwitch != nil {
		if err := cfg.RFSwitch.Update(); err != nil && cfg.Logs != nil {
			cfg.Logs.Log(logging.SubsystemOBC, logging.SeverityError, logging.AllSinks,
				"RF switch update failed: %v", err)
		}
	}
	cfg.Yield()

	if cfg.LogRotator != nil {
		cfg.LogRotator.HandleSyncAndClose()
	}
}

func (s *Supervisor) checkEpsOverCurrent() {
	cfg := s.cfg
	if cfg.Eps == nil || cfg.Uptime == nil {
		return
	}
	now := cfg.Uptime.UptimeMs()
	interval := cfg.EpsMonitorInterval
	if interval <= 0 {
		interval = time.Duration(60_000) * time.Millisecond
	}
	if now-s.lastEpsCheckMs < uint64(interval.Milliseconds()) && s.lastEpsCheckMs != 0 {
		return
	}
	s.lastEpsCheckMs = now

	disabled, err := cfg.Eps.CheckOverCurrent()
	if err != nil {
		if cfg.Logs != nil {
			cfg.Logs.Log(logging.SubsystemEPS, logging.SeverityError, logging.AllSinks,
				"EPS over-current check failed: %v", err)
		}
		return
	}
	if len(disabled) > 0 && cfg.Logs != nil {
		cfg.Logs.Log(logging.SubsystemEPS, logging.SeverityWarning, logging.AllSinks,
			"disabled over-current channels: %v", disabled)
	}
}

func (s *Supervisor) checkSystemReset() {
	cfg := s.cfg
	if cfg.Resetter == nil || cfg.Uptime == nil || s.resetTriggered {
		return
	}
	interval := cfg.SystemResetInterval
	if interval <= 0 {
		return
	}
	if cfg.Uptime.UptimeMs() > uint64(interval.Milliseconds()) {
		s.resetTriggered = true
		if cfg.Logs != nil {
			cfg.Logs.Log(logging.SubsystemOBC, logging.SeverityCritical, logging.AllSinks,
				"uptime exceeded system reset interval, resetting")
		}
		cfg.Resetter.Reset()
	}
}

// Run drives Tick forever at TickInterval, using sleep as the
// inter-tick delay (time.Sleep in production, a no-op or counting stub
// in tests). stop, if non-nil, is checked after each tick and causes Run
// to return when it reports true.
func (s *Supervisor) Run(sleep func(time.Duration), stop func() bool) {
	for {
		s.Tick()
		if stop != nil && stop() {
			return
		}
		sleep(TickInterval)
	}
}
