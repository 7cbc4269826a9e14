package supervisor

import (
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
)

// Petter refreshes the hardware independent watchdog (IWDG). The STM32
// register access lives in the watchdog driver; the pet wrapper below
// only consumes this narrow contract and owns the pet-interval
// bookkeeping.
type Petter interface {
	Refresh() error
}

// Watchdog timing thresholds: warn if more than 15s elapsed since the
// last pet (near the IWDG's own timeout), debug-log if less than 240ms
// elapsed (too-frequent petting suggests a control-flow bug).
const (
	WatchdogWarnInterval  = 15_000 * time.Millisecond
	WatchdogDebugInterval = 240 * time.Millisecond
)

// WatchdogPetter wraps a Petter with interval-anomaly bookkeeping.
type WatchdogPetter struct {
	petter Petter
	clk    clock.Clock
	logs   *logging.Logger

	lastPetAt time.Time
	petCount  uint64
	hasPetted bool
}

// NewWatchdogPetter creates a WatchdogPetter.
func NewWatchdogPetter(petter Petter, clk clock.Clock, logs *logging.Logger) *WatchdogPetter {
	return &WatchdogPetter{petter: petter, clk: clk, logs: logs}
}

// Pet refreshes the watchdog and records the anomaly-detection state.
// The watchdog hardware error (if any) is logged but never returned as
// fatal; petting skew never aborts anything.
func (w *WatchdogPetter) Pet() {
	now := w.clk.Now()

	if w.hasPetted {
		elapsed := now.Sub(w.lastPetAt)
		switch {
		case elapsed > WatchdogWarnInterval:
			if w.logs != nil {
				w.logs.Log(logging.SubsystemOBC, logging.SeverityWarning, logging.AllSinks,
					"watchdog pet interval %s exceeds warn threshold", elapsed)
			}
		case elapsed < WatchdogDebugInterval:
			if w.logs != nil {
				w.logs.Log(logging.SubsystemOBC, logging.SeverityDebug, logging.AllSinks,
					"watchdog pet interval %s is suspiciously short", elapsed)
			}
		}
	}

	if err := w.petter.Refresh(); err != nil && w.logs != nil {
		w.logs.Log(logging.SubsystemOBC, logging.SeverityError, logging.AllSinks,
			"watchdog refresh failed: %v", err)
	}

	w.lastPetAt = now
	w.hasPetted = true
	w.petCount++
}

// PetCount returns the number of times Pet has been called, for tests
// and diagnostics.
func (w *WatchdogPetter) PetCount() uint64 {
	return w.petCount
}
