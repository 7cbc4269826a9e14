package supervisor

import "github.com/cts1-flightsoftware/obc-core/internal/logging"

// ChannelController enables or disables one power channel. The EPS
// driver implements it; safe-mode only consumes this narrow contract.
type ChannelController interface {
	SetChannelEnabled(channel string, enabled bool) error
}

// NonEssentialChannels is the ordered list of channels safe mode
// disables: MPI 5V, MPI 12V, camera, and boom. OBC and COMMS are
// essential and remain powered.
var NonEssentialChannels = []string{"MPI_5V", "MPI_12V", "CAMERA", "BOOM"}

// EpsStatus is the subset of EPS telemetry the safe-mode check reacts
// to.
type EpsStatus struct {
	LowPowerMode   bool
	BatteryPercent float64
}

// BatteryLowThresholdPercent is the battery level below which safe mode
// triggers.
const BatteryLowThresholdPercent = 10.0

// ShouldEnterSafeMode reports whether status warrants entering safe
// mode: EPS low-power mode, or battery percent below the threshold.
func ShouldEnterSafeMode(status EpsStatus) bool {
	return status.LowPowerMode || status.BatteryPercent < BatteryLowThresholdPercent
}

// EnterSafeMode disables every non-essential channel and logs a
// Critical transition. It does not touch OBC or COMMS, which remain
// powered.
func EnterSafeMode(ctrl ChannelController, logs *logging.Logger, status EpsStatus) error {
	var firstErr error
	for _, ch := range NonEssentialChannels {
		if err := ctrl.SetChannelEnabled(ch, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if logs != nil {
		logs.Log(logging.SubsystemEPS, logging.SeverityCritical, logging.AllSinks,
			"entering safe mode: low_power=%v battery_pct=%.1f", status.LowPowerMode, status.BatteryPercent)
	}
	return firstErr
}

// CheckAndEnterSafeMode is the supervisor entry point invoked whenever
// fresh EPS status is available: it enters safe mode if warranted, and
// is a no-op otherwise.
func CheckAndEnterSafeMode(ctrl ChannelController, logs *logging.Logger, status EpsStatus) error {
	if !ShouldEnterSafeMode(status) {
		return nil
	}
	return EnterSafeMode(ctrl, logs, status)
}
