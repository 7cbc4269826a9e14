package fsm

import "time"

// LED drives the solar-panel/dev-kit indicator LED. The GPIO driver
// implements it; the FSM only consumes this narrow contract.
type LED interface {
	SetOn(on bool) error
}

// Sleep abstracts the blocking delay primitive so LED indication can be
// driven deterministically in tests.
type Sleep func(time.Duration)

// pulse turns the LED on for duration, then off.
func pulse(led LED, duration time.Duration, sleep Sleep) {
	led.SetOn(true)
	sleep(duration)
	led.SetOn(false)
}

// BootPulses performs the 12 lengthening pulses of the "just booted"
// indicator: pulse i (0-indexed) lasts 100+25*i ms.
func BootPulses(led LED, sleep Sleep) {
	for i := 0; i < 12; i++ {
		pulse(led, time.Duration(100+25*i)*time.Millisecond, sleep)
	}
}

// IndicationPeriod returns the pulse-on duration and the repeat period
// for the given state. Deploying is rendered by the caller as "solid
// on" rather than a pulse (its repeat period is its 30s FSM tick, not
// a pulse cadence).
func IndicationPeriod(state State, timeUntilDeployment time.Duration) (pulseOn, period time.Duration) {
	switch state {
	case StateBootedAndWaiting:
		if timeUntilDeployment <= 5*time.Minute {
			return 40 * time.Millisecond, 333 * time.Millisecond
		}
		return 40 * time.Millisecond, 1000 * time.Millisecond
	case StateNominalWithRadioTX:
		return 40 * time.Millisecond, 10_000 * time.Millisecond
	case StateNominalWithoutRadioTX:
		return 40 * time.Millisecond, 3000 * time.Millisecond
	default:
		return 0, 0
	}
}

// RunIndicationTick performs one indication cycle for the current
// state: a single pulse (or double-pulse for NominalWithoutRadioTX)
// followed by the remainder of its repeat period, or a solid-on hold
// for Deploying. The caller is expected to call this repeatedly from
// its task loop (cmd/obc's ledLoop), yielding control back between calls.
func RunIndicationTick(led LED, state State, timeUntilDeployment time.Duration, sleep Sleep) {
	if state == StateDeploying {
		led.SetOn(true)
		sleep(30 * time.Second)
		return
	}

	pulseOn, period := IndicationPeriod(state, timeUntilDeployment)
	if period == 0 {
		return
	}

	if state == StateNominalWithoutRadioTX {
		pulse(led, pulseOn, sleep)
		pulse(led, pulseOn, sleep)
		sleep(period - 2*pulseOn)
		return
	}

	pulse(led, pulseOn, sleep)
	sleep(period - pulseOn)
}
