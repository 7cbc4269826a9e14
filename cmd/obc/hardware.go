package main

import (
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/fsm"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
	"github.com/cts1-flightsoftware/obc-core/internal/supervisor"
)

// Every type in this file stands in for a piece of flight hardware
// (GPIO, ADCS, antenna deployment, EPS, channel power, the IWDG).
// They let the flight binary run end-to-end on a bench without real
// hardware attached; a real build would replace each of these with a
// driver talking to the actual peripheral.

type simulatedGPIO struct{ high bool }

func (g *simulatedGPIO) SetHigh(high bool) error {
	g.high = high
	return nil
}

// simulatedLED stands in for the boot/operation indicator LED driven by
// fsm.BootPulses and fsm.RunIndicationTick.
type simulatedLED struct{ on bool }

func (l *simulatedLED) SetOn(on bool) error {
	l.on = on
	return nil
}

type simulatedADCS struct{}

func (a *simulatedADCS) EstimatedRollMilliDeg() (int32, error) {
	return 0, nil
}

type simulatedAntennaSensors struct{}

func (s *simulatedAntennaSensors) AllDeployed() (bool, error) {
	return false, nil
}

type simulatedDeployer struct{}

func (d *simulatedDeployer) PowerOn(bus fsm.I2CBus) error { return nil }
func (d *simulatedDeployer) Arm(bus fsm.I2CBus) error     { return nil }
func (d *simulatedDeployer) DeploySequential(bus fsm.I2CBus, timeout time.Duration) error {
	return nil
}

type simulatedEPS struct{}

func (e *simulatedEPS) CheckOverCurrent() ([]string, error) {
	return nil, nil
}

func (e *simulatedEPS) Status() supervisor.EpsStatus {
	return supervisor.EpsStatus{BatteryPercent: 100}
}

type processExitResetter struct{}

func (r *processExitResetter) Reset() {
	panic("stm32 system reset requested")
}

type simulatedChannelController struct {
	logs *logging.Logger
}

func (c *simulatedChannelController) SetChannelEnabled(channel string, enabled bool) error {
	if c.logs != nil {
		c.logs.Log(logging.SubsystemEPS, logging.SeverityWarning, logging.AllSinks,
			"channel %s enabled=%v", channel, enabled)
	}
	return nil
}

type simulatedPetter struct{}

func (p *simulatedPetter) Refresh() error { return nil }
