// The obc binary is the satellite's on-board-computer flight process:
// it reads a JSON config file, wires the telecommand pipeline,
// downlink framer, RF switch, bootup FSM, and background supervisor
// together, and runs until killed. Hardware drivers (GPIO, ADCS,
// antenna deployment, EPS, channel power) are stood in here with
// simulated defaults suitable for bench testing without real flight
// hardware attached. The radio uplink is stood in by a TCP listener
// speaking the same CTS1+...! framing, which is what cmd/tcmdreplay
// dials.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/channel"
	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/cmds"
	"github.com/cts1-flightsoftware/obc-core/internal/config"
	"github.com/cts1-flightsoftware/obc-core/internal/core"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink/bulk"
	"github.com/cts1-flightsoftware/obc-core/internal/fsm"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
	"github.com/cts1-flightsoftware/obc-core/internal/logging/filesink"
	"github.com/cts1-flightsoftware/obc-core/internal/rfswitch"
	"github.com/cts1-flightsoftware/obc-core/internal/supervisor"
)

// fsmState holds the bootup/operation FSM's current state for ledLoop
// to read, since fsmLoop and ledLoop run as separate tasks reacting to
// the same state.
var fsmState atomic.Uint32

func main() {
	var configFileName string
	var listenAddr string
	var uartDevice string
	var uartBaud int
	flag.StringVar(&configFileName, "c", "", "JSON config file")
	flag.StringVar(&configFileName, "config", "", "JSON config file")
	flag.StringVar(&listenAddr, "listen", "127.0.0.1:7600", "TCP address for the bench radio uplink")
	flag.StringVar(&uartDevice, "uart", "", "serial device for the debug UART uplink (optional)")
	flag.IntVar(&uartBaud, "baud", 115200, "debug UART baud rate")
	flag.Parse()

	var cfg *config.Config
	if configFileName == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.GetConfigFromFile(configFileName)
		if err != nil {
			em := fmt.Sprintf("cannot load config file: %s", err.Error())
			slog.Error(em)
			os.Exit(1)
		}
		cfg = loaded
	}

	start(cfg, listenAddr, uartDevice, uartBaud)
}

// start wires every collaborator together and runs the flight process
// until the process is killed.
func start(cfg *config.Config, listenAddr, uartDevice string, uartBaud int) {
	clk := clock.NewSystemClock()

	// deps is filled in below as each collaborator is built; cmds.BuildTable
	// reads through the pointer at handler-invocation time, so the table
	// can be built before core.New has anything to put in it.
	deps := &cmds.Deps{}
	table := cmds.BuildTable(deps)

	c := core.New(cfg, table, clk)
	deps.Time = c.Time
	deps.Agenda = c.Agenda
	deps.Bulk = c.Bulk
	// A bulk chunk shares its frame with the type byte and the bulk
	// header, so the session's data capacity is the frame ceiling minus
	// that overhead.
	if cfg.Ax100DownlinkMaxBytes > downlink.BulkHeaderLen+1 {
		deps.BulkPayloadCapacity = cfg.Ax100DownlinkMaxBytes - downlink.BulkHeaderLen - 1
	} else {
		deps.BulkPayloadCapacity = 1
	}

	gpio := &simulatedGPIO{}
	adcs := &simulatedADCS{}
	maxNoUplink := time.Duration(cfg.MaxNoUplinkSec) * time.Second
	rfCtrl := rfswitch.New(gpio, adcs, clk, c.Logs, maxNoUplink)
	c.AttachRFSwitch(rfCtrl)
	deps.RFSwitch = rfCtrl

	radio := newBenchRadio(c.Framer, rfCtrl, c.Time, c.Logs)

	eps := &simulatedEPS{}
	resetter := &processExitResetter{}
	petter := &simulatedPetter{}
	channelCtrl := &simulatedChannelController{logs: c.Logs}

	sup := supervisor.New(supervisor.Config{
		Beacon:              radio,
		Eps:                 eps,
		Resetter:            resetter,
		RFSwitch:            rfCtrl,
		LogRotator:          c.FileSink,
		Uptime:              c.Time,
		Logs:                c.Logs,
		Yield:               func() { time.Sleep(20 * time.Millisecond) },
		EpsMonitorInterval:  time.Duration(cfg.EpsMonitorIntervalMs) * time.Millisecond,
		SystemResetInterval: time.Duration(cfg.Stm32SystemResetIntervalMs) * time.Millisecond,
	})

	watchdog := supervisor.NewWatchdogPetter(petter, clk, c.Logs)

	backstop, err := filesink.NewBackstop(c.FileSink, "30s")
	if err != nil {
		em := fmt.Sprintf("cannot schedule log sink backstop: %s", err.Error())
		slog.Error(em)
		os.Exit(1)
	}
	backstop.Start()

	stop := make(chan struct{})

	led := &simulatedLED{}
	fsm.BootPulses(led, time.Sleep)

	go sup.Run(time.Sleep, func() bool { return false })
	go watchdogLoop(watchdog, stop)
	go fsmLoop(c, stop)
	go ledLoop(led, c, cfg, stop)
	go safeModeLoop(eps, channelCtrl, c, stop)
	go bulkLoop(c, radio, cfg, stop)
	go c.ExecutorLoop(radio, c.FileSink, time.Sleep, func() bool { return false })

	if uartDevice != "" {
		port, err := channel.OpenSerial(uartDevice, uartBaud)
		if err != nil {
			em := fmt.Sprintf("cannot open debug UART %s: %s", uartDevice, err.Error())
			slog.Error(em)
			os.Exit(1)
		}
		go func() { _ = c.RXLoop(channel.DebugUART, port) }()
	}

	go listenLoop(c, radio, listenAddr)

	select {}
}

// listenLoop accepts bench clients (tcmdreplay, or a ground-station
// bridge) on addr. Each connection is treated as the radio channel:
// frames received on it count as Radio1 uplinks, and downlink frames
// are routed back to the most recently attached connection.
func listenLoop(c *core.Core, radio *benchRadio, addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		c.Logs.Log(logging.SubsystemUHFRadio, logging.SeverityError, logging.AllSinks,
			"bench radio listener failed: %v", err)
		return
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		radio.Attach(conn)
		go func(conn net.Conn) {
			_ = c.RXLoop(channel.Radio1, conn)
			radio.Detach(conn)
			conn.Close()
		}(conn)
	}
}

// bulkLoop is the bulk-downlink streamer task: long transfers are
// owned by this dedicated task rather than by the telecommand handler
// that started them. Whenever a handler has opened a session, the loop
// drives it to completion at the configured per-packet pace.
func bulkLoop(c *core.Core, radio *benchRadio, cfg *config.Config, stop <-chan struct{}) {
	delay := time.Duration(cfg.BulkDownlinkDelayPerPacketMs) * time.Millisecond
	for {
		select {
		case <-stop:
			return
		default:
		}

		if c.Bulk.State() == bulk.StateIdle {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err := c.Bulk.Run(radio, delay, time.Sleep); err != nil {
			c.Logs.Log(logging.SubsystemUHFRadio, logging.SeverityError, logging.AllSinks,
				"bulk downlink aborted: %v", err)
		}
	}
}

// safeModeLoop polls EPS telemetry every 10s and drops non-essential
// channels if the battery is low or EPS reports low-power mode.
func safeModeLoop(eps *simulatedEPS, ctrl *simulatedChannelController, c *core.Core, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
			_ = supervisor.CheckAndEnterSafeMode(ctrl, c.Logs, eps.Status())
			time.Sleep(10 * time.Second)
		}
	}
}

func watchdogLoop(w *supervisor.WatchdogPetter, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
			w.Pet()
			time.Sleep(1 * time.Second)
		}
	}
}

// fsmLoop runs the bootup/operation state machine, reacting to state
// transitions by driving the simulated antenna-deployment hardware. It
// ticks every 3 seconds (a cadence shared with the supervisor's),
// except while Deploying, where each tick runs one power-arm-deploy
// iteration and the next only comes 30 seconds later so the bus
// alternation and deployment commands fire at their intended cadence.
func fsmLoop(c *core.Core, stop <-chan struct{}) {
	state := fsm.StateBootedAndWaiting
	sensors := &simulatedAntennaSensors{}
	deployer := &simulatedDeployer{}
	deployIteration := 0

	for {
		select {
		case <-stop:
			return
		default:
		}

		in := c.FSMInputs(fsm.RBFFlying, sensors, nil)
		next := fsm.Evaluate(state, in)
		if next == fsm.StateDeploying {
			if state != fsm.StateDeploying {
				deployIteration = 0
			}
			_ = fsm.RunDeployIteration(deployer, deployIteration)
			deployIteration++
		}
		state = next
		fsmState.Store(uint32(state))

		if state == fsm.StateDeploying {
			time.Sleep(30 * time.Second)
		} else {
			time.Sleep(3 * time.Second)
		}
	}
}

// ledLoop drives the boot/operation indicator LED, reading the state
// fsmLoop last computed.
func ledLoop(led *simulatedLED, c *core.Core, cfg *config.Config, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		state := fsm.State(fsmState.Load())
		uptimeSec := c.Time.UptimeMs() / 1000
		var timeUntilDeployment time.Duration
		if remaining := int64(cfg.AntDeployStartupSec) - int64(uptimeSec); remaining > 0 {
			timeUntilDeployment = time.Duration(remaining) * time.Second
		}

		fsm.RunIndicationTick(led, state, timeUntilDeployment, time.Sleep)
	}
}
