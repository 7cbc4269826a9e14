// Package core wires the OBC firmware's tasks into one running
// process: telecommand RX, the executor/agenda, the downlink framer,
// the bulk-downlink session, the file log sink, the RF switch, and the
// FSM's inputs, off one Config. Telecommand
// frames are read off N channels and fan into one agenda.
package core

import (
	"bufio"
	"io"
	"sync/atomic"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/agenda"
	"github.com/cts1-flightsoftware/obc-core/internal/channel"
	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/config"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink/bulk"
	"github.com/cts1-flightsoftware/obc-core/internal/fsm"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
	"github.com/cts1-flightsoftware/obc-core/internal/logging/filesink"
	"github.com/cts1-flightsoftware/obc-core/internal/rfswitch"
	"github.com/cts1-flightsoftware/obc-core/internal/tcmd"
	"github.com/cts1-flightsoftware/obc-core/internal/tcmd/parser"
	"github.com/cts1-flightsoftware/obc-core/internal/timeservice"
)

// Core holds every long-lived collaborator the flight binary wires
// together. Construct with New.
type Core struct {
	Config   *config.Config
	Logs     *logging.Logger
	Time     *timeservice.Service
	Table    *tcmd.Table
	Agenda   *agenda.Agenda
	Framer   *downlink.Framer
	Bulk     *bulk.Session
	RFSwitch *rfswitch.Controller
	FileSink *filesink.Sink

	// anyUplinkReceived is written by the executor task and read by the
	// FSM task, so it is atomic rather than mutex-guarded.
	anyUplinkReceived atomic.Bool
}

// New builds a Core from cfg and the telecommand definition table. clk
// drives the time service, the file sink's rotation timing, and (once
// attached) the RF switch's recovery timer.
func New(cfg *config.Config, table *tcmd.Table, clk clock.Clock) *Core {
	ts := timeservice.New(clk, nil)
	logs := logging.New(ts)

	fileSink := filesink.New(cfg.LogDirectory, clk, ts, logs)
	logs.RegisterSink(fileSink)

	ag := agenda.New(table, agenda.Config{RequireUniqueTsSent: cfg.TcmdRequireUniqueTssent}, logs)

	framer := downlink.NewFramer(nil, int(cfg.Ax100DownlinkMaxBytes))

	return &Core{
		Config:   cfg,
		Logs:     logs,
		Time:     ts,
		Table:    table,
		Agenda:   ag,
		Framer:   framer,
		Bulk:     &bulk.Session{},
		FileSink: fileSink,
	}
}

// AttachRFSwitch wires a constructed RF switch controller into the core,
// used for both the bootup FSM's state inputs and NoteUplink's recovery
// timer reset. Done as a second step because the controller needs a real
// GPIO/ADCS implementation that only cmd/obc's hardware wiring knows
// about.
func (c *Core) AttachRFSwitch(ctrl *rfswitch.Controller) {
	c.RFSwitch = ctrl
}

// NoteUplink records that a telecommand was just successfully executed
// via an uplink channel (used by the FSM's "any uplink received" rule
// and the RF switch's no-uplink recovery timer).
func (c *Core) NoteUplink() {
	c.anyUplinkReceived.Store(true)
	if c.RFSwitch != nil {
		c.RFSwitch.NoteUplink()
	}
}

// AnyUplinkReceived reports whether a telecommand has ever been
// successfully executed via radio since boot.
func (c *Core) AnyUplinkReceived() bool {
	return c.anyUplinkReceived.Load()
}

// FSMInputs builds an fsm.Inputs snapshot from the core's live state.
// antennaSensors and fileExists are supplied by the caller since they
// reach into out-of-scope hardware/filesystem collaborators.
func (c *Core) FSMInputs(rbf fsm.RBFPosition, antennaSensors fsm.AntennaSensors, fileExists fsm.FileExists) fsm.Inputs {
	return fsm.Inputs{
		UptimeSec:             c.Time.UptimeMs() / 1000,
		RBF:                   rbf,
		AnyUplinkEverReceived: c.anyUplinkReceived.Load(),
		AntennaSensors:        antennaSensors,
		FileExists:            fileExists,
		AntDeployStartupSec:   uint64(c.Config.AntDeployStartupSec),
	}
}

// RXLoop reads telecommand frames terminated by '!' from r (a debug
// UART or radio transport), parses each one, and adds it to the
// agenda. Returns when r returns a read error (EOF or otherwise); the
// caller is expected to reconnect and call RXLoop again.
func (c *Core) RXLoop(kind channel.Kind, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(splitOnBang)

	for scanner.Scan() {
		raw := scanner.Text()
		if raw == "" {
			continue
		}
		c.handleRawFrame(kind, raw)
	}
	return scanner.Err()
}

// splitOnBang is a bufio.SplitFunc that treats '!' as the frame
// terminator, matching the uplink framing's own termination rule
// rather than newlines.
func splitOnBang(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, b := range data {
		if b == '!' {
			return i + 1, data[:i+1], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (c *Core) handleRawFrame(kind channel.Kind, raw string) {
	parsed, err := parser.Parse(raw, kind, c.Table, c.Config.TcmdRequireUniqueTssent, c.Agenda.Seen)
	if err != nil {
		c.Logs.Log(logging.SubsystemTelecommand, logging.SeverityWarning, logging.AllSinks,
			"rejecting malformed telecommand: %v", err)
		return
	}

	entry := agenda.Entry{
		DefIndex:        parsed.DefIndex,
		Name:            parsed.Name,
		ArgsStr:         parsed.ArgsStr,
		Channel:         parsed.Channel,
		TsSentMs:        parsed.TsSentMs,
		TsExecMs:        parsed.TsExecMs,
		ResponseLogFile: parsed.ResponseLogFile,
	}
	if err := c.Agenda.Add(entry); err != nil {
		c.Logs.Log(logging.SubsystemTelecommand, logging.SeverityWarning, logging.AllSinks,
			"agenda add failed for %s: %v", parsed.Name, err)
	}
}

// ExecutorLoop repeatedly picks the earliest due agenda entry and runs
// it to completion, sleeping briefly between empty scans. resp routes
// the TcmdResponse downlink; files appends response text when an entry
// names a response log file.
func (c *Core) ExecutorLoop(resp agenda.ResponseSink, files agenda.FileAppender, sleep func(time.Duration), stop func() bool) {
	for {
		if stop != nil && stop() {
			return
		}
		slot, entry, ok := c.Agenda.PickNext(uint64(c.Time.UnixEpochMs()))
		if !ok {
			sleep(50 * time.Millisecond)
			continue
		}
		c.Agenda.Execute(slot, c.Time, resp, files)
		if entry.Channel == channel.Radio1 {
			c.NoteUplink()
		}
	}
}
