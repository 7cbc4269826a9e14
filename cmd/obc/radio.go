package main

import (
	"net"
	"sync"

	"github.com/cts1-flightsoftware/obc-core/internal/downlink"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink/bulk"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
	"github.com/cts1-flightsoftware/obc-core/internal/rfswitch"
	"github.com/cts1-flightsoftware/obc-core/internal/timeservice"
)

// benchRadio stands in for the radio modem on a bench: every downlink
// packet (beacon, telecommand response, bulk chunk) is KISS-framed and
// written to whichever bench client is currently connected over TCP.
// With no client connected, frames are dropped and only the debug log
// records the attempt, matching a radio transmitting with nobody
// listening. A real build would replace the net.Conn with the modem's
// I2C transmit path.
type benchRadio struct {
	mutex sync.Mutex
	conn  net.Conn

	framer *downlink.Framer
	rf     *rfswitch.Controller
	time   *timeservice.Service
	logs   *logging.Logger
}

func newBenchRadio(framer *downlink.Framer, rf *rfswitch.Controller, ts *timeservice.Service, logs *logging.Logger) *benchRadio {
	return &benchRadio{framer: framer, rf: rf, time: ts, logs: logs}
}

// Attach makes conn the active downlink destination, replacing any
// previous client.
func (r *benchRadio) Attach(conn net.Conn) {
	r.mutex.Lock()
	r.conn = conn
	r.mutex.Unlock()
}

// Detach clears conn if it is still the active client.
func (r *benchRadio) Detach(conn net.Conn) {
	r.mutex.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mutex.Unlock()
}

func (r *benchRadio) send(packetType downlink.PacketType, payload []byte) error {
	frame, err := r.framer.EncodeFrame(packetType, payload)
	if err != nil {
		return err
	}

	r.mutex.Lock()
	conn := r.conn
	r.mutex.Unlock()
	if conn == nil {
		return nil
	}

	if _, err := conn.Write(frame); err != nil {
		r.Detach(conn)
		return err
	}
	return nil
}

// EmitBeacon satisfies supervisor.BeaconEmitter: assemble the basic
// beacon payload from live RF switch and time-service state and
// downlink it.
func (r *benchRadio) EmitBeacon() error {
	pkt := downlink.BeaconPacket{
		SatelliteName:     "CTS1",
		ActiveAntenna:     uint8(r.rf.ActiveAntenna()),
		ControlMode:       uint8(r.rf.Mode()),
		UptimeMs:          uint32(r.time.UptimeMs()),
		SinceLastUplinkMs: uint32(r.rf.SinceLastUplink().Milliseconds()),
		UnixEpochMs:       r.time.UnixEpochMs(),
	}
	return r.send(downlink.PacketBeaconMinimal, pkt.Encode())
}

// TcmdResponse satisfies agenda.ResponseSink. Response text is clipped
// so the framed packet still fits the configured per-frame payload
// ceiling; a real handler's response buffer is bounded anyway.
func (r *benchRadio) TcmdResponse(tsSentMs uint64, code uint8, durationMs uint16, text []byte) {
	if max := r.framer.MaxAppPayload - 12; max > 0 && len(text) > max {
		text = text[:max]
	}
	pkt := downlink.TcmdResponsePacket{
		TsSentMs:     tsSentMs,
		ResponseCode: code,
		DurationMs:   durationMs,
		ResponseText: text,
	}
	if err := r.send(downlink.PacketTcmdResponse, pkt.Encode()); err != nil && r.logs != nil {
		r.logs.Log(logging.SubsystemTelecommand, logging.SeverityError,
			logging.AllSinksExcept(logging.SinkSet(0).With(logging.SinkUHFRadio)),
			"downlinking telecommand response failed: %v", err)
	}
}

// SendBulkPacket satisfies bulk.Sender, picking the packet type from
// the chunk's position in the session.
func (r *benchRadio) SendBulkPacket(p bulk.Packet) error {
	packetType := downlink.PacketDownlinkNext
	switch {
	case p.IsLast:
		packetType = downlink.PacketDownlinkLast
	case p.IsFirst:
		packetType = downlink.PacketDownlinkFirst
	}

	encoded := downlink.BulkPacket{
		SeqNum:         p.SeqNum,
		TotalSeqNum:    p.TotalSeqNum,
		AbsoluteOffset: p.AbsoluteOffset,
		Data:           p.Data,
	}.Encode()
	return r.send(packetType, encoded)
}
