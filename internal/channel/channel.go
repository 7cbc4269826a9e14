// Package channel names the uplink/downlink transport channels a
// telecommand can arrive on or a response can be routed to, and supplies
// concrete io.ReadWriter implementations: a real serial port for flight
// hardware, and an in-memory pipe for tests and bench replay. The core
// only ever depends on the narrow io.ReadWriter contract; radio-modem
// driver internals live behind it.
package channel

import (
	"io"
	"net"

	serial "github.com/tarm/goserial"
)

// Kind identifies the transport a telecommand arrived on or a response
// should be routed to.
type Kind uint8

const (
	DebugUART Kind = iota
	Radio1
)

func (k Kind) String() string {
	switch k {
	case DebugUART:
		return "debug_uart"
	case Radio1:
		return "radio1"
	default:
		return "unknown_channel"
	}
}

// OpenSerial opens a real serial device at the given path and baud
// rate, returning the plain io.ReadWriteCloser the rest of the core
// consumes.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	cfg := &serial.Config{Name: device, Baud: baud}
	return serial.OpenPort(cfg)
}

// NewLoopback returns a pair of connected in-memory pipes usable as an
// io.ReadWriteCloser transport in tests and the bench-replay CLI, without
// requiring a real UART or radio link.
func NewLoopback() (a, b io.ReadWriteCloser) {
	ca, cb := net.Pipe()
	return ca, cb
}
