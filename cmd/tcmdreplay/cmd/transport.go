package cmd

import (
	"fmt"
	"io"
	"net"

	"github.com/cts1-flightsoftware/obc-core/internal/channel"
)

// dialTarget opens whichever transport the user selected with --addr
// or --serial.
func dialTarget() (io.ReadWriteCloser, error) {
	switch {
	case addr != "":
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", addr, err)
		}
		return conn, nil
	case serialPort != "":
		conn, err := channel.OpenSerial(serialPort, baudRate)
		if err != nil {
			return nil, fmt.Errorf("opening serial port %s: %w", serialPort, err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("one of --addr or --serial is required")
	}
}
