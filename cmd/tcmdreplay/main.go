// tcmdreplay is a ground-support tool for replaying a captured telecommand
// log against a bench OBC over TCP or a serial link, or for decoding a log
// offline without a live connection. Not part of the flight image.
package main

import (
	"log/slog"
	"os"

	"github.com/cts1-flightsoftware/obc-core/cmd/tcmdreplay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
