// Package tcmd holds the static telecommand definition table shared
// between the parser and the agenda: a slice of Definition values
// looked up by name.
package tcmd

import (
	"github.com/cts1-flightsoftware/obc-core/internal/channel"
)

// Readiness is advisory metadata about a telecommand's
// flight-worthiness. It does not gate execution: the executor
// dispatches on name match alone, readiness is informational only
// (e.g. for a ground tool listing available commands).
type Readiness uint8

const (
	ReadinessIdea Readiness = iota
	ReadinessNotImplemented
	ReadinessInProgress
	ReadinessGroundOnly
	ReadinessFlightTesting
	ReadinessOperational
)

func (r Readiness) String() string {
	switch r {
	case ReadinessIdea:
		return "idea"
	case ReadinessNotImplemented:
		return "not_implemented"
	case ReadinessInProgress:
		return "in_progress"
	case ReadinessGroundOnly:
		return "ground_only"
	case ReadinessFlightTesting:
		return "flight_testing"
	case ReadinessOperational:
		return "operational"
	default:
		return "unknown"
	}
}

// Handler executes one telecommand. args is the raw comma-separated
// argument string (unpacked with internal/argparser); ch identifies the
// channel the command arrived on; respBuf accumulates response text that
// the executor downlinks and optionally appends to a log file. The
// returned uint8 is the opaque handler return code that crosses the
// ground/flight wire boundary: 0 is success, anything else an
// implementation-defined failure.
type Handler func(args string, ch channel.Kind, respBuf *[]byte) uint8

// Definition is one row of the compile-time telecommand table.
type Definition struct {
	Name      string
	Handler   Handler
	ArgCount  uint8
	Readiness Readiness
}

// Table is the static telecommand definition table, looked up by name
// with a linear scan. The table is small (tens of entries), so a scan
// is simpler than a perfect hash and preserves exact-match semantics.
type Table struct {
	defs []Definition
}

// NewTable builds a Table from the given definitions. Names must be
// unique; NewTable does not enforce this, the table is hand-maintained
// and trusted.
func NewTable(defs []Definition) *Table {
	return &Table{defs: defs}
}

// Lookup returns the index and Definition matching name, or ok=false if
// no definition has that name.
func (t *Table) Lookup(name string) (index int, def Definition, ok bool) {
	for i, d := range t.defs {
		if d.Name == name {
			return i, d, true
		}
	}
	return 0, Definition{}, false
}

// ByIndex returns the Definition at index. Callers must only pass an
// index previously returned by Lookup.
func (t *Table) ByIndex(index int) Definition {
	return t.defs[index]
}

// Len returns the number of registered definitions.
func (t *Table) Len() int {
	return len(t.defs)
}
