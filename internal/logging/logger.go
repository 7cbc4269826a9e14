// Package logging is the severity/subsystem/sink-masked log router: a
// process-wide Log call that formats one line, stores it in a circular
// in-RAM table (so a failed sink can be replayed later), and fans it
// out to every sink whose enablement, kind mask, and severity masks
// all pass.
package logging

import (
	"fmt"
	"sync"
)

// TimestampSource supplies the timestamp prefix for a rendered log line.
// It is satisfied by *timeservice.Service; logging depends only on this
// narrow interface to avoid an import cycle (the time service itself logs
// a warning when a sync moves time backwards).
type TimestampSource interface {
	FormatTimestamp() string
}

// subsystemState is the mutable enablement state of one subsystem.
type subsystemState struct {
	fileLoggingOn    bool
	severityMask     SeverityMask
	filePathOverride string
}

// sinkState is the mutable enablement state of one sink.
type sinkState struct {
	enabled      bool
	severityMask SeverityMask
	sink         Sink
}

// Logger is the process-wide log router. Construct with New.
type Logger struct {
	mutex sync.Mutex

	clock TimestampSource
	ring  ring

	subsystems [SubsystemUnknown + 1]subsystemState
	sinks      map[SinkKind]*sinkState
}

// New creates a Logger with every subsystem defaulted to "Normal and
// above" severity and debug disabled, and the default sink set enabled
// (UHF radio + umbilical UART on, file sink off).
func New(clk TimestampSource) *Logger {
	l := &Logger{
		clock: clk,
		sinks: make(map[SinkKind]*sinkState),
	}
	for i := range l.subsystems {
		l.subsystems[i] = subsystemState{
			severityMask: SeverityAtLeast(SeverityNormal),
		}
	}
	return l
}

// RegisterSink attaches a sink. The sink starts enabled according to
// DefaultEnabledSinks, with "Normal and above" severity and debug
// disabled.
func (l *Logger) RegisterSink(s Sink) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.sinks[s.Kind()] = &sinkState{
		enabled:      DefaultEnabledSinks.Has(s.Kind()),
		severityMask: SeverityAtLeast(SeverityNormal),
		sink:         s,
	}
}

// SetSinkEnabled enables or disables a registered sink.
func (l *Logger) SetSinkEnabled(kind SinkKind, enabled bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if st, ok := l.sinks[kind]; ok {
		st.enabled = enabled
	}
}

// IsSinkEnabled reports whether a sink is currently enabled.
func (l *Logger) IsSinkEnabled(kind SinkKind) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	st, ok := l.sinks[kind]
	return ok && st.enabled
}

// SetSinkDebugEnabled toggles whether a sink passes Debug-severity
// messages, by setting or clearing the Debug bit in the sink's own
// severityMask. That is the same mask Log's dispatch gate consults, so
// this is not a second independent flag.
func (l *Logger) SetSinkDebugEnabled(kind SinkKind, enabled bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if st, ok := l.sinks[kind]; ok {
		if enabled {
			st.severityMask = st.severityMask.With(SeverityDebug)
		} else {
			st.severityMask = st.severityMask.Without(SeverityDebug)
		}
	}
}

// SetSinkSeverityMask replaces a sink's severity filter.
func (l *Logger) SetSinkSeverityMask(kind SinkKind, mask SeverityMask) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if st, ok := l.sinks[kind]; ok {
		st.severityMask = mask
	}
}

// SetSubsystemDebugEnabled toggles whether a subsystem emits Debug
// severity messages at all, by setting or clearing the Debug bit in
// the subsystem's own severityMask. That is the same mask Log's
// dispatch gate consults, so this is not a second independent flag.
func (l *Logger) SetSubsystemDebugEnabled(source Subsystem, enabled bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if enabled {
		l.subsystems[source].severityMask = l.subsystems[source].severityMask.With(SeverityDebug)
	} else {
		l.subsystems[source].severityMask = l.subsystems[source].severityMask.Without(SeverityDebug)
	}
}

// SetSubsystemSeverityMask replaces a subsystem's severity filter.
func (l *Logger) SetSubsystemSeverityMask(source Subsystem, mask SeverityMask) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.subsystems[source].severityMask = mask
}

// SetSubsystemFileLoggingEnabled records a subsystem's file-logging
// flag, read back by IsSubsystemFileLoggingEnabled. Log's dispatch gate
// does not consult it: whether a message reaches the file sink depends
// only on the gate described on Log.
func (l *Logger) SetSubsystemFileLoggingEnabled(source Subsystem, enabled bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.subsystems[source].fileLoggingOn = enabled
}

// IsSubsystemFileLoggingEnabled reports the current state set by
// SetSubsystemFileLoggingEnabled.
func (l *Logger) IsSubsystemFileLoggingEnabled(source Subsystem) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.subsystems[source].fileLoggingOn
}

// Log renders and routes one message:
//
//  1. Fast path: if severity is Debug and neither the subsystem nor any
//     sink has debug enabled, return immediately without formatting
//     anything (this guards hot paths from the cost of rendering).
//  2. Format the timestamp and message into one line and store it in the
//     circular in-RAM table.
//  3. For each sink: dispatch iff sink.enabled && sinkMask has sink.Kind()
//     && sink.severityMask has severity && subsystem.severityMask has
//     severity.
func (l *Logger) Log(source Subsystem, severity Severity, sinkMask SinkSet, format string, args ...any) {
	if severity == SeverityDebug && !l.debugEnabledAnywhere(source) {
		return
	}

	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s [%s:%s]: %s\n", l.clock.FormatTimestamp(), source, severity, message)

	l.ring.push(Entry{Source: source, Severity: severity, SinkMask: sinkMask, Line: line})

	l.mutex.Lock()
	subsystemMask := l.subsystems[source].severityMask
	var candidates []*sinkState
	for _, st := range l.sinks {
		candidates = append(candidates, st)
	}
	l.mutex.Unlock()

	if !subsystemMask.Has(severity) {
		return
	}

	for _, st := range candidates {
		l.mutex.Lock()
		enabled := st.enabled
		kind := st.sink.Kind()
		severityMask := st.severityMask
		l.mutex.Unlock()

		if enabled && sinkMask.Has(kind) && severityMask.Has(severity) {
			_ = st.sink.Dispatch(line)
		}
	}
}

// debugEnabledAnywhere checks the real dispatch masks directly, so the
// fast path can never disagree with the full dispatch gate below it.
func (l *Logger) debugEnabledAnywhere(source Subsystem) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.subsystems[source].severityMask.Has(SeverityDebug) {
		return true
	}
	for _, st := range l.sinks {
		if st.severityMask.Has(SeverityDebug) {
			return true
		}
	}
	return false
}

// RingSnapshot returns every entry currently held in the in-RAM backup
// table, oldest first.
func (l *Logger) RingSnapshot() []Entry {
	return l.ring.Snapshot()
}
