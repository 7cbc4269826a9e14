// Package agenda implements the telecommand scheduling queue and
// executor: a fixed-capacity array of parsed telecommands with a
// parallel validity set, a replay-protection ring, and a
// Pick-next/Execute cycle that never runs a slot twice.
package agenda

import (
	"encoding/json"
	"sync"

	"github.com/cts1-flightsoftware/obc-core/internal/channel"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
	"github.com/cts1-flightsoftware/obc-core/internal/tcmd"
)

// DefaultCapacity is the agenda's default slot count.
const DefaultCapacity = 1000

// DefaultReplayRingCapacity is the default replay-ring size.
const DefaultReplayRingCapacity = 500

// Entry is one scheduled telecommand occupying an agenda slot.
type Entry struct {
	DefIndex        int
	Name            string
	ArgsStr         string
	Channel         channel.Kind
	TsSentMs        uint64
	TsExecMs        uint64
	ResponseLogFile string
}

// ResponseSink receives a telecommand's downlinked response after
// execution. The flight binary implements it with cmd/obc's benchRadio,
// which encodes through internal/downlink; Agenda only depends on this
// narrow contract to avoid an import cycle.
type ResponseSink interface {
	TcmdResponse(tsSentMs uint64, responseCode uint8, durationMs uint16, responseText []byte)
}

// FileAppender appends text to a named response-log file. Implemented by
// the logging subsystem's file sink in production.
type FileAppender interface {
	AppendResponseFile(name string, text []byte) error
}

// Agenda is the fixed-capacity scheduling queue. The zero value is not
// usable; construct one with New.
type Agenda struct {
	mutex sync.Mutex

	table *tcmd.Table

	entries  []Entry
	valid    []bool
	capacity int

	replayRing    []uint64
	replayNext    int
	replayFilled  bool
	requireUnique bool

	logs *logging.Logger
}

// Config configures a new Agenda.
type Config struct {
	Capacity            int
	ReplayRingCapacity  int
	RequireUniqueTsSent bool
}

// New creates an Agenda with the given telecommand table and config.
// Zero values in cfg fall back to the package defaults.
func New(table *tcmd.Table, cfg Config, logs *logging.Logger) *Agenda {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ringCap := cfg.ReplayRingCapacity
	if ringCap <= 0 {
		ringCap = DefaultReplayRingCapacity
	}
	return &Agenda{
		table:         table,
		entries:       make([]Entry, capacity),
		valid:         make([]bool, capacity),
		capacity:      capacity,
		replayRing:    make([]uint64, ringCap),
		requireUnique: cfg.RequireUniqueTsSent,
		logs:          logs,
	}
}

// ErrAgendaFull is returned by Add when no slot is available.
var ErrAgendaFull = errFull{}

type errFull struct{}

func (errFull) Error() string { return "agenda: no free slot" }

// ErrReplayRejected is returned by Add when replay protection rejects a
// repeated ts_sent_ms.
var ErrReplayRejected = errReplay{}

type errReplay struct{}

func (errReplay) Error() string { return "agenda: ts_sent already seen" }

// seenLocked reports whether tsSent already appears in the replay ring.
// Caller must hold a.mutex.
func (a *Agenda) seenLocked(tsSent uint64) bool {
	limit := len(a.replayRing)
	if !a.replayFilled {
		limit = a.replayNext
	}
	for i := 0; i < limit; i++ {
		if a.replayRing[i] == tsSent {
			return true
		}
	}
	return false
}

// Seen reports whether tsSent has already been accepted, for use as the
// parser's replay pre-check.
func (a *Agenda) Seen(tsSent uint64) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.seenLocked(tsSent)
}

func (a *Agenda) pushReplayLocked(tsSent uint64) {
	a.replayRing[a.replayNext] = tsSent
	a.replayNext = (a.replayNext + 1) % len(a.replayRing)
	if a.replayNext == 0 {
		a.replayFilled = true
	}
}

// Add inserts e into the first free slot. If replay protection is
// enabled and e.TsSentMs is non-zero and already present in the replay
// ring, Add rejects with ErrReplayRejected without consuming a slot.
func (a *Agenda) Add(e Entry) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.requireUnique && e.TsSentMs != 0 && a.seenLocked(e.TsSentMs) {
		if a.logs != nil {
			a.logs.Log(logging.SubsystemTelecommand, logging.SeverityWarning, logging.AllSinks,
				"rejecting replayed telecommand ts_sent=%d", e.TsSentMs)
		}
		return ErrReplayRejected
	}

	slot := -1
	for i, v := range a.valid {
		if !v {
			slot = i
			break
		}
	}
	if slot == -1 {
		if a.logs != nil {
			a.logs.Log(logging.SubsystemTelecommand, logging.SeverityError, logging.AllSinks,
				"agenda full, rejecting telecommand %s", e.Name)
		}
		return ErrAgendaFull
	}

	a.entries[slot] = e
	a.valid[slot] = true
	if e.TsSentMs != 0 {
		a.pushReplayLocked(e.TsSentMs)
	}
	return nil
}

// PickNext scans every valid slot and returns the index of the one with
// the smallest TsExecMs that is due (TsExecMs == 0, or TsExecMs <=
// nowEpochMs). A TsExecMs == 0 entry is eligible immediately and is
// returned as soon as it's seen rather than continuing the scan for an
// even-earlier due entry. Ties break by lowest slot index, i.e.
// insertion order.
func (a *Agenda) PickNext(nowEpochMs uint64) (slot int, entry Entry, ok bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	bestSlot := -1
	var bestTs uint64
	for i, v := range a.valid {
		if !v {
			continue
		}
		ts := a.entries[i].TsExecMs
		if ts == 0 {
			return i, a.entries[i], true
		}
		if ts > nowEpochMs {
			continue
		}
		if bestSlot == -1 || ts < bestTs {
			bestSlot = i
			bestTs = ts
		}
	}
	if bestSlot == -1 {
		return 0, Entry{}, false
	}
	return bestSlot, a.entries[bestSlot], true
}

// Invalidate clears a slot's validity bit without touching its contents.
// Execute clears the bit before running a handler so that undefined
// handler behavior cannot cause double-execution.
func (a *Agenda) Invalidate(slot int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.valid[slot] = false
}

// HandlerStartEnd is satisfied by anything that can read monotonic
// uptime, used to time handler execution duration.
type HandlerStartEnd interface {
	UptimeMs() uint64
}

// Execute invalidates slot, runs its handler synchronously, and routes
// the result: a TcmdResponse is always downlinked via resp; if the entry
// named a response log file, the response text is also appended via
// files.
func (a *Agenda) Execute(slot int, uptime HandlerStartEnd, resp ResponseSink, files FileAppender) uint8 {
	a.mutex.Lock()
	entry := a.entries[slot]
	a.valid[slot] = false
	a.mutex.Unlock()

	def := a.table.ByIndex(entry.DefIndex)

	var respBuf []byte
	startUptime := uptime.UptimeMs()
	code := def.Handler(entry.ArgsStr, entry.Channel, &respBuf)
	endUptime := uptime.UptimeMs()
	durationMs := uint16(endUptime - startUptime)

	if resp != nil {
		resp.TcmdResponse(entry.TsSentMs, code, durationMs, respBuf)
	}
	if entry.ResponseLogFile != "" && files != nil {
		_ = files.AppendResponseFile(entry.ResponseLogFile, respBuf)
	}
	return code
}

// DeleteBySent invalidates every slot whose TsSentMs matches ts. O(N).
func (a *Agenda) DeleteBySent(ts uint64) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	n := 0
	for i, v := range a.valid {
		if v && a.entries[i].TsSentMs == ts {
			a.valid[i] = false
			n++
		}
	}
	return n
}

// DeleteByName invalidates every slot whose telecommand name matches
// name. O(N).
func (a *Agenda) DeleteByName(name string) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	n := 0
	for i, v := range a.valid {
		if v && a.entries[i].Name == name {
			a.valid[i] = false
			n++
		}
	}
	return n
}

// DeleteAll invalidates every valid slot. O(N).
func (a *Agenda) DeleteAll() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	n := 0
	for i, v := range a.valid {
		if v {
			a.valid[i] = false
			n++
		}
	}
	return n
}

// UsedCount returns the number of currently valid slots, for tests and
// diagnostics.
func (a *Agenda) UsedCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	n := 0
	for _, v := range a.valid {
		if v {
			n++
		}
	}
	return n
}

// Fetch renders one JSON line per valid slot: {slot, channel, ts_sent,
// ts_exec}.
func (a *Agenda) Fetch() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var lines []string
	for i, v := range a.valid {
		if !v {
			continue
		}
		e := a.entries[i]
		line := struct {
			Slot    int    `json:"slot"`
			Channel string `json:"channel"`
			TsSent  uint64 `json:"ts_sent"`
			TsExec  uint64 `json:"ts_exec"`
		}{Slot: i, Channel: e.Channel.String(), TsSent: e.TsSentMs, TsExec: e.TsExecMs}
		b, err := json.Marshal(line)
		if err != nil {
			continue
		}
		lines = append(lines, string(b))
	}
	return lines
}
