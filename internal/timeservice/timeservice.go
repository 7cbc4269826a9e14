// Package timeservice provides the process-wide monotonic-uptime and
// synchronizable Unix-epoch clock used throughout the OBC core. The
// epoch is always reconstructed by adding elapsed monotonic time to
// the value recorded at the last sync, never by reading a hardware RTC
// directly, so that every timestamp computed within one sync interval
// agrees to within a single clock tick.
package timeservice

import (
	"fmt"
	"sync"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
)

// SyncSource identifies where the last epoch synchronization came
// from. Telecommand syncs come in two flavors, absolute and
// correction, and each gets its own source letter.
type SyncSource uint8

const (
	SourceNone SyncSource = iota
	SourceGNSS
	SourceTelecommandAbsolute
	SourceTelecommandCorrection
	SourceEpsRTC
)

// Letter returns the single-character code used in the compact
// timestamp format.
func (s SyncSource) Letter() byte {
	switch s {
	case SourceGNSS:
		return 'G'
	case SourceTelecommandAbsolute:
		return 'T'
	case SourceTelecommandCorrection:
		return 'C'
	case SourceEpsRTC:
		return 'E'
	case SourceNone:
		return 'N'
	default:
		return '?'
	}
}

// Service is the process-wide time authority. The zero value is not
// usable; construct one with New.
type Service struct {
	mutex sync.Mutex

	clk  clock.Clock
	boot time.Time // instant treated as uptime_ms == 0
	logs *logging.Logger

	epochAtLastSyncMs  int64
	uptimeAtLastSyncMs uint64
	lastSource         SyncSource
}

// New creates a Service whose uptime is measured from the instant New is
// called (the "boot" instant), using clk to read the current time. logs
// may be nil, in which case sync-ordering warnings are dropped.
func New(clk clock.Clock, logs *logging.Logger) *Service {
	return &Service{
		clk:        clk,
		boot:       clk.Now(),
		lastSource: SourceNone,
		logs:       logs,
	}
}

// UptimeMs returns milliseconds elapsed since the service was created.
func (s *Service) UptimeMs() uint64 {
	return uint64(s.clk.Now().Sub(s.boot).Milliseconds())
}

// SetEpochMs records a new Unix-epoch synchronization point. If the
// new epoch is earlier than the previous sync, the value is still
// accepted, but a warning is logged after the state has been updated.
func (s *Service) SetEpochMs(newEpochMs int64, source SyncSource) {
	s.mutex.Lock()
	uptimeNow := s.UptimeMs()
	wasEarlier := newEpochMs < s.epochAtLastSyncMs
	s.epochAtLastSyncMs = newEpochMs
	s.uptimeAtLastSyncMs = uptimeNow
	s.lastSource = source
	s.mutex.Unlock()

	if wasEarlier && s.logs != nil {
		s.logs.Log(logging.SubsystemTelecommand, logging.SeverityWarning, logging.AllSinks,
			"setting current time to before the last sync")
	}
}

// UnixEpochMs returns the current reconstructed Unix epoch time in
// milliseconds: epoch_at_last_sync + (uptime_now - uptime_at_last_sync).
func (s *Service) UnixEpochMs() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	deltaMs := int64(s.UptimeMs() - s.uptimeAtLastSyncMs)
	return s.epochAtLastSyncMs + deltaMs
}

// FormatTimestamp renders the compact form "EEEEEEEEEEEEE+DDDDDDDDDD_X":
// the 13-digit zero-padded sync epoch, the 10-digit delta uptime since
// that sync, and the single-letter source code.
func (s *Service) FormatTimestamp() string {
	s.mutex.Lock()
	epoch := s.epochAtLastSyncMs
	uptimeAtSync := s.uptimeAtLastSyncMs
	source := s.lastSource
	s.mutex.Unlock()

	deltaMs := s.UptimeMs() - uptimeAtSync
	return fmt.Sprintf("%013d+%010d_%c", epoch, deltaMs, source.Letter())
}

// FormatDateTime renders the human-friendly form
// "yyyymmddTHHMMSS.sss_X_delta".
func (s *Service) FormatDateTime() string {
	epochMs := s.UnixEpochMs()

	s.mutex.Lock()
	uptimeAtSync := s.uptimeAtLastSyncMs
	source := s.lastSource
	s.mutex.Unlock()

	seconds := epochMs / 1000
	ms := epochMs - seconds*1000
	t := time.Unix(seconds, 0).UTC()
	deltaMs := s.UptimeMs() - uptimeAtSync

	return fmt.Sprintf("%04d%02d%02dT%02d%02d%02d.%03d_%c_%d",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		ms, source.Letter(), deltaMs)
}
