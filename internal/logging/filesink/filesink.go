// Package filesink implements the lazy, time-rotated file log sink: a
// log file is opened only on the first write after boot or after the
// previous file was closed, named after the compact timestamp at open
// time, synced periodically, and closed after a longer window so the
// next write starts a fresh rotation file.
package filesink

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/logging"
)

// Default rotation intervals.
const (
	DefaultSyncInterval  = 15 * time.Second
	DefaultCloseInterval = 30 * time.Second
)

// TimestampNamer supplies the filename stem for a newly opened log file.
// Satisfied by *timeservice.Service's FormatTimestamp.
type TimestampNamer interface {
	FormatTimestamp() string
}

// Sink is the lazy file log sink. It implements logging.Sink.
type Sink struct {
	mutex sync.Mutex

	dir           string
	clk           clock.Clock
	namer         TimestampNamer
	syncInterval  time.Duration
	closeInterval time.Duration

	logger *logging.Logger // for re-logging filesystem errors to other sinks

	file      *os.File
	lastSync  time.Time
	lastClose time.Time
}

var _ logging.Sink = (*Sink)(nil)

// New creates a file sink rooted at dir, using clk for rotation timing and
// namer to name each rotation file. logger, if non-nil, receives
// re-logged filesystem errors (dispatched to every sink except this one).
func New(dir string, clk clock.Clock, namer TimestampNamer, logger *logging.Logger) *Sink {
	return &Sink{
		dir:           dir,
		clk:           clk,
		namer:         namer,
		syncInterval:  DefaultSyncInterval,
		closeInterval: DefaultCloseInterval,
		logger:        logger,
		lastClose:     clk.Now(),
	}
}

// Kind identifies this as the File sink.
func (s *Sink) Kind() logging.SinkKind { return logging.SinkFile }

// Dispatch writes line to the current log file, lazily opening one if
// none is open. Filesystem errors are never returned to the logging
// caller; they're re-logged to every other sink instead.
func (s *Sink) Dispatch(line string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.ensureOpenLocked(); err != nil {
		s.reportError("open", err)
		return nil
	}

	if _, err := s.file.WriteString(line); err != nil {
		s.reportError("write", err)
	}
	return nil
}

func (s *Sink) ensureOpenLocked() error {
	if s.file != nil {
		return nil
	}

	name := s.namer.FormatTimestamp() + ".log"
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	s.file = f
	s.lastSync = s.clk.Now()
	return nil
}

func (s *Sink) reportError(action string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Log(
		logging.SubsystemLFS, logging.SeverityError,
		logging.AllSinksExcept(logging.SinkSet(0).With(logging.SinkFile)),
		"file log sink %s failed: %v", action, err,
	)
}

// HandleSyncAndClose is the supervisor subtask invoked every few seconds:
// sync the open file if SyncInterval has elapsed since the last sync;
// close it (so the next write starts a new rotation window) if
// CloseInterval has elapsed since the previous close.
func (s *Sink) HandleSyncAndClose() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return
	}

	now := s.clk.Now()

	if now.Sub(s.lastSync) >= s.syncInterval {
		if err := s.file.Sync(); err != nil {
			s.reportError("sync", err)
		}
		s.lastSync = now
	}

	if now.Sub(s.lastClose) >= s.closeInterval {
		if err := s.file.Close(); err != nil {
			s.reportError("close", err)
		}
		s.file = nil
		s.lastClose = now
	}
}

// CurrentPath returns the path of the currently open log file, or "" if
// none is open. Exposed for tests and diagnostics.
func (s *Sink) CurrentPath() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.file == nil {
		return ""
	}
	return s.file.Name()
}

// AppendResponseFile appends text to name, a file named by a
// telecommand's @resp_fname tag, rooted under the same directory as
// rotation log files. It satisfies agenda.FileAppender.
func (s *Sink) AppendResponseFile(name string, text []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(text)
	return err
}
