// Package bulk implements the bulk-downlink session state machine: at
// most one active session streaming a region of a file as sequenced,
// paced packets. Validation order on start: reject an offset past EOF,
// clamp max_bytes to a 1,000,000-byte ceiling then to the remaining
// file length. Sequence numbers are 1-indexed and the total is a
// ceiling division by the payload capacity.
package bulk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// State is the bulk-downlink session's lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateDownlinking
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDownlinking:
		return "downlinking"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MaxBytesCeiling is the absolute ceiling max_bytes is clamped to
// before being further clamped to the file's remaining length.
const MaxBytesCeiling = 1_000_000

// Packet is one sequenced chunk ready for downlink.
type Packet struct {
	SeqNum         uint8
	TotalSeqNum    uint8
	AbsoluteOffset uint32
	Data           []byte
	IsFirst        bool
	IsLast         bool
}

// Sender transmits one assembled bulk packet. Implemented in the flight
// binary by cmd/obc's benchRadio, which encodes through downlink.Framer.
type Sender interface {
	SendBulkPacket(p Packet) error
}

// Session is the single-active bulk-downlink state machine. The zero
// value is ready to use.
type Session struct {
	mutex sync.Mutex

	file                *os.File
	path                string
	absoluteStartOffset uint32
	nextReadOffset      uint32
	totalBytes          uint32
	bytesSent           uint32
	nextSeqNum          uint8
	totalSeqNum         uint8
	payloadCapacity     uint32
	state               State
}

// ErrOffsetPastEOF is returned by Start when startOffset is beyond the
// file's current size.
var ErrOffsetPastEOF = errors.New("bulk: start offset is past end of file")

// ErrNotDownlinking / ErrNotPaused guard the pause/resume state
// transitions.
var (
	ErrNotDownlinking = errors.New("bulk: pause is only valid while downlinking")
	ErrNotPaused      = errors.New("bulk: resume is only valid while paused")
)

// Start begins a new session, closing any previously open one first
// (an implicit cancel). maxBytes is clamped to MaxBytesCeiling and
// then to the file's remaining length; payloadCapacity bounds each
// packet's data field.
func (s *Session) Start(path string, startOffset uint32, maxBytes uint32, payloadCapacity uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.closeLocked()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening bulk downlink file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("statting bulk downlink file: %w", err)
	}
	size := uint32(info.Size())
	if uint64(startOffset) > uint64(size) {
		f.Close()
		return ErrOffsetPastEOF
	}

	if _, err := f.Seek(int64(startOffset), io.SeekStart); err != nil {
		f.Close()
		return fmt.Errorf("seeking bulk downlink file: %w", err)
	}

	if maxBytes > MaxBytesCeiling {
		maxBytes = MaxBytesCeiling
	}
	remaining := size - startOffset
	if maxBytes > remaining {
		maxBytes = remaining
	}
	if payloadCapacity == 0 {
		payloadCapacity = 1
	}

	s.file = f
	s.path = path
	s.absoluteStartOffset = startOffset
	s.nextReadOffset = startOffset
	s.totalBytes = maxBytes
	s.bytesSent = 0
	s.nextSeqNum = 1
	s.payloadCapacity = payloadCapacity
	s.totalSeqNum = ceilDivU8(maxBytes, payloadCapacity)
	s.state = StateDownlinking
	return nil
}

func ceilDivU8(total, chunk uint32) uint8 {
	if chunk == 0 {
		return 0
	}
	n := (total + chunk - 1) / chunk
	if n > 255 {
		n = 255
	}
	return uint8(n)
}

// Pause transitions a Downlinking session to Paused. It is only valid in
// the Downlinking state.
func (s *Session) Pause() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.state != StateDownlinking {
		return ErrNotDownlinking
	}
	s.state = StatePaused
	return nil
}

// Resume transitions a Paused session back to Downlinking. It is only
// valid in the Paused state.
func (s *Session) Resume() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.state != StatePaused {
		return ErrNotPaused
	}
	s.state = StateDownlinking
	return nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Close tears down any open session, discarding progress. Safe to call
// when no session is open.
func (s *Session) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.state = StateIdle
}

// Step reads the next chunk (if the session is Downlinking) and returns
// the assembled packet. It returns ok=false if the session is not in the
// Downlinking state (e.g. Idle or Paused) or the file read fails.
func (s *Session) Step() (pkt Packet, ok bool, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != StateDownlinking {
		return Packet{}, false, nil
	}

	remaining := s.totalBytes - s.bytesSent
	chunkLen := s.payloadCapacity
	if chunkLen > remaining {
		chunkLen = remaining
	}

	buf := make([]byte, chunkLen)
	n, readErr := io.ReadFull(s.file, buf)
	if readErr != nil && readErr != io.ErrUnexpectedEOF {
		s.closeLocked()
		return Packet{}, false, fmt.Errorf("reading bulk downlink file: %w", readErr)
	}
	buf = buf[:n]

	pkt = Packet{
		SeqNum:         s.nextSeqNum,
		TotalSeqNum:    s.totalSeqNum,
		AbsoluteOffset: s.nextReadOffset,
		Data:           buf,
		IsFirst:        s.nextSeqNum == 1,
	}

	s.nextReadOffset += uint32(n)
	s.bytesSent += uint32(n)
	s.nextSeqNum++

	if s.bytesSent >= s.totalBytes {
		pkt.IsLast = true
		s.closeLocked()
	}

	return pkt, true, nil
}

// Run drives the session to completion, sending one packet per
// delayPerPacket interval via sender, blocking until the session
// reaches Idle (or the session is closed from another goroutine).
func (s *Session) Run(sender Sender, delayPerPacket time.Duration, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	for {
		if s.State() != StateDownlinking {
			if s.State() == StatePaused {
				sleep(delayPerPacket)
				continue
			}
			return nil
		}

		pkt, ok, err := s.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := sender.SendBulkPacket(pkt); err != nil {
			return fmt.Errorf("sending bulk packet: %w", err)
		}

		if pkt.IsLast {
			return nil
		}
		sleep(delayPerPacket)
	}
}

// BytesSent, TotalBytes, and Path expose read-only session progress for
// telemetry and tests.
func (s *Session) BytesSent() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.bytesSent
}

func (s *Session) TotalBytes() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.totalBytes
}

func (s *Session) Path() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.path
}

func (s *Session) TotalSeqNum() uint8 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.totalSeqNum
}
