package logging

import (
	"errors"
	"strings"
	"testing"
)

type fakeClock struct{}

func (fakeClock) FormatTimestamp() string { return "0000000000000+0000000000_N" }

type recordingSink struct {
	kind  SinkKind
	lines []string
	err   error
}

func (s *recordingSink) Kind() SinkKind { return s.kind }

func (s *recordingSink) Dispatch(line string) error {
	s.lines = append(s.lines, line)
	return s.err
}

func TestLogDispatchesToEnabledSinkOnly(t *testing.T) {
	l := New(fakeClock{})
	radio := &recordingSink{kind: SinkUHFRadio}
	file := &recordingSink{kind: SinkFile}
	l.RegisterSink(radio)
	l.RegisterSink(file) // disabled by default

	l.Log(SubsystemOBC, SeverityNormal, AllSinks, "hello %s", "world")

	if len(radio.lines) != 1 {
		t.Fatalf("radio sink got %d lines, want 1", len(radio.lines))
	}
	if !strings.Contains(radio.lines[0], "hello world") {
		t.Errorf("line = %q, missing message", radio.lines[0])
	}
	if !strings.Contains(radio.lines[0], "OBC") {
		t.Errorf("line = %q, missing subsystem name", radio.lines[0])
	}
	if len(file.lines) != 0 {
		t.Errorf("file sink got %d lines, want 0 (disabled by default)", len(file.lines))
	}
}

func TestLogRespectsSinkMask(t *testing.T) {
	l := New(fakeClock{})
	radio := &recordingSink{kind: SinkUHFRadio}
	l.RegisterSink(radio)

	l.Log(SubsystemOBC, SeverityNormal, SinkSet(0).With(SinkFile), "should not reach radio")

	if len(radio.lines) != 0 {
		t.Errorf("radio sink got %d lines, want 0", len(radio.lines))
	}
}

func TestDebugFastPathSkipsWhenNothingWantsDebug(t *testing.T) {
	l := New(fakeClock{})
	radio := &recordingSink{kind: SinkUHFRadio}
	l.RegisterSink(radio)

	l.Log(SubsystemOBC, SeverityDebug, AllSinks, "debug message")

	if len(radio.lines) != 0 {
		t.Errorf("debug message reached a sink with debug disabled everywhere")
	}
	if len(l.RingSnapshot()) != 0 {
		t.Errorf("debug fast path should skip the ring entirely, got %d entries", len(l.RingSnapshot()))
	}
}

func TestDebugReachesSinkWhenSubsystemDebugEnabled(t *testing.T) {
	l := New(fakeClock{})
	radio := &recordingSink{kind: SinkUHFRadio}
	l.RegisterSink(radio)
	l.SetSubsystemDebugEnabled(SubsystemOBC, true)
	l.SetSinkSeverityMask(SinkUHFRadio, SeverityAll)

	l.Log(SubsystemOBC, SeverityDebug, AllSinks, "debug message")

	if len(radio.lines) != 1 {
		t.Errorf("got %d lines, want 1", len(radio.lines))
	}
}

func TestAllSinksExcept(t *testing.T) {
	got := AllSinksExcept(SinkSet(0).With(SinkFile))
	if got.Has(SinkFile) {
		t.Errorf("AllSinksExcept(File) still has File")
	}
	if !got.Has(SinkUHFRadio) || !got.Has(SinkUmbilicalUART) {
		t.Errorf("AllSinksExcept(File) missing other sinks: %v", got)
	}
}

func TestRingKeepsEntryRegardlessOfSinkFailure(t *testing.T) {
	l := New(fakeClock{})
	radio := &recordingSink{kind: SinkUHFRadio, err: errors.New("boom")}
	l.RegisterSink(radio)

	l.Log(SubsystemOBC, SeverityError, AllSinks, "sink will fail")

	snap := l.RingSnapshot()
	if len(snap) != 1 {
		t.Fatalf("got %d ring entries, want 1", len(snap))
	}
}

func TestRingWrapsAtCapacity(t *testing.T) {
	l := New(fakeClock{})
	for i := 0; i < RingCapacity+5; i++ {
		l.Log(SubsystemOBC, SeverityNormal, AllSinks, "msg %d", i)
	}
	snap := l.RingSnapshot()
	if len(snap) != RingCapacity {
		t.Fatalf("got %d entries, want %d", len(snap), RingCapacity)
	}
	if !strings.Contains(snap[0].Line, "msg 5") {
		t.Errorf("oldest surviving entry = %q, want to contain \"msg 5\"", snap[0].Line)
	}
}
