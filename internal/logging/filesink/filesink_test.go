package filesink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
)

type stubNamer struct{ name string }

func (s stubNamer) FormatTimestamp() string { return s.name }

func TestDispatchOpensFileLazily(t *testing.T) {
	dir := t.TempDir()
	c := clock.NewStoppedClock(time.Unix(0, 0))
	namer := stubNamer{name: "0000000000000+0000000000_N"}
	sink := New(dir, c, namer, nil)

	if err := sink.Dispatch("first line\n"); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	path := filepath.Join(dir, namer.name+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "first line") {
		t.Errorf("file contents = %q, missing expected line", data)
	}
}

func TestHandleSyncAndCloseClosesAfterInterval(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(1000, 0)
	c := clock.NewStoppedClock(base)
	namer := stubNamer{name: "stamp1"}
	sink := New(dir, c, namer, nil)
	sink.closeInterval = 30 * time.Second
	sink.syncInterval = 15 * time.Second

	_ = sink.Dispatch("line\n")
	if sink.CurrentPath() == "" {
		t.Fatalf("expected file to be open after first write")
	}

	c.Advance(31 * time.Second)
	sink.HandleSyncAndClose()

	if sink.CurrentPath() != "" {
		t.Errorf("expected file to be closed after close interval elapsed")
	}
}

func TestDispatchReopensAfterClose(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(1000, 0)
	c := clock.NewStoppedClock(base)
	sink := New(dir, c, stubNamer{name: "first"}, nil)
	sink.closeInterval = 10 * time.Second

	_ = sink.Dispatch("a\n")
	c.Advance(11 * time.Second)
	sink.HandleSyncAndClose()

	c.SetTime(base.Add(11 * time.Second))
	sink2Namer := stubNamer{name: "second"}
	sink.namer = sink2Namer
	_ = sink.Dispatch("b\n")

	path := filepath.Join(dir, "second.log")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected a new rotation file %s: %v", path, err)
	}
}
