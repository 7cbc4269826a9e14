package supervisor

import (
	"testing"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
)

type fakeBeacon struct{ calls int }

func (b *fakeBeacon) EmitBeacon() error {
	b.calls++
	return nil
}

type fakeEps struct {
	disabled []string
	calls    int
}

func (e *fakeEps) CheckOverCurrent() ([]string, error) {
	e.calls++
	return e.disabled, nil
}

type fakeResetter struct{ resetCalled bool }

func (r *fakeResetter) Reset() { r.resetCalled = true }

type fakeRotator struct{ calls int }

func (r *fakeRotator) HandleSyncAndClose() { r.calls++ }

type fakeUptime struct{ ms uint64 }

func (u *fakeUptime) UptimeMs() uint64 { return u.ms }

func TestTickRunsStepsInOrder(t *testing.T) {
	beacon := &fakeBeacon{}
	eps := &fakeEps{}
	rotator := &fakeRotator{}
	uptime := &fakeUptime{ms: 1000}

	s := New(Config{
		Beacon:     beacon,
		Eps:        eps,
		LogRotator: rotator,
		Uptime:     uptime,
	})
	s.Tick()

	if beacon.calls != 1 {
		t.Errorf("beacon calls = %d, want 1", beacon.calls)
	}
	if eps.calls != 1 {
		t.Errorf("eps calls = %d, want 1", eps.calls)
	}
	if rotator.calls != 1 {
		t.Errorf("rotator calls = %d, want 1", rotator.calls)
	}
}

func TestSystemResetTriggersPastInterval(t *testing.T) {
	resetter := &fakeResetter{}
	uptime := &fakeUptime{ms: 100_000}

	s := New(Config{
		Resetter:            resetter,
		Uptime:              uptime,
		SystemResetInterval: 50_000 * time.Millisecond,
	})
	s.Tick()

	if !resetter.resetCalled {
		t.Error("expected system reset to be triggered")
	}
}

func TestSystemResetDoesNotTriggerBeforeInterval(t *testing.T) {
	resetter := &fakeResetter{}
	uptime := &fakeUptime{ms: 1000}

	s := New(Config{
		Resetter:            resetter,
		Uptime:              uptime,
		SystemResetInterval: 50_000 * time.Millisecond,
	})
	s.Tick()

	if resetter.resetCalled {
		t.Error("did not expect system reset before interval elapsed")
	}
}

// An EPS battery percentage of 9% disables MPI 5V, MPI 12V, camera,
// and boom while leaving OBC/COMMS untouched.
func TestSafeModeDisablesNonEssentialChannels(t *testing.T) {
	ctrl := &recordingChannelController{}
	err := CheckAndEnterSafeMode(ctrl, nil, EpsStatus{BatteryPercent: 9})
	if err != nil {
		t.Fatalf("CheckAndEnterSafeMode: %v", err)
	}
	want := map[string]bool{"MPI_5V": false, "MPI_12V": false, "CAMERA": false, "BOOM": false}
	for ch, enabled := range want {
		if got, ok := ctrl.states[ch]; !ok || got != enabled {
			t.Errorf("channel %s enabled=%v, want %v", ch, got, enabled)
		}
	}
	if _, touched := ctrl.states["OBC"]; touched {
		t.Error("OBC channel should not be touched by safe mode")
	}
	if _, touched := ctrl.states["COMMS"]; touched {
		t.Error("COMMS channel should not be touched by safe mode")
	}
}

func TestSafeModeNotTriggeredAboveThreshold(t *testing.T) {
	ctrl := &recordingChannelController{}
	err := CheckAndEnterSafeMode(ctrl, nil, EpsStatus{BatteryPercent: 50})
	if err != nil {
		t.Fatalf("CheckAndEnterSafeMode: %v", err)
	}
	if len(ctrl.states) != 0 {
		t.Error("expected no channel changes above battery threshold")
	}
}

type recordingChannelController struct {
	states map[string]bool
}

func (c *recordingChannelController) SetChannelEnabled(channel string, enabled bool) error {
	if c.states == nil {
		c.states = make(map[string]bool)
	}
	c.states[channel] = enabled
	return nil
}

type fakePetter struct{ refreshCount int }

func (p *fakePetter) Refresh() error {
	p.refreshCount++
	return nil
}

func TestWatchdogPetCounts(t *testing.T) {
	clk := clock.NewStoppedClock(time.Unix(0, 0))
	petter := &fakePetter{}
	w := NewWatchdogPetter(petter, clk, nil)

	w.Pet()
	clk.Advance(1 * time.Second)
	w.Pet()

	if w.PetCount() != 2 {
		t.Errorf("PetCount = %d, want 2", w.PetCount())
	}
	if petter.refreshCount != 2 {
		t.Errorf("refreshCount = %d, want 2", petter.refreshCount)
	}
}
