package timeservice

import (
	"testing"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/clock"
)

func TestUptimeMsAdvancesWithClock(t *testing.T) {
	base := time.Date(2024, time.June, 23, 18, 1, 32, 0, time.UTC)
	c := clock.NewStoppedClock(base)
	svc := New(c, nil)

	if got := svc.UptimeMs(); got != 0 {
		t.Fatalf("UptimeMs() at boot = %d, want 0", got)
	}

	c.Advance(250 * time.Millisecond)
	if got := svc.UptimeMs(); got != 250 {
		t.Errorf("UptimeMs() after advance = %d, want 250", got)
	}
}

func TestSetEpochMsAndUnixEpochMs(t *testing.T) {
	base := time.Date(2024, time.June, 23, 18, 1, 32, 0, time.UTC)
	c := clock.NewStoppedClock(base)
	svc := New(c, nil)

	svc.SetEpochMs(1719169299720, SourceGNSS)
	if got := svc.UnixEpochMs(); got != 1719169299720 {
		t.Errorf("UnixEpochMs() = %d, want 1719169299720", got)
	}

	c.Advance(42 * time.Second)
	if got := svc.UnixEpochMs(); got != 1719169299720+42000 {
		t.Errorf("UnixEpochMs() after advance = %d, want %d", got, 1719169299720+42000)
	}
}

func TestFormatTimestampMatchesCompactForm(t *testing.T) {
	base := time.Date(2024, time.June, 23, 18, 1, 32, 0, time.UTC)
	c := clock.NewStoppedClock(base)
	svc := New(c, nil)
	svc.SetEpochMs(1719169299720, SourceTelecommandAbsolute)
	c.Advance(42 * time.Second)

	got := svc.FormatTimestamp()
	want := "1719169299720+0000042000_T"
	if got != want {
		t.Errorf("FormatTimestamp() = %q, want %q", got, want)
	}
}

func TestSyncSourceLetters(t *testing.T) {
	cases := map[SyncSource]byte{
		SourceNone:                  'N',
		SourceGNSS:                  'G',
		SourceTelecommandAbsolute:   'T',
		SourceTelecommandCorrection: 'C',
		SourceEpsRTC:                'E',
	}
	for source, want := range cases {
		if got := source.Letter(); got != want {
			t.Errorf("Letter(%v) = %q, want %q", source, got, want)
		}
	}
}

func TestSetEpochMsAcceptsEarlierSync(t *testing.T) {
	base := time.Date(2024, time.June, 23, 18, 1, 32, 0, time.UTC)
	c := clock.NewStoppedClock(base)

	svc := New(c, nil)
	svc.SetEpochMs(1000, SourceGNSS)
	svc.SetEpochMs(500, SourceGNSS) // earlier than the previous sync; still accepted

	if got := svc.UnixEpochMs(); got != 500 {
		t.Errorf("UnixEpochMs() = %d, want 500 (still accepted despite being earlier)", got)
	}
}
