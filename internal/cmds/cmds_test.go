package cmds

import (
	"os"
	"testing"
	"time"

	"github.com/cts1-flightsoftware/obc-core/internal/agenda"
	"github.com/cts1-flightsoftware/obc-core/internal/channel"
	"github.com/cts1-flightsoftware/obc-core/internal/clock"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink/bulk"
	"github.com/cts1-flightsoftware/obc-core/internal/rfswitch"
	"github.com/cts1-flightsoftware/obc-core/internal/timeservice"
)

type stubGPIO struct{}

func (stubGPIO) SetHigh(bool) error { return nil }

type stubADCS struct{}

func (stubADCS) EstimatedRollMilliDeg() (int32, error) { return 0, nil }

func TestHelloWorldAndEcho(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)

	idx, def, ok := table.Lookup("hello_world")
	if !ok {
		t.Fatal("hello_world not found in table")
	}
	var resp []byte
	if code := def.Handler("", channel.DebugUART, &resp); code != 0 {
		t.Errorf("hello_world code = %d, want 0", code)
	}
	if string(resp) != "hello from the OBC" {
		t.Errorf("hello_world response = %q", resp)
	}
	_ = idx

	_, def, ok = table.Lookup("echo_back_args")
	if !ok {
		t.Fatal("echo_back_args not found in table")
	}
	resp = nil
	if code := def.Handler("ping", channel.Radio1, &resp); code != 0 {
		t.Errorf("echo_back_args code = %d, want 0", code)
	}
	if string(resp) != "ping" {
		t.Errorf("echo_back_args response = %q, want %q", resp, "ping")
	}
}

func TestGetUptimeWithoutTimeDepsReturnsCodeOne(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)
	_, def, _ := table.Lookup("get_uptime")

	var resp []byte
	if code := def.Handler("", channel.DebugUART, &resp); code != 1 {
		t.Errorf("get_uptime with nil Time = %d, want 1", code)
	}
}

func TestGetUptimeReadsTimeService(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)
	clk := clock.NewStoppedClock(time.Unix(100, 0))
	deps.Time = timeservice.New(clk, nil)

	clk.Advance(2500 * time.Millisecond)

	_, def, _ := table.Lookup("get_uptime")
	var resp []byte
	if code := def.Handler("", channel.DebugUART, &resp); code != 0 {
		t.Fatalf("get_uptime code = %d, want 0", code)
	}
	if string(resp) != "2500" {
		t.Errorf("get_uptime response = %q, want %q", resp, "2500")
	}
}

func TestSetEpochTelecommandAndCorrection(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)
	clk := clock.NewStoppedClock(time.Unix(0, 0))
	deps.Time = timeservice.New(clk, nil)

	_, absDef, _ := table.Lookup("set_epoch_telecommand")
	var resp []byte
	if code := absDef.Handler("1000000", channel.Radio1, &resp); code != 0 {
		t.Fatalf("set_epoch_telecommand code = %d, want 0", code)
	}
	if got := deps.Time.UnixEpochMs(); got != 1000000 {
		t.Errorf("UnixEpochMs = %d, want 1000000", got)
	}

	_, corrDef, _ := table.Lookup("set_epoch_correction")
	if code := corrDef.Handler("500", channel.Radio1, &resp); code != 0 {
		t.Fatalf("set_epoch_correction code = %d, want 0", code)
	}
	if got := deps.Time.UnixEpochMs(); got != 1000500 {
		t.Errorf("UnixEpochMs after correction = %d, want 1000500", got)
	}

	if code := absDef.Handler("not_a_number", channel.Radio1, &resp); code != 2 {
		t.Errorf("set_epoch_telecommand with malformed arg = %d, want 2", code)
	}
}

func TestRFSwitchSetAndGetMode(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)
	clk := clock.NewStoppedClock(time.Unix(0, 0))
	deps.RFSwitch = rfswitch.New(stubGPIO{}, stubADCS{}, clk, nil, 0)

	_, setDef, _ := table.Lookup("rf_switch_set_mode")
	var resp []byte
	if code := setDef.Handler("force_ant2", channel.Radio1, &resp); code != 0 {
		t.Fatalf("rf_switch_set_mode code = %d, want 0", code)
	}
	if deps.RFSwitch.Mode() != rfswitch.ModeForceAnt2 {
		t.Errorf("Mode = %v, want ModeForceAnt2", deps.RFSwitch.Mode())
	}

	_, getDef, _ := table.Lookup("rf_switch_get_mode")
	resp = nil
	if code := getDef.Handler("", channel.Radio1, &resp); code != 0 {
		t.Fatalf("rf_switch_get_mode code = %d, want 0", code)
	}
	if string(resp) != "force_ant2" {
		t.Errorf("rf_switch_get_mode response = %q, want %q", resp, "force_ant2")
	}

	resp = nil
	if code := setDef.Handler("bogus_mode", channel.Radio1, &resp); code != 3 {
		t.Errorf("rf_switch_set_mode with bogus alias = %d, want 3", code)
	}
}

func TestBulkDownlinkLifecycle(t *testing.T) {
	f, err := os.CreateTemp("", "cmds-bulk-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(make([]byte, 1000)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	deps := &Deps{Bulk: &bulk.Session{}, BulkPayloadCapacity: 200}
	table := BuildTable(deps)

	_, startDef, _ := table.Lookup("bulk_downlink_start")
	var resp []byte
	if code := startDef.Handler(f.Name()+",0,1000", channel.Radio1, &resp); code != 0 {
		t.Fatalf("bulk_downlink_start code = %d, want 0: %s", code, resp)
	}
	if deps.Bulk.State() != bulk.StateDownlinking {
		t.Errorf("State = %v, want StateDownlinking", deps.Bulk.State())
	}

	_, pauseDef, _ := table.Lookup("bulk_downlink_pause")
	if code := pauseDef.Handler("", channel.Radio1, &resp); code != 0 {
		t.Fatalf("bulk_downlink_pause code = %d, want 0", code)
	}
	if deps.Bulk.State() != bulk.StatePaused {
		t.Errorf("State = %v, want StatePaused", deps.Bulk.State())
	}

	_, resumeDef, _ := table.Lookup("bulk_downlink_resume")
	if code := resumeDef.Handler("", channel.Radio1, &resp); code != 0 {
		t.Fatalf("bulk_downlink_resume code = %d, want 0", code)
	}
	if deps.Bulk.State() != bulk.StateDownlinking {
		t.Errorf("State = %v, want StateDownlinking", deps.Bulk.State())
	}

	if code := pauseDef.Handler("", channel.Radio1, &resp); code != 0 {
		t.Fatalf("second pause code = %d, want 0", code)
	}
	if code := pauseDef.Handler("", channel.Radio1, &resp); code != 2 {
		t.Errorf("pausing an already-paused session = %d, want 2", code)
	}
}

func TestBulkDownlinkStartMissingDepsReturnsCodeOne(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)
	_, def, _ := table.Lookup("bulk_downlink_start")

	var resp []byte
	if code := def.Handler("x,0,1", channel.Radio1, &resp); code != 1 {
		t.Errorf("bulk_downlink_start with nil Bulk = %d, want 1", code)
	}
}

func TestAgendaCommands(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)
	deps.Agenda = agenda.New(table, agenda.Config{}, nil)

	entry := agenda.Entry{Name: "hello_world", Channel: channel.Radio1, TsSentMs: 42}
	idx, _, ok := table.Lookup("hello_world")
	if !ok {
		t.Fatal("hello_world not found")
	}
	entry.DefIndex = idx
	if err := deps.Agenda.Add(entry); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, fetchDef, _ := table.Lookup("agenda_fetch")
	var resp []byte
	if code := fetchDef.Handler("", channel.DebugUART, &resp); code != 0 {
		t.Fatalf("agenda_fetch code = %d, want 0", code)
	}
	if len(resp) == 0 {
		t.Error("agenda_fetch returned no entries, want one")
	}

	_, deleteByNameDef, _ := table.Lookup("agenda_delete_by_name")
	resp = nil
	if code := deleteByNameDef.Handler("hello_world", channel.DebugUART, &resp); code != 0 {
		t.Fatalf("agenda_delete_by_name code = %d, want 0", code)
	}
	if string(resp) != "deleted 1" {
		t.Errorf("agenda_delete_by_name response = %q, want %q", resp, "deleted 1")
	}
	if deps.Agenda.UsedCount() != 0 {
		t.Errorf("UsedCount = %d, want 0", deps.Agenda.UsedCount())
	}

	if err := deps.Agenda.Add(agenda.Entry{Name: "hello_world", DefIndex: idx, TsSentMs: 43}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, deleteAllDef, _ := table.Lookup("agenda_delete_all")
	resp = nil
	if code := deleteAllDef.Handler("", channel.DebugUART, &resp); code != 0 {
		t.Fatalf("agenda_delete_all code = %d, want 0", code)
	}
	if deps.Agenda.UsedCount() != 0 {
		t.Errorf("UsedCount after delete_all = %d, want 0", deps.Agenda.UsedCount())
	}
}

func TestAgendaCommandsMissingDepsReturnCodeOne(t *testing.T) {
	deps := &Deps{}
	table := BuildTable(deps)

	for _, name := range []string{"agenda_fetch", "agenda_delete_by_name", "agenda_delete_by_sent", "agenda_delete_all"} {
		_, def, ok := table.Lookup(name)
		if !ok {
			t.Fatalf("%s not found in table", name)
		}
		var resp []byte
		args := ""
		if name == "agenda_delete_by_name" {
			args = "x"
		} else if name == "agenda_delete_by_sent" {
			args = "1"
		}
		if code := def.Handler(args, channel.DebugUART, &resp); code != 1 {
			t.Errorf("%s with nil Agenda = %d, want 1", name, code)
		}
	}
}
