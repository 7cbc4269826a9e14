// Package cmds builds the flight telecommand definition table: the
// handful of concrete handlers a ground operator can actually invoke,
// each closed over the live collaborator it needs (agenda, RF switch,
// bulk downlink, time service).
package cmds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cts1-flightsoftware/obc-core/internal/agenda"
	"github.com/cts1-flightsoftware/obc-core/internal/argparser"
	"github.com/cts1-flightsoftware/obc-core/internal/channel"
	"github.com/cts1-flightsoftware/obc-core/internal/downlink/bulk"
	"github.com/cts1-flightsoftware/obc-core/internal/rfswitch"
	"github.com/cts1-flightsoftware/obc-core/internal/tcmd"
	"github.com/cts1-flightsoftware/obc-core/internal/timeservice"
)

// Deps collects every collaborator a built-in telecommand handler may
// need to act on. Fields may be left nil in a ground-tool context (e.g.
// tcmdreplay) where only parsing, not execution, matters. BuildTable
// takes a pointer so the caller can construct the table before its
// other collaborators exist (they're built from the same core.Core that
// needs this table to exist first) and fill Deps in afterward; every
// handler reads through the pointer at call time, not at table-build
// time.
type Deps struct {
	Time                *timeservice.Service
	Agenda              *agenda.Agenda
	RFSwitch            *rfswitch.Controller
	Bulk                *bulk.Session
	BulkPayloadCapacity uint32
}

// BuildTable assembles the flight telecommand table against deps.
func BuildTable(deps *Deps) *tcmd.Table {
	return tcmd.NewTable([]tcmd.Definition{
		{
			Name:      "hello_world",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				*resp = []byte("hello from the OBC")
				return 0
			},
		},
		{
			Name:      "echo_back_args",
			ArgCount:  1,
			Readiness: tcmd.ReadinessGroundOnly,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				*resp = []byte(args)
				return 0
			},
		},
		{
			Name:      "get_uptime",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Time == nil {
					return 1
				}
				*resp = []byte(strconv.FormatUint(deps.Time.UptimeMs(), 10))
				return 0
			},
		},
		{
			Name:      "set_epoch_telecommand",
			ArgCount:  1,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Time == nil {
					return 1
				}
				epochMs, err := argparser.ExtractU64(args, 0)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				deps.Time.SetEpochMs(int64(epochMs), timeservice.SourceTelecommandAbsolute)
				return 0
			},
		},
		{
			Name:      "set_epoch_correction",
			ArgCount:  1,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Time == nil {
					return 1
				}
				deltaMs, err := argparser.ExtractU64(args, 0)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				deps.Time.SetEpochMs(deps.Time.UnixEpochMs()+int64(deltaMs), timeservice.SourceTelecommandCorrection)
				return 0
			},
		},
		{
			Name:      "rf_switch_set_mode",
			ArgCount:  1,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.RFSwitch == nil {
					return 1
				}
				name, err := argparser.ExtractString(args, 0, 32)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				mode, ok := rfswitch.ModeFromString(name)
				if !ok {
					*resp = []byte("unrecognized rf switch mode: " + name)
					return 3
				}
				deps.RFSwitch.SetMode(mode)
				*resp = []byte(mode.String())
				return 0
			},
		},
		{
			Name:      "rf_switch_get_mode",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.RFSwitch == nil {
					return 1
				}
				*resp = []byte(deps.RFSwitch.Mode().String())
				return 0
			},
		},
		{
			Name:      "bulk_downlink_start",
			ArgCount:  3,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Bulk == nil {
					return 1
				}
				path, err := argparser.ExtractString(args, 0, 255)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				startOffset, err := argparser.ExtractU64(args, 1)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				maxBytes, err := argparser.ExtractU64(args, 2)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				payloadCap := deps.BulkPayloadCapacity
				if payloadCap == 0 {
					payloadCap = 200
				}
				if err := deps.Bulk.Start(path, uint32(startOffset), uint32(maxBytes), payloadCap); err != nil {
					*resp = []byte(err.Error())
					return 4
				}
				return 0
			},
		},
		{
			Name:      "bulk_downlink_pause",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Bulk == nil {
					return 1
				}
				if err := deps.Bulk.Pause(); err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				return 0
			},
		},
		{
			Name:      "bulk_downlink_resume",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Bulk == nil {
					return 1
				}
				if err := deps.Bulk.Resume(); err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				return 0
			},
		},
		{
			Name:      "agenda_fetch",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Agenda == nil {
					return 1
				}
				*resp = []byte(strings.Join(deps.Agenda.Fetch(), "\n"))
				return 0
			},
		},
		{
			Name:      "agenda_delete_by_name",
			ArgCount:  1,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Agenda == nil {
					return 1
				}
				name, err := argparser.ExtractString(args, 0, 64)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				n := deps.Agenda.DeleteByName(name)
				*resp = []byte(fmt.Sprintf("deleted %d", n))
				return 0
			},
		},
		{
			Name:      "agenda_delete_by_sent",
			ArgCount:  1,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Agenda == nil {
					return 1
				}
				ts, err := argparser.ExtractU64(args, 0)
				if err != nil {
					*resp = []byte(err.Error())
					return 2
				}
				n := deps.Agenda.DeleteBySent(ts)
				*resp = []byte(fmt.Sprintf("deleted %d", n))
				return 0
			},
		},
		{
			Name:      "agenda_delete_all",
			ArgCount:  0,
			Readiness: tcmd.ReadinessOperational,
			Handler: func(args string, ch channel.Kind, resp *[]byte) uint8 {
				if deps.Agenda == nil {
					return 1
				}
				n := deps.Agenda.DeleteAll()
				*resp = []byte(fmt.Sprintf("deleted %d", n))
				return 0
			},
		},
	})
}
