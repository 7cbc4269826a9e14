package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cts1-flightsoftware/obc-core/internal/channel"
	"github.com/cts1-flightsoftware/obc-core/internal/cmds"
	"github.com/cts1-flightsoftware/obc-core/internal/tcmd/parser"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <logfile>",
	Short: "Decode every telecommand frame in logfile without connecting to an OBC",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// inspectResult is one decoded (or rejected) frame, rendered as a JSON
// line so tcmdreplay's output can be piped into other tooling.
type inspectResult struct {
	Line     int    `json:"line"`
	Raw      string `json:"raw"`
	Name     string `json:"name,omitempty"`
	ArgsStr  string `json:"args,omitempty"`
	TsSent   uint64 `json:"ts_sent,omitempty"`
	TsExec   uint64 `json:"ts_exec,omitempty"`
	RespFile string `json:"resp_fname,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	table := cmds.BuildTable(&cmds.Deps{})
	enc := json.NewEncoder(os.Stdout)

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if !strings.HasSuffix(raw, "!") {
			raw += "!"
		}

		result := inspectResult{Line: lineNum, Raw: raw}
		parsed, err := parser.Parse(raw, channel.DebugUART, table, false, nil)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Name = parsed.Name
			result.ArgsStr = parsed.ArgsStr
			result.TsSent = parsed.TsSentMs
			result.TsExec = parsed.TsExecMs
			result.RespFile = parsed.ResponseLogFile
		}

		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result for line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}
