// Package cmd implements tcmdreplay's subcommands, one cobra.Command per
// verb, following the structure of a typical spf13/cobra CLI: a root
// command holding persistent connection flags, with "replay" and "inspect"
// registered against it in their own init functions.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	addr       string
	serialPort string
	baudRate   int
)

var rootCmd = &cobra.Command{
	Use:   "tcmdreplay",
	Short: "Replay or inspect recorded telecommand frames against a bench OBC",
	Long: `tcmdreplay sends CTS1+...! telecommand frames captured from a log file
to a running OBC instance over TCP or a serial link, or decodes them
offline without any connection at all.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "TCP address of the bench OBC (host:port)")
	rootCmd.PersistentFlags().StringVar(&serialPort, "serial", "", "serial device path of the bench OBC")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 115200, "serial baud rate, used with --serial")
}
