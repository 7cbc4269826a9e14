package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var replayDelay time.Duration

var replayCmd = &cobra.Command{
	Use:   "replay <logfile>",
	Short: "Send every telecommand frame in logfile to the bench OBC",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().DurationVar(&replayDelay, "delay", 200*time.Millisecond, "pause between frames")
	rootCmd.AddCommand(replayCmd)
}

// deadlineSetter is implemented by net.Conn; a serial.Port from
// tarm/goserial does not implement it, so responses are only read back
// over a TCP connection.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	conn, err := dialTarget()
	if err != nil {
		return err
	}
	defer conn.Close()

	scanner := bufio.NewScanner(f)
	sent := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, "!") {
			line += "!"
		}

		if _, err := conn.Write([]byte(line)); err != nil {
			return fmt.Errorf("sending frame %d: %w", sent+1, err)
		}
		sent++
		fmt.Printf("sent: %s\n", line)

		if ds, ok := conn.(deadlineSetter); ok {
			readResponse(conn, ds)
		}

		time.Sleep(replayDelay)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading log file: %w", err)
	}

	fmt.Printf("replayed %d frame(s)\n", sent)
	return nil
}

// readResponse drains whatever bytes the OBC has already written back
// within a short window. Best-effort only: tcmdreplay is a bench tool, not
// a protocol client, so it doesn't attempt to frame the response.
func readResponse(conn interface{ Read([]byte) (int, error) }, ds deadlineSetter) {
	_ = ds.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if n > 0 {
		fmt.Printf("recv: %s\n", string(buf[:n]))
	}
	_ = err
}
