package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"maslow-go/pkg/serialline"
)

var (
	consolePort string
	consoleBaud int
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Read $-command lines from stdin or a serial port and dispatch them",
	Long: `console feeds $-prefixed lines into the dispatcher one at a time and
prints the resulting status code and any reported output.

With --port set, lines are read from and status echoed back over a
real serial connection (go.bug.st/serial); otherwise stdin/stdout are
used, which is the faster loop for bench testing against a wired
machine config.`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&consolePort, "port", "", "serial device to read/write $-lines over (stdin/stdout if empty)")
	consoleCmd.Flags().IntVar(&consoleBaud, "baud", 115200, "baud rate when --port is set")
}

// stdioLineSource adapts stdin/stdout to serialline.LineSource so the
// dispatch loop below doesn't need to know which transport it's on.
type stdioLineSource struct {
	in  *bufio.Scanner
	out io.Writer
}

func (s *stdioLineSource) ReadLine() (string, error) {
	if s.in.Scan() {
		return s.in.Text(), nil
	}
	if err := s.in.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *stdioLineSource) WriteLine(line string) error {
	_, err := fmt.Fprintln(s.out, line)
	return err
}

func (s *stdioLineSource) Close() error { return nil }

func runConsole(cmd *cobra.Command, args []string) error {
	c, err := buildCore(cmd)
	if err != nil {
		return err
	}
	log := newRootLogger("console")
	c.dispatcher.SetReporter(logSink{log: log})

	var src serialline.LineSource
	if consolePort != "" {
		src, err = serialline.OpenPortSource(consolePort, consoleBaud)
		if err != nil {
			return err
		}
	} else {
		src = &stdioLineSource{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
	}
	defer src.Close()

	for {
		line, err := src.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}
		status := c.dispatcher.DispatchLine(line[1:])
		if err := src.WriteLine(status.String()); err != nil {
			return err
		}
	}
}
