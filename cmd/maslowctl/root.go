// maslowctl is the host-side entry point for the kinematics and
// system-command core: it wires persistent settings, the NVM
// collaborator, the machine-state model, the exec-flag store, and the
// dispatcher together, then exposes them over a serial console and an
// optional WebSocket status feed.
//
// Grounded on Thermoquad-heliostat's cmd/root.go cobra layout and the
// teacher's cmd/klipper-go/main.go wiring sequence (parse config, open
// transport, build the executor, run until a shutdown signal).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"maslow-go/pkg/mlog"
)

var (
	nvmPath    string
	logLevel   string
	logJSON    bool
	simKinFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "maslowctl",
	Short: "Maslow hanging-sled CNC kinematics and system-command core",
	Long: `maslowctl hosts the kinematics solver and $-command dispatcher for a
Maslow-style hanging-sled CNC router.

It owns persistent settings, the machine state model, and the real-time
exec-flag store, and drives them from a serial console or a scripted
line source. Motion planning, the G-code parser, and step generation
remain external collaborators.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nvmPath, "nvm", "", "path to the persistent-settings backing file (in-memory if empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit structured JSON log records instead of text")
	rootCmd.PersistentFlags().BoolVar(&simKinFlag, "simple-kinematics", false, "force the no-sag two-circle trilateration fallback")

	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(settingsCmd)
}

func newRootLogger(component string) *mlog.Logger {
	log := mlog.New(component)
	log.SetLevel(mlog.ParseLevel(logLevel))
	if logJSON {
		log.SetFormat(mlog.FormatJSON)
	}
	return log
}

func Execute() error {
	return rootCmd.Execute()
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
