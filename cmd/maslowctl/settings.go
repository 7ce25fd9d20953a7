package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Print the persisted setting values ($$ equivalent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildCore(cmd)
		if err != nil {
			return err
		}
		c.dispatcher.SetReporter(printSink{})
		if status := c.dispatcher.DispatchLine("$"); status != 0 {
			return fmt.Errorf("unexpected status listing settings: %v", status)
		}
		return nil
	},
}

type printSink struct{}

func (printSink) Report(message string) { fmt.Print(message) }
