package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"maslow-go/pkg/dispatch"
	"maslow-go/pkg/execstate"
	"maslow-go/pkg/gcodeio"
	"maslow-go/pkg/mlog"
	"maslow-go/pkg/nvm"
	"maslow-go/pkg/report"
	"maslow-go/pkg/settings"
	"maslow-go/pkg/startup"
	"maslow-go/pkg/sysstate"
)

// core bundles every collaborator a subcommand needs, built once from
// the persistent flags on rootCmd (spec §4 "the core owns settings,
// machine state, and exec flags; everything else is a collaborator").
type core struct {
	settings   *settings.Settings
	machine    *sysstate.Machine
	flags      *execstate.Flags
	store      *nvm.Store
	dispatcher *dispatch.Dispatcher
}

// logExecutor is the stand-in G-code collaborator for the CLI: it has
// no parser or motion planner, so it only logs the line and reports Ok
// (spec §1 "does not reimplement" the G-code parser).
type logExecutor struct {
	log func(line string)
}

func (e logExecutor) ExecuteLine(line string) gcodeio.Status {
	if e.log != nil {
		e.log(line)
	}
	return gcodeio.Ok
}

func buildCore(cmd *cobra.Command) (*core, error) {
	var backend nvm.Backend
	if nvmPath == "" {
		backend = nvm.NewMemoryBackend()
	} else {
		fb, err := nvm.OpenFileBackend(nvmPath)
		if err != nil {
			return nil, fmt.Errorf("opening nvm backend: %w", err)
		}
		backend = fb
	}

	store := nvm.New(backend)
	s := settings.Default()
	for _, n := range settings.AllNumbers() {
		if v, err := store.ReadSetting(n); err == nil {
			s.Set(n, v)
		}
	}
	if sim := simKinFlag; sim {
		s.SimpleKinematics = true
	}
	machine := sysstate.New()
	flags := execstate.New()

	log := newRootLogger("maslowctl")
	exec := logExecutor{log: func(line string) { log.Debug("gcode passthrough: %s", line) }}

	d := dispatch.New(s, machine, flags, store, exec)
	startup.Run(store, exec, log)

	return &core{settings: s, machine: machine, flags: flags, store: store, dispatcher: d}, nil
}

// logSink is a report.StatusSink that writes through a *mlog.Logger,
// the default when no websocket hub is wired (the console command).
type logSink struct {
	log *mlog.Logger
}

func (s logSink) Report(message string) { s.log.Info(message) }

func (s logSink) PushStatus(st report.Status) {
	s.log.Info("status state=%s pos=%v line=%q", st.State, st.Position, st.Line)
}
