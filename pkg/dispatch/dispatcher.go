// Package dispatch is the system-command dispatcher (C6, spec §4.6):
// parses one `$`-prefixed line, gates it by machine state, mutates
// settings and exec flags, and triggers homing/startup/sleep/reset
// actions.
//
// Grounded on the teacher's pkg/gcode.Executor — Execute's
// parse-then-switch shape and parseGCodeLine's field-splitting idiom —
// rewritten for the `$`-prefixed system-command grammar instead of
// G-code motion words. $N<n>=<line> and $<n>=<v> are handled by
// separate functions (dispatchStartupLine, dispatchNumberedSetting),
// each splitting its own argument on '=', rather than by the source's
// fallthrough from one case into the other.
package dispatch

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"maslow-go/pkg/execstate"
	"maslow-go/pkg/gcodeio"
	"maslow-go/pkg/kinematics"
	"maslow-go/pkg/mlog"
	"maslow-go/pkg/nvm"
	"maslow-go/pkg/report"
	"maslow-go/pkg/settings"
	"maslow-go/pkg/startup"
	"maslow-go/pkg/sysstate"
)

// ParamReporter supplies the text $# and $G print — the NGC-parameter
// and parser-modal-state collaborators this core does not own (spec §1
// "does not reimplement").
type ParamReporter interface {
	ReportParameters() string
	ReportParserState() string
}

// nopParamReporter is used when no collaborator is wired; both queries
// report nothing rather than panicking.
type nopParamReporter struct{}

func (nopParamReporter) ReportParameters() string  { return "" }
func (nopParamReporter) ReportParserState() string { return "" }

// Homer performs a homing cycle for the requested axis mask ("" means
// all axes). It is a collaborator boundary (spec §1 "homing ... state
// machines") — the dispatcher only sequences it.
type Homer interface {
	Home(axes string) error
}

// nopHomer reports homing as instantly successful — acceptable only in
// tests; a real build always wires a Homer.
type nopHomer struct{}

func (nopHomer) Home(string) error { return nil }

// Dispatcher holds every collaborator C6 needs (spec §4.6): persistent
// settings, the state model, the exec-flag store, the NVM collaborator,
// the G-code executor for $J= and startup replay, and an optional
// reporting sink.
type Dispatcher struct {
	settings *settings.Settings
	machine  *sysstate.Machine
	flags    *execstate.Flags
	store    *nvm.Store
	exec     gcodeio.Executor
	params   ParamReporter
	homer    Homer
	reporter report.Sink
	log      *mlog.Logger

	doorAjar bool
}

// New builds a Dispatcher with no-op stand-ins for the parameter
// reporter and the homer and no reporting sink, so the dispatcher never
// panics on a wiring gap in a test. SetParamReporter and SetHomer
// restore the stand-in when passed nil; a nil reporting sink is skipped.
func New(s *settings.Settings, machine *sysstate.Machine, flags *execstate.Flags, store *nvm.Store, exec gcodeio.Executor) *Dispatcher {
	return &Dispatcher{
		settings: s,
		machine:  machine,
		flags:    flags,
		store:    store,
		exec:     exec,
		params:   nopParamReporter{},
		homer:    nopHomer{},
		log:      mlog.New("dispatch"),
	}
}

func (d *Dispatcher) SetParamReporter(p ParamReporter) {
	if p == nil {
		p = nopParamReporter{}
	}
	d.params = p
}

func (d *Dispatcher) SetHomer(h Homer) {
	if h == nil {
		h = nopHomer{}
	}
	d.homer = h
}

func (d *Dispatcher) SetReporter(r report.Sink) { d.reporter = r }

// SetDoorAjar updates the safety-door sensor state this core reads when
// gating $H and $X (spec §4.6). While Idle or Alarm, the door is only
// tracked as a boolean condition; opening it in any other state moves
// the machine into the SafetyDoor variant, so that opening the door
// while already alarmed does not clobber the alarm (spec §8 property 6:
// "state remains Alarm"). Closing it leaves SafetyDoor for Idle.
func (d *Dispatcher) SetDoorAjar(ajar bool) {
	d.doorAjar = ajar
	if ajar {
		if d.machine.IsIdleOrAlarm() {
			return
		}
		d.machine.EnterSafetyDoor()
	} else {
		d.machine.ExitSafetyDoor()
	}
}

func (d *Dispatcher) report(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.log.Info(msg)
	if d.reporter != nil {
		d.reporter.Report(msg)
	}
}

// DispatchLine consumes one null-terminated ASCII `$` line and returns a
// status code (spec §4.6). line must not include the leading `$`.
func (d *Dispatcher) DispatchLine(line string) Status {
	if len(line) > nvm.EEPROMLineSize {
		return LineLengthExceeded
	}

	if line == "" {
		d.report("%s", helpText)
		return Ok
	}

	switch {
	case strings.HasPrefix(line, "J="):
		return d.dispatchJog(line[2:])
	case line == "$":
		return d.dispatchListSettings()
	case line == "G":
		d.report("%s", d.params.ReportParserState())
		return Ok
	case line == "C":
		return d.dispatchCheckMode()
	case line == "X":
		return d.dispatchKillAlarm()
	case line == "#":
		return d.dispatchNGCParams()
	case line == "SLP":
		return d.dispatchSleep()
	case line == "|":
		return d.dispatchEEPROMDump()
	case strings.HasPrefix(line, "I"):
		return d.dispatchBuildInfo(line[1:])
	case strings.HasPrefix(line, "RST="):
		return d.dispatchRestore(line[4:])
	case strings.HasPrefix(line, "N"):
		return d.dispatchStartupLine(line[1:])
	case strings.HasPrefix(line, "H"):
		return d.dispatchHoming(line[1:])
	default:
		return d.dispatchNumberedSetting(line)
	}
}

const helpText = "$$ (view settings) $# (view parameters) $G (view parser state) $J= (jog) see docs for full command list"

// dispatchJog handles $J=<gcode> (spec §4.6: permitted only from Idle
// or Jog).
func (d *Dispatcher) dispatchJog(gcode string) Status {
	if !d.machine.IsIdleOrJog() {
		return IdleError
	}
	d.machine.EnterJog()
	status := d.exec.ExecuteLine(gcode)
	d.machine.ExitToIdle()
	if status != gcodeio.Ok {
		return InvalidStatement
	}
	return Ok
}

// dispatchListSettings handles $$ (spec §4.6: blocked during
// Cycle/Hold).
func (d *Dispatcher) dispatchListSettings() Status {
	if d.machine.BlocksSettingsQuery() {
		return IdleError
	}
	d.report("%s", d.renderSettings())
	return Ok
}

func (d *Dispatcher) renderSettings() string {
	var sb strings.Builder
	nums := settings.AllNumbers()
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	for _, n := range nums {
		v, ok := d.settings.Get(n)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "$%d=%v\n", n, v)
	}
	return sb.String()
}

// dispatchCheckMode handles $C (spec §4.6: requires Idle; second entry
// forces a reset).
func (d *Dispatcher) dispatchCheckMode() Status {
	if d.machine.State() == sysstate.CheckMode {
		d.machine.ExitCheckMode()
		d.triggerReset()
		return Ok
	}
	if !d.machine.EnterCheckMode() {
		return IdleError
	}
	return Ok
}

// dispatchKillAlarm handles $X (spec §4.6: blocked if safety door
// ajar).
func (d *Dispatcher) dispatchKillAlarm() Status {
	if d.doorAjar {
		return CheckDoor
	}
	if !d.machine.KillAlarm() {
		return IdleError
	}
	return Ok
}

// dispatchNGCParams handles $# (spec §4.6: requires Idle or Alarm).
func (d *Dispatcher) dispatchNGCParams() Status {
	if !d.machine.IsIdleOrAlarm() {
		return IdleError
	}
	d.report("%s", d.params.ReportParameters())
	d.report("%s", d.renderDerivedGeometry())
	return Ok
}

// renderDerivedGeometry prints the geometry cache alongside $#'s normal
// NGC parameters — a restored MaslowDue diagnostic the distilled command
// surface dropped.
func (d *Dispatcher) renderDerivedGeometry() string {
	g := kinematics.Recompute(d.settings)
	return fmt.Sprintf("[GEOM:xMotor=%.3f,yMotor=%.3f]", g.XMotor, g.YMotor)
}

// dispatchHoming handles $H[X|Y|Z] (spec §4.6, §4.8).
func (d *Dispatcher) dispatchHoming(axes string) Status {
	if !d.machine.IsIdleOrAlarm() {
		return IdleError
	}
	if !d.settings.HomingEnabled() {
		return SettingDisabled
	}
	if d.doorAjar {
		return CheckDoor
	}

	if !d.machine.EnterHoming() {
		return IdleError
	}
	d.flags.ClearAbort()

	if err := d.homer.Home(axes); err != nil {
		d.report("homing failed: %v", err)
		// State is left in Homing; further $H commands return
		// IdleError until something outside the dispatcher moves the
		// machine out of Homing.
		return InvalidStatement
	}

	// A reset raised on the exec-flag store while the cycle ran aborts
	// it through the machine's own abort flag.
	if d.flags.Abort() {
		d.machine.RequestAbort()
	}
	if !d.machine.ExitHomingToIdle() {
		// abort was raised mid-cycle: state intentionally left
		// unchanged (spec §4.8).
		return Ok
	}

	if axes == "" {
		d.runStartup()
	}
	return Ok
}

func (d *Dispatcher) runStartup() {
	results := startup.Run(d.store, d.exec, d.log)
	d.report("%s", startup.Summary(results))
}

// dispatchSleep handles $SLP (spec §4.6: any -> Sleep).
func (d *Dispatcher) dispatchSleep() Status {
	d.flags.SetState(execstate.SleepStateBit)
	d.machine.RequestSleep()
	return Ok
}

// dispatchBuildInfo handles $I and $I=<info> (spec §4.6).
func (d *Dispatcher) dispatchBuildInfo(rest string) Status {
	if strings.HasPrefix(rest, "=") {
		info := nvm.ParseBuildInfoLine(rest[1:])
		if err := d.store.WriteBuildInfoRecord(info); err != nil {
			return SettingReadFail
		}
		return Ok
	}
	if rest != "" {
		return InvalidStatement
	}
	info, err := d.store.ReadBuildInfoRecord()
	if err != nil {
		return SettingReadFail
	}
	d.report("%s", info.String())
	return Ok
}

// dispatchRestore handles $RST=$|#|* (spec §4.6: forces a reset on
// success).
func (d *Dispatcher) dispatchRestore(arg string) Status {
	var err error
	switch arg {
	case "$":
		err = d.store.RestoreSettingDefaults(settings.Default())
	case "#":
		err = d.store.ClearStartupLines()
	case "*":
		if err = d.store.RestoreSettingDefaults(settings.Default()); err == nil {
			err = d.store.ClearStartupLines()
		}
	default:
		return InvalidStatement
	}
	if err != nil {
		return SettingReadFail
	}
	d.triggerReset()
	return Ok
}

func (d *Dispatcher) triggerReset() {
	d.flags.SetAbort()
	d.report("reset")
}

// dispatchStartupLine handles $N, $N<n>, and $N<n>=<line> (spec §4.6:
// storing requires Idle and a line that validates through the G-code
// collaborator).
func (d *Dispatcher) dispatchStartupLine(rest string) Status {
	if rest == "" {
		var sb strings.Builder
		for slot := 0; slot < nvm.NStartupLine; slot++ {
			line, err := d.store.ReadStartupLine(slot)
			if err != nil {
				continue
			}
			fmt.Fprintf(&sb, "$N%d=%s\n", slot, line)
		}
		d.report("%s", sb.String())
		return Ok
	}

	slotStr, line, hasLine := strings.Cut(rest, "=")
	slot, err := strconv.Atoi(slotStr)
	if err != nil || slot < 0 || slot >= nvm.NStartupLine {
		return BadNumberFormat
	}
	if !hasLine {
		stored, err := d.store.ReadStartupLine(slot)
		if err != nil {
			return SettingReadFail
		}
		d.report("$N%d=%s", slot, stored)
		return Ok
	}

	if d.machine.State() != sysstate.Idle {
		return IdleError
	}
	if d.exec.ExecuteLine(line) != gcodeio.Ok {
		return InvalidStatement
	}
	if err := d.store.WriteStartupLine(slot, line); err != nil {
		return SettingReadFail
	}
	return Ok
}

// dispatchEEPROMDump handles $| (spec §4.6: Maslow-only diagnostic
// dump). For each number in settings.AllNumbers it prints the stored
// float64 value as a 16-digit hex bit pattern, or the read error; the
// checksum bytes, startup slots, and build-info block are not printed.
func (d *Dispatcher) dispatchEEPROMDump() Status {
	var sb strings.Builder
	for _, n := range settings.AllNumbers() {
		v, err := d.store.ReadSetting(n)
		if err != nil {
			fmt.Fprintf(&sb, "$%d: <unreadable: %v>\n", n, err)
			continue
		}
		fmt.Fprintf(&sb, "$%d: %016x\n", n, math.Float64bits(v))
	}
	d.report("%s", sb.String())
	return Ok
}

// dispatchNumberedSetting handles $<n>=<v> (spec §4.6: integer part of
// n, range 0..255).
func (d *Dispatcher) dispatchNumberedSetting(line string) Status {
	numStr, valStr, ok := strings.Cut(line, "=")
	if !ok {
		return InvalidStatement
	}
	p, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return BadNumberFormat
	}
	v, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return BadNumberFormat
	}
	if !(p >= 0 && p <= 255) {
		return InvalidStatement
	}
	n := int(p)
	if err := d.settings.Set(settings.Number(n), v); err != nil {
		return InvalidStatement
	}
	if err := d.store.WriteSetting(settings.Number(n), v); err != nil {
		return SettingReadFail
	}
	return Ok
}
