// Package execstate is the real-time exec-flag store (C5, spec §4.5): a
// small set of bitfields mutated from both the main dispatch loop and
// asynchronous event sources (an interrupt handler's nearest analog in
// this environment is a goroutine driven by a hardware-event channel),
// and read lock-free by the main loop.
//
// Grounded on the scoped-exclusion discipline of the teacher's
// pkg/reactor.Mutex (acquire, mutate, release on every exit path) and
// the atomic-read idiom of pkg/safety.Manager's GetState, but
// implemented directly on sync/atomic bitfields rather than a
// goroutine-parking mutex: every mutator here is a single atomic
// fetch-or, fetch-and, or store, which is the equivalent the spec asks for of a
// short interrupt-disable window with release semantics (spec §4.5,
// §9 "Interrupt-disable regions").
package execstate

import "sync/atomic"

// Alarm codes for Flags.SetAlarm/Alarm (spec §3: "exec_alarm (single code, not a
// mask)"). AlarmNone means no alarm is latched.
type AlarmCode uint32

const AlarmNone AlarmCode = 0

// SleepStateBit is the exec_state bit $SLP raises (spec §4.6).
const SleepStateBit uint32 = 1 << 0

// Flags is the process-wide exec-flag store (spec §3 "Real-time
// execution flags"). The zero value is valid and ready to use.
type Flags struct {
	state             atomic.Uint32
	alarm             atomic.Uint32
	motionOverride    atomic.Uint32
	accessoryOverride atomic.Uint32
	abort             atomic.Bool
}

// New returns a Flags store with everything clear.
func New() *Flags {
	return &Flags{}
}

// SetState ORs mask into exec_state.
func (f *Flags) SetState(mask uint32) {
	f.state.Or(mask)
}

// ClearState ANDs exec_state with the complement of mask.
func (f *Flags) ClearState(mask uint32) {
	f.state.And(^mask)
}

// State reads exec_state without exclusion; readers must tolerate a
// flag flipping beneath them (spec §4.5).
func (f *Flags) State() uint32 {
	return f.state.Load()
}

// HasState reports whether every bit in mask is currently set.
func (f *Flags) HasState(mask uint32) bool {
	return f.state.Load()&mask == mask
}

// SetAlarm latches a single alarm code (spec §3: not a mask — the most
// recent SetAlarm wins).
func (f *Flags) SetAlarm(code AlarmCode) {
	f.alarm.Store(uint32(code))
}

// ClearAlarm resets the latched alarm code to AlarmNone.
func (f *Flags) ClearAlarm() {
	f.alarm.Store(uint32(AlarmNone))
}

// Alarm reads the latched alarm code.
func (f *Flags) Alarm() AlarmCode {
	return AlarmCode(f.alarm.Load())
}

// SetMotionOverride ORs mask into exec_motion_override.
func (f *Flags) SetMotionOverride(mask uint32) {
	f.motionOverride.Or(mask)
}

// ClearMotionOverrides zeroes exec_motion_override entirely.
func (f *Flags) ClearMotionOverrides() {
	f.motionOverride.Store(0)
}

// MotionOverride reads exec_motion_override.
func (f *Flags) MotionOverride() uint32 {
	return f.motionOverride.Load()
}

// SetAccessoryOverride ORs mask into exec_accessory_override.
func (f *Flags) SetAccessoryOverride(mask uint32) {
	f.accessoryOverride.Or(mask)
}

// ClearAccessoryOverrides zeroes exec_accessory_override entirely.
func (f *Flags) ClearAccessoryOverrides() {
	f.accessoryOverride.Store(0)
}

// AccessoryOverride reads exec_accessory_override.
func (f *Flags) AccessoryOverride() uint32 {
	return f.accessoryOverride.Load()
}

// SetAbort/ClearAbort/Abort manage the shared abort flag the reset path
// raises; the dispatcher's homing path clears it on entry and, if it is
// set when the cycle ends, forwards it to pkg/sysstate's Machine before
// leaving Homing (spec §4.8, §5).
func (f *Flags) SetAbort() { f.abort.Store(true) }
func (f *Flags) ClearAbort() { f.abort.Store(false) }
func (f *Flags) Abort() bool { return f.abort.Load() }
