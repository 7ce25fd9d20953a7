package sysstate

import "testing"

func TestCheckModeToggle(t *testing.T) {
	m := New()
	if !m.EnterCheckMode() {
		t.Fatalf("expected Idle -> CheckMode to succeed")
	}
	if m.State() != CheckMode {
		t.Fatalf("expected state CheckMode, got %v", m.State())
	}
	if !m.ExitCheckMode() {
		t.Fatalf("expected CheckMode -> Idle to succeed")
	}
	if m.State() != Idle {
		t.Fatalf("expected state Idle, got %v", m.State())
	}
}

// Property 7: entering CheckMode from any non-Idle non-CheckMode state
// fails.
func TestEnterCheckModeRejectedFromOtherStates(t *testing.T) {
	m := New()
	m.EnterCycle()
	if m.EnterCheckMode() {
		t.Fatalf("expected Cycle -> CheckMode to fail")
	}
	if m.State() != Cycle {
		t.Fatalf("expected state unchanged at Cycle, got %v", m.State())
	}
}

func TestHomingRequiresIdleOrAlarm(t *testing.T) {
	m := New()
	m.EnterCycle()
	if m.EnterHoming() {
		t.Fatalf("expected Cycle -> Homing to fail")
	}

	m2 := New()
	m2.RaiseAlarm()
	if !m2.EnterHoming() {
		t.Fatalf("expected Alarm -> Homing to succeed")
	}
}

func TestExitHomingToIdleHonorsAbort(t *testing.T) {
	m := New()
	m.EnterHoming()
	m.RequestAbort()

	if m.ExitHomingToIdle() {
		t.Fatalf("expected ExitHomingToIdle to fail when abort is set")
	}
	if m.State() != Homing {
		t.Fatalf("expected state to remain Homing, got %v", m.State())
	}
}

func TestExitHomingToIdleSucceedsWithoutAbort(t *testing.T) {
	m := New()
	m.EnterHoming()

	if !m.ExitHomingToIdle() {
		t.Fatalf("expected ExitHomingToIdle to succeed")
	}
	if m.State() != Idle {
		t.Fatalf("expected state Idle, got %v", m.State())
	}
}

func TestKillAlarmOnlyFromAlarm(t *testing.T) {
	m := New()
	if m.KillAlarm() {
		t.Fatalf("expected KillAlarm to fail from Idle")
	}
	m.RaiseAlarm()
	if !m.KillAlarm() {
		t.Fatalf("expected KillAlarm to succeed from Alarm")
	}
	if m.State() != Idle {
		t.Fatalf("expected state Idle, got %v", m.State())
	}
}

func TestRequestSleepFromAnyState(t *testing.T) {
	m := New()
	m.EnterCycle()
	m.RequestSleep()
	if m.State() != Sleep {
		t.Fatalf("expected state Sleep, got %v", m.State())
	}
}

func TestBlocksSettingsQuery(t *testing.T) {
	m := New()
	if m.BlocksSettingsQuery() {
		t.Fatalf("expected Idle to not block $$")
	}
	m.EnterCycle()
	if !m.BlocksSettingsQuery() {
		t.Fatalf("expected Cycle to block $$")
	}
	m.ExitToIdle()
	m.EnterHold()
	if !m.BlocksSettingsQuery() {
		t.Fatalf("expected Hold to block $$")
	}
}

func TestOnStateChangeCallback(t *testing.T) {
	m := New()
	var transitions [][2]State
	m.OnStateChange(func(old, new State) {
		transitions = append(transitions, [2]State{old, new})
	})

	m.EnterCheckMode()
	m.ExitCheckMode()

	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions recorded, got %d", len(transitions))
	}
	if transitions[0] != [2]State{Idle, CheckMode} {
		t.Fatalf("unexpected first transition: %+v", transitions[0])
	}
	if transitions[1] != [2]State{CheckMode, Idle} {
		t.Fatalf("unexpected second transition: %+v", transitions[1])
	}
}
