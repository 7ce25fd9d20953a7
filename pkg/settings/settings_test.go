package settings

import "testing"

func TestDefaultValidates(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings should validate, got %v", err)
	}
}

func TestValidateRejectsNonPositiveSteps(t *testing.T) {
	s := Default()
	s.StepsPerMM[AxisY] = 0
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for zero steps_per_mm[Y]")
	}
}

func TestValidateRejectsPositiveMaxTravel(t *testing.T) {
	s := Default()
	s.MaxTravel[AxisX] = 10
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for positive max_travel[X]")
	}
}

func TestHomingEnabled(t *testing.T) {
	s := Default()
	if !s.HomingEnabled() {
		t.Fatalf("default settings should have homing enabled")
	}
	s.Flags = 0
	if s.HomingEnabled() {
		t.Fatalf("clearing Flags should disable homing")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := Default()
	if err := s.Set(NumMachineWidth, 3200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := s.Get(NumMachineWidth)
	if !ok || v != 3200 {
		t.Fatalf("expected 3200, got %v, ok=%v", v, ok)
	}
}

func TestSetBoolSettings(t *testing.T) {
	s := Default()
	if err := s.Set(NumSimpleKinematics, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.SimpleKinematics {
		t.Fatalf("expected SimpleKinematics true after setting 1")
	}
	if err := s.Set(NumCatenaryShareA, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CatenaryShareA {
		t.Fatalf("expected CatenaryShareA false after setting 0")
	}
}

func TestSetOutOfRangeNumber(t *testing.T) {
	s := Default()
	if err := s.Set(Number(300), 1); err == nil {
		t.Fatalf("expected error for out-of-range setting number")
	}
}

func TestGetUnknownNumber(t *testing.T) {
	s := Default()
	if _, ok := s.Get(Number(200)); ok {
		t.Fatalf("expected ok=false for unrecognized setting number")
	}
}

func TestAllNumbersAllGettable(t *testing.T) {
	s := Default()
	for _, n := range AllNumbers() {
		if _, ok := s.Get(n); !ok {
			t.Fatalf("setting %d listed in AllNumbers but not gettable", n)
		}
	}
}
