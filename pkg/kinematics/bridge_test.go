package kinematics

import "testing"

// E3: check_travel_limits with max_travel = [-2000, -1500, -100],
// zTravelMin = 0.
func TestCheckTravelLimits(t *testing.T) {
	s := scenarioSettings()
	s.MaxTravel = [3]float64{-2000, -1500, -100}
	s.ZTravelMin = 0

	if CheckTravelLimits(s, [3]float64{0, 0, -50}) {
		t.Fatalf("expected target within limits to pass")
	}
	if !CheckTravelLimits(s, [3]float64{0, 0, 5}) {
		t.Fatalf("expected Z above zTravelMin to exceed limits")
	}
}

func TestCheckTravelLimitsXY(t *testing.T) {
	s := scenarioSettings()
	s.MaxTravel = [3]float64{-2000, -1500, -100}
	s.ZTravelMin = 0

	if CheckTravelLimits(s, [3]float64{999, 0, 0}) {
		t.Fatalf("expected X within +-1000 to pass")
	}
	if !CheckTravelLimits(s, [3]float64{1001, 0, 0}) {
		t.Fatalf("expected X beyond +-1000 to exceed limits")
	}
	if !CheckTravelLimits(s, [3]float64{0, -751, 0}) {
		t.Fatalf("expected Y beyond +-750 to exceed limits")
	}
}

func TestBridgeStepsToMposRoundTripsThroughMposToSteps(t *testing.T) {
	s := scenarioSettings()
	b := NewBridge()

	target := [3]float64{400, -300, -20}
	steps := b.MposToSteps(s, target)
	pos := b.StepsToMpos(s, steps)

	const tol = 0.5 // mm; one step is 0.01 mm at 100 steps/mm
	for i := 0; i < 3; i++ {
		if diff := pos[i] - target[i]; diff > tol || diff < -tol {
			t.Fatalf("axis %d round trip mismatch: got %.4f want %.4f", i, pos[i], target[i])
		}
	}
}
