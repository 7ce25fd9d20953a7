package kinematics

import (
	"math"
	"testing"

	"maslow-go/pkg/settings"
)

func scenarioSettings() *settings.Settings {
	s := settings.Default()
	s.DistBetweenMotors = 3000
	s.MachineHeight = 2000
	s.MotorOffsetY = 200
	s.ChainOverSprocket = true
	s.SledWeight = 45
	s.ChainElongationFactor = 8.0e-5
	s.LeftChainTolerance = 0
	s.RightChainTolerance = 0
	s.RotationDiskRadius = 139
	return s
}

// E1: inverse(0, 0) -> chain lengths equal within 1mm.
func TestInverseOriginSymmetric(t *testing.T) {
	s := scenarioSettings()
	g := Recompute(s)

	la, lb := Inverse(s, g, 0, 0)
	if math.Abs(la-lb) > 1 {
		t.Fatalf("expected symmetric chain lengths at origin, got la=%.4f lb=%.4f", la, lb)
	}
}

// Property 3: inverse is symmetric under x -> -x, with L_a and L_b swapped.
func TestInverseMirrorSymmetry(t *testing.T) {
	s := scenarioSettings()
	g := Recompute(s)

	for _, pt := range [][2]float64{{300, -100}, {700, 50}, {10, 400}} {
		la1, lb1 := Inverse(s, g, pt[0], pt[1])
		la2, lb2 := Inverse(s, g, -pt[0], pt[1])

		if math.Abs(la1-lb2) > 1e-9 || math.Abs(lb1-la2) > 1e-9 {
			t.Fatalf("mirror symmetry violated at (%.1f,%.1f): (la1,lb1)=(%.6f,%.6f) (la2,lb2)=(%.6f,%.6f)",
				pt[0], pt[1], la1, lb1, la2, lb2)
		}
	}
}

// Property 4: small perturbations in x produce bounded changes in both
// chain lengths (a crude differentiability smoke test).
func TestInverseBoundedSensitivity(t *testing.T) {
	s := scenarioSettings()
	g := Recompute(s)

	const dx = 1.0
	la0, lb0 := Inverse(s, g, 200, 100)
	la1, lb1 := Inverse(s, g, 200+dx, 100)

	if math.Abs(la1-la0) > 5*dx || math.Abs(lb1-lb0) > 5*dx {
		t.Fatalf("unexpectedly large chain length change for dx=%.1f: dLa=%.4f dLb=%.4f", dx, la1-la0, lb1-lb0)
	}
}

// Target inside the no-go annulus around a motor anchor yields a NaN
// chain length rather than an error (spec §4.2 failure conditions).
func TestInverseUnreachableYieldsNaN(t *testing.T) {
	s := scenarioSettings()
	g := Recompute(s)

	// Sit almost exactly on top of the left motor anchor, inside the
	// sprocket radius.
	la, _ := Inverse(s, g, -g.XMotor, g.YMotor)
	if !math.IsNaN(la) {
		t.Fatalf("expected NaN for a target within the sprocket radius of the anchor, got %v", la)
	}
}

func TestInverseNoSagMatchesSimpleInverse(t *testing.T) {
	g := Geometry{XMotor: 1500, YMotor: 1200}
	la, lb := InverseNoSag(g, 300, -200)

	wantA := math.Hypot(300-(-1500), -200-1200)
	wantB := math.Hypot(300-1500, -200-1200)
	if math.Abs(la-wantA) > 1e-9 || math.Abs(lb-wantB) > 1e-9 {
		t.Fatalf("InverseNoSag mismatch: got (%.4f,%.4f) want (%.4f,%.4f)", la, lb, wantA, wantB)
	}
}
