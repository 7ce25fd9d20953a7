package kinematics

import "maslow-go/pkg/settings"

// Bridge is the coordinate-frame bridge (C4, spec §4.4): it converts
// between motor step counts and machine mm positions, routing through
// the forward/inverse transforms for the chain axes and passing Z
// through linearly, and checks travel limits.
//
// Grounded on the teacher's BaseKinematics bounds-checking shape
// (CheckEndstops/CheckZMove), restructured for this machine's
// stock-centred XY homing and single Z pass-through axis.
type Bridge struct {
	solver *Solver
}

// NewBridge builds a Bridge around a freshly seeded Solver.
func NewBridge() *Bridge {
	return &Bridge{solver: NewSolver()}
}

// SetReporter wires a reporting collaborator through to the underlying
// forward solver.
func (b *Bridge) SetReporter(r Reporter) { b.solver.SetReporter(r) }

// StepsToMpos converts a 3-axis motor step array into a machine mm
// position (spec §4.4). steps[AxisX]/steps[AxisY] (the left and right
// motor) become chain
// lengths via settings.StepsPerMMLeftMotor/RightMotor, are run through
// forward kinematics (or Simple, if settings.SimpleKinematics), and the
// resulting (x, y) is converted back into step counts scaled by
// steps_per_mm[X]/[Y] and finally back into mm by the same scaling — this
// round-trip through steps preserves the seed-cache side effect and
// matches the step resolution the motion planner actually commands.
func (b *Bridge) StepsToMpos(s *settings.Settings, steps [3]int64) (pos [3]float64) {
	g := Recompute(s)

	la := float64(steps[settings.AxisX]) / s.StepsPerMMLeftMotor
	lb := float64(steps[settings.AxisY]) / s.StepsPerMMRightMotor

	var x, y float64
	if s.SimpleKinematics {
		x, y = Simple(s, g, la, lb)
	} else {
		x, y = b.solver.Forward(s, g, la, lb)
	}

	// Multiply in float first, truncate last (spec §9 "Seed cache
	// hazard" — the alternative reading, chosen over bit-exact legacy
	// truncate-then-multiply parity since nothing else in this core
	// depends on that precision loss).
	xSteps := int64(x * s.StepsPerMM[settings.AxisX])
	ySteps := int64(y * s.StepsPerMM[settings.AxisY])

	pos[settings.AxisX] = float64(xSteps) / s.StepsPerMM[settings.AxisX]
	pos[settings.AxisY] = float64(ySteps) / s.StepsPerMM[settings.AxisY]
	pos[settings.AxisZ] = float64(steps[settings.AxisZ]) / s.StepsPerMM[settings.AxisZ]
	return pos
}

// MposToSteps is the inverse direction: a machine mm position to a motor
// step array, via inverse kinematics for the chain axes.
func (b *Bridge) MposToSteps(s *settings.Settings, pos [3]float64) (steps [3]int64) {
	g := Recompute(s)

	la, lb := Inverse(s, g, pos[settings.AxisX], pos[settings.AxisY])

	steps[settings.AxisX] = int64(la * s.StepsPerMMLeftMotor)
	steps[settings.AxisY] = int64(lb * s.StepsPerMMRightMotor)
	steps[settings.AxisZ] = int64(pos[settings.AxisZ] * s.StepsPerMM[settings.AxisZ])
	return steps
}

// CheckTravelLimits reports whether target lies outside the machine's
// travel envelope (spec §4.4): Z must lie within [max_travel[Z],
// zTravelMin]; X and Y must lie within ±max_travel[axis]/2, since this
// machine homes at stock centre rather than a corner. A non-finite
// coordinate counts as exceeding the limits.
func CheckTravelLimits(s *settings.Settings, target [3]float64) (exceeded bool) {
	for _, v := range target {
		if !isFinite(v) {
			return true
		}
	}

	z := target[settings.AxisZ]
	if z < s.MaxTravel[settings.AxisZ] || z > s.ZTravelMin {
		return true
	}

	for _, axis := range []int{settings.AxisX, settings.AxisY} {
		limit := -s.MaxTravel[axis] / 2
		if target[axis] < -limit || target[axis] > limit {
			return true
		}
	}
	return false
}
