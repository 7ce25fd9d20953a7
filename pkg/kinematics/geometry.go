// Package kinematics implements the bidirectional transform between
// Cartesian sled position and the pair of chain lengths that position it
// (spec.md §4.1-§4.4): derived geometry, the closed-form inverse, the
// iterative forward solve, and the coordinate-frame bridge used by the
// step generator and reporting paths.
//
// Grounded on the teacher's pkg/kinematics package shape — a small
// per-kinematics-model file laid out around a settings-derived bounds
// cache (kinematics.go's BaseKinematics) plus a model-specific transform
// (winch.go's WinchKinematics) — generalized to the two-motor catenary
// model this machine actually uses.
package kinematics

import "maslow-go/pkg/settings"

// Geometry is the derived machine-dimension cache (spec §3 "Derived
// geometry cache"). It is a pure function of settings and is recomputed
// on every kinematics call; callers must never hold on to a stale copy
// across a settings mutation.
type Geometry struct {
	XMotor float64
	YMotor float64
}

// Recompute rebuilds the geometry cache from the current settings
// (spec §4.1). Idempotent, pure.
func Recompute(s *settings.Settings) Geometry {
	return Geometry{
		XMotor: s.DistBetweenMotors / 2,
		YMotor: s.MachineHeight/2 + s.MotorOffsetY,
	}
}
