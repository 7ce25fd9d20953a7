package kinematics

import (
	"fmt"
	"math"

	"maslow-go/pkg/settings"
)

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// MaxErr is the forward solver's convergence tolerance in mm
// (KINEMATICS_MAX_ERR, spec §4.3).
const MaxErr = 0.01

// MaxGuess is the forward solver's iteration ceiling (KINEMATICS_MAX_GUESS,
// spec §4.3).
const MaxGuess = 200

// Reporter receives the divergence message the forward solver emits when
// it fails to converge (spec §4.3, §7 "kinematics divergence"). The
// reporting collaborator itself lives outside this package (pkg/report);
// this is the narrow interface forward kinematics needs from it.
type Reporter interface {
	Report(message string)
}

// nopReporter discards divergence reports; used when a Solver is built
// without one.
type nopReporter struct{}

func (nopReporter) Report(string) {}

// Corrector computes one iteration's correction to a Cartesian guess,
// given the target chain lengths and the chain lengths Inverse produced
// for the current guess. Factoring this out of Solver.Forward lets an
// alternative solver (damped Newton, Levenberg-Marquardt on the chain
// length residual) be swapped in without touching the termination and
// divergence logic (spec §9 "Iterative solver structure").
type Corrector interface {
	// Correct returns the updated (x, y) guess and the per-side errors
	// used for the termination check.
	Correct(xGuess, yGuess, la, lb, laGuess, lbGuess float64) (x, y, ea, eb float64)
}

// AdHocCorrector is the correction step preserved literally from the
// source (spec §9): not a proper Newton step, but the one this machine's
// tuning assumes.
type AdHocCorrector struct{}

func (AdHocCorrector) Correct(xGuess, yGuess, la, lb, laGuess, lbGuess float64) (x, y, ea, eb float64) {
	ea = la - laGuess
	eb = lb - lbGuess
	x = xGuess + ea - eb
	y = yGuess - ea - eb
	return x, y, ea, eb
}

// Solver owns the iteration seed cache (spec §3 "Iteration seed cache")
// and runs the forward transform against it. The seed cache is owned
// exclusively by the main loop's step->mpos path; Solver itself does no
// locking, matching the single-writer discipline spec §5 describes.
type Solver struct {
	xLast, yLast float64
	corrector    Corrector
	reporter     Reporter
}

// NewSolver builds a Solver seeded at the machine origin, using the
// preserved ad hoc correction step and no reporting sink.
func NewSolver() *Solver {
	return &Solver{corrector: AdHocCorrector{}, reporter: nopReporter{}}
}

// SetCorrector swaps in an alternative per-iteration update rule.
func (sv *Solver) SetCorrector(c Corrector) { sv.corrector = c }

// SetReporter wires a reporting collaborator for divergence messages.
func (sv *Solver) SetReporter(r Reporter) {
	if r == nil {
		r = nopReporter{}
	}
	sv.reporter = r
}

// Reset returns the seed cache to the machine origin (spec §3, "reset to
// machine origin on reset").
func (sv *Solver) Reset() { sv.xLast, sv.yLast = 0, 0 }

// Seed reports the solver's current seed, mainly for tests and for the
// coordinate-frame bridge's truncation concern (spec §9 "Seed cache
// hazard").
func (sv *Solver) Seed() (x, y float64) { return sv.xLast, sv.yLast }

// Forward computes (x, y) for chain lengths (la, lb) (spec §4.3). On
// convergence it stores the result into the seed cache and returns it;
// on divergence it reports a message and returns (0, 0), leaving the
// seed cache untouched so the next call still seeds from the last good
// position.
func (sv *Solver) Forward(s *settings.Settings, g Geometry, la, lb float64) (x, y float64) {
	xGuess, yGuess := sv.xLast, sv.yLast

	for i := 0; i < MaxGuess; i++ {
		laGuess, lbGuess := Inverse(s, g, xGuess, yGuess)
		if !isFinite(laGuess) || !isFinite(lbGuess) {
			sv.reporter.Report(fmt.Sprintf("forward kinematics: guess (%.3f, %.3f) left the reachable workspace", xGuess, yGuess))
			return 0, 0
		}

		var ea, eb float64
		xGuess, yGuess, ea, eb = sv.corrector.Correct(xGuess, yGuess, la, lb, laGuess, lbGuess)

		// A guess beyond chainLength fails the guess even if this
		// iteration also converged (system.cpp:507-529 checks the
		// length bound ahead of accepting convergence).
		if laGuess > s.ChainLength || lbGuess > s.ChainLength {
			sv.reporter.Report(fmt.Sprintf("forward kinematics: guessed chain length exceeded chainLength=%.1f after %d iterations", s.ChainLength, i+1))
			return 0, 0
		}

		if math.Abs(ea) <= MaxErr && math.Abs(eb) <= MaxErr {
			sv.xLast, sv.yLast = xGuess, yGuess
			return xGuess, yGuess
		}
	}

	sv.reporter.Report(fmt.Sprintf("forward kinematics: failed to converge within %d iterations", MaxGuess))
	return 0, 0
}

// Simple is the closed-form two-circle-intersection fallback used when
// settings.SimpleKinematics is set (spec §4.3). It ignores sag,
// elasticity, and tolerance entirely.
//
// The textbook two-circle trilateration (x' = (D²−L_b²+L_a²)/(2D),
// y' = √(L_a²−x'²)) is stated in a frame with the left motor at the
// origin; this machine's frame is centred between the motors with the
// sled hanging below the motor line, so x' and y' are shifted back by
// x_motor and y_motor (taking the negative root for y', since the sled
// never sits above the motors) before the table offsets are applied.
func Simple(s *settings.Settings, g Geometry, la, lb float64) (x, y float64) {
	d := 2 * g.XMotor
	xp := (d*d - lb*lb + la*la) / (2 * d)
	yp := math.Sqrt(la*la - xp*xp)

	x = (xp - g.XMotor) / s.XCorrScaling
	y = (g.YMotor - yp) / s.YCorrScaling
	return x, y
}

// InverseNoSag computes (L_a, L_b) with chain sag, elasticity, and
// tolerance all disabled — the counterpart Simple inverts exactly (spec
// §8 property 2). It is the identity pair for Simple only when
// ChainElongationFactor, SledWeight, LeftChainTolerance, and
// RightChainTolerance are all zero and ChainOverSprocket is consistent
// with Simple's assumption of a plain two-circle intersection (no
// sprocket wrap term at all).
func InverseNoSag(g Geometry, x, y float64) (la, lb float64) {
	la = math.Hypot(x-(-g.XMotor), y-g.YMotor)
	lb = math.Hypot(x-g.XMotor, y-g.YMotor)
	return la, lb
}
