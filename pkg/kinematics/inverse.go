package kinematics

import (
	"math"

	"maslow-go/pkg/settings"
)

// chainDensity is rho, the chain's weight per unit length (spec §4.2 step
// 6): 0.14 kg/m converted to N/mm.
const chainDensity = 0.14 * 9.8 / 1000

// side carries the per-motor sign convention used throughout Inverse: -1
// for the left motor (anchored at -x_motor), +1 for the right motor
// (anchored at +x_motor), matching system.cpp's Motor1 (-_xCordOfMotor)
// and Motor2 (+_xCordOfMotor). Parameterizing tangentPoint over this sign
// also makes the x -> -x, L_a <-> L_b mirror-symmetry property (spec §8
// property 3) hold by construction.
type side struct {
	sign float64
}

var (
	sideA = side{sign: -1} // left motor, produces L_a
	sideB = side{sign: +1} // right motor, produces L_b
)

// Inverse computes (L_a, L_b) for target (x, y) given settings and the
// geometry cache already recomputed from it (spec §4.2). It is total: a
// target outside the reachable annulus, or a degenerate tension triangle,
// yields NaN components rather than an error. Callers must treat a
// non-finite result as out of range.
func Inverse(s *settings.Settings, g Geometry, x, y float64) (la, lb float64) {
	rho := chainDensity

	arcA, xtA, ytA, lsA := anchorGeometry(s, g, sideA, x, y)
	arcB, xtB, ytB, lsB := anchorGeometry(s, g, sideB, x, y)

	// Step 6: total suspended chain weight.
	w := s.SledWeight + 0.5*rho*(lsA+lsB)

	// Step 7: planar tension at the sled from the tangent-point triangle.
	d := xtA*ytB - xtB*ytA - xtA*y + x*ytA + xtB*y - x*ytB
	tA := -w * math.Hypot(xtA-x, ytA-y) * (xtB - x) / d
	tB := w * math.Hypot(xtB-x, ytB-y) * (xtA - x) / d

	// Step 8: horizontal tension component and catenary shape parameter,
	// computed from side A.
	th := tA * (x - xtA) / lsA
	a := th / rho

	cA := catenaryArc(a, x-xtA, ytA-y)
	var cB float64
	if s.CatenaryShareA {
		cB = catenaryArc(a, x-xtB, ytB-y)
	} else {
		thB := tB * (x - xtB) / lsB
		aB := thB / rho
		cB = catenaryArc(aB, x-xtB, ytB-y)
	}

	// Step 10: per-side tolerance and elasticity correction.
	cA = cA / (1 + s.LeftChainTolerance/100) / (1 + tA*s.ChainElongationFactor)
	cB = cB / (1 + s.RightChainTolerance/100) / (1 + tB*s.ChainElongationFactor)

	// Step 11: final chain lengths.
	la = arcA + cA - s.RotationDiskRadius
	lb = arcB + cB - s.RotationDiskRadius
	return la, lb
}

// anchorGeometry computes the per-side values steps 6-11 of the inverse
// transform need: arc length around the sprocket, tangent point, and the
// straight chain segment from tangent to sled. The straight-line distance
// and wrap angle (steps 1-3) are intermediate to those and not returned.
func anchorGeometry(s *settings.Settings, g Geometry, sd side, x, y float64) (arc, xt, yt, ls float64) {
	r := settings.SprocketRadius
	ax := sd.sign * g.XMotor
	ay := g.YMotor

	d := math.Hypot(ax-x, ay-y)
	yDiff := ay - y

	var theta float64
	if s.ChainOverSprocket {
		theta = math.Asin(yDiff/d) + math.Asin(r/d)
		arc = r * theta
	} else {
		theta = math.Asin(yDiff/d) - math.Asin(r/d)
		arc = r * (math.Pi - theta)
	}

	xt, yt = tangentPoint(s, sd, ax, ay, theta, r)
	ls = math.Sqrt(d*d - r*r)
	return arc, xt, yt, ls
}

// tangentPoint locates the point where the chain leaves the sprocket,
// given the wrap angle theta already computed for this side and routing.
// Preserved literally from system.cpp's triangularInverse (spec §4.2 step
// 4 requires this): xTangent1/yTangent1 and xTangent2/yTangent2 for each
// routing, generalized over sideA/sideB's sign.
func tangentPoint(s *settings.Settings, sd side, ax, ay, theta, r float64) (xt, yt float64) {
	if s.ChainOverSprocket {
		xt = ax - sd.sign*r*math.Sin(theta)
		yt = ay + r*math.Cos(theta)
		return xt, yt
	}
	xt = ax + sd.sign*r*math.Sin(theta)
	yt = ay - r*math.Cos(theta)
	return xt, yt
}

// catenaryArc computes the catenary arc length (spec §4.2 step 9) given
// shape parameter a and the per-side horizontal/vertical offsets from
// tangent point to sled.
func catenaryArc(a, dx, dy float64) float64 {
	s := 2 * a * math.Sinh(dx/(2*a))
	return math.Hypot(s, dy)
}
