// Package settings holds the machine's persistent settings record — the
// word-addressable float table described in spec §3/§6 — along with the
// Maslow settings-number table and the validation invariants the rest of
// the core core relies on.
//
// Grounded on the teacher's pkg/config/section.go typed-access idiom
// (access is always through named fields/methods, never a raw map), but
// settings here are addressed both by name and by the legacy `$n` number
// grbl/MaslowDue firmware uses on the wire.
package settings

import "fmt"

// Axis indices into StepsPerMM / MaxTravel.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// SprocketRadius is the effective radius of the motor-driven sprocket
// (spec §3, "a constant sprocket_radius ≈ 10.1 mm").
const SprocketRadius = 10.1

// HomingEnableBit is the bit in Flags that gates $H (spec §4.6).
const HomingEnableBit = 1 << 0

// Settings is the machine's persistent record. It is mutated only by the
// system-command dispatcher (pkg/dispatch) and, when cmd/maslowctl builds
// its core, by loading the values persisted in pkg/nvm; readers elsewhere
// (kinematics, the coordinate-frame bridge) treat it as read-only.
type Settings struct {
	StepsPerMM           [3]float64 // per-axis X/Y/Z, strictly positive
	StepsPerMMLeftMotor  float64    // chain-A steps per mm of chain length
	StepsPerMMRightMotor float64    // chain-B steps per mm of chain length
	MaxTravel            [3]float64 // per-axis, stored negative
	HomingDirMask        uint8
	Flags                uint32

	// Maslow-specific fields (settings 80-94, plus the 45/46 elongation
	// and weight fields and the local $95 extension — see numbers.go).
	DistBetweenMotors    float64
	MachineHeight        float64
	MachineWidth         float64
	MotorOffsetY         float64
	XCorrScaling         float64
	YCorrScaling         float64
	ChainOverSprocket    bool // true = top routing, false = bottom routing
	ChainLength          float64
	ChainElongationFactor float64
	SledWeight           float64
	LeftChainTolerance   float64 // percent
	RightChainTolerance  float64 // percent
	RotationDiskRadius   float64
	ZTravelMin           float64
	SimpleKinematics     bool

	// CatenaryShareA resolves spec §9's open question: when true (the
	// default, matching the source's literal behavior) both catenaries
	// use the shared horizontal-tension shape parameter computed from
	// side A; when false each side computes its own a_i = T_hi/rho.
	CatenaryShareA bool
}

// Default returns a Settings record seeded with the concrete scenario
// values from spec §8 ("Concrete scenarios"), a reasonable starting point
// for a fresh machine.
func Default() *Settings {
	return &Settings{
		StepsPerMM:            [3]float64{100, 100, 100},
		StepsPerMMLeftMotor:   100,
		StepsPerMMRightMotor:  100,
		MaxTravel:             [3]float64{-2000, -1500, -100},
		HomingDirMask:         0,
		Flags:                 HomingEnableBit,
		DistBetweenMotors:     3000,
		MachineHeight:         2000,
		MachineWidth:          3000,
		MotorOffsetY:          200,
		XCorrScaling:          1,
		YCorrScaling:          1,
		ChainOverSprocket:     true,
		ChainLength:           3700,
		ChainElongationFactor: 8.0e-5,
		SledWeight:            45,
		LeftChainTolerance:    0,
		RightChainTolerance:   0,
		RotationDiskRadius:    139,
		ZTravelMin:            0,
		SimpleKinematics:      false,
		CatenaryShareA:        true,
	}
}

// Validate checks the invariants from spec §3: all steps_per_mm strictly
// positive, distBetweenMotors > 0, max_travel[i] <= 0.
func (s *Settings) Validate() error {
	for i, v := range s.StepsPerMM {
		if v <= 0 {
			return fmt.Errorf("settings: steps_per_mm[%d] must be positive, got %v", i, v)
		}
	}
	if s.StepsPerMMLeftMotor <= 0 || s.StepsPerMMRightMotor <= 0 {
		return fmt.Errorf("settings: motor steps_per_mm must be positive")
	}
	if s.DistBetweenMotors <= 0 {
		return fmt.Errorf("settings: distBetweenMotors must be positive, got %v", s.DistBetweenMotors)
	}
	for i, v := range s.MaxTravel {
		if v > 0 {
			return fmt.Errorf("settings: max_travel[%d] must be <= 0, got %v", i, v)
		}
	}
	return nil
}

// HomingEnabled reports whether the homing-enable flag bit is set.
func (s *Settings) HomingEnabled() bool {
	return s.Flags&HomingEnableBit != 0
}
