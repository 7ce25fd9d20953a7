package settings

import "fmt"

// Number identifies a setting by its legacy `$n` wire number (spec §6).
type Number int

const (
	NumChainElongationFactor Number = 45
	NumSledWeight            Number = 46

	NumChainOverSprocket   Number = 80
	NumMachineWidth        Number = 81
	NumMachineHeight       Number = 82
	NumDistBetweenMotors   Number = 83
	NumMotorOffsetY        Number = 84
	NumXCorrScaling        Number = 85
	NumYCorrScaling        Number = 86
	NumChainSagCorrection  Number = 87 // reserved, always reads/writes 0 — no
	                                   // separate sag knob exists beyond the
	                                   // catenary model itself (spec §6 lists
	                                   // it for wire compatibility only)
	NumLeftChainTolerance  Number = 88
	NumRightChainTolerance Number = 89
	NumRotationDiskRadius  Number = 90
	NumChainLength         Number = 91
	NumZTravelMin          Number = 92
	NumSimpleKinematics    Number = 93
	NumHomeChainLengths    Number = 94 // reserved, read-only diagnostic

	// NumCatenaryShareA is a local, Maslow-extension convention (spec §9's
	// decided Open Question): outside the documented 45/46/80-94 range,
	// in the high range the Maslow fork already uses for its own
	// extensions.
	NumCatenaryShareA Number = 95
)

// boolToF / fToBool round-trip booleans through the 0/1 wire convention
// the rest of the $n=v grammar uses.
func boolToF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func fToBool(v float64) bool { return v != 0 }

// Get reads setting n's current value as a float, as `$$` needs to print
// every setting uniformly.
func (s *Settings) Get(n Number) (float64, bool) {
	switch n {
	case NumChainElongationFactor:
		return s.ChainElongationFactor, true
	case NumSledWeight:
		return s.SledWeight, true
	case NumChainOverSprocket:
		return boolToF(s.ChainOverSprocket), true
	case NumMachineWidth:
		return s.MachineWidth, true
	case NumMachineHeight:
		return s.MachineHeight, true
	case NumDistBetweenMotors:
		return s.DistBetweenMotors, true
	case NumMotorOffsetY:
		return s.MotorOffsetY, true
	case NumXCorrScaling:
		return s.XCorrScaling, true
	case NumYCorrScaling:
		return s.YCorrScaling, true
	case NumChainSagCorrection:
		return 0, true
	case NumLeftChainTolerance:
		return s.LeftChainTolerance, true
	case NumRightChainTolerance:
		return s.RightChainTolerance, true
	case NumRotationDiskRadius:
		return s.RotationDiskRadius, true
	case NumChainLength:
		return s.ChainLength, true
	case NumZTravelMin:
		return s.ZTravelMin, true
	case NumSimpleKinematics:
		return boolToF(s.SimpleKinematics), true
	case NumHomeChainLengths:
		return 0, true
	case NumCatenaryShareA:
		return boolToF(s.CatenaryShareA), true
	default:
		return 0, false
	}
}

// Set stores v into setting n, returning an error only if n is out of the
// 0..255 range (spec §4.6). Numbers in range that this core does not map
// to a field (axis/homing settings it does not model in detail) are
// accepted and ignored.
func (s *Settings) Set(n Number, v float64) error {
	if n < 0 || n > 255 {
		return fmt.Errorf("settings: setting number %d out of range 0..255", n)
	}
	switch n {
	case NumChainElongationFactor:
		s.ChainElongationFactor = v
	case NumSledWeight:
		s.SledWeight = v
	case NumChainOverSprocket:
		s.ChainOverSprocket = fToBool(v)
	case NumMachineWidth:
		s.MachineWidth = v
	case NumMachineHeight:
		s.MachineHeight = v
	case NumDistBetweenMotors:
		s.DistBetweenMotors = v
	case NumMotorOffsetY:
		s.MotorOffsetY = v
	case NumXCorrScaling:
		s.XCorrScaling = v
	case NumYCorrScaling:
		s.YCorrScaling = v
	case NumChainSagCorrection:
		// no-op: accepted for wire compatibility, nothing to store.
	case NumLeftChainTolerance:
		s.LeftChainTolerance = v
	case NumRightChainTolerance:
		s.RightChainTolerance = v
	case NumRotationDiskRadius:
		s.RotationDiskRadius = v
	case NumChainLength:
		s.ChainLength = v
	case NumZTravelMin:
		s.ZTravelMin = v
	case NumSimpleKinematics:
		s.SimpleKinematics = fToBool(v)
	case NumHomeChainLengths:
		// read-only diagnostic: accepted, ignored.
	case NumCatenaryShareA:
		s.CatenaryShareA = fToBool(v)
	default:
		// Unrecognized number within range (axis/homing settings this
		// core doesn't break out individually) — accepted, not stored.
	}
	return nil
}

// AllNumbers lists the settings numbers $$ enumerates, in ascending order.
func AllNumbers() []Number {
	return []Number{
		NumChainElongationFactor, NumSledWeight,
		NumChainOverSprocket, NumMachineWidth, NumMachineHeight,
		NumDistBetweenMotors, NumMotorOffsetY, NumXCorrScaling, NumYCorrScaling,
		NumChainSagCorrection, NumLeftChainTolerance, NumRightChainTolerance,
		NumRotationDiskRadius, NumChainLength, NumZTravelMin, NumSimpleKinematics,
		NumHomeChainLengths, NumCatenaryShareA,
	}
}
