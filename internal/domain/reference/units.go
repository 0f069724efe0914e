package reference

import "strings"

// Unit identifies the unit system a lab value was reported in.
type Unit string

// Supported units. UnitAuto defers to the plausibility breakpoint.
const (
	UnitAuto       Unit = ""
	UnitMgDL       Unit = "mg/dl"
	UnitMicromolar Unit = "umol/l"
)

// Conversion factors and breakpoints. A value above a breakpoint cannot be a
// plausible mg/dL reading, so it is read as umol/L.
const (
	CreatinineMicromolPerMgDL = 88.4
	BilirubinMicromolPerMgDL  = 17.1
	CreatinineUnitBreakpoint  = 20.0
	BilirubinUnitBreakpoint   = 50.0
)

// ParseUnit normalizes spellings such as "µmol/L", "umol" or "mg/dL".
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UnitAuto, true
	case "mg/dl", "mg":
		return UnitMgDL, true
	case "umol/l", "µmol/l", "μmol/l", "umol", "micromol/l":
		return UnitMicromolar, true
	default:
		return UnitAuto, false
	}
}

func resolve(v float64, u Unit, breakpoint float64) Unit {
	if u != UnitAuto {
		return u
	}
	if v > breakpoint {
		return UnitMicromolar
	}
	return UnitMgDL
}

// CreatinineMgDL returns creatinine in mg/dL.
func CreatinineMgDL(v float64, u Unit) float64 {
	if resolve(v, u, CreatinineUnitBreakpoint) == UnitMicromolar {
		return v / CreatinineMicromolPerMgDL
	}
	return v
}

// BilirubinMgDL returns bilirubin in mg/dL.
func BilirubinMgDL(v float64, u Unit) float64 {
	if resolve(v, u, BilirubinUnitBreakpoint) == UnitMicromolar {
		return v / BilirubinMicromolPerMgDL
	}
	return v
}

// BilirubinMicromolar returns bilirubin in umol/L.
func BilirubinMicromolar(v float64, u Unit) float64 {
	if resolve(v, u, BilirubinUnitBreakpoint) == UnitMicromolar {
		return v
	}
	return v * BilirubinMicromolPerMgDL
}
