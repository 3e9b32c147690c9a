package domain

import (
	"math"
	"sort"
)

// Constituent represents a tidal constituent with its angular speed.
type Constituent struct {
	Name          string  // E.g., "M2", "S2", "K1", "O1".
	SpeedDegPerHr float64 // Angular speed in degrees per hour.
}

// ConstituentParam holds the amplitude and phase of one constituent at a point.
type ConstituentParam struct {
	Name          string
	AmplitudeM    float64 // Amplitude in meters (m/s for currents).
	PhaseDeg      float64 // Phase in degrees, [0, 360).
	SpeedDegPerHr float64 // Angular speed in degrees per hour.
}

// StandardConstituents contains tidal constituents with their angular speeds (deg/hour).
// The eight principal constituents use the frequencies the model forcing is built with.
var StandardConstituents = map[string]float64{
	// Principal lunar semidiurnal.
	"M2": 28.984106,
	// Principal solar semidiurnal.
	"S2": 30.000002,
	// Larger lunar elliptic semidiurnal.
	"N2": 28.439730,
	// Lunisolar semidiurnal.
	"K2": 30.082138,

	// Lunisolar diurnal.
	"K1": 15.041069,
	// Principal lunar diurnal.
	"O1": 13.943036,
	// Solar diurnal.
	"P1": 14.958932,
	// Larger lunar elliptic diurnal.
	"Q1": 13.398661,

	// Shallow water constituents.
	"M4":  57.9682084,
	"M6":  86.9523127,
	"MK3": 44.0251729,
	"S4":  60.0000000,
	"MN4": 57.4238337,
	"MS4": 58.9841042,
}

// FitOrder is the order in which constituents are added to a harmonic fit, in pairs.
var FitOrder = []string{"M2", "K1", "S2", "O1", "N2", "P1", "K2", "Q1"}

// GetConstituentSpeed returns the angular speed for a given constituent name.
func GetConstituentSpeed(name string) (float64, bool) {
	speed, ok := StandardConstituents[name]
	return speed, ok
}

// GetAllConstituents returns all standard constituents sorted by speed.
func GetAllConstituents() []Constituent {
	constituents := make([]Constituent, 0, len(StandardConstituents))
	for name, speed := range StandardConstituents {
		constituents = append(constituents, Constituent{
			Name:          name,
			SpeedDegPerHr: speed,
		})
	}
	sort.Slice(constituents, func(a, b int) bool {
		return constituents[a].SpeedDegPerHr < constituents[b].SpeedDegPerHr
	})
	return constituents
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// NormalizeDeg maps an angle in degrees into [0, 360).
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	if deg >= 360.0 {
		deg = 0
	}
	return deg
}
