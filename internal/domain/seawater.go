package domain

import "math"

const (
	// PSUToTEOSFactor converts practical salinity to TEOS-10 reference salinity (g/kg).
	PSUToTEOSFactor = 35.16504 / 35
	// TEOSToPSUFactor converts TEOS-10 reference salinity back to practical salinity.
	TEOSToPSUFactor = 35 / 35.16504

	// MpsToKphFactor converts m/s to km/hr.
	MpsToKphFactor = 3600.0 / 1000.0
	// MpsToKnotsFactor converts m/s to knots.
	MpsToKnotsFactor = 3600.0 / 1852.0
)

// Dry-air constants for reducing forcing pressure to sea level.
const (
	dryAirGasConstant = 287.0  // J kg-1 K-1
	gravity           = 9.81   // m s-2
	lapseRate         = 0.0098 // K m-1
)

// PSUToTEOS converts practical salinity to TEOS-10 reference salinity in g/kg.
func PSUToTEOS(psu float64) float64 {
	return psu * PSUToTEOSFactor
}

// TEOSToPSU converts TEOS-10 reference salinity in g/kg to practical salinity.
func TEOSToPSU(teos float64) float64 {
	return teos * TEOSToPSUFactor
}

// MpsToKph converts a speed in m/s to km/hr.
func MpsToKph(mps float64) float64 {
	return mps * MpsToKphFactor
}

// MpsToKnots converts a speed in m/s to knots.
func MpsToKnots(mps float64) float64 {
	return mps * MpsToKnotsFactor
}

// SeaLevelPressure reduces a surface pressure at the given altitude (m) and
// air temperature (K) to sea level, assuming a dry ideal-gas atmosphere in
// hydrostatic balance with a constant lapse rate. The result has the units of
// pressure.
func SeaLevelPressure(altitude, pressure, temperature float64) float64 {
	return pressure * math.Pow(lapseRate*(altitude/temperature)+1, gravity/lapseRate/dryAirGasConstant)
}

// PressureToDepth converts sea pressure in dbar to depth in metres at the
// given latitude (Saunders and Fofonoff 1976, UNESCO 1983).
func PressureToDepth(p, lat float64) float64 {
	x := math.Sin(Deg2Rad(lat))
	x *= x
	g := 9.780318*(1+(5.2788e-3+2.36e-5*x)*x) + 1.092e-6*p
	return ((((-1.82e-15*p+2.279e-10)*p-2.2512e-5)*p+9.72659)*p) / g
}
