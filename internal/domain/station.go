package domain

// ObservedStation holds the observed M2 and K1 elevation constituents of a
// tide gauge. Amplitudes are in metres and phases in degrees UT. Missing
// values are NaN.
type ObservedStation struct {
	Number int
	Name   string
	Lat    float64
	Lon    float64

	M2Amp, M2Pha float64
	K1Amp, K1Pha float64
}

// ConstituentComparison pairs the modelled and observed values of one
// constituent with their distances.
type ConstituentComparison struct {
	ModelAmp, ObsAmp float64
	ModelPha, ObsPha float64
	Comparison
}

// StationComparison is the comparison row of one station. Found is false
// when the station could not be placed on the model grid.
type StationComparison struct {
	Station ObservedStation
	Found   bool
	J, I    int

	M2, K1 ConstituentComparison
}

// Compare builds the comparison of an observed and modelled constituent.
func Compare(ao, po, am, pm float64) ConstituentComparison {
	return ConstituentComparison{
		ModelAmp:   am,
		ObsAmp:     ao,
		ModelPha:   pm,
		ObsPha:     po,
		Comparison: CompareConstituent(ao, po, am, pm),
	}
}
