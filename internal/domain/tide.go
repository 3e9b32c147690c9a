package domain

import (
	"math"
	"time"
)

// TideLevel represents a single synthesized value at a specific time.
type TideLevel struct {
	Time  time.Time
	Value float64
}

// PredictionParams holds all parameters needed to synthesize a harmonic series.
type PredictionParams struct {
	Constituents    []ConstituentParam
	Mean            float64         // Constant offset, e.g. the fitted mean.
	NodalCorrection NodalCorrection // Nil means no correction.
	ReferenceTime   time.Time       // Phase origin.
}

// CalculateValue evaluates the series at hours since the reference time:
// v(t) = Mean + Σ f_k A_k cos(ω_k Δt + u_k - φ_k)
// where ω_k is in degrees per hour and φ_k is the phase lag in degrees.
func CalculateValue(deltaHours float64, params PredictionParams) float64 {
	corr := params.NodalCorrection
	if corr == nil {
		corr = IdentityNodalCorrection{}
	}
	abs := HoursSinceEpoch(params.ReferenceTime) + deltaHours

	value := params.Mean
	for _, c := range params.Constituents {
		f, u := corr.GetFactors(c.Name, abs)
		angle := Deg2Rad(c.SpeedDegPerHr*deltaHours + u - c.PhaseDeg)
		value += f * c.AmplitudeM * math.Cos(angle)
	}
	return value
}

// CalculateTideHeight evaluates the series at an absolute time.
func CalculateTideHeight(t time.Time, params PredictionParams) float64 {
	return CalculateValue(t.Sub(params.ReferenceTime).Hours(), params)
}

// Synthesize evaluates the series at each offset in hours.
func Synthesize(hours []float64, params PredictionParams) []float64 {
	out := make([]float64, len(hours))
	for k, h := range hours {
		out[k] = CalculateValue(h, params)
	}
	return out
}

// PredictAt evaluates the series at each of times.
func PredictAt(times []time.Time, params PredictionParams) []TideLevel {
	predictions := make([]TideLevel, len(times))
	for k, t := range times {
		predictions[k] = TideLevel{Time: t, Value: CalculateTideHeight(t, params)}
	}
	return predictions
}
