package domain

import (
	"math"
	"time"
)

// NodalCorrection supplies the amplitude factor f and phase correction u (degrees)
// applied to a constituent at time t (hours since the Unix epoch).
type NodalCorrection interface {
	GetFactors(constituent string, t float64) (f, u float64)
}

// IdentityNodalCorrection leaves amplitudes and phases untouched.
type IdentityNodalCorrection struct{}

// GetFactors returns f=1, u=0 for every constituent.
func (IdentityNodalCorrection) GetFactors(string, float64) (f, u float64) {
	return 1.0, 0.0
}

// NodalFactor is one row of a correction table.
type NodalFactor struct {
	Freq float64 // Speed, degrees per hour.
	FT   float64 // Amplitude factor.
	UVT  float64 // Phase correction V+u, degrees.
}

// CorrectionTable holds fixed corrections valid for runs referenced to RefTime.
type CorrectionTable struct {
	RefTime time.Time
	Factors map[string]NodalFactor
}

// GetFactors returns the tabulated ft and uvt. The time argument is ignored;
// unknown constituents are not corrected.
func (c CorrectionTable) GetFactors(constituent string, _ float64) (f, u float64) {
	nf, ok := c.Factors[constituent]
	if !ok {
		return 1.0, 0.0
	}
	return nf.FT, nf.UVT
}

// NowcastCorrections returns the corrections for nowcast runs referenced to
// 2014-09-10 00:00 UTC.
func NowcastCorrections() CorrectionTable {
	return CorrectionTable{
		RefTime: time.Date(2014, 9, 10, 0, 0, 0, 0, time.UTC),
		Factors: map[string]NodalFactor{
			"K1": {Freq: 15.041069, FT: 0.891751, UVT: 262.636797},
			"O1": {Freq: 13.943036, FT: 0.822543, UVT: 81.472430},
			"Q1": {Freq: 13.398661, FT: 0.822543, UVT: 46.278236},
			"P1": {Freq: 14.958932, FT: 1.000000, UVT: 101.042160},
			"M2": {Freq: 28.984106, FT: 1.035390, UVT: 346.114490},
			"N2": {Freq: 28.439730, FT: 1.035390, UVT: 310.920296},
			"S2": {Freq: 30.000002, FT: 1.000000, UVT: 0.000000},
			"K2": {Freq: 30.082138, FT: 0.763545, UVT: 344.740346},
		},
	}
}

// ApplyCorrection scales amplitudes by f and advances phases by u.
func ApplyCorrection(params []ConstituentParam, corr NodalCorrection, t float64) []ConstituentParam {
	out := make([]ConstituentParam, len(params))
	for k, p := range params {
		f, u := corr.GetFactors(p.Name, t)
		p.AmplitudeM *= f
		p.PhaseDeg = NormalizeDeg(p.PhaseDeg + u)
		out[k] = p
	}
	return out
}

// LunarNodeCorrection computes f and u from the longitude of the lunar
// ascending node. The equilibrium argument V is not included, so phases stay
// referenced to the time origin of the analysed series.
type LunarNodeCorrection struct{}

// Fourier series in N for f and u: f·exp(iu) = term2 + i·term1.
type nodeSeries struct {
	term1Sin   map[int]float64
	term2Const float64
	term2Cos   map[int]float64
}

//nolint:gochecknoglobals // Read-only coefficient table.
var nodeCoeffs = map[string]nodeSeries{
	"M2": {term1Sin: map[int]float64{1: -0.03731, 2: 0.00052}, term2Const: 1.0, term2Cos: map[int]float64{1: -0.03731, 2: 0.00052}},
	"S2": {term1Sin: map[int]float64{}, term2Const: 1.0, term2Cos: map[int]float64{}},
	"N2": {term1Sin: map[int]float64{1: -0.03731, 2: 0.00052}, term2Const: 1.0, term2Cos: map[int]float64{1: -0.03731, 2: 0.00052}},
	"K2": {term1Sin: map[int]float64{1: -0.3108, 2: -0.0324}, term2Const: 1.0, term2Cos: map[int]float64{1: 0.2852, 2: 0.0324}},
	"K1": {term1Sin: map[int]float64{1: -0.1554, 2: 0.0029}, term2Const: 1.0, term2Cos: map[int]float64{1: 0.1158, 2: -0.0029}},
	"O1": {term1Sin: map[int]float64{1: 0.189, 2: -0.0058}, term2Const: 1.0, term2Cos: map[int]float64{1: 0.189, 2: -0.0058}},
	"P1": {term1Sin: map[int]float64{}, term2Const: 1.0, term2Cos: map[int]float64{}},
	"Q1": {term1Sin: map[int]float64{1: 0.1886}, term2Const: 1.0, term2Cos: map[int]float64{1: 0.1886}},
}

// GetFactors returns f and u (degrees) at t hours since the Unix epoch.
func (LunarNodeCorrection) GetFactors(constituent string, t float64) (f, u float64) {
	coeff, ok := nodeCoeffs[constituent]
	if !ok {
		return 1.0, 0.0
	}
	nrad := Deg2Rad(LunarNode(t))
	term1 := 0.0
	for k, a := range coeff.term1Sin {
		term1 += a * math.Sin(float64(k)*nrad)
	}
	term2 := coeff.term2Const
	for k, b := range coeff.term2Cos {
		term2 += b * math.Cos(float64(k)*nrad)
	}
	return math.Hypot(term1, term2), Rad2Deg(math.Atan2(term1, term2))
}

// LunarNode returns the mean longitude of the lunar ascending node in degrees
// [0, 360) at t hours since the Unix epoch.
func LunarNode(t float64) float64 {
	// Unix epoch is 10957.5 days before J2000.0.
	T := (t/24.0 - 10957.5) / 36525.0
	n := 125.04452 - 1934.136261*T + 0.0020708*T*T + T*T*T/450000.0
	return NormalizeDeg(n)
}

// HoursSinceEpoch converts t to hours since the Unix epoch.
func HoursSinceEpoch(t time.Time) float64 {
	return float64(t.Unix())/3600.0 + float64(t.Nanosecond())/3.6e12
}
