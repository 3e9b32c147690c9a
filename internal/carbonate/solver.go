package carbonate

import (
	"fmt"
	"math"
)

const (
	pHGuess = 8.0
	pHTol   = 1e-4

	// MaxIterations bounds the Newton iteration for pH.
	MaxIterations = 100

	micro = 1e-6
)

// Conditions are the ancillary state of a sample.
type Conditions struct {
	T   float64 // In situ temperature, °C.
	S   float64 // Practical salinity.
	P   float64 // Pressure, dbar.
	TP  float64 // Total phosphate, µmol/kg.
	TSi float64 // Total silicate, µmol/kg.
}

// Result holds the complete carbonate state. pH is on the seawater scale.
type Result struct {
	TA     float64 // µmol/kg.
	TC     float64 // µmol/kg.
	PH     float64
	PCO2   float64 // µatm.
	OmegaA float64
	OmegaC float64

	Iterations int // Newton steps taken; zero for closed-form pairs.
}

// Get returns the value of one of the five observables.
func (r Result) Get(p Param) float64 {
	switch p {
	case ParamTA:
		return r.TA
	case ParamTC:
		return r.TC
	case ParamPH:
		return r.PH
	case ParamPCO2:
		return r.PCO2
	case ParamOmegaA:
		return r.OmegaA
	default:
		return math.NaN()
	}
}

func nanResult() Result {
	nan := math.NaN()
	return Result{TA: nan, TC: nan, PH: nan, PCO2: nan, OmegaA: nan, OmegaC: nan}
}

// Solve computes the full carbonate state from one input pair.
func Solve(in Input, cond Conditions) (Result, error) {
	return SolveWith(in, cond, ComputeConstants(cond.S, cond.T, cond.P))
}

// SolveWith is Solve with a precomputed constants block for cond.
func SolveWith(in Input, cond Conditions, c Constants) (Result, error) {
	tp := cond.TP * micro
	tsi := cond.TSi * micro

	var (
		ta, tc, pH, pco2 float64
		taKnown, tcKnown bool
		iters            int
		err              error
	)

	switch v := in.(type) {
	case TATC:
		ta, tc = v.TA*micro, v.TC*micro
		taKnown, tcKnown = true, true
		pH, iters, err = c.pHFromTA(residualTC, ta, tc, tp, tsi)
	case TAPCO2:
		ta, pco2 = v.TA*micro, v.PCO2*micro
		taKnown = true
		pH, iters, err = c.pHFromTA(residualPCO2, ta, pco2, tp, tsi)
	case TAOmega:
		ta = v.TA * micro
		taKnown = true
		pH, iters, err = c.pHFromTA(residualCO3, ta, v.OmegaA*c.KAr/c.Ca, tp, tsi)
	case TAPH:
		ta, pH = v.TA*micro, v.PH
		taKnown = true
	case TCPH:
		tc, pH = v.TC*micro, v.PH
		tcKnown = true
	case TCPCO2:
		tc, pco2 = v.TC*micro, v.PCO2*micro
		tcKnown = true
		rr := c.K0 * pco2 / tc
		discr := (c.K1*rr)*(c.K1*rr) + 4*(1-rr)*(c.K1*c.K2*rr)
		pH = -math.Log10(0.5 * (c.K1*rr + math.Sqrt(discr)) / (1 - rr))
	case TCOmega:
		tc = v.TC * micro
		tcKnown = true
		co3 := v.OmegaA * c.KAr / c.Ca
		hco3 := c.K1 * co3 / (2 * c.K2) * (math.Sqrt(4*c.K2/c.K1*(tc/co3-1)+1) - 1)
		pH = -math.Log10(c.K2 * hco3 / co3)
	case PCO2Omega:
		pco2 = v.PCO2 * micro
		co3 := v.OmegaA * c.KAr / c.Ca
		tc = math.Sqrt(c.K0*c.K1/c.K2*pco2*co3) + c.K0*pco2 + co3
		tcKnown = true
		pH = -math.Log10(c.K0 * c.K1 * pco2 / (tc - c.K0*pco2 - co3))
	case PHPCO2:
		pH = v.PH
		h := math.Pow(10, -pH)
		tc = c.K0 * v.PCO2 * micro * (1 + c.K1/h + c.K1*c.K2/(h*h))
		tcKnown = true
	case PHOmega:
		pH = v.PH
		h := math.Pow(10, -pH)
		co3 := v.OmegaA * c.KAr / c.Ca
		tc = co3 * (h*h/(c.K1*c.K2) + h/c.K2 + 1)
		tcKnown = true
	default:
		return nanResult(), fmt.Errorf("unsupported carbonate input %T", in)
	}
	if err != nil {
		r := nanResult()
		r.Iterations = iters
		return r, err
	}

	h := math.Pow(10, -pH)
	beta := c.beta(h)
	ncAlk := c.ncAlk(h, tp, tsi)
	switch {
	case taKnown:
		tc = (ta - ncAlk) * beta / (c.K1 * (h + 2*c.K2))
	case tcKnown:
		ta = tc*c.K1*(h+2*c.K2)/beta + ncAlk
	}
	pco2 = tc * h * h / beta / c.K0
	co3 := tc * c.K1 * c.K2 / beta

	return Result{
		TA:         ta / micro,
		TC:         tc / micro,
		PH:         pH,
		PCO2:       pco2 / micro,
		OmegaA:     c.OmegaA(co3),
		OmegaC:     c.OmegaC(co3),
		Iterations: iters,
	}, nil
}

// residualKind selects the carbonate alkalinity expression used in the
// Newton iteration.
type residualKind int

const (
	residualTC residualKind = iota
	residualPCO2
	residualCO3
)

func (c Constants) beta(h float64) float64 {
	return h*h + c.K1*h + c.K1*c.K2
}

// ncAlk returns the non-carbonate alkalinity at hydrogen concentration h.
func (c Constants) ncAlk(h, tp, tsi float64) float64 {
	bAlk := c.TB * c.KB / (c.KB + h)
	oh := c.KW / h
	phosTop := c.KP1*c.KP2*h + 2*c.KP1*c.KP2*c.KP3 - h*h*h
	phosBot := h*h*h + c.KP1*h*h + c.KP1*c.KP2*h + c.KP1*c.KP2*c.KP3
	pAlk := tp * phosTop / phosBot
	siAlk := tsi * c.KSi / (c.KSi + h)
	hFree := h / c.FreeToTOT()
	hso4 := c.TS / (1 + c.KS/hFree)
	hf := c.TF / (1 + c.KF/hFree)
	return bAlk + oh + pAlk + siAlk - hFree - hso4 - hf
}

// pHFromTA finds the pH at which the computed total alkalinity matches ta,
// given the second input val in mol/kg (TC, pCO2 in atm, or CO3).
func (c Constants) pHFromTA(kind residualKind, ta, val, tp, tsi float64) (float64, int, error) {
	pH := pHGuess
	delta := pHTol + 1
	iters := 0
	for math.Abs(delta) > pHTol {
		if iters == MaxIterations {
			return math.NaN(), iters, fmt.Errorf("%w after %d iterations (last step %g)", ErrNoConvergence, iters, delta)
		}
		h := math.Pow(10, -pH)
		beta := c.beta(h)
		boronSlope := c.TB * c.KB * h / ((c.KB + h) * (c.KB + h))

		var cAlk, slope float64
		switch kind {
		case residualTC:
			cAlk = val * c.K1 * (h + 2*c.K2) / beta
			slope = math.Ln10 * (val*c.K1*h*(h*h+c.K1*c.K2+4*h*c.K2)/beta/beta + boronSlope + c.KW/h + h)
		case residualPCO2:
			hco3 := c.K0 * c.K1 * val / h
			co3 := c.K0 * c.K1 * c.K2 * val / (h * h)
			cAlk = hco3 + 2*co3
			slope = math.Ln10 * (hco3 + 4*co3 + boronSlope + c.KW/h + h)
		case residualCO3:
			hco3 := h * val / c.K2
			cAlk = hco3 + 2*val
			// With CO3 fixed, bicarbonate falls as pH rises.
			slope = math.Ln10 * (-hco3 + boronSlope + c.KW/h + h)
		}

		delta = (ta - cAlk - c.ncAlk(h, tp, tsi)) / slope
		if math.IsInf(delta, 0) {
			return math.NaN(), iters, fmt.Errorf("%w: zero slope at pH %g", ErrNoConvergence, pH)
		}
		for math.Abs(delta) > 1 {
			delta /= 2
		}
		pH += delta
		iters++
	}
	return pH, iters, nil
}
