package carbonate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var surface = Conditions{T: 25, S: 35, P: 0, TP: 0.5, TSi: 50}

func TestComputeConstants_Surface(t *testing.T) {
	c := ComputeConstants(35, 25, 0)

	assert.InEpsilon(t, 0.02839188, c.K0, 1e-5)
	assert.InEpsilon(t, 1.441226e-6, c.K1, 1e-5)
	assert.InEpsilon(t, 1.094202e-9, c.K2, 1e-5)
	assert.InEpsilon(t, 6.1555e-14, c.KW, 1e-4)
	assert.InEpsilon(t, 2.58352e-9, c.KB, 1e-5)
	assert.InEpsilon(t, 0.100302, c.KS, 1e-4)
	assert.InEpsilon(t, 0.0023655, c.KF, 1e-4)
	assert.InEpsilon(t, 6.48176e-7, c.KAr, 1e-5)
	assert.InEpsilon(t, 0.7134043, c.FH, 1e-6)
	assert.Equal(t, 0.0, c.Pbar)
}

func TestComputeConstants_Pressure(t *testing.T) {
	c := ComputeConstants(30, 10, 1000)
	c0 := ComputeConstants(30, 10, 0)

	assert.InDelta(t, 100.0, c.Pbar, 1e-12)
	assert.InEpsilon(t, 1.08015e-6, c.K1, 1e-4)
	assert.InEpsilon(t, 6.78683e-7, c.KAr, 1e-4)
	// Pressure increases dissociation and solubility.
	assert.Greater(t, c.K1, c0.K1)
	assert.Greater(t, c.KAr, c0.KAr)
	assert.Greater(t, c.KCa, c0.KCa)
	assert.Equal(t, c0.K0, c.K0, "K0 is not pressure corrected")
}

func TestComputeConstants_SolubilityPressureInBar(t *testing.T) {
	const tc = 10.0
	c := ComputeConstants(30, tc, 1000)
	c0 := ComputeConstants(30, tc, 0)

	rt := gasConstant * (tc + 273.15)
	dV := -48.76 + 0.5304*tc
	kappa := (-11.76 + 0.3692*tc) / 1000
	factor := func(dV, pbar float64) float64 {
		return math.Exp((-dV + 0.5*kappa*pbar) * pbar / rt)
	}

	// 1000 dbar is corrected as 100 bar, not 1000.
	assert.InEpsilon(t, factor(dV, 100), c.KCa/c0.KCa, 1e-12)
	assert.InEpsilon(t, factor(dV+2.8, 100), c.KAr/c0.KAr, 1e-12)
	assert.Greater(t, math.Abs(factor(dV+2.8, 1000)-c.KAr/c0.KAr), 1.0)
	assert.Equal(t, c0.Ca, c.Ca)
}

func TestSolve_TATC(t *testing.T) {
	r, err := Solve(TATC{TA: 2300, TC: 2000}, surface)
	require.NoError(t, err)

	assert.InDelta(t, 8.0353, r.PH, 1e-3)
	assert.InDelta(t, 400.54, r.PCO2, 0.5)
	assert.InDelta(t, 3.347, r.OmegaA, 0.01)
	assert.InDelta(t, 5.079, r.OmegaC, 0.01)
	assert.InDelta(t, 2300.0, r.TA, 1e-9)
	assert.InDelta(t, 2000.0, r.TC, 1e-3)
	assert.Positive(t, r.Iterations)
	assert.LessOrEqual(t, r.Iterations, MaxIterations)
}

func TestSolve_TCPCO2ClosedForm(t *testing.T) {
	closed, err := Solve(TCPCO2{TC: 2000, PCO2: 400}, surface)
	require.NoError(t, err)
	assert.Zero(t, closed.Iterations)
	assert.InDelta(t, 8.035809, closed.PH, 1e-4)
	assert.InDelta(t, 2300.348, closed.TA, 0.05)
	assert.InDelta(t, 400.0, closed.PCO2, 1e-6)

	iter, err := Solve(TATC{TA: closed.TA, TC: 2000}, surface)
	require.NoError(t, err)
	assert.InDelta(t, closed.PH, iter.PH, 1e-3)
	assert.InDelta(t, closed.TA, iter.TA, 2.0)
}

func TestSolve_RoundTripPCO2(t *testing.T) {
	first, err := Solve(TATC{TA: 2300, TC: 2000}, surface)
	require.NoError(t, err)

	back, err := Solve(TAPCO2{TA: 2300, PCO2: first.PCO2}, surface)
	require.NoError(t, err)
	assert.InDelta(t, first.TC, back.TC, 1e-3)
	assert.InDelta(t, first.PH, back.PH, 1e-4)
}

func TestSolve_AllPairsAgree(t *testing.T) {
	for _, cond := range []Conditions{surface, {T: 10, S: 30, P: 1000, TP: 2, TSi: 40}} {
		ref, err := Solve(TATC{TA: 2300, TC: 2000}, cond)
		require.NoError(t, err)

		inputs := []Input{
			TAPH{TA: ref.TA, PH: ref.PH},
			TAPCO2{TA: ref.TA, PCO2: ref.PCO2},
			TAOmega{TA: ref.TA, OmegaA: ref.OmegaA},
			TCPH{TC: ref.TC, PH: ref.PH},
			TCPCO2{TC: ref.TC, PCO2: ref.PCO2},
			TCOmega{TC: ref.TC, OmegaA: ref.OmegaA},
			PHPCO2{PH: ref.PH, PCO2: ref.PCO2},
			PHOmega{PH: ref.PH, OmegaA: ref.OmegaA},
			PCO2Omega{PCO2: ref.PCO2, OmegaA: ref.OmegaA},
		}
		for _, in := range inputs {
			got, err := Solve(in, cond)
			require.NoError(t, err, "%T", in)
			assert.InDelta(t, ref.TA, got.TA, 0.01, "%T TA", in)
			assert.InDelta(t, ref.TC, got.TC, 0.01, "%T TC", in)
			assert.InDelta(t, ref.PH, got.PH, 1e-4, "%T pH", in)
			assert.InDelta(t, ref.PCO2, got.PCO2, 0.01, "%T pCO2", in)
			assert.InDelta(t, ref.OmegaA, got.OmegaA, 1e-4, "%T OmegaA", in)
		}
	}
}

func TestSolve_NaNPropagates(t *testing.T) {
	r, err := Solve(TATC{TA: math.NaN(), TC: 2000}, surface)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r.PH))
	assert.False(t, r.Finite())
}

func TestNewInput(t *testing.T) {
	in, err := NewInput([2]Param{ParamTC, ParamTA}, [2]float64{2000, 2300})
	require.NoError(t, err)
	assert.Equal(t, TATC{TA: 2300, TC: 2000}, in)
	assert.Equal(t, [2]Param{ParamTA, ParamTC}, in.Params())

	in, err = NewInput([2]Param{ParamOmegaA, ParamPCO2}, [2]float64{3, 400})
	require.NoError(t, err)
	assert.Equal(t, PCO2Omega{PCO2: 400, OmegaA: 3}, in)

	_, err = NewInput([2]Param{ParamTA, ParamTA}, [2]float64{1, 2})
	assert.ErrorIs(t, err, ErrDuplicateParam)

	_, err = NewInput([2]Param{ParamTA, "DIC"}, [2]float64{1, 2})
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestNewInput_AllPairs(t *testing.T) {
	seen := map[[2]Param]bool{}
	for a := 0; a < len(AllParams); a++ {
		for b := a + 1; b < len(AllParams); b++ {
			in, err := NewInput([2]Param{AllParams[a], AllParams[b]}, [2]float64{1, 2})
			require.NoError(t, err)
			seen[in.Params()] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestSolveArrays(t *testing.T) {
	ta := []float64{2300, math.NaN(), 2250}
	tc := []float64{2000, 2000, 2050}
	out, err := SolveArrays([2]Param{ParamTA, ParamTC}, [2][]float64{ta, tc}, Uniform(surface, 3))
	require.NoError(t, err)

	require.Len(t, out, 5)
	for _, key := range []string{"TA", "TC", "pH", "pCO2", "OmegaA"} {
		require.Contains(t, out, key)
		require.Len(t, out[key], 3)
	}
	assert.InDelta(t, 8.0353, out["pH"][0], 1e-3)
	assert.True(t, math.IsNaN(out["pH"][1]))
	assert.Less(t, out["pH"][2], out["pH"][0], "more carbon and less alkalinity lowers pH")

	_, err = SolveArrays([2]Param{ParamTA, ParamTC}, [2][]float64{ta, tc[:2]}, Uniform(surface, 3))
	assert.Error(t, err)
}

func TestPHOnAllScales(t *testing.T) {
	got, err := PHOnAllScales(8.0, ScaleTotal, 25, 35, 0)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, got.Total, 1e-12)
	assert.InDelta(t, 8.10772, got.Free, 1e-4)
	assert.InDelta(t, 7.99032, got.Seawater, 1e-4)
	assert.InDelta(t, 8.13698, got.NBS, 1e-4)

	back, err := PHOnAllScales(got.NBS, ScaleNBS, 25, 35, 0)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, back.Total, 1e-12)
	assert.InDelta(t, got.Free, back.Free, 1e-12)

	_, err = PHOnAllScales(8.0, "mV", 25, 35, 0)
	assert.Error(t, err)
}
