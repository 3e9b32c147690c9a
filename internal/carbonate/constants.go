package carbonate

import "math"

// Constants is the block of equilibrium constants for one (S, T, P) state.
// All values are pressure corrected. K1, K2 and KB are on the seawater pH
// scale; KS and KF on the free scale.
type Constants struct {
	Sal   float64 // Practical salinity.
	TempK float64 // Temperature, K.
	Pbar  float64 // Gauge pressure, bar.

	K0  float64 // CO2 solubility, Weiss (1974).
	K1  float64 // Millero (2010).
	K2  float64 // Millero (2010).
	KW  float64 // Millero (1995).
	KB  float64 // Dickson (1990).
	KF  float64 // Dickson and Riley (1979).
	KS  float64 // Dickson (1990).
	KP1 float64 // Yao and Millero (1995).
	KP2 float64
	KP3 float64
	KSi float64

	TB float64 // Total borate, mol/kg.
	TS float64 // Total sulfate, mol/kg.
	TF float64 // Total fluoride, mol/kg.
	FH float64 // Hydrogen ion activity coefficient, Takahashi et al. (1982).

	Ca  float64 // Total calcium, mol/kg.
	KCa float64 // Calcite solubility product, Mucci (1983).
	KAr float64 // Aragonite solubility product, Mucci (1983).
}

// gasConstant is R in ml bar K-1 mol-1.
const gasConstant = 83.1451

// ComputeConstants evaluates the constants at salinity S, temperature tempC
// (°C) and pressure pdbar (dbar).
func ComputeConstants(sal, tempC, pdbar float64) Constants {
	tempK := tempC + 273.15
	c := Constants{Sal: sal, TempK: tempK, Pbar: pdbar / 10.0}

	logT := math.Log(tempK)
	sqrtS := math.Sqrt(sal)
	t100 := tempK / 100.0
	ionS := 19.924 * sal / (1000.0 - 1.005*sal)
	sqrtI := math.Sqrt(ionS)
	salFactor := 1 - 0.001005*sal

	c.FH = 1.2948 - 0.002036*tempK + (0.0004607-0.000001475*tempK)*sal*sal

	// Totals: Uppstrom (1974), Morris and Riley (1966), Riley (1965).
	c.TB = 0.0004157 * sal / 35.0
	c.TS = (0.14 / 96.062) * (sal / 1.80655)
	c.TF = math.Max((0.000067/18.998)*(sal/1.80655), 3e-6)

	lnKS := -4276.1/tempK + 141.328 - 23.093*logT +
		(-13856.0/tempK+324.57-47.986*logT)*sqrtI +
		(35474.0/tempK-771.54+114.723*logT)*ionS +
		(-2698.0/tempK)*sqrtI*ionS +
		(1776.0/tempK)*ionS*ionS
	c.KS = math.Exp(lnKS) * salFactor

	c.KF = math.Exp(1590.2/tempK-12.641+1.525*sqrtI) * salFactor

	swsToTot := (1 + c.TS/c.KS) / (1 + c.TS/c.KS + c.TF/c.KF)

	c.K0 = math.Exp(-60.2409 + 93.4517/t100 + 23.3585*math.Log(t100) +
		sal*(0.023517-0.023656*t100+0.0047036*t100*t100))

	pK10 := -126.34048 + 6320.813/tempK + 19.568224*logT
	a1 := 13.4038*sqrtS + 0.03206*sal - 5.242e-5*sal*sal
	b1 := -530.659*sqrtS - 5.8210*sal
	c1 := -2.0664 * sqrtS
	c.K1 = math.Pow(10, -(pK10 + a1 + b1/tempK + c1*logT))

	pK20 := -90.18333 + 5143.692/tempK + 14.613358*logT
	a2 := 21.3728*sqrtS + 0.1218*sal - 3.688e-4*sal*sal
	b2 := -788.289*sqrtS - 19.189*sal
	c2 := -3.374 * sqrtS
	c.K2 = math.Pow(10, -(pK20 + a2 + b2/tempK + c2*logT))

	c.KW = math.Exp(148.9802 - 13847.26/tempK - 23.6521*logT +
		(-5.977+118.67/tempK+1.0495*logT)*sqrtS - 0.01615*sal)

	lnKB := (-8966.9-2890.53*sqrtS-77.942*sal+1.728*sqrtS*sal-0.0996*sal*sal)/tempK +
		148.0248 + 137.1942*sqrtS + 1.62142*sal +
		(-24.4344-25.085*sqrtS-0.2474*sal)*logT +
		0.053105*sqrtS*tempK
	c.KB = math.Exp(lnKB) / swsToTot

	c.KP1 = math.Exp(-4576.752/tempK + 115.54 - 18.453*logT +
		(-106.736/tempK+0.69171)*sqrtS + (-0.65643/tempK-0.01844)*sal)
	c.KP2 = math.Exp(-8814.715/tempK + 172.1033 - 27.927*logT +
		(-160.34/tempK+1.3566)*sqrtS + (0.37335/tempK-0.05778)*sal)
	c.KP3 = math.Exp(-3070.75/tempK - 18.126 +
		(17.27039/tempK+2.81197)*sqrtS + (-44.99486/tempK-0.09984)*sal)

	c.KSi = math.Exp(-8904.2/tempK+117.4-19.334*logT+
		(-458.79/tempK+3.5913)*sqrtI+
		(188.74/tempK-1.5998)*ionS+
		(-12.1652/tempK+0.07871)*ionS*ionS) * salFactor

	c.applyPressure()
	c.Ca, c.KCa, c.KAr = caSolubility(sal, tempK, c.Pbar)
	return c
}

// SWSToTOT is the seawater to total pH scale conversion factor.
func (c Constants) SWSToTOT() float64 {
	return (1 + c.TS/c.KS) / (1 + c.TS/c.KS + c.TF/c.KF)
}

// FreeToTOT is the free to total pH scale conversion factor.
func (c Constants) FreeToTOT() float64 {
	return 1 + c.TS/c.KS
}
