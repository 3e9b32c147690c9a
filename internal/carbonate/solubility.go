package carbonate

import "math"

// caSolubility returns total calcium and the calcite and aragonite solubility
// products (Mucci 1983) with the Ingle (1975) pressure correction. pbar is in bar.
func caSolubility(sal, tempK, pbar float64) (ca, kCa, kAr float64) {
	tc := tempK - 273.15
	logT := math.Log(tempK)
	sqrtS := math.Sqrt(sal)

	// Riley and Tongudai (1967).
	ca = 0.02128 / 40.087 * (sal / 1.80655)

	kCa = math.Pow(10, -171.9065-0.077993*tempK+2839.319/tempK+
		71.595*logT/math.Ln10+
		(-0.77712+0.0028426*tempK+178.34/tempK)*sqrtS-
		0.07711*sal+0.0041249*sqrtS*sal)

	kAr = math.Pow(10, -171.945-0.077993*tempK+2903.293/tempK+
		71.595*logT/math.Ln10+
		(-0.068393+0.0017276*tempK+88.135/tempK)*sqrtS-
		0.10018*sal+0.0059415*sqrtS*sal)

	rt := gasConstant * tempK
	dV := -48.76 + 0.5304*tc
	kappa := (-11.76 + 0.3692*tc) / 1000.0
	kCa *= pressureFactor(dV, kappa, pbar, rt)
	// Aragonite is 2.8 ml/mol less negative than calcite.
	kAr *= pressureFactor(dV+2.8, kappa, pbar, rt)
	return ca, kCa, kAr
}

// OmegaA returns aragonite saturation for a carbonate ion concentration in mol/kg.
func (c Constants) OmegaA(co3 float64) float64 {
	return c.Ca * co3 / c.KAr
}

// OmegaC returns calcite saturation for a carbonate ion concentration in mol/kg.
func (c Constants) OmegaC(co3 float64) float64 {
	return c.Ca * co3 / c.KCa
}
