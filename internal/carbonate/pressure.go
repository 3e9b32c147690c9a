package carbonate

import "math"

// pressureFactor returns K(P)/K(0) for a partial molal volume change dV
// (ml/mol) and compressibility change kappa (ml/mol/bar).
func pressureFactor(dV, kappa, pbar, rt float64) float64 {
	return math.Exp((-dV + 0.5*kappa*pbar) * pbar / rt)
}

// applyPressure corrects the acid-base constants to pressure c.Pbar with
// Millero (1995) coefficients.
func (c *Constants) applyPressure() {
	if c.Pbar == 0 {
		return
	}
	rt := gasConstant * c.TempK
	tc := c.TempK - 273.15
	p := c.Pbar

	c.K1 *= pressureFactor(-25.5+0.1271*tc, (-3.08+0.0877*tc)/1000, p, rt)
	c.K2 *= pressureFactor(-15.82-0.0219*tc, (1.13-0.1475*tc)/1000, p, rt)
	c.KW *= pressureFactor(-20.02+0.1119*tc-0.001409*tc*tc, (-5.13+0.0794*tc)/1000, p, rt)
	c.KB *= pressureFactor(-29.48+0.1622*tc-0.002608*tc*tc, -2.84/1000, p, rt)
	c.KF *= pressureFactor(-9.78-0.009*tc-0.000942*tc*tc, (-3.91+0.054*tc)/1000, p, rt)
	c.KS *= pressureFactor(-18.03+0.0466*tc+0.000316*tc*tc, (-4.53+0.09*tc)/1000, p, rt)
	c.KP1 *= pressureFactor(-14.51+0.1211*tc-0.000321*tc*tc, (-2.67+0.0427*tc)/1000, p, rt)
	c.KP2 *= pressureFactor(-23.12+0.1758*tc-0.002647*tc*tc, (-5.15+0.09*tc)/1000, p, rt)
	c.KP3 *= pressureFactor(-26.57+0.202*tc-0.003042*tc*tc, (-4.08+0.0714*tc)/1000, p, rt)
	// Silicate uses the boric acid values.
	c.KSi *= pressureFactor(-29.48+0.1622*tc-0.002608*tc*tc, -2.84/1000, p, rt)
}
