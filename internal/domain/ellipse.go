package domain

import (
	"math"
	"math/cmplx"
)

// Ellipse describes a tidal current ellipse.
type Ellipse struct {
	SEMA float64 // Semi-major axis, the maximum speed.
	SEMI float64 // Signed semi-minor axis; negative when traversed clockwise.
	ECC  float64 // Eccentricity: 0 for a circle, 1 for rectilinear flow.
	INC  float64 // Inclination of the semi-major axis from the u-axis, degrees [0, 180).
	PHA  float64 // Phase of maximum current, degrees [0, 360).
}

// Ratio returns SEMI/SEMA, the signed minor-to-major axis ratio.
func (e Ellipse) Ratio() float64 {
	if e.SEMA == 0 {
		return 0
	}
	return e.SEMI / e.SEMA
}

// AP2EP converts u and v amplitude/phase pairs (degrees) into ellipse
// parameters by splitting the motion into counter-clockwise and clockwise
// rotating circles. The semi-major axis is the northern one (Foreman 1977).
func AP2EP(au, phiU, av, phiV float64) Ellipse {
	u := complex(au, 0) * cmplx.Exp(complex(0, -Deg2Rad(phiU)))
	v := complex(av, 0) * cmplx.Exp(complex(0, -Deg2Rad(phiV)))

	wp := (u + 1i*v) / 2
	wm := cmplx.Conj((u - 1i*v) / 2)
	wpAbs := cmplx.Abs(wp)
	wmAbs := cmplx.Abs(wm)
	thetaP := cmplx.Phase(wp)
	thetaM := cmplx.Phase(wm)

	sema := wpAbs + wmAbs
	semi := wpAbs - wmAbs
	pha := math.Mod(Rad2Deg((thetaM-thetaP)/2)+360, 360)
	inc := math.Mod(Rad2Deg((thetaM+thetaP)/2)+360, 360)

	// Fold southern axes onto the northern half plane.
	k := math.Floor(inc / 180)
	inc -= k * 180
	pha = NormalizeDeg(pha + k*180)

	e := Ellipse{SEMA: sema, SEMI: semi, INC: inc, PHA: pha}
	if sema > 0 {
		r := semi / sema
		e.ECC = math.Sqrt(math.Max(0, 1-r*r))
	}
	return e
}
