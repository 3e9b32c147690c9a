package carbonate

import (
	"fmt"
	"math"
)

// Scale is a pH scale.
type Scale string

// Supported pH scales.
const (
	ScaleTotal    Scale = "total"
	ScaleFree     Scale = "free"
	ScaleSeawater Scale = "seawater"
	ScaleNBS      Scale = "NBS"
)

// PHScales holds one pH value expressed on every scale.
type PHScales struct {
	Total    float64 `json:"total"`
	Free     float64 `json:"free"`
	Seawater float64 `json:"seawater"`
	NBS      float64 `json:"NBS"`
}

// PHOnAllScales converts pH given on scale to all four scales at temperature
// t (°C), salinity s and pressure p (dbar).
func PHOnAllScales(pH float64, scale Scale, t, s, p float64) (PHScales, error) {
	c := ComputeConstants(s, t, p)
	sws := math.Log10(c.SWSToTOT())
	free := math.Log10(c.FreeToTOT())
	fh := math.Log10(c.FH)

	var offset float64
	switch scale {
	case ScaleTotal:
		offset = 0
	case ScaleSeawater:
		offset = sws
	case ScaleFree:
		offset = free
	case ScaleNBS:
		offset = sws - fh
	default:
		return PHScales{}, fmt.Errorf("unrecognized pH scale: %s", scale)
	}

	total := pH - offset
	return PHScales{
		Total:    total,
		Free:     total + free,
		Seawater: total + sws,
		NBS:      total + sws - fh,
	}, nil
}
