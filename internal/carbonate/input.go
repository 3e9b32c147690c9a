// Package carbonate solves the seawater carbonate system: given any two of
// total alkalinity, dissolved inorganic carbon, pH, pCO2 and aragonite
// saturation it returns all five.
package carbonate

import (
	"errors"
	"fmt"
)

// Param names one carbonate-system observable.
type Param string

// Supported parameters. The string values are the keys used by SolveArrays.
const (
	ParamTA     Param = "TA"
	ParamTC     Param = "TC"
	ParamPH     Param = "pH"
	ParamPCO2   Param = "pCO2"
	ParamOmegaA Param = "OmegaA"
)

// AllParams lists the five observables in output order.
var AllParams = []Param{ParamTA, ParamTC, ParamPH, ParamPCO2, ParamOmegaA}

var (
	// ErrUnknownParam is returned for a parameter flag outside AllParams.
	ErrUnknownParam = errors.New("unknown carbonate parameter")
	// ErrDuplicateParam is returned when both inputs name the same parameter.
	ErrDuplicateParam = errors.New("carbonate inputs must be two different parameters")
	// ErrNoConvergence is returned when the pH iteration does not converge.
	ErrNoConvergence = errors.New("pH iteration did not converge")
)

// ParseParam converts a flag such as "TA" or "OmegaA" to a Param.
func ParseParam(s string) (Param, error) {
	for _, p := range AllParams {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownParam, s)
}

// Input is one of the ten supported input pairs. Concentrations are in
// µmol/kg, pCO2 in µatm.
type Input interface {
	// Params returns the two parameters the input carries.
	Params() [2]Param
	isInput()
}

// TATC carries total alkalinity and dissolved inorganic carbon.
type TATC struct{ TA, TC float64 }

// TAPH carries total alkalinity and pH.
type TAPH struct{ TA, PH float64 }

// TAPCO2 carries total alkalinity and pCO2.
type TAPCO2 struct{ TA, PCO2 float64 }

// TAOmega carries total alkalinity and aragonite saturation.
type TAOmega struct{ TA, OmegaA float64 }

// TCPH carries dissolved inorganic carbon and pH.
type TCPH struct{ TC, PH float64 }

// TCPCO2 carries dissolved inorganic carbon and pCO2.
type TCPCO2 struct{ TC, PCO2 float64 }

// TCOmega carries dissolved inorganic carbon and aragonite saturation.
type TCOmega struct{ TC, OmegaA float64 }

// PHPCO2 carries pH and pCO2.
type PHPCO2 struct{ PH, PCO2 float64 }

// PHOmega carries pH and aragonite saturation.
type PHOmega struct{ PH, OmegaA float64 }

// PCO2Omega carries pCO2 and aragonite saturation.
type PCO2Omega struct{ PCO2, OmegaA float64 }

func (TATC) Params() [2]Param { return [2]Param{ParamTA, ParamTC} }
func (TAPH) Params() [2]Param { return [2]Param{ParamTA, ParamPH} }
func (TAPCO2) Params() [2]Param { return [2]Param{ParamTA, ParamPCO2} }
func (TAOmega) Params() [2]Param { return [2]Param{ParamTA, ParamOmegaA} }
func (TCPH) Params() [2]Param { return [2]Param{ParamTC, ParamPH} }
func (TCPCO2) Params() [2]Param { return [2]Param{ParamTC, ParamPCO2} }
func (TCOmega) Params() [2]Param { return [2]Param{ParamTC, ParamOmegaA} }
func (PHPCO2) Params() [2]Param { return [2]Param{ParamPH, ParamPCO2} }
func (PHOmega) Params() [2]Param { return [2]Param{ParamPH, ParamOmegaA} }
func (PCO2Omega) Params() [2]Param { return [2]Param{ParamPCO2, ParamOmegaA} }

func (TATC) isInput() {}
func (TAPH) isInput() {}
func (TAPCO2) isInput() {}
func (TAOmega) isInput() {}
func (TCPH) isInput() {}
func (TCPCO2) isInput() {}
func (TCOmega) isInput() {}
func (PHPCO2) isInput() {}
func (PHOmega) isInput() {}
func (PCO2Omega) isInput() {}

// NewInput builds the input variant for a pair of parameter flags. The order
// of the two parameters does not matter.
func NewInput(params [2]Param, values [2]float64) (Input, error) {
	got := make(map[Param]float64, 2)
	for k, p := range params {
		if _, err := ParseParam(string(p)); err != nil {
			return nil, err
		}
		got[p] = values[k]
	}
	if len(got) != 2 {
		return nil, fmt.Errorf("%w: %s, %s", ErrDuplicateParam, params[0], params[1])
	}

	has := func(p Param) bool {
		_, ok := got[p]
		return ok
	}
	switch {
	case has(ParamTA) && has(ParamTC):
		return TATC{TA: got[ParamTA], TC: got[ParamTC]}, nil
	case has(ParamTA) && has(ParamPH):
		return TAPH{TA: got[ParamTA], PH: got[ParamPH]}, nil
	case has(ParamTA) && has(ParamPCO2):
		return TAPCO2{TA: got[ParamTA], PCO2: got[ParamPCO2]}, nil
	case has(ParamTA) && has(ParamOmegaA):
		return TAOmega{TA: got[ParamTA], OmegaA: got[ParamOmegaA]}, nil
	case has(ParamTC) && has(ParamPH):
		return TCPH{TC: got[ParamTC], PH: got[ParamPH]}, nil
	case has(ParamTC) && has(ParamPCO2):
		return TCPCO2{TC: got[ParamTC], PCO2: got[ParamPCO2]}, nil
	case has(ParamTC) && has(ParamOmegaA):
		return TCOmega{TC: got[ParamTC], OmegaA: got[ParamOmegaA]}, nil
	case has(ParamPH) && has(ParamPCO2):
		return PHPCO2{PH: got[ParamPH], PCO2: got[ParamPCO2]}, nil
	case has(ParamPH) && has(ParamOmegaA):
		return PHOmega{PH: got[ParamPH], OmegaA: got[ParamOmegaA]}, nil
	default:
		return PCO2Omega{PCO2: got[ParamPCO2], OmegaA: got[ParamOmegaA]}, nil
	}
}
