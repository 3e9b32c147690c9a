package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/carbonate"
	"go.ngs.io/salishsea-tools/internal/domain"
)

// Handler serves the evaluation engines over HTTP.
type Handler struct {
	log logrus.FieldLogger
}

// NewHandler creates a new HTTP handler.
func NewHandler(log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{log: log}
}

// CarbonateRequest is the body of POST /v1/carbonate. Values holds one series
// per parameter; scalar conditions apply to every row.
type CarbonateRequest struct {
	Params [2]string    `json:"params"`
	Values [2][]float64 `json:"values"`
	T      float64      `json:"T"`
	S      float64      `json:"S"`
	P      float64      `json:"P"`
	TP     float64      `json:"TP"`
	TSi    float64      `json:"TSi"`
}

// CarbonateResponse holds the five observables per row. Rows that did not
// converge are null.
type CarbonateResponse struct {
	Results map[string][]*float64 `json:"results"`
	Warning string                `json:"warning,omitempty"`
}

// PostCarbonate handles POST /v1/carbonate.
func (h *Handler) PostCarbonate(c *gin.Context) {
	var req CarbonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	var params [2]carbonate.Param
	for k, s := range req.Params {
		p, err := carbonate.ParseParam(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params[k] = p
	}
	if len(req.Values[0]) != len(req.Values[1]) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value series differ in length"})
		return
	}

	cond := carbonate.Uniform(carbonate.Conditions{T: req.T, S: req.S, P: req.P, TP: req.TP, TSi: req.TSi}, len(req.Values[0]))
	out, err := carbonate.SolveArrays(params, req.Values, cond)
	resp := CarbonateResponse{}
	switch {
	case errors.Is(err, carbonate.ErrNoConvergence):
		h.log.WithError(err).Warn("carbonate solve incomplete")
		resp.Warning = err.Error()
	case errors.Is(err, carbonate.ErrDuplicateParam), errors.Is(err, carbonate.ErrUnknownParam):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp.Results = make(map[string][]*float64, len(out))
	for name, vals := range out {
		resp.Results[name] = nullable(vals)
	}
	c.JSON(http.StatusOK, resp)
}

// GetPHScales handles GET /v1/carbonate/phscale.
func (h *Handler) GetPHScales(c *gin.Context) {
	vals, ok := floatQuery(c, "ph", "t", "s")
	if !ok {
		return
	}
	p := 0.0
	if c.Query("p") != "" {
		pv, ok := floatQuery(c, "p")
		if !ok {
			return
		}
		p = pv[0]
	}
	scale := carbonate.Scale(c.DefaultQuery("scale", string(carbonate.ScaleTotal)))

	scales, err := carbonate.PHOnAllScales(vals[0], scale, vals[1], vals[2], p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scales)
}

// GetEllipse handles GET /v1/ellipse.
func (h *Handler) GetEllipse(c *gin.Context) {
	vals, ok := floatQuery(c, "au", "pu", "av", "pv")
	if !ok {
		return
	}
	e := domain.AP2EP(vals[0], vals[1], vals[2], vals[3])
	c.JSON(http.StatusOK, gin.H{
		"sema": e.SEMA,
		"semi": e.SEMI,
		"ecc":  e.ECC,
		"inc":  e.INC,
		"pha":  e.PHA,
	})
}

// GetHarmonic handles GET /v1/harmonic.
func (h *Handler) GetHarmonic(c *gin.Context) {
	vals, ok := floatQuery(c, "re", "im")
	if !ok {
		return
	}
	amp, pha := domain.AmpPhase(vals[0], vals[1])
	c.JSON(http.StatusOK, gin.H{
		"amplitude": amp,
		"phase_deg": pha,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ConstituentListResponse is the response for listing constituents.
type ConstituentListResponse struct {
	Name          string  `json:"name"`
	SpeedDegPerHr float64 `json:"speed_deg_per_hr"`
	Description   string  `json:"description,omitempty"`
}

// GetConstituentsList returns a detailed list of all constituents.
func (h *Handler) GetConstituentsList(c *gin.Context) {
	constituents := domain.GetAllConstituents()

	descriptions := map[string]string{
		"M2": "Principal lunar semidiurnal",
		"S2": "Principal solar semidiurnal",
		"N2": "Larger lunar elliptic semidiurnal",
		"K2": "Lunisolar semidiurnal",
		"K1": "Lunisolar diurnal",
		"O1": "Principal lunar diurnal",
		"P1": "Principal solar diurnal",
		"Q1": "Larger lunar elliptic diurnal",
	}

	response := make([]ConstituentListResponse, len(constituents))
	for i, c := range constituents {
		response[i] = ConstituentListResponse{
			Name:          c.Name,
			SpeedDegPerHr: c.SpeedDegPerHr,
			Description:   descriptions[c.Name],
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"constituents": response,
		"count":        len(response),
	})
}

// floatQuery parses the named query parameters, writing a 400 response and
// returning false on the first missing or malformed one.
func floatQuery(c *gin.Context, names ...string) ([]float64, bool) {
	out := make([]float64, len(names))
	for k, name := range names {
		s := c.Query(name)
		if s == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s parameter is required", name)})
			return nil, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", name, err)})
			return nil, false
		}
		out[k] = v
	}
	return out, true
}

// nullable maps NaN and infinities to null.
func nullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for k := range vals {
		if math.IsNaN(vals[k]) || math.IsInf(vals[k], 0) {
			continue
		}
		out[k] = &vals[k]
	}
	return out
}
