package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for a time_origin attribute, tried in order. The second is
// the atmospheric forcing format (e.g. "2014-JAN-01 00:00:00").
var originLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-Jan-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// unitScales maps CF time units to seconds.
var unitScales = map[string]float64{
	"seconds": 1,
	"second":  1,
	"minutes": 60,
	"hours":   3600,
	"days":    86400,
}

// ParseTimeOrigin parses a time_origin attribute as UTC.
func ParseTimeOrigin(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range originLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time origin %q", s)
}

// ParseUnits parses CF units such as "seconds since 1900-01-01 00:00:00" into
// a scale in seconds and an origin.
func ParseUnits(units string) (float64, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("failed to parse time units %q", units)
	}
	scale, ok := unitScales[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unsupported time unit in %q", units)
	}
	origin, err := ParseTimeOrigin(parts[1])
	if err != nil {
		return 0, time.Time{}, err
	}
	return scale, origin, nil
}

// TimeAxis describes how a time variable maps to instants.
type TimeAxis struct {
	Origin time.Time
	Scale  float64 // Seconds per stored unit.
}

// At converts a stored value to an instant.
func (a TimeAxis) At(v float64) time.Time {
	return a.Origin.Add(time.Duration(v * a.Scale * float64(time.Second)))
}

// Offset converts an instant to a stored value.
func (a TimeAxis) Offset(t time.Time) float64 {
	return t.Sub(a.Origin).Seconds() / a.Scale
}

// ReadTimeAxis reads the origin of a time variable from its time_origin
// attribute, falling back to CF units.
func ReadTimeAxis(ds Dataset, name string) (TimeAxis, error) {
	if s, ok := ds.Attr(name, "time_origin"); ok {
		origin, err := ParseTimeOrigin(s)
		if err == nil {
			return TimeAxis{Origin: origin, Scale: 1}, nil
		}
	}
	if s, ok := ds.Attr(name, "units"); ok {
		scale, origin, err := ParseUnits(s)
		if err == nil {
			return TimeAxis{Origin: origin, Scale: scale}, nil
		}
	}
	return TimeAxis{}, fmt.Errorf("%s in %s has no usable time origin", name, ds.Path())
}
