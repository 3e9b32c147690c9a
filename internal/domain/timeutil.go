package domain

import "time"

// UTC returns t as the same instant in the UTC location. All timestamps
// exchanged between packages are expected to pass through here.
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// ParseLocal parses a wall-clock timestamp in the named zone and returns it in UTC.
// An empty zone name is treated as UTC.
func ParseLocal(layout, value, zone string) (time.Time, error) {
	loc := time.UTC
	if zone != "" {
		var err error
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, err
		}
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// DateToYearDay returns the fractional day of year of t, with 1 January
// 00:00 UTC equal to 1.0.
func DateToYearDay(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	return 1 + t.Sub(start).Hours()/24
}

// HoursSince returns the elapsed hours from ref to each time in ts.
func HoursSince(ref time.Time, ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for k, t := range ts {
		out[k] = t.Sub(ref).Hours()
	}
	return out
}
