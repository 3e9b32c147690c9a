package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.ngs.io/salishsea-tools/internal/domain"
)

var comparisonHeader = []string{
	"Station Number", "Station Name", "Longitude", "Latitude",
	"Modelled M2 amp", "Observed M2 amp",
	"Modelled M2 phase", "Observed M2 phase",
	"M2 Difference Foreman", "M2 Difference Masson",
	"Modelled K1 amp", "Observed K1 amp",
	"Modelled K1 phase", "Observed K1 phase",
	"K1 Difference Foreman", "K1 Difference Masson",
}

// WriteComparison writes one row per station. Stations outside the model
// domain carry 9999 in the first two value columns.
func WriteComparison(w io.Writer, rows []domain.StationComparison) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(comparisonHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		st := r.Station
		rec := []string{strconv.Itoa(st.Number), st.Name, formatCell(st.Lon), formatCell(st.Lat)}
		if !r.Found {
			rec = append(rec, strconv.Itoa(Missing), strconv.Itoa(Missing))
		} else {
			for _, c := range []domain.ConstituentComparison{r.M2, r.K1} {
				rec = append(rec,
					formatCell(c.ModelAmp), formatCell(c.ObsAmp),
					formatCell(c.ModelPha), formatCell(c.ObsPha),
					formatCell(c.DF95), formatCell(c.DM04))
			}
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
