// Package match collocates observations with gridded model output.
//
// Run implements the match driver: it validates the observation table,
// resolves horizontal indices, sorts the rows and then walks them in time
// order, opening archive files lazily and sampling every requested variable
// at the observation's time bin and depth.
package match

import (
	"fmt"
	"sort"

	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/obs"
)

// Method is a vertical sampling policy.
type Method string

// Vertical sampling policies.
const (
	// MethodBin takes the cell whose depth bounds enclose Z.
	MethodBin Method = "bin"
	// MethodVVLBin is MethodBin with bounds rebuilt from time-varying e3t.
	MethodVVLBin Method = "vvlBin"
	// MethodVVLZ interpolates linearly between VVL mid-cell depths.
	MethodVVLZ Method = "vvlZ"
	// MethodFerry takes the surface level and ignores Z.
	MethodFerry Method = "ferry"
	// MethodVertNet averages cells centred between Z_upper and Z_lower,
	// weighted by e3t_0.
	MethodVertNet Method = "vertNet"
)

// ParseMethod validates a policy name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodBin, MethodVVLBin, MethodVVLZ, MethodFerry, MethodVertNet:
		return m, nil
	}
	return "", fmt.Errorf("option %s not written yet", s)
}

// binLike reports whether the policy resolves a single level index k.
func (m Method) binLike() bool {
	return m == MethodBin || m == MethodVVLBin
}

// vvl reports whether the policy needs time-varying cell thicknesses.
func (m Method) vvl() bool {
	return m == MethodVVLBin || m == MethodVVLZ
}

// RequiredColumns returns the columns a table must have for the policy.
// Pre-indexed tables carry i and j in place of Lat and Lon, and k in place
// of Z.
func RequiredColumns(method Method, sdim int, preIndexed bool) []string {
	cols := []string{obs.ColTime, obs.ColLat, obs.ColLon}
	if preIndexed {
		cols = []string{obs.ColTime, obs.ColI, obs.ColJ}
	}
	switch {
	case method == MethodFerry:
	case method == MethodVertNet:
		cols = append(cols, obs.ColZUpper, obs.ColZLower)
	case sdim == 3 && preIndexed:
		cols = append(cols, obs.ColK)
	case sdim == 3:
		cols = append(cols, obs.ColZ)
	}
	return cols
}

// CheckColumns fails with domain.ErrMissingColumn listing every required
// column absent from tbl.
func CheckColumns(tbl *obs.Table, required []string) error {
	var missing []string
	for _, name := range required {
		if !tbl.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%v: %w", missing, domain.ErrMissingColumn)
	}
	return nil
}

// FileTypes returns the sorted file types used by the variables. Every file
// type needs a cadence entry in fileHours.
func FileTypes(fileHours map[string]int, varFileTypes map[string]string) ([]string, error) {
	seen := make(map[string]bool)
	var types, missing []string
	for _, v := range sortedKeys(varFileTypes) {
		ft := varFileTypes[v]
		if seen[ft] {
			continue
		}
		seen[ft] = true
		if _, ok := fileHours[ft]; !ok {
			missing = append(missing, ft)
			continue
		}
		types = append(types, ft)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w from model_file_hours_res: %v", domain.ErrUnknownFileType, missing)
	}
	sort.Strings(types)
	return types, nil
}

// FileTypeVars inverts the variable map into file type -> sorted variables.
func FileTypeVars(varFileTypes map[string]string, fileTypes []string) map[string][]string {
	out := make(map[string][]string, len(fileTypes))
	for _, ft := range fileTypes {
		out[ft] = []string{}
	}
	for _, v := range sortedKeys(varFileTypes) {
		ft := varFileTypes[v]
		if _, ok := out[ft]; ok {
			out[ft] = append(out[ft], v)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
