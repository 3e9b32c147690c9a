package nemo

import (
	"fmt"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

// Readers.
const (
	ReaderLibNetCDF = "libnetcdf"
	ReaderNative    = "native"
)

// NewOpener returns the opener for a reader name. An empty name selects
// libnetcdf.
func NewOpener(reader string) (dataset.Opener, error) {
	switch reader {
	case "", ReaderLibNetCDF:
		return dataset.OpenerFunc(Open), nil
	case ReaderNative:
		return dataset.OpenerFunc(OpenNative), nil
	}
	return nil, fmt.Errorf("unknown netCDF reader %q", reader)
}
