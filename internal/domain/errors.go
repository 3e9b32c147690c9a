package domain

import "errors"

// Sentinel errors shared by the evaluation packages. Wrap them with
// fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrMissingColumn is returned when an observation table lacks a column
	// required by the chosen matching policy.
	ErrMissingColumn = errors.New("missing from data")

	// ErrFileNotFound is returned when no archive file covers a required time.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutsideDomain is returned when a point is farther from every model
	// cell than the configured tolerance.
	ErrOutsideDomain = errors.New("point outside domain")

	// ErrOnLand is returned when the nearest cell is land and no water cell
	// lies within the search window.
	ErrOnLand = errors.New("point on land")

	// ErrLengthMismatch is returned when harmonic run lengths and runs differ in count.
	ErrLengthMismatch = errors.New("run lengths and runs differ in count")

	// ErrUnknownFileType is returned when a variable maps to a file type with
	// no configured cadence.
	ErrUnknownFileType = errors.New("file type(s) missing")
)
