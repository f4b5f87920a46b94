package report

import "errors"

// Failures that abort report construction. Callers match them with errors.Is;
// the returned errors carry the selection and the missing coordinates.
var (
	// ErrSelectionNotFound means no rows exist for the grain/item pair.
	ErrSelectionNotFound = errors.New("selection not found")
	// ErrInsufficientHistory means the latest crop year (or the series) is too
	// short to compute the summary.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrMissingAlignment means the prior crop year lacks the current grain week.
	ErrMissingAlignment = errors.New("missing prior-year alignment")
	// ErrDuplicateObservation means two rows share a crop year and grain week.
	ErrDuplicateObservation = errors.New("duplicate observation")
)
