package valuation

import (
	"errors"
	"fmt"

	"solarlog/internal/model"
)

// ErrNoData indicates the requested date or range has no underlying
// samples at all. It is an expected outcome, not a fault; the API layer
// maps it to a typed 404. Distinct from a date with samples but zero
// production, which yields a normal summary.
var ErrNoData = errors.New("no data for requested range")

// PreconditionError reports a malformed hourly bucket set: wrong count,
// gaps or duplicate hours. This points at an upstream acquisition or
// storage bug, so the single request fails loudly instead of producing
// a silently wrong summary.
type PreconditionError struct {
	Date   model.Date
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("hourly records for %s malformed: %s", e.Date, e.Reason)
}
