package domain

import (
	"fmt"
	"strings"
)

// ValidationError rejects a whole batch before any stage runs. It names the
// first offending record and its missing fields. An empty batch is reported
// with Index -1, since no record exists to point at.
type ValidationError struct {
	Index      int
	ShipmentID string
	Missing    []string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "empty batch: at least one shipment is required"
	}
	if len(e.Missing) == 0 {
		return fmt.Sprintf("record %d: invalid", e.Index)
	}
	return fmt.Sprintf("record %d: missing required fields: %s", e.Index, strings.Join(e.Missing, ", "))
}

// RouteError is fatal for a single record: geocoding succeeded but routing
// failed, and without route points the downstream samplers have no safe
// default. The rest of the batch is unaffected.
type RouteError struct {
	ShipmentID string
	Err        error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("shipment %s: route resolution failed: %v", e.ShipmentID, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }
