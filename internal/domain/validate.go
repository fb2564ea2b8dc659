package domain

import "strings"

// requiredFields in input order, used to build stable error messages.
var requiredFields = []struct {
	name  string
	value func(ShipmentInput) string
}{
	{"shipment_id", func(s ShipmentInput) string { return s.ShipmentID }},
	{"origin", func(s ShipmentInput) string { return s.Origin }},
	{"destination", func(s ShipmentInput) string { return s.Destination }},
	{"carrier", func(s ShipmentInput) string { return s.Carrier }},
	{"dispatch_ts", func(s ShipmentInput) string { return s.DispatchTS }},
	{"expected_ts", func(s ShipmentInput) string { return s.ExpectedTS }},
}

// ValidateBatch checks that the batch is non-empty and that every record
// carries the six required fields. Any violation rejects the entire batch
// with a *ValidationError, and no stage runs.
func ValidateBatch(batch []ShipmentInput) error {
	if len(batch) == 0 {
		return &ValidationError{Index: -1}
	}
	for i, in := range batch {
		var missing []string
		for _, f := range requiredFields {
			if strings.TrimSpace(f.value(in)) == "" {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			return &ValidationError{Index: i, ShipmentID: in.ShipmentID, Missing: missing}
		}
	}
	return nil
}
