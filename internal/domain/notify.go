package domain

import "fmt"

// NotificationFor builds the per-risk-level operator message.
func NotificationFor(s Shipment) string {
	switch s.RiskLevel {
	case RiskHigh:
		return fmt.Sprintf("Shipment %s is at HIGH risk of delay. Immediate attention required.", s.ShipmentID)
	case RiskMedium:
		return fmt.Sprintf("Shipment %s is at MEDIUM risk of delay. Monitor closely.", s.ShipmentID)
	default:
		return fmt.Sprintf("Shipment %s is at LOW risk of delay. No action needed.", s.ShipmentID)
	}
}

// Finalize attaches the notification message and the processing timestamp.
// Last step of a record's pipeline.
func Finalize(s Shipment) Shipment {
	s.Notification = NotificationFor(s)
	s.ProcessedAt = clock.Now()
	return s
}
