// Package kafka publishes scored shipments to a notification topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cargosense-risk/internal/config"
	"github.com/couchcryptid/cargosense-risk/internal/domain"
)

// Notifier produces scored shipments to a Kafka topic so downstream
// consumers (customer messaging, dispatch dashboards) can react to risk.
// It implements pipeline.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured notification topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaNotifyTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the scored shipments in a single
// WriteMessages call for efficiency.
func (n *Notifier) PublishBatch(ctx context.Context, shipments []domain.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	n.logger.Debug("publishing shipment notifications", "count", len(shipments))
	msgs := make([]kafkago.Message, len(shipments))
	for i := range shipments {
		msg, err := serializeToMessage(shipments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return n.writer.WriteMessages(ctx, msgs...)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a scored shipment into a Kafka message keyed
// by shipment ID so per-shipment ordering is preserved across partitions.
func serializeToMessage(s domain.Shipment) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize shipment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.ShipmentID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(s.RiskLevel)},
			{Key: "source", Value: []byte(s.Source)},
			{Key: "processed_at", Value: []byte(s.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
