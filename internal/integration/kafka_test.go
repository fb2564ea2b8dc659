//go:build integration

// These tests need Docker. Run with:
//
//	go test -tags=integration ./internal/integration/ -v -count=1
package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/couchcryptid/cargosense-risk/internal/adapter/kafka"
	"github.com/couchcryptid/cargosense-risk/internal/config"
	"github.com/couchcryptid/cargosense-risk/internal/domain"
)

const notifyTopic = "shipment-notifications"

func startKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.6.1",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ctr.Terminate(ctx))
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func TestNotifier_PublishBatch(t *testing.T) {
	brokers := startKafka(t)
	createTopic(t, brokers[0], notifyTopic)

	cfg := &config.Config{
		KafkaBrokers:     brokers,
		KafkaNotifyTopic: notifyTopic,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	notifier := kafkaadapter.NewNotifier(cfg, logger)
	defer notifier.Close()

	shipments := []domain.Shipment{
		{
			ShipmentID:  "SHP-1",
			Origin:      "BUDAPEST",
			Destination: "VIENNA",
			DelayProb:   0.62,
			RiskLevel:   domain.RiskHigh,
			Source:      domain.SourceML,
			ProcessedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			ShipmentID:  "SHP-2",
			Origin:      "PRAGUE",
			Destination: "BERLIN",
			DelayProb:   0.21,
			RiskLevel:   domain.RiskLow,
			Source:      domain.SourceBaseline,
			ProcessedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, notifier.PublishBatch(ctx, shipments))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    notifyTopic,
		GroupID:  "integration-test",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	got := make(map[string]domain.Shipment, len(shipments))
	for range shipments {
		msg, err := reader.ReadMessage(ctx)
		require.NoError(t, err)

		var s domain.Shipment
		require.NoError(t, json.Unmarshal(msg.Value, &s))
		assert.Equal(t, s.ShipmentID, string(msg.Key))
		got[s.ShipmentID] = s
	}

	require.Len(t, got, 2)
	assert.Equal(t, domain.RiskHigh, got["SHP-1"].RiskLevel)
	assert.Equal(t, 0.21, got["SHP-2"].DelayProb)
}
