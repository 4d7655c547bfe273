package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hko-weather-e2e/internal/config"
	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
)

// ReportWriter produces humidity reports to a Kafka topic.
// It implements monitor.ReportPublisher.
type ReportWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewReportWriter creates a Kafka producer for the configured report topic.
func NewReportWriter(cfg *config.Config, logger *slog.Logger) *ReportWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &ReportWriter{writer: w, logger: logger}
}

// Publish writes one report keyed by its forecast date, so every report for
// a date lands on the same partition.
func (w *ReportWriter) Publish(ctx context.Context, report domain.HumidityReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write humidity report: %w", err)
	}
	w.logger.Debug("humidity report published", "topic", w.writer.Topic, "date", report.Date)
	return nil
}

func (w *ReportWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a HumidityReport into a Kafka message.
func serializeToMessage(report domain.HumidityReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize humidity report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_type", Value: []byte(report.Result())},
			{Key: "checked_at", Value: []byte(report.CheckedAt.Format(time.RFC3339))},
		},
	}, nil
}
