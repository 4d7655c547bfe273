package monitor

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
)

// LogPublisher writes reports to the log. Used when Kafka publishing is disabled.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, r domain.HumidityReport) error {
	p.logger.Info("humidity report",
		"checked_at", r.CheckedAt,
		"date", r.Date,
		"offset", r.Offset,
		"available", r.Available,
		"humidity", r.Humidity,
		"valid", r.Valid,
		"error", r.Error,
	)
	return nil
}
