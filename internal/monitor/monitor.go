// Package monitor periodically checks the forecast humidity for a day offset
// and publishes the outcome as a domain.HumidityReport.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
	"github.com/couchcryptid/hko-weather-e2e/internal/observability"
)

// Publish retry bounds.
const (
	initialBackoff    = 200 * time.Millisecond
	maxBackoff        = 5 * time.Second
	maxPublishRetries = 3
)

// ForecastSource provides the 9-day forecast, returning nil on failure.
type ForecastSource interface {
	FetchNineDayForecast(ctx context.Context) *domain.ForecastPayload
}

// ReportPublisher delivers a humidity report downstream.
type ReportPublisher interface {
	Publish(ctx context.Context, report domain.HumidityReport) error
}

// Config controls what the monitor checks and how often.
type Config struct {
	Interval time.Duration
	Offset   int
	Bounds   domain.Bounds
}

// Monitor runs the periodic humidity check loop.
type Monitor struct {
	source    ForecastSource
	publisher ReportPublisher
	cfg       Config
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	mu     sync.RWMutex
	latest *domain.HumidityReport
}

// New creates a Monitor.
func New(src ForecastSource, pub ReportPublisher, cfg Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Monitor {
	return &Monitor{
		source:    src,
		publisher: pub,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one check has completed.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a humidity check yet")
	}
	return nil
}

// Latest returns the most recent report, if any.
func (m *Monitor) Latest() (domain.HumidityReport, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return domain.HumidityReport{}, false
	}
	return *m.latest, true
}

// Run checks immediately and then every Interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "interval", m.cfg.Interval, "offset", m.cfg.Offset)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	ticker := m.clock.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		m.Check(ctx)

		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// Check runs one humidity check, publishes the report and records it as the
// latest. Publish failures are retried with backoff, then logged.
func (m *Monitor) Check(ctx context.Context) domain.HumidityReport {
	report := domain.BuildHumidityReport(m.source.FetchNineDayForecast(ctx), m.cfg.Offset, m.cfg.Bounds)
	m.record(report)

	if err := m.publish(ctx, report); err != nil {
		m.logger.Error("publish humidity report failed", "error", err, "date", report.Date)
	}

	m.mu.Lock()
	m.latest = &report
	m.mu.Unlock()
	m.ready.Store(true)
	return report
}

func (m *Monitor) record(r domain.HumidityReport) {
	result := r.Result()
	switch result {
	case "unavailable":
		m.logger.Warn("humidity unavailable", "date", r.Date, "offset", r.Offset)
	case "valid":
		m.logger.Info("humidity check passed", "date", r.Date, "humidity", r.Humidity)
	default:
		m.logger.Warn("humidity check failed", "date", r.Date, "humidity", r.Humidity, "error", r.Error)
	}
	m.metrics.HumidityChecks.WithLabelValues(result).Inc()
}

func (m *Monitor) publish(ctx context.Context, report domain.HumidityReport) error {
	backoff := initialBackoff
	var err error
	for attempt := 0; attempt <= maxPublishRetries; attempt++ {
		if attempt > 0 {
			if !m.sleepWithContext(ctx, backoff) {
				return errors.Join(err, ctx.Err())
			}
			backoff = sharedretry.NextBackoff(backoff, maxBackoff)
		}
		if err = m.publisher.Publish(ctx, report); err == nil {
			m.metrics.ReportsProduced.Inc()
			return nil
		}
		m.metrics.PublishErrors.Inc()
		m.logger.Warn("publish attempt failed", "attempt", attempt+1, "error", err)
	}
	return err
}

func (m *Monitor) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := m.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
