package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned by NewLedgerMetrics without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Movement outcomes
const (
	OutcomeRecorded  = "recorded"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// LowStockSource counts supply items at or below their reorder level.
type LowStockSource interface {
	CountLowStockItems(ctx context.Context) (int64, error)
}

// LedgerMetricsConfig configures LedgerMetrics
type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
	// Source feeds the low stock gauge during periodic collection
	Source LowStockSource
}

// LedgerMetrics instruments stock movements
type LedgerMetrics struct {
	logger *zap.Logger
	source LowStockSource

	movements  *Counter
	violations *Counter
	duration   *Histogram
	lowStock   *Gauge

	stop      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	collector sync.WaitGroup
}

// NewLedgerMetrics registers the ledger instruments on cfg.Meter
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{logger: logger, source: cfg.Source, stop: make(chan struct{})}

	var err error
	if lm.movements, err = NewCounter(cfg.Meter, "farm_stock_movements_total",
		"Stock movement attempts by type and outcome", "{movements}"); err != nil {
		return nil, err
	}
	if lm.violations, err = NewCounter(cfg.Meter, "farm_stock_movement_violations_total",
		"Ledger rule violations by kind", "{violations}"); err != nil {
		return nil, err
	}
	if lm.duration, err = NewHistogram(cfg.Meter, "farm_stock_movement_duration_seconds",
		"Time to record a stock movement", "s", DurationBuckets...); err != nil {
		return nil, err
	}
	if lm.lowStock, err = NewGauge(cfg.Meter, "farm_inventory_low_stock_items",
		"Supply items at or below their reorder level", "{items}"); err != nil {
		return nil, err
	}
	return lm, nil
}

// RecordMovement counts one movement attempt and its latency
func (lm *LedgerMetrics) RecordMovement(ctx context.Context, movementType, outcome string, elapsed time.Duration) {
	lm.movements.Inc(ctx, AttrMovementType.String(movementType), AttrOutcome.String(outcome))
	if outcome == OutcomeRecorded {
		lm.duration.RecordDuration(ctx, elapsed, AttrMovementType.String(movementType))
	}
}

// RecordViolations counts each rejected rule
func (lm *LedgerMetrics) RecordViolations(ctx context.Context, kinds ...string) {
	for _, k := range kinds {
		lm.violations.Inc(ctx, AttrViolation.String(k))
	}
}

// RecordLowStock sets the low stock gauge
func (lm *LedgerMetrics) RecordLowStock(ctx context.Context, count int64) {
	lm.lowStock.Record(ctx, count)
}

// StartPeriodicCollection refreshes the low stock gauge every interval until
// Stop is called or ctx ends. Only the first call starts a collector.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if lm.source == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	lm.startOnce.Do(func() {
		lm.collector.Add(1)
		go func() {
			defer lm.collector.Done()
			lm.collect(ctx, interval)
		}()
	})
}

func (lm *LedgerMetrics) collect(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lm.collectOnce(ctx)
	for {
		select {
		case <-lm.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			lm.collectOnce(ctx)
		}
	}
}

func (lm *LedgerMetrics) collectOnce(ctx context.Context) {
	count, err := lm.source.CountLowStockItems(ctx)
	if err != nil {
		lm.logger.Warn("Failed to count low stock items", zap.Error(err))
		return
	}
	lm.RecordLowStock(ctx, count)
}

// Stop ends periodic collection and waits for the collector to return
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() { close(lm.stop) })
	lm.collector.Wait()
}
