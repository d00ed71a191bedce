package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wx-clean-service/internal/config"
	"github.com/couchcryptid/wx-clean-service/internal/domain"
	"github.com/couchcryptid/wx-clean-service/internal/observability"
	"github.com/google/uuid"
)

// BatchLoader writes cleaned records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.CleanRecord) error
}

// Options names the input columns and selects correction modes.
type Options struct {
	PrecipColumn string
	TempColumn   string
	WindColumn   string

	UndercatchInPlace  bool
	WettingLossInPlace bool

	TraceCutoff float64
	HighCutoff  float64

	// PublishMaxAttempts bounds retries when loading records. Zero means one attempt.
	PublishMaxAttempts int
}

// OptionsFromConfig maps service configuration to cleaner options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PrecipColumn:       cfg.PrecipColumn,
		TempColumn:         cfg.TempColumn,
		WindColumn:         cfg.WindColumn,
		UndercatchInPlace:  cfg.UndercatchInPlace,
		WettingLossInPlace: cfg.WettingLossInPlace,
		TraceCutoff:        cfg.TraceCutoff,
		HighCutoff:         cfg.HighCutoff,
		PublishMaxAttempts: cfg.PublishMaxAttempts,
	}
}

// CleanReport summarizes one cleaning run.
type CleanReport struct {
	RunID       string    `json:"run_id"`
	Station     string    `json:"station"`
	Rows        int       `json:"rows"`
	ProcessedAt time.Time `json:"processed_at"`

	// PrecipColumn is the column holding the fully corrected precipitation.
	PrecipColumn string   `json:"precip_column,omitempty"`
	Skipped      []string `json:"skipped,omitempty"`

	Undercatch  domain.CorrectionStats `json:"undercatch"`
	WettingLoss domain.CorrectionStats `json:"wetting_loss"`

	WindOverCeiling int `json:"wind_over_ceiling"`
	WindFaultyHours int `json:"wind_faulty_hours"`
	WindNulled      int `json:"wind_nulled"`
}

// Result is a cleaned dataset and its report.
type Result struct {
	Dataset *domain.Dataset
	Report  CleanReport
}

// Cleaner runs the correction chain over station datasets.
type Cleaner struct {
	opts    Options
	loader  BatchLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// NewCleaner creates a Cleaner. Pass a nil loader to disable publishing.
func NewCleaner(opts Options, loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{
		opts:    opts,
		loader:  loader,
		logger:  logger,
		metrics: metrics,
	}
}

// MarkReady flags the cleaner as able to serve requests.
func (c *Cleaner) MarkReady() { c.ready.Store(true) }

// MarkDraining flags the cleaner as shutting down.
func (c *Cleaner) MarkDraining() { c.ready.Store(false) }

// CheckReadiness returns nil once the cleaner is ready and not draining.
func (c *Cleaner) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("cleaner is not accepting work")
	}
	return nil
}

// Clean runs the correction chain and returns a new dataset; ds is not modified.
//
// The precip-rate classifier reads the measured precipitation and the wind
// fault detector reads the measured wind, independently of the precipitation
// chain (phase, undercatch, wetting loss). Stages whose input columns are
// absent are skipped and listed in the report; wetting loss is only added to
// undercatch-corrected precipitation.
func (c *Cleaner) Clean(ctx context.Context, ds *domain.Dataset) (Result, error) {
	start := time.Now()
	res, err := c.clean(ctx, ds)
	if err != nil {
		c.metrics.CleanErrors.Inc()
		return Result{}, err
	}

	c.metrics.DatasetsCleaned.Inc()
	c.metrics.RowsProcessed.Add(float64(res.Report.Rows))
	c.metrics.CleanDuration.Observe(time.Since(start).Seconds())
	c.observeStats("undercatch", res.Report.Undercatch)
	c.observeStats("wetting_loss", res.Report.WettingLoss)
	c.metrics.WindNulled.WithLabelValues("ceiling").Add(float64(res.Report.WindOverCeiling))
	c.metrics.WindNulled.WithLabelValues("stuck").Add(float64(res.Report.WindNulled))

	c.logger.Info("dataset cleaned",
		"run_id", res.Report.RunID,
		"station", res.Report.Station,
		"rows", res.Report.Rows,
		"precip_corrected", res.Report.Undercatch.Corrected,
		"wind_nulled", res.Report.WindNulled+res.Report.WindOverCeiling,
		"skipped", res.Report.Skipped,
		"duration", time.Since(start),
	)
	return res, nil
}

func (c *Cleaner) clean(ctx context.Context, ds *domain.Dataset) (Result, error) {
	report := CleanReport{
		RunID:       uuid.NewString(),
		Station:     ds.Station,
		Rows:        ds.Len(),
		ProcessedAt: domain.Now().UTC(),
	}
	hasPrecip := ds.HasColumn(c.opts.PrecipColumn)
	hasTemp := ds.HasColumn(c.opts.TempColumn)
	hasWind := ds.HasColumn(c.opts.WindColumn)

	out := ds
	var err error

	if hasPrecip {
		out, err = domain.ClassifyPrecipRate(out, c.opts.PrecipColumn, c.opts.TraceCutoff, c.opts.HighCutoff)
		if err != nil {
			return Result{}, err
		}
	} else {
		report.Skipped = append(report.Skipped, "precip_rate")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if hasTemp {
		out, err = domain.ClassifyPhase(out, c.opts.TempColumn)
		if err != nil {
			return Result{}, err
		}
	} else {
		report.Skipped = append(report.Skipped, "phase")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if hasTemp && hasPrecip && hasWind {
		uc := domain.UndercatchOptions{
			PrecipColumn: c.opts.PrecipColumn,
			WindColumn:   c.opts.WindColumn,
			InPlace:      c.opts.UndercatchInPlace,
		}
		out, report.Undercatch, err = domain.CorrectUndercatch(out, uc)
		if err != nil {
			return Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		wl := domain.WettingLossOptions{
			PrecipColumn: uc.TargetColumn(),
			InPlace:      c.opts.WettingLossInPlace,
		}
		out, report.WettingLoss, err = domain.AddWettingLoss(out, wl)
		if err != nil {
			return Result{}, err
		}
		report.PrecipColumn = wl.TargetColumn()
	} else {
		report.Skipped = append(report.Skipped, "undercatch", "wetting_loss")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if hasWind {
		var qc domain.WindQC
		out, qc, err = domain.CleanWindSpeed(out, c.opts.WindColumn)
		if err != nil {
			return Result{}, err
		}
		report.WindOverCeiling = qc.OverCeiling
		report.WindFaultyHours = qc.FaultyHours
		report.WindNulled = qc.Nulled
	} else {
		report.Skipped = append(report.Skipped, "wind")
	}

	if len(report.Skipped) > 0 {
		c.logger.Warn("cleaning stages skipped for missing columns",
			"station", ds.Station,
			"stages", report.Skipped,
		)
	}
	return Result{Dataset: out, Report: report}, nil
}

func (c *Cleaner) observeStats(stage string, s domain.CorrectionStats) {
	c.metrics.PrecipValues.WithLabelValues(stage, "corrected").Add(float64(s.Corrected))
	c.metrics.PrecipValues.WithLabelValues(stage, "retained").Add(float64(s.Retained))
	c.metrics.PrecipValues.WithLabelValues(stage, "discarded").Add(float64(s.Discarded))
	c.metrics.PrecipValues.WithLabelValues(stage, "missing").Add(float64(s.Missing))
}

// Aggregate reduces a column of ds to monthly or annual values.
func (c *Cleaner) Aggregate(ds *domain.Dataset, column string, period domain.Period, reducer domain.Reducer) (domain.Aggregation, error) {
	agg, err := domain.Aggregate(ds, column, period, reducer)
	if err != nil {
		c.metrics.CleanErrors.Inc()
		return domain.Aggregation{}, err
	}

	invalid := agg.Invalid()
	c.metrics.PeriodsAggregated.Add(float64(len(agg.Values)))
	c.metrics.PeriodsInvalidated.Add(float64(invalid))
	c.logger.Info("column aggregated",
		"station", ds.Station,
		"column", column,
		"period", period.String(),
		"reducer", reducer.String(),
		"periods", len(agg.Values),
		"invalid", invalid,
	)
	return agg, nil
}

// Publish sends the cleaned rows to the loader, retrying with exponential
// backoff. It is a no-op when publishing is disabled.
func (c *Cleaner) Publish(ctx context.Context, res Result) error {
	if c.loader == nil {
		return nil
	}
	records := domain.Records(res.Dataset, res.Report.RunID)
	if len(records) == 0 {
		return nil
	}

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second
	attempts := max(c.opts.PublishMaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.loader.LoadBatch(ctx, records); err == nil {
			c.metrics.RecordsPublished.Add(float64(len(records)))
			return nil
		}
		c.metrics.PublishErrors.Inc()
		c.logger.Error("publish batch failed",
			"error", err,
			"run_id", res.Report.RunID,
			"attempt", attempt,
			"batch_size", len(records),
		)
		if attempt == attempts || !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish run %s: %w", res.Report.RunID, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
