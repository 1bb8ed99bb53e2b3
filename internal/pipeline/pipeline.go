// Package pipeline orchestrates one site's analysis run: logger
// reconciliation, volume estimation, specific-runoff construction, and the
// load/concentration join. The run is synchronous and run-to-completion;
// all intermediate tables are owned by the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/tbergdoll/runoff-loads/internal/config"
	"github.com/tbergdoll/runoff-loads/internal/domain"
	"github.com/tbergdoll/runoff-loads/internal/observability"
	"github.com/tbergdoll/runoff-loads/internal/schema"
)

// Inputs is the full parsed input set for one site, supplied by the
// adapters. The pipeline never reaches into files or ambient process state
// itself.
type Inputs struct {
	LoggerFiles []domain.LoggerFile
	Rain        domain.Series
	Temperature domain.Series

	FacadeEvents []domain.FacadeEvent
	RoofEvents   []domain.Event
	SewerEvents  []domain.Event

	Concentrations map[domain.PointType][]domain.ConcentrationRecord
}

// Source provides the parsed inputs for a site.
type Source interface {
	Load(ctx context.Context, site domain.Site) (Inputs, error)
}

// Sink persists one output table and returns where it went.
type Sink interface {
	Write(t domain.Table) (string, error)
}

// PointReport is the join bookkeeping for one monitoring-point type.
type PointReport struct {
	Matched   int
	Unmatched int
}

// Report summarizes a completed run.
type Report struct {
	RunID string
	Site  domain.Site

	LoggerSelected  int
	LoggerDiscarded int
	LoggerEmpty     int
	LoggerRowsSkip  int

	RegressionFills int
	Model           *domain.VolumeModel

	Points      map[domain.PointType]PointReport
	OutputFiles []string
}

// Pipeline wires one site run.
type Pipeline struct {
	cfg     *config.Config
	sch     *schema.Schema
	source  Source
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline with the given collaborators.
func New(cfg *config.Config, sch *schema.Schema, source Source, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		sch:     sch,
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes the full pipeline for the configured site and returns the
// run report. Data-quality problems propagate as missing or dropped rows;
// only an unloadable input set or an unfittable volume model is fatal.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Site:   p.cfg.Site,
		Points: make(map[domain.PointType]PointReport),
	}
	logger := p.logger.With("run_id", report.RunID, "site", string(p.cfg.Site))

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	inputs, err := p.source.Load(ctx, p.cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}

	merged := p.mergeLoggers(logger, inputs.LoggerFiles, report)
	p.checkEventVolumes(logger, merged, inputs.SewerEvents)

	areas, err := p.sch.Areas(p.cfg.Site)
	if err != nil {
		return nil, err
	}

	if err := p.fillVolumes(logger, inputs, report); err != nil {
		return nil, err
	}

	facadeRunoff, err := domain.BuildFacadeRunoff(inputs.FacadeEvents, areas)
	if err != nil {
		return nil, fmt.Errorf("facade runoff: %w", err)
	}
	roofRunoff := domain.BuildRoofRunoff(inputs.RoofEvents, areas)
	sewerRunoff := domain.BuildSewerRunoff(inputs.SewerEvents, areas)

	joins := map[domain.PointType][]domain.RunoffRecord{
		domain.PointFacade: facadeRunoff,
		domain.PointRoof:   roofRunoff,
		domain.PointSewer:  sewerRunoff,
	}
	for _, point := range []domain.PointType{domain.PointFacade, domain.PointRoof, domain.PointSewer} {
		if err := p.joinAndWrite(logger, point, joins[point], inputs.Concentrations[point], report); err != nil {
			return nil, err
		}
	}

	logger.Info("run complete", "tables", len(report.OutputFiles))
	return report, nil
}

func (p *Pipeline) mergeLoggers(logger *slog.Logger, files []domain.LoggerFile, report *Report) domain.Series {
	res := domain.MergeLoggerFiles(files, p.cfg.Location, p.sch.OverRangeSentinel)

	report.LoggerSelected = len(res.Selected)
	report.LoggerDiscarded = len(res.Discarded)
	report.LoggerEmpty = len(res.Empty)
	report.LoggerRowsSkip = res.SkippedRows

	p.metrics.LoggerFilesSelected.Add(float64(len(res.Selected)))
	p.metrics.LoggerFilesDiscarded.Add(float64(len(res.Discarded)))
	p.metrics.LoggerFilesEmpty.Add(float64(len(res.Empty)))
	p.metrics.LoggerRowsSkipped.Add(float64(res.SkippedRows))

	logger.Info("logger files merged",
		"selected", len(res.Selected),
		"discarded_duplicates", len(res.Discarded),
		"empty", len(res.Empty),
		"rows_skipped", res.SkippedRows,
		"samples", len(res.Series.Samples),
	)
	for _, name := range res.Empty {
		logger.Warn("logger file had no parseable rows", "file", name)
	}
	return res.Series
}

// checkEventVolumes integrates the merged flow series over each event's
// hydraulic window and logs the discrepancy against the recorded volume.
// A plausibility check only; nothing is overwritten.
func (p *Pipeline) checkEventVolumes(logger *slog.Logger, flow domain.Series, events []domain.Event) {
	for _, ev := range events {
		if ev.HydraulicBegin.IsZero() || ev.HydraulicEnd.IsZero() || domain.IsMissing(ev.Volume) {
			continue
		}
		integrated := domain.IntegrateVolume(flow, ev.HydraulicBegin, ev.HydraulicEnd, p.cfg.FlowUnit)
		logger.Debug("event volume check",
			"event_start", domain.FormatTime(ev.Start),
			"recorded_l", ev.Volume,
			"integrated_l", integrated,
			"difference_l", math.Abs(ev.Volume-integrated),
		)
	}
}

// fillVolumes estimates missing event volumes from rain depth and
// antecedent temperature. The model trains only on events whose volume was
// measured, never on earlier regression output. Needing a fill without a
// fittable model is fatal; a fully measured input set skips fitting.
func (p *Pipeline) fillVolumes(logger *slog.Logger, inputs Inputs, report *Report) error {
	for _, events := range [][]domain.Event{inputs.RoofEvents, inputs.SewerEvents} {
		missing := 0
		for i := range events {
			if domain.IsMissing(events[i].Volume) {
				missing++
			}
		}
		if missing == 0 {
			continue
		}

		var obs []domain.Observation
		for _, ev := range events {
			if ev.VolumeEstimated || domain.IsMissing(ev.Volume) {
				continue
			}
			temp, ok := domain.AntecedentTemperature(inputs.Rain, inputs.Temperature, ev.Start)
			if !ok {
				continue
			}
			obs = append(obs, domain.Observation{RainDepth: ev.RainDepth, AntecedentTemp: temp, Volume: ev.Volume})
		}

		model, err := domain.FitVolumeModel(obs)
		if err != nil {
			return fmt.Errorf("volume model for site %s: %w", p.cfg.Site, err)
		}
		report.Model = &model
		logger.Info("volume model fitted",
			"observations", len(model.Training),
			"intercept", model.Intercept,
			"rain_coef", model.RainCoef,
			"temp_coef", model.TempCoef,
		)

		for i := range events {
			if !domain.IsMissing(events[i].Volume) {
				continue
			}
			temp, ok := domain.AntecedentTemperature(inputs.Rain, inputs.Temperature, events[i].Start)
			if !ok {
				logger.Warn("no antecedent dry period, volume stays missing",
					"event_start", domain.FormatTime(events[i].Start))
				continue
			}
			events[i].Volume = model.Predict(events[i].RainDepth, temp)
			events[i].VolumeEstimated = true
			report.RegressionFills++
			p.metrics.RegressionFills.Inc()
		}
	}
	return nil
}

func (p *Pipeline) joinAndWrite(logger *slog.Logger, point domain.PointType, runoff []domain.RunoffRecord, concs []domain.ConcentrationRecord, report *Report) error {
	res := domain.JoinLoads(point, runoff, concs, p.sch.SubstancesFor(point), p.cfg.LimitPolicy)

	report.Points[point] = PointReport{Matched: res.Matched, Unmatched: res.Unmatched}
	p.metrics.JoinMatches.WithLabelValues(string(point)).Add(float64(res.Matched))
	p.metrics.JoinMisses.WithLabelValues(string(point)).Add(float64(res.Unmatched))

	if res.Unmatched > 0 {
		logger.Warn("concentration rows without a matching event were dropped",
			"point", string(point), "dropped", res.Unmatched, "matched", res.Matched)
	}

	for _, table := range []domain.Table{res.Loads, res.Concentrations} {
		path, err := p.sink.Write(table)
		if err != nil {
			return fmt.Errorf("write %s: %w", table.Name, err)
		}
		report.OutputFiles = append(report.OutputFiles, path)
		logger.Info("table written", "table", table.Name, "rows", len(table.Rows), "path", path)
	}
	return nil
}
