package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/tbergdoll/runoff-loads/internal/adapter/delim"
	"github.com/tbergdoll/runoff-loads/internal/adapter/files"
	"github.com/tbergdoll/runoff-loads/internal/config"
	"github.com/tbergdoll/runoff-loads/internal/domain"
	"github.com/tbergdoll/runoff-loads/internal/observability"
	"github.com/tbergdoll/runoff-loads/internal/pipeline"
	"github.com/tbergdoll/runoff-loads/internal/schema"
)

func main() {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	sch, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		logger.Error("schema load failed", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	source := files.New(cfg, sch)
	sink := delim.Sink{Dir: cfg.OutDir, Stem: cfg.OutputStem}

	p := pipeline.New(cfg, sch, source, sink, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	printSummary(report, metrics)
}

// printSummary renders the run report and the drop counters to stdout.
func printSummary(report *pipeline.Report, metrics *observability.Metrics) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Run %s — site %s", report.RunID, report.Site)

	t.AppendHeader(table.Row{"point", "matched", "dropped (no event)"})
	for _, point := range []domain.PointType{domain.PointFacade, domain.PointRoof, domain.PointSewer} {
		pr := report.Points[point]
		t.AppendRow(table.Row{string(point), pr.Matched, pr.Unmatched})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"logger files kept", report.LoggerSelected, ""})
	t.AppendRow(table.Row{"logger duplicates", report.LoggerDiscarded, ""})
	t.AppendRow(table.Row{"regression fills", report.RegressionFills, ""})
	t.Render()

	if report.Model != nil {
		fmt.Printf("volume model: %.4g + %.4g*rain + %.4g*temp (n=%d)\n",
			report.Model.Intercept, report.Model.RainCoef, report.Model.TempCoef, len(report.Model.Training))
	}

	if samples, err := metrics.Gather(); err == nil {
		for _, s := range samples {
			fmt.Printf("%s %g\n", s.Name, s.Value)
		}
	}

	for _, path := range report.OutputFiles {
		fmt.Println("wrote", path)
	}
}
