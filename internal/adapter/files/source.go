// Package files assembles a pipeline input set from the configured on-disk
// sources: the logger export directory, the rain and temperature series
// tables, and the site workbook.
package files

import (
	"context"
	"fmt"

	"github.com/tbergdoll/runoff-loads/internal/adapter/csvfile"
	"github.com/tbergdoll/runoff-loads/internal/adapter/xlsx"
	"github.com/tbergdoll/runoff-loads/internal/config"
	"github.com/tbergdoll/runoff-loads/internal/domain"
	"github.com/tbergdoll/runoff-loads/internal/pipeline"
	"github.com/tbergdoll/runoff-loads/internal/schema"
)

// Source implements pipeline.Source over the configured file paths.
type Source struct {
	cfg *config.Config
	sch *schema.Schema
}

// New creates a file-backed input source.
func New(cfg *config.Config, sch *schema.Schema) *Source {
	return &Source{cfg: cfg, sch: sch}
}

// Load reads every input for a site run. Any unreadable source is fatal;
// partial input sets would silently bias the outputs.
func (s *Source) Load(_ context.Context, site domain.Site) (pipeline.Inputs, error) {
	var in pipeline.Inputs
	var err error

	if in.LoggerFiles, err = csvfile.ReadLoggerDir(s.cfg.LoggerDir); err != nil {
		return pipeline.Inputs{}, err
	}
	if in.Rain, err = csvfile.ReadSeries(s.cfg.RainCSV, s.cfg.Gauge, s.cfg.Location); err != nil {
		return pipeline.Inputs{}, fmt.Errorf("rain series: %w", err)
	}
	if in.Temperature, err = csvfile.ReadSeries(s.cfg.TempCSV, s.cfg.TempColumn, s.cfg.Location); err != nil {
		return pipeline.Inputs{}, fmt.Errorf("temperature series: %w", err)
	}

	wb, err := xlsx.Open(s.cfg.WorkbookPath, s.sch, s.cfg.Location)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	defer wb.Close()

	if in.FacadeEvents, err = wb.FacadeEvents(site); err != nil {
		return pipeline.Inputs{}, err
	}
	if in.RoofEvents, err = wb.PointEvents(site, domain.PointRoof); err != nil {
		return pipeline.Inputs{}, err
	}
	if in.SewerEvents, err = wb.PointEvents(site, domain.PointSewer); err != nil {
		return pipeline.Inputs{}, err
	}

	in.Concentrations = make(map[domain.PointType][]domain.ConcentrationRecord, 3)
	for _, point := range []domain.PointType{domain.PointFacade, domain.PointRoof, domain.PointSewer} {
		recs, err := wb.Concentrations(site, point)
		if err != nil {
			return pipeline.Inputs{}, err
		}
		in.Concentrations[point] = recs
	}

	return in, nil
}
