// Package xlsx reads the hand-recorded event and concentration sheets from
// a site workbook. Sheet and column names come from the schema definition;
// a missing sheet or header fails at open, not mid-join.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tbergdoll/runoff-loads/internal/domain"
	"github.com/tbergdoll/runoff-loads/internal/schema"
)

// Reader reads event and concentration tables from one site workbook.
type Reader struct {
	f   *excelize.File
	sch *schema.Schema
	loc *time.Location
}

// Open opens a workbook for reading against a schema.
func Open(path string, sch *schema.Schema, loc *time.Location) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Reader{f: f, sch: sch, loc: loc}, nil
}

// Close releases the underlying workbook.
func (r *Reader) Close() error {
	return r.f.Close()
}

// sheetTable is a parsed sheet: a header index and its data rows.
type sheetTable struct {
	cols map[string]int
	rows [][]string
}

func (r *Reader) readSheet(name string) (sheetTable, error) {
	rows, err := r.f.GetRows(name)
	if err != nil {
		return sheetTable{}, fmt.Errorf("sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return sheetTable{}, fmt.Errorf("sheet %q: no header row", name)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	return sheetTable{cols: cols, rows: rows[1:]}, nil
}

// require resolves a header name to a column index, failing fast on a
// schema mismatch.
func (t sheetTable) require(sheet, header string) (int, error) {
	i, ok := t.cols[header]
	if !ok {
		return 0, fmt.Errorf("sheet %q: missing column %q", sheet, header)
	}
	return i, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// optional returns the column index for a header, or -1 when unmapped.
func (t sheetTable) optional(header string) int {
	if header == "" {
		return -1
	}
	if i, ok := t.cols[header]; ok {
		return i
	}
	return -1
}

// PointEvents reads the roof or sewer event sheet of a site.
func (r *Reader) PointEvents(site domain.Site, point domain.PointType) ([]domain.Event, error) {
	def, err := r.sch.Site(site)
	if err != nil {
		return nil, err
	}

	var sheet string
	switch point {
	case domain.PointRoof:
		sheet = def.Workbook.RoofSheet
	case domain.PointSewer:
		sheet = def.Workbook.SewerSheet
	default:
		return nil, fmt.Errorf("point type %q has no event sheet", point)
	}

	t, err := r.readSheet(sheet)
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	for _, row := range t.rows {
		ev, ok, err := r.parseEvent(site, sheet, t, row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		cols := r.sch.EventColumns
		ev.Volume = domain.ParseDecimalComma(cell(row, t.optional(cols["volume_l"])))
		ev.VolumeEstimated = parseFlag(cell(row, t.optional(cols["volume_estimated"])))
		events = append(events, ev)
	}
	return events, nil
}

// FacadeEvents reads the facade event sheet of a site, with per-side
// sampled volumes and bottle lists.
func (r *Reader) FacadeEvents(site domain.Site) ([]domain.FacadeEvent, error) {
	def, err := r.sch.Site(site)
	if err != nil {
		return nil, err
	}
	sheet := def.Workbook.FacadeSheet

	t, err := r.readSheet(sheet)
	if err != nil {
		return nil, err
	}

	// Side columns are validated up front so a renamed header fails here.
	type sideIdx struct {
		side            domain.Side
		volume, bottles int
	}
	sideIdxs := make([]sideIdx, 0, len(r.sch.FacadeSideColumns))
	for _, side := range []domain.Side{domain.SideNorth, domain.SideEast, domain.SideSouth, domain.SideWest} {
		cols, ok := r.sch.FacadeSideColumns[string(side)]
		if !ok {
			continue
		}
		vi, err := t.require(sheet, cols.Volume)
		if err != nil {
			return nil, err
		}
		bi, err := t.require(sheet, cols.Bottles)
		if err != nil {
			return nil, err
		}
		sideIdxs = append(sideIdxs, sideIdx{side: side, volume: vi, bottles: bi})
	}

	var events []domain.FacadeEvent
	for _, row := range t.rows {
		ev, ok, err := r.parseEvent(site, sheet, t, row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		fe := domain.FacadeEvent{Event: ev}
		for _, si := range sideIdxs {
			vol, bottles := cell(row, si.volume), cell(row, si.bottles)
			if vol == "" && bottles == "" {
				continue
			}
			fe.Sides = append(fe.Sides, domain.FacadeSideSample{Side: si.side, RawVolume: vol, Bottles: bottles})
		}
		events = append(events, fe)
	}
	return events, nil
}

// parseEvent reads the columns shared by all event sheets. Rows without a
// parseable start timestamp are skipped (trailing notes, blank lines).
func (r *Reader) parseEvent(site domain.Site, sheet string, t sheetTable, row []string) (domain.Event, bool, error) {
	cols := r.sch.EventColumns
	startIdx, err := t.require(sheet, cols["event_start"])
	if err != nil {
		return domain.Event{}, false, err
	}

	start, ok := domain.ParseTimestamp(cell(row, startIdx), r.loc)
	if !ok {
		return domain.Event{}, false, nil
	}

	ev := domain.Event{
		Site:        site,
		Start:       start,
		Gauge:       cell(row, t.optional(cols["gauge"])),
		RainDepth:   domain.ParseDecimalComma(cell(row, t.optional(cols["rain_mm"]))),
		AirTempMean: domain.ParseDecimalComma(cell(row, t.optional(cols["air_temp_mean"]))),
		AirTempSD:   domain.ParseDecimalComma(cell(row, t.optional(cols["air_temp_sd"]))),
		WindMean:    domain.ParseDecimalComma(cell(row, t.optional(cols["wind_mean"]))),
		WindMax:     domain.ParseDecimalComma(cell(row, t.optional(cols["wind_max"]))),
	}
	if n, err := strconv.Atoi(cell(row, t.optional(cols["event_count"]))); err == nil {
		ev.EventCount = n
	}
	if hb, ok := domain.ParseTimestamp(cell(row, t.optional(cols["hydraulic_begin"])), r.loc); ok {
		ev.HydraulicBegin = hb
	}
	if he, ok := domain.ParseTimestamp(cell(row, t.optional(cols["hydraulic_end"])), r.loc); ok {
		ev.HydraulicEnd = he
	}
	return ev, true, nil
}

// Concentrations reads the lab-result sheet of a monitoring-point type.
// Substance columns come from the schema; a missing substance column fails
// fast, a missing cell stays raw-empty (resolved to missing later).
func (r *Reader) Concentrations(site domain.Site, point domain.PointType) ([]domain.ConcentrationRecord, error) {
	def, err := r.sch.Site(site)
	if err != nil {
		return nil, err
	}
	sheet, ok := def.Workbook.Concs[string(point)]
	if !ok || sheet == "" {
		return nil, fmt.Errorf("no concentration sheet for point type %q at site %s", point, site)
	}

	t, err := r.readSheet(sheet)
	if err != nil {
		return nil, err
	}

	cols := r.sch.EventColumns
	startIdx, err := t.require(sheet, cols["event_start"])
	if err != nil {
		return nil, err
	}
	bottleIdx := -1
	if point == domain.PointFacade {
		bottleIdx, err = t.require(sheet, cols["bottle"])
		if err != nil {
			return nil, err
		}
	}

	substances := r.sch.SubstancesFor(point)
	substanceIdx := make([]int, len(substances))
	for i, name := range substances {
		idx, err := t.require(sheet, name)
		if err != nil {
			return nil, err
		}
		substanceIdx[i] = idx
	}

	var records []domain.ConcentrationRecord
	for _, row := range t.rows {
		start, ok := domain.ParseTimestamp(cell(row, startIdx), r.loc)
		if !ok {
			continue
		}
		rec := domain.ConcentrationRecord{
			Start:  start,
			Values: make(map[string]string, len(substances)),
		}
		if bottleIdx >= 0 {
			rec.Bottle = cell(row, bottleIdx)
		}
		for i, name := range substances {
			rec.Values[name] = cell(row, substanceIdx[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseFlag reads the hand-entered yes markers used in the sheets.
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "ja", "x", "true", "1":
		return true
	default:
		return false
	}
}
