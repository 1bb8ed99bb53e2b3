package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PointType names a monitoring-point category.
type PointType string

const (
	PointFacade PointType = "facade"
	PointRoof   PointType = "roof"
	PointSewer  PointType = "sewer"
)

// LimitPolicy controls how "<X" detection-limit-qualified concentrations
// resolve to a number.
type LimitPolicy string

const (
	// LimitZero substitutes 0 for below-limit values.
	LimitZero LimitPolicy = "zero"
	// LimitHalf substitutes half the detection limit.
	LimitHalf LimitPolicy = "half"
	// LimitValue substitutes the detection limit itself.
	LimitValue LimitPolicy = "limit"
)

// ParseLimitPolicy validates a policy name. The policy set is closed;
// anything else is a configuration error.
func ParseLimitPolicy(s string) (LimitPolicy, error) {
	switch LimitPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case LimitZero:
		return LimitZero, nil
	case LimitHalf:
		return LimitHalf, nil
	case LimitValue:
		return LimitValue, nil
	default:
		return "", fmt.Errorf("unknown detection-limit policy %q (want zero, half, or limit)", s)
	}
}

// ConcentrationRecord is one lab result row: raw textual values per
// substance, keyed by event start and (for facades) the analyzed bottle.
type ConcentrationRecord struct {
	Start  time.Time
	Bottle string
	Values map[string]string
}

// ResolveConcentration parses a raw concentration cell. Cells are either
// plain numeric text (decimal comma allowed) or "<X" for a value below the
// detection limit X, resolved under the given policy. Empty or unparseable
// cells stay missing.
func ResolveConcentration(raw string, policy LimitPolicy) float64 {
	raw = strings.TrimSpace(raw)
	if before, after, found := strings.Cut(raw, "<"); found && strings.TrimSpace(before) == "" {
		limit := ParseDecimalComma(after)
		if IsMissing(limit) {
			return Missing()
		}
		switch policy {
		case LimitZero:
			return 0
		case LimitHalf:
			return 0.5 * limit
		default:
			return limit
		}
	}
	return ParseDecimalComma(raw)
}

// JoinResult carries the two output tables of one monitoring-point type and
// the join bookkeeping. Unmatched counts concentration rows dropped for
// lack of a matching runoff record — the drop is silent in the tables, so
// it must be observable here.
type JoinResult struct {
	Loads          Table
	Concentrations Table
	Matched        int
	Unmatched      int
}

// joinKey identifies a runoff record for matching against lab results.
// Bottle is empty for roof and sewer points.
type joinKey struct {
	start  time.Time
	bottle string
}

// JoinLoads aligns specific-runoff records to lab concentration records and
// multiplies to per-substance mass loads. Facade records are exploded one
// row per bottle first, so the key is (event start, bottle); roof and sewer
// join on event start alone. Unmatched concentration rows are excluded from
// both tables and counted. The load table holds specific runoff times the
// policy-resolved concentration; the concentration table mirrors the same
// rows with the resolved concentrations themselves.
func JoinLoads(point PointType, runoff []RunoffRecord, concs []ConcentrationRecord, substances []string, policy LimitPolicy) JoinResult {
	byKey := make(map[joinKey]RunoffRecord)
	for _, r := range runoff {
		if point == PointFacade {
			for _, bottle := range r.Bottles {
				byKey[joinKey{r.Event.Start, bottle}] = r
			}
			continue
		}
		byKey[joinKey{start: r.Event.Start}] = r
	}

	res := JoinResult{
		Loads:          newTable(string(point)+"_loads", point, substances),
		Concentrations: newTable(string(point)+"_concentrations", point, substances),
	}

	for _, c := range concs {
		r, ok := byKey[joinKey{c.Start, c.Bottle}]
		if !ok {
			res.Unmatched++
			continue
		}
		res.Matched++

		meta := metaCells(point, r, c)
		loadRow := TableRow{Meta: meta, Values: make([]float64, len(substances))}
		concRow := TableRow{Meta: meta, Values: make([]float64, len(substances))}
		for i, substance := range substances {
			conc := ResolveConcentration(c.Values[substance], policy)
			concRow.Values[i] = conc
			loadRow.Values[i] = r.SpecificRunoff * conc
		}
		res.Loads.Rows = append(res.Loads.Rows, loadRow)
		res.Concentrations.Rows = append(res.Concentrations.Rows, concRow)
	}

	return res
}

func newTable(name string, point PointType, substances []string) Table {
	t := Table{
		Name:        name,
		MetaColumns: metaColumns(point),
		Substances:  append([]string{}, substances...),
		GeneratedAt: clock.Now(),
	}
	return t
}

func metaColumns(point PointType) []string {
	if point == PointFacade {
		return []string{"site", "event_start", "side", "bottle", "rain_mm", "overflowed", "spec_runoff_l_m2"}
	}
	return []string{"site", "event_start", "rain_mm", "volume_l", "volume_estimated", "spec_runoff_l_m2"}
}

func metaCells(point PointType, r RunoffRecord, c ConcentrationRecord) []string {
	if point == PointFacade {
		return []string{
			string(r.Event.Site),
			FormatTime(r.Event.Start),
			string(r.Side),
			c.Bottle,
			FormatValue(r.Event.RainDepth),
			strconv.FormatBool(r.Overflowed),
			FormatValue(r.SpecificRunoff),
		}
	}
	return []string{
		string(r.Event.Site),
		FormatTime(r.Event.Start),
		FormatValue(r.Event.RainDepth),
		FormatValue(r.Event.Volume),
		strconv.FormatBool(r.Event.VolumeEstimated),
		FormatValue(r.SpecificRunoff),
	}
}
