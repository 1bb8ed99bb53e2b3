package domain

import (
	"fmt"
	"strings"
	"time"
)

// Site identifies one of the two monitored buildings.
type Site string

const (
	SiteA Site = "A"
	SiteB Site = "B"
)

// ParseSite validates a site code. The site set is closed; anything else is
// a configuration error.
func ParseSite(s string) (Site, error) {
	switch Site(strings.ToUpper(strings.TrimSpace(s))) {
	case SiteA:
		return SiteA, nil
	case SiteB:
		return SiteB, nil
	default:
		return "", fmt.Errorf("unknown site %q (want A or B)", s)
	}
}

// Side identifies a facade orientation.
type Side string

const (
	SideNorth Side = "N"
	SideEast  Side = "E"
	SideSouth Side = "S"
	SideWest  Side = "W"
)

// SiteAreas holds the fixed contributing areas of one site in m².
// Loaded once from the schema definition; never zero.
type SiteAreas struct {
	Roof   float64
	Sewer  float64
	Facade map[Side]float64
}

// Event is one recorded rainfall-runoff episode at a monitoring point.
// The start timestamp is the primary join key across all streams.
type Event struct {
	Site  Site
	Gauge string
	Start time.Time

	RainDepth  float64 // mm
	EventCount int

	AirTempMean float64
	AirTempSD   float64
	WindMean    float64
	WindMax     float64

	HydraulicBegin time.Time
	HydraulicEnd   time.Time

	Volume          float64 // liters, missing when not measured
	VolumeEstimated bool    // true when Volume came from the regression model
}

// FacadeSideSample is the per-side part of a facade event row: the sampled
// volume as raw text (ml, possibly ">"-prefixed) and the comma-separated
// list of analyzed bottle IDs.
type FacadeSideSample struct {
	Side      Side
	RawVolume string
	Bottles   string
}

// FacadeEvent is a facade event row with up to four per-side samples.
type FacadeEvent struct {
	Event Event
	Sides []FacadeSideSample
}

// RunoffRecord is an event paired with its contributing area and the derived
// specific runoff in l/m². Side, Bottles, and Overflowed are set for facade
// records only.
type RunoffRecord struct {
	Event          Event
	Area           float64
	SpecificRunoff float64

	Side       Side
	Bottles    []string
	Overflowed bool
}

// BuildRoofRunoff derives one specific-runoff record per roof event.
// Specific runoff is volume over the fixed roof area; a missing volume
// yields a missing specific runoff, never an error.
func BuildRoofRunoff(events []Event, areas SiteAreas) []RunoffRecord {
	out := make([]RunoffRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, RunoffRecord{
			Event:          ev,
			Area:           areas.Roof,
			SpecificRunoff: ev.Volume / areas.Roof,
		})
	}
	return out
}

// BuildSewerRunoff derives one specific-runoff record per sewer event using
// the site catchment area.
func BuildSewerRunoff(events []Event, areas SiteAreas) []RunoffRecord {
	out := make([]RunoffRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, RunoffRecord{
			Event:          ev,
			Area:           areas.Sewer,
			SpecificRunoff: ev.Volume / areas.Sewer,
		})
	}
	return out
}

// BuildFacadeRunoff derives one record per sampled facade side. Sampled
// volumes are in milliliters and converted to liters before area division.
// A side code absent from the area table is a schema mismatch and fails
// fast rather than surfacing as a bad number deep in the join.
func BuildFacadeRunoff(events []FacadeEvent, areas SiteAreas) ([]RunoffRecord, error) {
	var out []RunoffRecord
	for _, fe := range events {
		for _, ss := range fe.Sides {
			area, ok := areas.Facade[ss.Side]
			if !ok || area == 0 {
				return nil, fmt.Errorf("no facade area for side %q at site %s", ss.Side, fe.Event.Site)
			}
			ml, overflowed := ParseSampledVolume(ss.RawVolume)

			ev := fe.Event
			ev.Volume = ml / 1000
			out = append(out, RunoffRecord{
				Event:          ev,
				Area:           area,
				SpecificRunoff: ev.Volume / area,
				Side:           ss.Side,
				Bottles:        SplitBottles(ss.Bottles),
				Overflowed:     overflowed,
			})
		}
	}
	return out, nil
}

// ParseSampledVolume parses a sampled-volume cell in ml. A ">" prefix marks
// a truncated measurement (the bottle overflowed): the numeric part after
// ">" is kept as the value and the overflowed flag is set. Empty or
// unparseable text yields missing.
func ParseSampledVolume(raw string) (ml float64, overflowed bool) {
	raw = strings.TrimSpace(raw)
	if before, after, found := strings.Cut(raw, ">"); found && strings.TrimSpace(before) == "" {
		return ParseDecimalComma(after), true
	}
	return ParseDecimalComma(raw), false
}

// SplitBottles splits a comma-separated bottle list into trimmed IDs,
// dropping empty entries.
func SplitBottles(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
