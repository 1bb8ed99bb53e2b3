package domain

import (
	"sort"
	"strings"
	"time"
)

// Timestamp layouts used across logger exports and field spreadsheets,
// tried in order. The two logger generations differ only in whether seconds
// are written.
var timeLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
}

// ParseTimestamp parses a day-first timestamp cell in the fixed zone.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LoggerRow is one unparsed line of a logger CSV export.
type LoggerRow struct {
	ID        string
	Timestamp string
	Value     string
}

// LoggerFile is a named ordered sequence of raw logger rows.
type LoggerFile struct {
	Name string
	Rows []LoggerRow
}

// loggerCapture is a parsed logger file with its coverage window.
type loggerCapture struct {
	name     string
	samples  []Sample
	start    time.Time
	end      time.Time
	startDay time.Time
}

// MergeResult is the outcome of reconciling one site's logger files.
type MergeResult struct {
	Series Series

	// Bookkeeping for the run report: which files were kept, which were
	// duplicate captures, and which were empty after parsing.
	Selected  []string
	Discarded []string
	Empty     []string

	// SkippedRows counts rows dropped for an unparseable timestamp.
	SkippedRows int
}

// MergeLoggerFiles reconciles overlapping, clock-drift-shifted logger files
// into one continuous series. Files are grouped by the calendar day of their
// first sample (startDay); per group the file with the maximum duration
// (last sample minus startDay midnight) wins, ties resolving
// lexicographically by file name. Selected files are concatenated in
// startDay order. The over-range sentinel and unparseable values map to
// missing; rows without a parseable timestamp are dropped and counted.
func MergeLoggerFiles(files []LoggerFile, loc *time.Location, overRangeSentinel string) MergeResult {
	var res MergeResult

	captures := make([]loggerCapture, 0, len(files))
	for _, f := range files {
		c, skipped := parseLoggerFile(f, loc, overRangeSentinel)
		res.SkippedRows += skipped
		if len(c.samples) == 0 {
			res.Empty = append(res.Empty, f.Name)
			continue
		}
		captures = append(captures, c)
	}

	byDay := make(map[time.Time][]loggerCapture)
	for _, c := range captures {
		byDay[c.startDay] = append(byDay[c.startDay], c)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, day := range days {
		group := byDay[day]
		winner := selectCapture(group)
		res.Selected = append(res.Selected, winner.name)
		for _, c := range group {
			if c.name != winner.name {
				res.Discarded = append(res.Discarded, c.name)
			}
		}
		res.Series.Samples = append(res.Series.Samples, winner.samples...)
	}

	return res
}

// selectCapture picks the capture with the maximum (end - startDay) duration.
// Equal durations tie-break lexicographically by name so the merge is
// reproducible across runs.
func selectCapture(group []loggerCapture) loggerCapture {
	best := group[0]
	bestDur := best.end.Sub(best.startDay)
	for _, c := range group[1:] {
		dur := c.end.Sub(c.startDay)
		if dur > bestDur || (dur == bestDur && c.name < best.name) {
			best = c
			bestDur = dur
		}
	}
	return best
}

// parseLoggerFile parses timestamps and values of one file and derives its
// coverage window. The second return value counts rows dropped for an
// unparseable timestamp.
func parseLoggerFile(f LoggerFile, loc *time.Location, overRangeSentinel string) (loggerCapture, int) {
	c := loggerCapture{name: f.Name}
	skipped := 0

	for _, row := range f.Rows {
		t, ok := ParseTimestamp(row.Timestamp, loc)
		if !ok {
			skipped++
			continue
		}
		c.samples = append(c.samples, Sample{Time: t, Value: normalizeLoggerValue(row.Value, overRangeSentinel)})
		if c.start.IsZero() || t.Before(c.start) {
			c.start = t
		}
		if t.After(c.end) {
			c.end = t
		}
	}

	if len(c.samples) > 0 {
		y, m, d := c.start.Date()
		c.startDay = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return c, skipped
}

// normalizeLoggerValue maps the over-range sentinel to missing and coerces
// the remaining text to a number, leaving unparseable entries missing.
func normalizeLoggerValue(raw, overRangeSentinel string) float64 {
	raw = strings.TrimSpace(raw)
	if overRangeSentinel != "" && raw == overRangeSentinel {
		return Missing()
	}
	return ParseDecimalComma(raw)
}
