package domain

import (
	"strconv"
	"time"
)

// Table is an in-memory output table: a fixed set of metadata columns
// followed by one numeric column per substance. Persistence is the
// writer's concern; the pipeline's contract ends here.
type Table struct {
	Name        string
	MetaColumns []string
	Substances  []string
	Rows        []TableRow

	// GeneratedAt stamps when the table was produced, from the package clock.
	GeneratedAt time.Time
}

// TableRow pairs formatted metadata cells with the substance values in
// Substances order. Missing values stay NaN until formatting.
type TableRow struct {
	Meta   []string
	Values []float64
}

// Header returns metadata and substance column names in output order.
func (t Table) Header() []string {
	return append(append([]string{}, t.MetaColumns...), t.Substances...)
}

// FormatValue renders a numeric cell for output: missing becomes the empty
// cell, everything else the shortest exact decimal representation.
func FormatValue(v float64) string {
	if IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatTime renders a timestamp cell, empty when unset.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
