// Package csvfile reads the study's delimited input files: raw logger
// exports and the rain/temperature series tables. Files are
// semicolon-separated with decimal commas and day-first timestamps in the
// fixed zone.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tbergdoll/runoff-loads/internal/domain"
)

// ReadLoggerDir reads every *.csv file under dir into raw logger files,
// sorted by file name so downstream tie-breaks stay reproducible.
// Rows are passed through unparsed; reconciliation owns the parsing.
func ReadLoggerDir(dir string) ([]domain.LoggerFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read logger dir: %w", err)
	}

	var files []domain.LoggerFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		f, err := readLoggerFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func readLoggerFile(path string) (domain.LoggerFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LoggerFile{}, fmt.Errorf("open logger file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return domain.LoggerFile{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	out := domain.LoggerFile{Name: filepath.Base(path)}
	for i, rec := range records {
		if len(rec) < 3 {
			continue
		}
		// Exports may or may not carry a header line; drop the first row
		// when its id column is not numeric.
		if i == 0 {
			if _, err := strconv.Atoi(strings.TrimSpace(rec[0])); err != nil {
				continue
			}
		}
		out.Rows = append(out.Rows, domain.LoggerRow{ID: rec[0], Timestamp: rec[1], Value: rec[2]})
	}
	return out, nil
}

// ReadSeries reads one named column of a series table (timestamp plus one
// column per gauge or sensor) into a Series. A column name absent from the
// header is a schema mismatch and fails immediately. Rows with an
// unparseable timestamp are dropped; unparseable values become missing.
func ReadSeries(path, column string, loc *time.Location) (domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Series{}, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return domain.Series{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return domain.Series{}, fmt.Errorf("%s: empty series file", filepath.Base(path))
	}

	col := -1
	for i, name := range records[0] {
		if strings.TrimSpace(name) == column {
			col = i
			break
		}
	}
	if col < 1 {
		return domain.Series{}, fmt.Errorf("%s: no column %q", filepath.Base(path), column)
	}

	series := domain.Series{Name: column}
	for _, rec := range records[1:] {
		if len(rec) <= col {
			continue
		}
		t, ok := domain.ParseTimestamp(rec[0], loc)
		if !ok {
			continue
		}
		series.Samples = append(series.Samples, domain.Sample{Time: t, Value: domain.ParseDecimalComma(rec[col])})
	}
	return series, nil
}
