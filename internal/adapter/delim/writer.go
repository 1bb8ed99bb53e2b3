// Package delim writes the pipeline's output tables: semicolon-separated,
// one header row, no quoting, one line per matched event or event-bottle.
package delim

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tbergdoll/runoff-loads/internal/domain"
)

const separator = ";"

// WriteTable renders a table to w. Cells never contain the separator by
// construction (schema names are validated, numbers use a decimal point),
// so no quoting is applied.
func WriteTable(w io.Writer, t domain.Table) error {
	if _, err := fmt.Fprintln(w, strings.Join(t.Header(), separator)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		cells := append([]string{}, row.Meta...)
		for _, v := range row.Values {
			cells = append(cells, domain.FormatValue(v))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, separator)); err != nil {
			return err
		}
	}
	return nil
}

// Sink writes tables as files under a directory, named
// "<stem>_<table>.csv".
type Sink struct {
	Dir  string
	Stem string
}

// Write persists one table, creating the directory if needed.
func (s Sink) Write(t domain.Table) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.csv", s.Stem, t.Name))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", t.Name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
