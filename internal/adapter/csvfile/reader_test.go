package csvfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbergdoll/runoff-loads/internal/domain"
)

var testZone = time.FixedZone("UTC+1", 3600)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadLoggerDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_capture.csv", "ID;Zeit;Wert\n1;03.05.2021 08:00;0,5\n2;03.05.2021 08:01;0,6\n")
	writeFile(t, dir, "a_capture.csv", "1;03.05.2021 09:00;1,0\n")
	writeFile(t, dir, "notes.txt", "ignore me")

	files, err := ReadLoggerDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a_capture.csv", files[0].Name, "sorted by name")
	assert.Len(t, files[0].Rows, 1)

	assert.Equal(t, "b_capture.csv", files[1].Name)
	require.Len(t, files[1].Rows, 2, "header line dropped")
	assert.Equal(t, domain.LoggerRow{ID: "1", Timestamp: "03.05.2021 08:00", Value: "0,5"}, files[1].Rows[0])
}

func TestReadLoggerDir_MissingDir(t *testing.T) {
	_, err := ReadLoggerDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestReadSeries(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rain.csv",
		"Zeit;RG1;RG2\n"+
			"03.05.2021 08:00;0,0;1,2\n"+
			"03.05.2021 08:05;0,4;kaputt\n"+
			"garbage;9;9\n")

	t.Run("selects the named gauge column", func(t *testing.T) {
		s, err := ReadSeries(path, "RG1", testZone)
		require.NoError(t, err)
		require.Len(t, s.Samples, 2, "unparseable timestamp row dropped")
		assert.Equal(t, time.Date(2021, 5, 3, 8, 0, 0, 0, testZone), s.Samples[0].Time)
		assert.Equal(t, 0.0, s.Samples[0].Value)
		assert.Equal(t, 0.4, s.Samples[1].Value)
	})

	t.Run("unparseable value becomes missing", func(t *testing.T) {
		s, err := ReadSeries(path, "RG2", testZone)
		require.NoError(t, err)
		require.Len(t, s.Samples, 2)
		assert.True(t, domain.IsMissing(s.Samples[1].Value))
	})

	t.Run("unknown column fails fast", func(t *testing.T) {
		_, err := ReadSeries(path, "RG9", testZone)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no column "RG9"`)
	})
}

func TestReadSeries_Empty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")
	_, err := ReadSeries(path, "RG1", testZone)
	require.Error(t, err)
}
