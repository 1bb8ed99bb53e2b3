package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tbergdoll/runoff-loads/internal/config"
	"github.com/tbergdoll/runoff-loads/internal/domain"
	"github.com/tbergdoll/runoff-loads/internal/schema"
)

func writeFixtures(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	loggerDir := filepath.Join(dir, "logger")
	require.NoError(t, os.MkdirAll(loggerDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(loggerDir, "cap.csv"),
		[]byte("1;03.05.2021 08:00;1,0\n2;03.05.2021 08:10;2,0\n"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rain.csv"),
		[]byte("Zeit;RG1\n03.05.2021 01:00;1,0\n03.05.2021 02:00;0,5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temperature.csv"),
		[]byte("Zeit;T\n03.05.2021 03:00;12\n03.05.2021 05:00;16\n"), 0o644))

	f := excelize.NewFile()
	defer f.Close()
	sheets := map[string][][]any{
		"Fassade A": {
			{"Ereignisbeginn", "Niederschlag [mm]", "Regenschreiber",
				"Volumen Nord [ml]", "Flaschen Nord", "Volumen Ost [ml]", "Flaschen Ost",
				"Volumen Süd [ml]", "Flaschen Süd", "Volumen West [ml]", "Flaschen West"},
			{"03.05.2021 08:00", "4,2", "RG1", "50", "F1", "", "", "", "", "", ""},
		},
		"Dach A": {
			{"Ereignisbeginn", "Niederschlag [mm]", "Regenschreiber", "Volumen [l]"},
			{"03.05.2021 08:00", "4,2", "RG1", "367,14"},
		},
		"Kanal A": {
			{"Ereignisbeginn", "Niederschlag [mm]", "Regenschreiber", "Volumen [l]"},
			{"03.05.2021 08:00", "4,2", "RG1", "7900"},
		},
		"Konz Fassade A": {
			{"Ereignisbeginn", "Flasche", "Cu", "Zn", "Pb", "Diuron", "Terbutryn", "Carbendazim", "Mecoprop"},
			{"03.05.2021 08:00", "F1", "10", "", "", "", "", "", ""},
		},
		"Konz Dach A": {
			{"Ereignisbeginn", "Cu", "Zn", "Pb", "Diuron", "Terbutryn", "Carbendazim", "Mecoprop"},
			{"03.05.2021 08:00", "3,2", "<5", "", "", "", "", ""},
		},
		"Konz Kanal A": {
			{"Ereignisbeginn", "Cu", "Zn", "Pb", "Diuron", "Terbutryn", "Carbendazim", "Mecoprop", "AFS", "CSB"},
			{"03.05.2021 08:00", "1", "", "", "", "", "", "", "", ""},
		},
	}
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}
	workbook := filepath.Join(dir, "events.xlsx")
	require.NoError(t, f.SaveAs(workbook))

	return &config.Config{
		Site:         domain.SiteA,
		Gauge:        "RG1",
		TempColumn:   "T",
		LimitPolicy:  domain.LimitHalf,
		FlowUnit:     domain.LitersPerSecond,
		Location:     time.FixedZone("UTC+1", 3600),
		LoggerDir:    loggerDir,
		RainCSV:      filepath.Join(dir, "rain.csv"),
		TempCSV:      filepath.Join(dir, "temperature.csv"),
		WorkbookPath: workbook,
	}
}

func TestSource_Load(t *testing.T) {
	cfg := writeFixtures(t)
	sch, err := schema.Load("")
	require.NoError(t, err)

	in, err := New(cfg, sch).Load(context.Background(), domain.SiteA)
	require.NoError(t, err)

	assert.Len(t, in.LoggerFiles, 1)
	assert.Len(t, in.Rain.Samples, 2)
	assert.Len(t, in.Temperature.Samples, 2)
	assert.Len(t, in.FacadeEvents, 1)
	assert.Len(t, in.RoofEvents, 1)
	assert.Len(t, in.SewerEvents, 1)
	assert.Len(t, in.Concentrations[domain.PointFacade], 1)
	assert.Len(t, in.Concentrations[domain.PointRoof], 1)
	assert.Len(t, in.Concentrations[domain.PointSewer], 1)
}

func TestSource_Load_MissingWorkbook(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.WorkbookPath = filepath.Join(t.TempDir(), "nope.xlsx")
	sch, err := schema.Load("")
	require.NoError(t, err)

	_, err = New(cfg, sch).Load(context.Background(), domain.SiteA)
	require.Error(t, err)
}

func TestSource_Load_MissingGaugeColumn(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.Gauge = "RG9"
	sch, err := schema.Load("")
	require.NoError(t, err)

	_, err = New(cfg, sch).Load(context.Background(), domain.SiteA)
	require.ErrorContains(t, err, "rain series")
}
