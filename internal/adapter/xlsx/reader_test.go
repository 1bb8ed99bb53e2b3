package xlsx

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tbergdoll/runoff-loads/internal/domain"
	"github.com/tbergdoll/runoff-loads/internal/schema"
)

var testZone = time.FixedZone("UTC+1", 3600)

func setRow(t *testing.T, f *excelize.File, sheet string, rowNum int, cells []any) {
	t.Helper()
	cellRef, err := excelize.CoordinatesToCellName(1, rowNum)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(sheet, cellRef, &cells))
}

// buildWorkbook writes a minimal site-A workbook matching the embedded
// schema's sheet and column names.
func buildWorkbook(t *testing.T) (string, *schema.Schema) {
	t.Helper()

	sch, err := schema.Load("")
	require.NoError(t, err)

	f := excelize.NewFile()
	defer f.Close()

	_, err = f.NewSheet("Dach A")
	require.NoError(t, err)
	setRow(t, f, "Dach A", 1, []any{"Ereignisbeginn", "Niederschlag [mm]", "Regenschreiber", "Volumen [l]", "Volumen aus Regression"})
	setRow(t, f, "Dach A", 2, []any{"03.05.2021 08:00", "4,2", "RG1", "367,14", ""})
	setRow(t, f, "Dach A", 3, []any{"05.05.2021 10:30", "2,0", "RG1", "", ""})
	setRow(t, f, "Dach A", 4, []any{"Notizen", "", "", "", ""}) // trailing notes row

	_, err = f.NewSheet("Fassade A")
	require.NoError(t, err)
	setRow(t, f, "Fassade A", 1, []any{
		"Ereignisbeginn", "Niederschlag [mm]", "Regenschreiber",
		"Volumen Nord [ml]", "Flaschen Nord",
		"Volumen Ost [ml]", "Flaschen Ost",
		"Volumen Süd [ml]", "Flaschen Süd",
		"Volumen West [ml]", "Flaschen West",
	})
	setRow(t, f, "Fassade A", 2, []any{
		"03.05.2021 08:00", "4,2", "RG1",
		"50", "F1, F2",
		"", "",
		">100", "F3",
		"", "",
	})

	_, err = f.NewSheet("Konz Dach A")
	require.NoError(t, err)
	setRow(t, f, "Konz Dach A", 1, []any{"Ereignisbeginn", "Cu", "Zn", "Pb", "Diuron", "Terbutryn", "Carbendazim", "Mecoprop"})
	setRow(t, f, "Konz Dach A", 2, []any{"03.05.2021 08:00", "3,2", "<5", "", "0,8", "", "", ""})

	_, err = f.NewSheet("Konz Fassade A")
	require.NoError(t, err)
	setRow(t, f, "Konz Fassade A", 1, []any{"Ereignisbeginn", "Flasche", "Cu", "Zn", "Pb", "Diuron", "Terbutryn", "Carbendazim", "Mecoprop"})
	setRow(t, f, "Konz Fassade A", 2, []any{"03.05.2021 08:00", "F1", "10", "", "", "", "", "", ""})

	path := filepath.Join(t.TempDir(), "events.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path, sch
}

func TestReader_PointEvents(t *testing.T) {
	path, sch := buildWorkbook(t)

	r, err := Open(path, sch, testZone)
	require.NoError(t, err)
	defer r.Close()

	events, err := r.PointEvents(domain.SiteA, domain.PointRoof)
	require.NoError(t, err)
	require.Len(t, events, 2, "notes row skipped")

	first := events[0]
	assert.Equal(t, domain.SiteA, first.Site)
	assert.Equal(t, time.Date(2021, 5, 3, 8, 0, 0, 0, testZone), first.Start)
	assert.Equal(t, "RG1", first.Gauge)
	assert.InDelta(t, 4.2, first.RainDepth, 1e-9)
	assert.InDelta(t, 367.14, first.Volume, 1e-9)
	assert.False(t, first.VolumeEstimated)

	assert.True(t, domain.IsMissing(events[1].Volume), "empty volume stays missing")
}

func TestReader_FacadeEvents(t *testing.T) {
	path, sch := buildWorkbook(t)

	r, err := Open(path, sch, testZone)
	require.NoError(t, err)
	defer r.Close()

	events, err := r.FacadeEvents(domain.SiteA)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.Len(t, events[0].Sides, 2, "unsampled sides skipped")
	north := events[0].Sides[0]
	assert.Equal(t, domain.SideNorth, north.Side)
	assert.Equal(t, "50", north.RawVolume)
	assert.Equal(t, "F1, F2", north.Bottles)

	south := events[0].Sides[1]
	assert.Equal(t, domain.SideSouth, south.Side)
	assert.Equal(t, ">100", south.RawVolume)
}

func TestReader_Concentrations(t *testing.T) {
	path, sch := buildWorkbook(t)

	r, err := Open(path, sch, testZone)
	require.NoError(t, err)
	defer r.Close()

	t.Run("roof keyed by event start", func(t *testing.T) {
		recs, err := r.Concentrations(domain.SiteA, domain.PointRoof)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Empty(t, recs[0].Bottle)
		assert.Equal(t, "3,2", recs[0].Values["Cu"])
		assert.Equal(t, "<5", recs[0].Values["Zn"])
		assert.Equal(t, "", recs[0].Values["Pb"])
	})

	t.Run("facade carries the bottle identifier", func(t *testing.T) {
		recs, err := r.Concentrations(domain.SiteA, domain.PointFacade)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "F1", recs[0].Bottle)
	})

	t.Run("missing sewer sheet fails", func(t *testing.T) {
		_, err := r.Concentrations(domain.SiteA, domain.PointSewer)
		require.Error(t, err)
	})
}

func TestOpen_MissingFile(t *testing.T) {
	sch, err := schema.Load("")
	require.NoError(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "nope.xlsx"), sch, testZone)
	require.Error(t, err)
}

func TestParseFlag(t *testing.T) {
	assert.True(t, parseFlag("ja"))
	assert.True(t, parseFlag("X"))
	assert.False(t, parseFlag(""))
	assert.False(t, parseFlag("nein"))
}
