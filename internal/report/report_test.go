package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/device"
	b2gerrors "github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/logger"
	"github.com/rileyhilliard/b2gmon/internal/session"
)

var started = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func snapshot(apps ...b2ginfo.AppSample) *b2ginfo.Snapshot {
	return &b2ginfo.Snapshot{Apps: apps, Memory: b2ginfo.Memory{}}
}

func app(name string, pid int, pss, uss float64) b2ginfo.AppSample {
	return b2ginfo.AppSample{Name: name, PID: pid, PSS: pss, USS: uss}
}

func openReport(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, c string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, c)
	require.NoError(t, err)
	return v
}

func TestGenerator_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "b2g_logs.xlsx")
	s := session.New(device.Info{Serial: "abc", Model: "Nokia"}, []string{"App1"}, started)
	s.Record(snapshot(app("App1", 100, 20, 10)), started)
	s.Record(snapshot(app("App1", 100, 40, 30)), started)

	got, err := NewGenerator(path, logger.Noop()).Write(s, started.Add(time.Hour+2*time.Minute+5*time.Second))

	require.NoError(t, err)
	assert.Equal(t, path, got)

	f := openReport(t, path)
	assert.Equal(t, []string{"App1"}, f.GetSheetList())

	for c, want := range map[string]string{"A1": "Name", "B1": "PID", "C1": "PSS", "D1": "USS"} {
		assert.Equal(t, want, cellValue(t, f, "App1", c))
	}
	assert.Equal(t, "App1", cellValue(t, f, "App1", "A2"))
	assert.Equal(t, "100", cellValue(t, f, "App1", "B2"))
	assert.Equal(t, "40", cellValue(t, f, "App1", "C3"))
	assert.Equal(t, "30", cellValue(t, f, "App1", "D3"))

	// two samples: data in rows 2-3, summary starts at row 6
	summary := []struct {
		row     string
		label   string
		formula string
		value   string
	}{
		{"6", LabelAveragePSS, "AVERAGE(C2:C3)", "30"},
		{"7", LabelAverageUSS, "AVERAGE(D2:D3)", "20"},
		{"10", LabelMaxPSS, "MAX(C2:C3)", "40"},
		{"11", LabelMaxUSS, "MAX(D2:D3)", "30"},
	}
	for _, sm := range summary {
		assert.Equal(t, sm.label, cellValue(t, f, "App1", "B"+sm.row))
		formula, err := f.GetCellFormula("App1", "C"+sm.row)
		require.NoError(t, err)
		assert.Equal(t, sm.formula, formula)
		value, err := f.CalcCellValue("App1", "C"+sm.row)
		require.NoError(t, err)
		assert.Equal(t, sm.value, value)
	}

	for _, blank := range []string{"B4", "B5", "B8", "B9", "B12", "B13"} {
		assert.Empty(t, cellValue(t, f, "App1", blank), blank)
	}
	assert.Equal(t, LabelElapsed, cellValue(t, f, "App1", "B14"))
	assert.Equal(t, "1H:2M:5S", cellValue(t, f, "App1", "C14"))
}

func TestGenerator_Write_SheetPerAppInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	s := session.New(device.Info{}, []string{"Messages", "Homescreen", "Camera"}, started)
	s.Record(snapshot(app("Homescreen", 1, 9, 5), app("Messages", 2, 14.8, 11.2)), started)

	_, err := NewGenerator(path, logger.Noop()).Write(s, started.Add(10*time.Second))
	require.NoError(t, err)

	f := openReport(t, path)
	assert.Equal(t, []string{"Messages", "Homescreen", "Camera"}, f.GetSheetList())
	assert.Equal(t, "14.8", cellValue(t, f, "Messages", "C2"))
}

func TestGenerator_Write_ZeroSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	s := session.New(device.Info{}, []string{"Camera"}, started)

	_, err := NewGenerator(path, logger.Noop()).Write(s, started.Add(10*time.Second))
	require.NoError(t, err)

	f := openReport(t, path)
	assert.Equal(t, "Name", cellValue(t, f, "Camera", "A1"))
	assert.Empty(t, cellValue(t, f, "Camera", "A2"))
	assert.Equal(t, LabelElapsed, cellValue(t, f, "Camera", "B4"))
	assert.Equal(t, "0H:0M:10S", cellValue(t, f, "Camera", "C4"))

	rows, err := f.GetRows("Camera")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestGenerator_Write_NoTrackedApps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	s := session.New(device.Info{}, nil, started)

	got, err := NewGenerator(path, logger.Noop()).Write(s, started)

	require.NoError(t, err)
	assert.Empty(t, got)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerator_Write_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s := session.New(device.Info{}, []string{"App1"}, started)

	_, err := NewGenerator(filepath.Join(blocker, "report.xlsx"), logger.Noop()).Write(s, started)

	require.Error(t, err)
	assert.True(t, b2gerrors.IsCode(err, b2gerrors.ErrReport))
}

func TestNewGenerator_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewGenerator("", nil).Path())
}
