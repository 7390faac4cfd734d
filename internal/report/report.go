// Package report writes the end-of-session spreadsheet: one worksheet per
// tracked app holding every sample plus AVERAGE and MAX formulas and the
// time the session ran.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	b2gerrors "github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/logger"
	"github.com/rileyhilliard/b2gmon/internal/session"
	"github.com/rileyhilliard/b2gmon/internal/util"
)

// DefaultPath is where the report goes when no output is configured.
const DefaultPath = "logs/b2g_logs.xlsx"

// Labels written in column B of the summary block.
const (
	LabelAveragePSS = "Average PSS"
	LabelAverageUSS = "Average USS"
	LabelMaxPSS     = "MAX PSS"
	LabelMaxUSS     = "MAX USS"
	LabelElapsed    = "Time spent for report collection"
)

var header = []interface{}{"Name", "PID", "PSS", "USS"}

// spacerRows separates the summary groups.
const spacerRows = 2

// Generator writes session reports to one file.
type Generator struct {
	path string
	log  logger.Logger
}

// NewGenerator creates a generator writing to path (DefaultPath if empty).
func NewGenerator(path string, log logger.Logger) *Generator {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = logger.Default()
	}
	return &Generator{path: path, log: log}
}

// Path returns the file the generator writes.
func (g *Generator) Path() string {
	return g.path
}

// Write builds the workbook for s and saves it. With no tracked apps
// nothing is written and the returned path is empty.
func (g *Generator) Write(s *session.Session, finished time.Time) (string, error) {
	series := s.Series()
	if len(series) == 0 {
		g.log.Debug("no tracked apps, skipping report")
		return "", nil
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", g.wrap(err)
	}

	elapsed := util.FormatElapsed(finished.Sub(s.Started()))
	namer := newSheetNamer()
	for i, ser := range series {
		name := namer.name(ser.App)
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return "", g.wrap(err)
		}
		if err := writeSheet(f, name, ser, elapsed, bold); err != nil {
			return "", g.wrap(err)
		}
	}
	f.SetActiveSheet(0)

	dev := s.Device()
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "b2g memory report",
		Creator:     "b2gmon",
		Description: fmt.Sprintf("device %s (%s %s), %d cycles", dev.Serial, dev.Product, dev.Model, s.Cycles()),
		Created:     s.Started().UTC().Format(time.RFC3339),
	}); err != nil {
		return "", g.wrap(err)
	}

	if dir := filepath.Dir(g.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", g.wrap(err)
		}
	}
	if err := f.SaveAs(g.path); err != nil {
		return "", g.wrap(err)
	}

	g.log.Info("report written to %s (%d sheets)", g.path, len(series))
	return g.path, nil
}

// writeSheet fills one worksheet. Samples occupy rows 2..n+1 and the
// summary block follows after spacer rows.
func writeSheet(f *excelize.File, sheet string, ser session.Series, elapsed string, bold int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 32); err != nil {
		return err
	}

	for i, smp := range ser.Samples {
		row := []interface{}{ser.App, smp.PID, smp.PSS, smp.USS}
		if err := f.SetSheetRow(sheet, cell("A", i+2), &row); err != nil {
			return err
		}
	}

	r := len(ser.Samples) + 2 + spacerRows
	if len(ser.Samples) > 0 {
		last := len(ser.Samples) + 1
		formulas := []struct {
			label   string
			formula string
		}{
			{LabelAveragePSS, fmt.Sprintf("AVERAGE(C2:C%d)", last)},
			{LabelAverageUSS, fmt.Sprintf("AVERAGE(D2:D%d)", last)},
			{LabelMaxPSS, fmt.Sprintf("MAX(C2:C%d)", last)},
			{LabelMaxUSS, fmt.Sprintf("MAX(D2:D%d)", last)},
		}
		for i, fm := range formulas {
			if err := f.SetCellValue(sheet, cell("B", r), fm.label); err != nil {
				return err
			}
			if err := f.SetCellFormula(sheet, cell("C", r), fm.formula); err != nil {
				return err
			}
			r++
			if i%2 == 1 {
				r += spacerRows
			}
		}
	}

	if err := f.SetCellValue(sheet, cell("B", r), LabelElapsed); err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell("C", r), elapsed)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func (g *Generator) wrap(err error) error {
	return b2gerrors.WrapWithCode(err, b2gerrors.ErrReport,
		"Couldn't write report "+g.path,
		"Check that the output directory is writable, or pick another path with --output.")
}
