// Package report writes fit summaries and fitted series to delimited
// text and spreadsheet form for the analyst.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/coldwater-lab/o2report/internal/fitting"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/units"
)

// ResultsSheet is the worksheet name of the XLSX summary.
const ResultsSheet = "results"

var resultColumns = []string{
	"source_file", "slope", "r2", "mean_temperature",
	"start_time", "stop_time", "duration",
}

// WriteResultsCSV writes one summary row per fit result. No-data results
// keep their filename and leave every other cell empty.
func WriteResultsCSV(fsys fsutil.FileSystem, results []fitting.Result, path string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(resultColumns); err != nil {
		f.Close()
		return err
	}

	for _, res := range results {
		row := []string{res.SourceFile, "", "", "", "", "", ""}
		if v := res.Values; v != nil {
			row[1] = formatFloat(v.Slope)
			row[2] = formatFloat(v.R2)
			row[3] = formatFloat(v.MeanTemperature)
			row[4] = v.StartTime
			row[5] = v.StopTime
			row[6] = v.Duration
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var fittedColumns = []string{
	"source_file", "source_file_cleaned", "time_seconds",
	"oxygen", "temperature", "phase", "amplitude",
	"datetime_presens", "datetime_local", "oxygen_fitted",
}

// WriteFittedCSV concatenates the window-filtered series of every fit
// into one file, preserving per-file grouping and row order. The log-time
// column is dropped: the combined table is for plotting against elapsed
// seconds only.
func WriteFittedCSV(fsys fsutil.FileSystem, fitted []fitting.FittedSeries, path string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(fittedColumns); err != nil {
		f.Close()
		return err
	}

	for _, fs := range fitted {
		for i, rec := range fs.Series.Records {
			predicted := math.NaN()
			if i < len(fs.OxygenFitted) {
				predicted = fs.OxygenFitted[i]
			}
			row := []string{
				rec.SourceFile,
				rec.SourceFileCleaned,
				strconv.Itoa(rec.TimeSeconds),
				formatFloat(rec.Oxygen),
				formatFloat(rec.Temperature),
				formatFloat(rec.Phase),
				strconv.Itoa(rec.Amplitude),
				units.FormatStorage(rec.DatetimePresens),
				units.FormatStorage(rec.DatetimeLocal),
				formatFloat(predicted),
			}
			if err := w.Write(row); err != nil {
				f.Close()
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteResultsXLSX writes the summary as a spreadsheet with typed cells,
// one sheet named "results".
func WriteResultsXLSX(results []fitting.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(ResultsSheet); err != nil {
		return err
	}
	if err := f.DeleteSheet(f.GetSheetName(0)); err != nil {
		return err
	}

	for i, c := range resultColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(ResultsSheet, cell, c); err != nil {
			return err
		}
	}

	for rowIdx, res := range results {
		row := rowIdx + 2
		if err := f.SetCellStr(ResultsSheet, fmt.Sprintf("A%d", row), res.SourceFile); err != nil {
			return err
		}
		v := res.Values
		if v == nil {
			continue
		}
		if err := setFloatCell(f, fmt.Sprintf("B%d", row), v.Slope, 5); err != nil {
			return err
		}
		if err := setFloatCell(f, fmt.Sprintf("C%d", row), v.R2, 3); err != nil {
			return err
		}
		if err := setFloatCell(f, fmt.Sprintf("D%d", row), v.MeanTemperature, 1); err != nil {
			return err
		}
		if err := f.SetCellStr(ResultsSheet, fmt.Sprintf("E%d", row), v.StartTime); err != nil {
			return err
		}
		if err := f.SetCellStr(ResultsSheet, fmt.Sprintf("F%d", row), v.StopTime); err != nil {
			return err
		}
		if err := f.SetCellStr(ResultsSheet, fmt.Sprintf("G%d", row), v.Duration); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// setFloatCell writes a numeric cell, falling back to a literal "NaN"
// string for values a spreadsheet cannot hold as numbers.
func setFloatCell(f *excelize.File, cell string, v float64, precision int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.SetCellStr(ResultsSheet, cell, formatFloat(v))
	}
	return f.SetCellFloat(ResultsSheet, cell, v, precision, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
