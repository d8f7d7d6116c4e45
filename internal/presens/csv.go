package presens

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/units"
)

// Cleaned-file column names, in write order. logtime_min is only present
// when the source file carried a log-time column.
var cleanedColumns = []string{
	"source_file",
	"source_file_cleaned",
	"time_seconds",
	"logtime_min",
	"oxygen",
	"temperature",
	"phase",
	"amplitude",
	"datetime_presens",
	"datetime_local",
}

// WriteCSV writes a cleaned series as a comma-delimited file. Timestamp
// columns use the storage layout ("YYYY-MM-DD HH:MM:SS±ZZZZ") so the file
// round-trips byte-identically through ReadCSV. An existing file of the
// same name is overwritten.
func WriteCSV(fsys fsutil.FileSystem, series *Series, path string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)

	header := make([]string, 0, len(cleanedColumns))
	for _, c := range cleanedColumns {
		if c == "logtime_min" && !series.Logtime {
			continue
		}
		header = append(header, c)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}

	for _, rec := range series.Records {
		row := make([]string, 0, len(header))
		row = append(row,
			rec.SourceFile,
			rec.SourceFileCleaned,
			strconv.Itoa(rec.TimeSeconds),
		)
		if series.Logtime {
			row = append(row, formatFloat(rec.LogtimeMin))
		}
		row = append(row,
			formatFloat(rec.Oxygen),
			formatFloat(rec.Temperature),
			formatFloat(rec.Phase),
			strconv.Itoa(rec.Amplitude),
			units.FormatStorage(rec.DatetimePresens),
			units.FormatStorage(rec.DatetimeLocal),
		)
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

// ReadCSV reads a cleaned series file written by WriteCSV back into a
// Series. It fails with *ParseError if a canonical column is missing or a
// value does not parse.
func ReadCSV(fsys fsutil.FileSystem, path string) (*Series, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "missing header", Err: err}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, c := range cleanedColumns {
		if c == "logtime_min" {
			continue
		}
		if _, ok := idx[c]; !ok {
			return nil, &ParseError{Path: path, Reason: "missing column " + c}
		}
	}
	logtimeIdx, haveLogtime := idx["logtime_min"]

	series := &Series{Logtime: haveLogtime}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "malformed row", Err: err}
		}

		rec := Record{
			SourceFile:        row[idx["source_file"]],
			SourceFileCleaned: row[idx["source_file_cleaned"]],
		}
		if rec.TimeSeconds, err = strconv.Atoi(row[idx["time_seconds"]]); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad time_seconds value", Err: err}
		}
		if haveLogtime {
			if rec.LogtimeMin, err = strconv.ParseFloat(row[logtimeIdx], 64); err != nil {
				return nil, &ParseError{Path: path, Reason: "bad logtime_min value", Err: err}
			}
		}
		if rec.Oxygen, err = strconv.ParseFloat(row[idx["oxygen"]], 64); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad oxygen value", Err: err}
		}
		if rec.Temperature, err = strconv.ParseFloat(row[idx["temperature"]], 64); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad temperature value", Err: err}
		}
		if rec.Phase, err = strconv.ParseFloat(row[idx["phase"]], 64); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad phase value", Err: err}
		}
		if rec.Amplitude, err = strconv.Atoi(row[idx["amplitude"]]); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad amplitude value", Err: err}
		}
		if rec.DatetimePresens, err = units.ParseStorage(row[idx["datetime_presens"]]); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad datetime_presens value", Err: err}
		}
		if rec.DatetimeLocal, err = units.ParseStorage(row[idx["datetime_local"]]); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad datetime_local value", Err: err}
		}

		series.Records = append(series.Records, rec)
	}

	return series, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
