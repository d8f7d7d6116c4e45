package presens

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/names"
	"github.com/coldwater-lab/o2report/internal/units"
)

// ParseFile reads a raw PreSens log and returns the cleaned series.
// cleanedName is the analyst-assigned standardized name carried into
// every record ("" if not yet assigned). It fails with *ParseError if the
// file cannot be opened, no header follows the preamble, a required
// column is missing after normalization, or a sample value does not parse.
func ParseFile(fsys fsutil.FileSystem, path, cleanedName string, cfg *config.PipelineConfig) (*Series, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	tzPresens, err := units.LoadLocation(cfg.GetTZPresens())
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "bad instrument timezone", Err: err}
	}
	tzLocal, err := units.LoadLocation(cfg.GetTZLocal())
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "bad local timezone", Err: err}
	}

	br := bufio.NewReader(f)
	for i := 0; i < cfg.GetSkipRows(); i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, &ParseError{Path: path, Reason: "header not found after preamble", Err: err}
		}
	}

	r := csv.NewReader(br)
	r.Comma = cfg.GetSeparator()
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "header not found after preamble", Err: err}
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = names.Clean(h)
	}

	dateIdx, ok := findColumn(cols, "date")
	if !ok {
		return nil, &ParseError{Path: path, Reason: "missing date column"}
	}
	timeIdx, ok := findColumn(cols, "time")
	if !ok {
		return nil, &ParseError{Path: path, Reason: "missing time column"}
	}
	oxygenIdx, ok := findColumn(cols, "oxygen", "o2")
	if !ok {
		return nil, &ParseError{Path: path, Reason: "missing oxygen saturation column"}
	}
	tempIdx, ok := findColumn(cols, "temp", "temperature")
	if !ok {
		return nil, &ParseError{Path: path, Reason: "missing temperature column"}
	}
	phaseIdx, ok := findColumn(cols, "phase")
	if !ok {
		return nil, &ParseError{Path: path, Reason: "missing phase column"}
	}
	ampIdx, ok := findColumn(cols, "amp", "amplitude")
	if !ok {
		return nil, &ParseError{Path: path, Reason: "missing amplitude column"}
	}

	// Log time is optional: minutes directly, or hours converted.
	logtimeMinIdx, haveLogtimeMin := findColumn(cols, "logtime_min")
	logtimeHourIdx, haveLogtimeHour := findColumn(cols, "logtime_h")

	layout := cfg.GetDateFormat() + " " + cfg.GetTimeFormat()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	series := &Series{Logtime: haveLogtimeMin || haveLogtimeHour}
	var first time.Time
	haveFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "malformed row", Err: err}
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		// Trailing separator on every data line produces a phantom field.
		if len(row) == len(cols)+1 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		if len(row) < len(cols) {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("row has %d fields, header has %d", len(row), len(cols))}
		}

		ts, err := time.ParseInLocation(layout, row[dateIdx]+" "+row[timeIdx], tzPresens)
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "bad timestamp", Err: err}
		}
		if !haveFirst {
			first = ts
			haveFirst = true
		}

		rec := Record{
			SourceFile:        stem,
			SourceFileCleaned: cleanedName,
			TimeSeconds:       int(ts.Sub(first).Seconds()),
			DatetimePresens:   ts,
			DatetimeLocal:     ts.In(tzLocal),
		}

		if rec.Oxygen, err = strconv.ParseFloat(row[oxygenIdx], 64); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad oxygen value", Err: err}
		}
		if rec.Temperature, err = strconv.ParseFloat(row[tempIdx], 64); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad temperature value", Err: err}
		}
		if rec.Phase, err = strconv.ParseFloat(row[phaseIdx], 64); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad phase value", Err: err}
		}
		if rec.Amplitude, err = strconv.Atoi(row[ampIdx]); err != nil {
			return nil, &ParseError{Path: path, Reason: "bad amplitude value", Err: err}
		}

		switch {
		case haveLogtimeMin:
			v, err := strconv.ParseFloat(row[logtimeMinIdx], 64)
			if err != nil {
				return nil, &ParseError{Path: path, Reason: "bad logtime value", Err: err}
			}
			rec.LogtimeMin = round3(v)
		case haveLogtimeHour:
			v, err := strconv.ParseFloat(row[logtimeHourIdx], 64)
			if err != nil {
				return nil, &ParseError{Path: path, Reason: "bad logtime value", Err: err}
			}
			rec.LogtimeMin = round3(v * 60)
		}

		series.Records = append(series.Records, rec)
	}

	if len(series.Records) == 0 {
		return nil, &ParseError{Path: path, Reason: "file contains no samples"}
	}
	return series, nil
}

// findColumn returns the index of the first normalized header that is one
// of the candidate names exactly, or starts with a candidate followed by
// an underscore (so "oxygen" matches "oxygen_airsatur").
func findColumn(cols []string, candidates ...string) (int, bool) {
	for i, c := range cols {
		for _, want := range candidates {
			if c == want || strings.HasPrefix(c, want+"_") {
				return i, true
			}
		}
	}
	return 0, false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
