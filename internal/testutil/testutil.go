// Package testutil provides shared fixtures for pipeline tests:
// synthetic PreSens instrument logs and pre-built cleaned series.
package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/coldwater-lab/o2report/internal/presens"
)

// VendorHeader is a realistic PreSens header row, with the vendor's
// punctuation-heavy column names.
var VendorHeader = []string{
	"Date (DD/MM/YY)",
	"Time (HH:MM:SS)",
	"Logtime (Min)",
	"Oxygen (%airsatur.)",
	"Temp (°C)",
	"Phase (°)",
	"Amp",
}

// PresensLog assembles a raw instrument file: preamble lines of
// instrument chatter, then the header, then the data rows, all joined
// with the given separator.
func PresensLog(preambleLines int, sep string, header []string, rows [][]string) string {
	var b strings.Builder
	for i := 0; i < preambleLines; i++ {
		fmt.Fprintf(&b, "PreSens precision sensing; preamble line %d\n", i+1)
	}
	b.WriteString(strings.Join(header, sep))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, sep))
		b.WriteString("\n")
	}
	return b.String()
}

// SampleRows produces n data rows matching VendorHeader, starting at the
// given wall-clock time with one sample per interval. Oxygen decays
// linearly at the given slope per sample from 100%; temperature is held
// constant.
func SampleRows(start time.Time, interval time.Duration, n int, slopePerSample, temperature float64) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * interval)
		rows = append(rows, []string{
			ts.Format("02/01/06"),
			ts.Format("15:04:05"),
			fmt.Sprintf("%.3f", ts.Sub(start).Minutes()),
			fmt.Sprintf("%.2f", 100+float64(i)*slopePerSample),
			fmt.Sprintf("%.2f", temperature),
			fmt.Sprintf("%.3f", 25.0+0.01*float64(i)),
			fmt.Sprintf("%d", 8000+i),
		})
	}
	return rows
}

// Series builds a cleaned series with the given elapsed seconds and
// oxygen values, a constant temperature, and wall-clock timestamps
// derived from start. times and oxygens must have equal length.
func Series(cleaned string, start time.Time, times []int, oxygens []float64, temperature float64) *presens.Series {
	if len(times) != len(oxygens) {
		panic("testutil.Series: times and oxygens length mismatch")
	}
	s := &presens.Series{}
	for i := range times {
		ts := start.Add(time.Duration(times[i]) * time.Second)
		s.Records = append(s.Records, presens.Record{
			SourceFile:        "raw_" + cleaned,
			SourceFileCleaned: cleaned,
			TimeSeconds:       times[i],
			Oxygen:            oxygens[i],
			Temperature:       temperature,
			Phase:             25.0,
			Amplitude:         8000,
			DatetimePresens:   ts,
			DatetimeLocal:     ts,
		})
	}
	return s
}
