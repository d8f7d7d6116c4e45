// Package fitting estimates oxygen-consumption slopes: it filters a
// cleaned series to the analysis window from its metadata row and runs an
// ordinary least-squares regression of oxygen against elapsed seconds.
package fitting

import (
	"log"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/metadata"
	"github.com/coldwater-lab/o2report/internal/presens"
	"github.com/coldwater-lab/o2report/internal/units"
)

// Window is the [Start, Stop] elapsed-second range of a fit, inclusive on
// both ends. Stop equal to the configured sentinel (default -1) resolves
// to the series' last sample.
type Window struct {
	Start int
	Stop  int
}

// FitValues are the computed fields of a successful fit.
type FitValues struct {
	Slope           float64 // oxygen per second, rounded to 5 decimals
	R2              float64 // squared correlation, rounded to 3 decimals
	MeanTemperature float64 // over the fit window, rounded to 1 decimal
	Intercept       float64 // unrounded, for the fitted-line overlay
	StartTime       string  // local timestamp of the first fitted sample
	StopTime        string  // local timestamp of the last fitted sample
	Duration        string  // StopTime - StartTime as HH:MM:SS
}

// Result is the one-row summary of a fit. Values is nil exactly when the
// window selected no samples, so a result can never be half-filled.
type Result struct {
	SourceFile string
	Values     *FitValues
}

// FittedSeries is the window-filtered subset of a series with the fitted
// oxygen value (slope*x + intercept) alongside each sample; OxygenFitted
// is empty when the window selected nothing.
type FittedSeries struct {
	Series       *presens.Series
	OxygenFitted []float64
}

// Fit filters the series to the window and regresses oxygen against
// elapsed seconds. An empty window is a non-fatal, expected outcome: it
// is logged and yields a Result with nil Values. Degenerate input (a
// single sample, or zero variance in x) propagates NaN from the
// regression rather than erroring, as does a temperature mean over
// invalid values.
func Fit(series *presens.Series, window Window, cfg *config.PipelineConfig) (Result, FittedSeries) {
	name := series.SourceFileCleaned()

	stop := window.Stop
	if stop == cfg.GetStopSentinel() && len(series.Records) > 0 {
		stop = series.Records[len(series.Records)-1].TimeSeconds
	}

	filtered := &presens.Series{Logtime: series.Logtime}
	for _, rec := range series.Records {
		if rec.TimeSeconds >= window.Start && rec.TimeSeconds <= stop {
			filtered.Records = append(filtered.Records, rec)
		}
	}

	if len(filtered.Records) == 0 {
		log.Printf("fit %s: window [%d, %d] selects no samples", name, window.Start, stop)
		return Result{SourceFile: name}, FittedSeries{Series: filtered}
	}

	xs := make([]float64, len(filtered.Records))
	ys := make([]float64, len(filtered.Records))
	temps := make([]float64, len(filtered.Records))
	for i, rec := range filtered.Records {
		xs[i] = float64(rec.TimeSeconds)
		ys[i] = rec.Oxygen
		temps[i] = rec.Temperature
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := stat.Correlation(xs, ys, nil)

	fitted := make([]float64, len(xs))
	for i, x := range xs {
		fitted[i] = slope*x + intercept
	}

	first := filtered.Records[0]
	last := filtered.Records[len(filtered.Records)-1]

	values := &FitValues{
		Slope:           roundTo(slope, 5),
		R2:              roundTo(r*r, 3),
		MeanTemperature: roundTo(stat.Mean(temps, nil), 1),
		Intercept:       intercept,
		StartTime:       units.FormatStorage(first.DatetimeLocal),
		StopTime:        units.FormatStorage(last.DatetimeLocal),
		Duration:        units.FormatDuration(last.DatetimeLocal.Sub(first.DatetimeLocal)),
	}

	return Result{SourceFile: name, Values: values}, FittedSeries{Series: filtered, OxygenFitted: fitted}
}

// roundTo rounds to the given number of decimals; NaN passes through.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// WindowFor extracts the analysis window from a metadata record.
func WindowFor(rec *metadata.Record) Window {
	return Window{Start: rec.AnalysisStartSeconds, Stop: rec.AnalysisStopSeconds}
}
