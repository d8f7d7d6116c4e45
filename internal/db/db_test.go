package db

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldwater-lab/o2report/internal/fitting"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAndListResults(t *testing.T) {
	t.Parallel()

	d := testDB(t)
	runID, err := d.RecordRun("cleaned", time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	complete := fitting.Result{
		SourceFile: "o2run_eggs_f01",
		Values: &fitting.FitValues{
			Slope:           -1.0,
			R2:              1.0,
			MeanTemperature: 4.1,
			StartTime:       "2025-03-01 03:00:00-0800",
			StopTime:        "2025-03-01 03:20:00-0800",
			Duration:        "00:20:00",
		},
	}
	noData := fitting.Result{SourceFile: "o2run_eggs_f02"}

	require.NoError(t, d.RecordFitResult(runID, complete))
	require.NoError(t, d.RecordFitResult(runID, noData))

	got, err := d.ResultsForRun(runID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "o2run_eggs_f01", got[0].SourceFile)
	require.True(t, got[0].Slope.Valid)
	assert.InDelta(t, -1.0, got[0].Slope.Float64, 1e-9)
	assert.Equal(t, "00:20:00", got[0].Duration.String)

	assert.Equal(t, "o2run_eggs_f02", got[1].SourceFile)
	assert.False(t, got[1].Slope.Valid)
	assert.False(t, got[1].StartTime.Valid)
}

func TestRecordFitResultNaNStoredAsNull(t *testing.T) {
	t.Parallel()

	d := testDB(t)
	runID, err := d.RecordRun("cleaned", time.Now())
	require.NoError(t, err)

	degenerate := fitting.Result{
		SourceFile: "single_sample",
		Values: &fitting.FitValues{
			Slope:           math.NaN(),
			R2:              math.NaN(),
			MeanTemperature: 4.0,
			StartTime:       "2025-03-01 03:00:00-0800",
			StopTime:        "2025-03-01 03:00:00-0800",
			Duration:        "00:00:00",
		},
	}
	require.NoError(t, d.RecordFitResult(runID, degenerate))

	got, err := d.ResultsForRun(runID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Slope.Valid)
	require.True(t, got[0].MeanTemperature.Valid)
	assert.InDelta(t, 4.0, got[0].MeanTemperature.Float64, 1e-9)
}

func TestResultsForUnknownRun(t *testing.T) {
	t.Parallel()

	d := testDB(t)
	got, err := d.ResultsForRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, got)
}
