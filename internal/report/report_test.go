package report

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/fitting"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/testutil"
)

func sampleResults(t *testing.T) ([]fitting.Result, []fitting.FittedSeries) {
	t.Helper()
	start := time.Date(2025, 3, 1, 3, 0, 0, 0, time.FixedZone("PST", -8*3600))
	series := testutil.Series("o2run_eggs_f01", start,
		[]int{0, 10, 20}, []float64{100, 90, 80}, 4.0)

	ok, okFitted := fitting.Fit(series, fitting.Window{Start: 0, Stop: 20}, config.DefaultPipelineConfig())
	empty, emptyFitted := fitting.Fit(series, fitting.Window{Start: 900, Stop: 990}, config.DefaultPipelineConfig())

	return []fitting.Result{ok, empty}, []fitting.FittedSeries{okFitted, emptyFitted}
}

func TestWriteResultsCSV(t *testing.T) {
	t.Parallel()

	results, _ := sampleResults(t)
	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteResultsCSV(m, results, "results.csv"))

	raw, err := m.ReadFile("results.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "source_file,slope,r2,mean_temperature,start_time,stop_time,duration", lines[0])
	assert.Contains(t, lines[1], "o2run_eggs_f01,-1,1,4,")
	assert.Contains(t, lines[1], "00:00:20")
	// No-data row keeps only the filename.
	assert.Equal(t, "o2run_eggs_f01,,,,,,", lines[2])
}

func TestWriteFittedCSV(t *testing.T) {
	t.Parallel()

	_, fitted := sampleResults(t)
	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFittedCSV(m, fitted, "fitted.csv"))

	raw, err := m.ReadFile("fitted.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	// Header plus three fitted rows; the empty window contributes nothing.
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "oxygen_fitted")
	assert.Contains(t, lines[1], "2025-03-01 03:00:00-0800")
}

func TestWriteResultsXLSX(t *testing.T) {
	t.Parallel()

	results, _ := sampleResults(t)
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteResultsXLSX(results, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "source_file", rows[0][0])
	assert.Equal(t, "o2run_eggs_f01", rows[1][0])
	slope, err := strconv.ParseFloat(rows[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, slope, 1e-9)
	// The no-data row has only the filename populated.
	assert.Equal(t, "o2run_eggs_f01", rows[2][0])
	if len(rows[2]) > 1 {
		assert.Equal(t, "", rows[2][1])
	}
}
