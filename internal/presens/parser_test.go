package presens_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/presens"
	"github.com/coldwater-lab/o2report/internal/testutil"
	"github.com/coldwater-lab/o2report/internal/units"
)

func testConfig(skipRows int) *config.PipelineConfig {
	return &config.PipelineConfig{SkipRows: &skipRows}
}

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := units.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, berlin(t))
	rows := testutil.SampleRows(start, 10*time.Second, 5, -2.5, 4.05)
	content := testutil.PresensLog(3, ";", testutil.VendorHeader, rows)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("raw/run01.txt", []byte(content), 0o644))

	series, err := presens.ParseFile(m, "raw/run01.txt", "o2_eggs_f01", testConfig(3))
	require.NoError(t, err)
	require.Len(t, series.Records, 5)
	assert.True(t, series.Logtime)

	first := series.Records[0]
	assert.Equal(t, "run01", first.SourceFile)
	assert.Equal(t, "o2_eggs_f01", first.SourceFileCleaned)
	assert.Equal(t, 0, first.TimeSeconds)
	assert.InDelta(t, 100.0, first.Oxygen, 1e-9)
	assert.InDelta(t, 4.05, first.Temperature, 1e-9)
	assert.Equal(t, 8000, first.Amplitude)

	// Berlin is UTC+1 on 1 March; Los Angeles is UTC-8.
	assert.Equal(t, "2025-03-01 12:00:00+0100", units.FormatStorage(first.DatetimePresens))
	assert.Equal(t, "2025-03-01 03:00:00-0800", units.FormatStorage(first.DatetimeLocal))

	prev := -1
	for i, rec := range series.Records {
		assert.Equal(t, i*10, rec.TimeSeconds)
		assert.GreaterOrEqual(t, rec.TimeSeconds, prev)
		prev = rec.TimeSeconds
	}
	assert.InDelta(t, -2.5, (series.Records[4].Oxygen-series.Records[0].Oxygen)/4, 1e-9)
}

func TestParseFileLogtimeHours(t *testing.T) {
	t.Parallel()

	header := []string{"Date (DD/MM/YY)", "Time (HH:MM:SS)", "Logtime (h)", "Oxygen (%airsatur.)", "Temp (°C)", "Phase (°)", "Amp"}
	rows := [][]string{
		{"01/03/25", "12:00:00", "0.5", "99.1", "4.0", "25.1", "8000"},
	}
	content := testutil.PresensLog(2, ";", header, rows)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("run.txt", []byte(content), 0o644))

	series, err := presens.ParseFile(m, "run.txt", "", testConfig(2))
	require.NoError(t, err)
	require.Len(t, series.Records, 1)
	assert.True(t, series.Logtime)
	assert.InDelta(t, 30.0, series.Records[0].LogtimeMin, 1e-9)
}

func TestParseFileWhitespaceStripped(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{" 01/03/25 ", " 12:00:00 ", " 0.000 ", " 100.00 ", " 4.00 ", " 25.000 ", " 8000 "},
	}
	content := testutil.PresensLog(1, ";", testutil.VendorHeader, rows)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("run.txt", []byte(content), 0o644))

	series, err := presens.ParseFile(m, "run.txt", "", testConfig(1))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, series.Records[0].Oxygen, 1e-9)
}

func TestParseFileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		m := fsutil.NewMemoryFileSystem()
		_, err := presens.ParseFile(m, "absent.txt", "", testConfig(0))
		var perr *presens.ParseError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("preamble longer than file", func(t *testing.T) {
		t.Parallel()
		m := fsutil.NewMemoryFileSystem()
		require.NoError(t, m.WriteFile("short.txt", []byte("one line\n"), 0o644))
		_, err := presens.ParseFile(m, "short.txt", "", testConfig(57))
		var perr *presens.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "header")
	})

	t.Run("missing oxygen column", func(t *testing.T) {
		t.Parallel()
		header := []string{"Date (DD/MM/YY)", "Time (HH:MM:SS)", "Temp (°C)", "Phase (°)", "Amp"}
		rows := [][]string{{"01/03/25", "12:00:00", "4.0", "25.1", "8000"}}
		m := fsutil.NewMemoryFileSystem()
		require.NoError(t, m.WriteFile("run.txt", []byte(testutil.PresensLog(0, ";", header, rows)), 0o644))

		_, err := presens.ParseFile(m, "run.txt", "", testConfig(0))
		var perr *presens.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "oxygen")
	})

	t.Run("no samples", func(t *testing.T) {
		t.Parallel()
		m := fsutil.NewMemoryFileSystem()
		require.NoError(t, m.WriteFile("empty.txt", []byte(testutil.PresensLog(0, ";", testutil.VendorHeader, nil)), 0o644))

		_, err := presens.ParseFile(m, "empty.txt", "", testConfig(0))
		var perr *presens.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "no samples")
	})

	t.Run("bad numeric value", func(t *testing.T) {
		t.Parallel()
		rows := [][]string{{"01/03/25", "12:00:00", "0.0", "not-a-number", "4.0", "25.1", "8000"}}
		m := fsutil.NewMemoryFileSystem()
		require.NoError(t, m.WriteFile("run.txt", []byte(testutil.PresensLog(0, ";", testutil.VendorHeader, rows)), 0o644))

		_, err := presens.ParseFile(m, "run.txt", "", testConfig(0))
		var perr *presens.ParseError
		require.ErrorAs(t, err, &perr)
	})
}

func TestParseFileCustomSeparator(t *testing.T) {
	t.Parallel()

	sep := "\t"
	skip := 1
	cfg := &config.PipelineConfig{Separator: &sep, SkipRows: &skip}

	rows := [][]string{{"01/03/25", "12:00:00", "0.0", "100.0", "4.0", "25.1", "8000"}}
	content := testutil.PresensLog(1, "\t", testutil.VendorHeader, rows)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("run.txt", []byte(content), 0o644))

	series, err := presens.ParseFile(m, "run.txt", "", cfg)
	require.NoError(t, err)
	require.Len(t, series.Records, 1)
}
