package presens_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/presens"
	"github.com/coldwater-lab/o2report/internal/testutil"
)

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 3, 0, 0, 0, time.FixedZone("PST", -8*3600))
	series := testutil.Series("o2_eggs_f01", start, []int{0, 10, 20}, []float64{100, 95, 90}, 4.0)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, presens.WriteCSV(m, series, "out/clean.csv"))

	back, err := presens.ReadCSV(m, "out/clean.csv")
	require.NoError(t, err)

	if diff := cmp.Diff(series.Records, back.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVTimestampFormattingIsStable(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 3, 0, 0, 0, time.FixedZone("PST", -8*3600))
	series := testutil.Series("o2_eggs_f01", start, []int{0, 10}, []float64{100, 95}, 4.0)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, presens.WriteCSV(m, series, "clean.csv"))

	raw, err := m.ReadFile("clean.csv")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2025-03-01 03:00:00-0800")

	// Re-reading and re-writing must reproduce the file byte for byte.
	back, err := presens.ReadCSV(m, "clean.csv")
	require.NoError(t, err)
	require.NoError(t, presens.WriteCSV(m, back, "clean2.csv"))

	raw2, err := m.ReadFile("clean2.csv")
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(raw2))
}

func TestCSVOmitsLogtimeWhenAbsent(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC)
	series := testutil.Series("x", start, []int{0}, []float64{100}, 4.0)

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, presens.WriteCSV(m, series, "clean.csv"))

	raw, err := m.ReadFile("clean.csv")
	require.NoError(t, err)
	header := strings.SplitN(string(raw), "\n", 2)[0]
	assert.NotContains(t, header, "logtime_min")

	back, err := presens.ReadCSV(m, "clean.csv")
	require.NoError(t, err)
	assert.False(t, back.Logtime)
}

func TestReadCSVMissingColumn(t *testing.T) {
	t.Parallel()

	m := fsutil.NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("bad.csv", []byte("source_file,oxygen\na,1\n"), 0o644))

	_, err := presens.ReadCSV(m, "bad.csv")
	var perr *presens.ParseError
	require.ErrorAs(t, err, &perr)
}
