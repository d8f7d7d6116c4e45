// Package metadata loads the experiment metadata spreadsheet and exposes
// point lookups by cleaned filename.
//
// The workbook has one worksheet named "metadata" with a row per cleaned
// sensor file, and optionally a worksheet named "name_map" pairing raw
// file stems with their standardized names. The store is loaded once at
// startup and read-only thereafter.
package metadata

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/names"
	"github.com/coldwater-lab/o2report/internal/units"
)

// Worksheet names in the metadata workbook.
const (
	MetadataSheet = "metadata"
	NameMapSheet  = "name_map"
)

// ErrNotFound reports a cleaned filename with no metadata row.
var ErrNotFound = errors.New("no metadata record found")

// Record is one experiment's metadata row. Pointer fields are absent for
// rows where the column does not apply (egg fields on bacteria rows and
// vice versa) or could not be parsed.
type Record struct {
	SourceFile        string
	SourceFileCleaned string

	DaysPostFertilization *int
	FertilizationTime     *time.Time
	StartTimeNewport      *time.Time

	RecordType        string // "eggs" or "bacteria"
	FemaleID          string
	TargetTemperature string // "0C" or "4C"
	BacteriaGroup     string

	AtmPressureMb            float64
	NEggs                    *float64
	NEggsWeighed             *float64
	MeasuredFreshWeightGrams *float64
	AdjustedFreshWeightGrams *float64
	VolRespirationChamberML  *float64

	// AnalysisStartSeconds and AnalysisStopSeconds bound the linear-fit
	// window in elapsed seconds. Stop equal to the configured sentinel
	// (default -1) means "through the last available sample".
	AnalysisStartSeconds int
	AnalysisStopSeconds  int

	RecordFlag            int
	RecordFlagDescription string
	Comment               string
}

// Store holds the loaded metadata table, keyed by cleaned filename.
type Store struct {
	records   []Record
	byCleaned map[string]int
}

// NewStore builds a store from already-constructed records, for callers
// that do not load from a workbook (tests, mostly).
func NewStore(records []Record) *Store {
	s := &Store{records: records, byCleaned: make(map[string]int, len(records))}
	for i, rec := range records {
		s.byCleaned[rec.SourceFileCleaned] = i
	}
	return s
}

// Load reads the "metadata" worksheet. Float columns are rounded to 4
// decimals. The two timestamp columns use the naive metadata layout
// interpreted in the experiment-local timezone; unparsable timestamps
// become absent rather than failing the load. Structural problems (a
// missing sheet, a missing key column, an unparsable analysis window)
// fail the whole load.
func Load(path string, cfg *config.PipelineConfig) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata workbook %s: %w", path, err)
	}
	defer f.Close()

	tzLocal, err := units.LoadLocation(cfg.GetTZLocal())
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(MetadataSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", MetadataSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s sheet is empty", MetadataSheet)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[names.Clean(h)] = i
	}
	if _, ok := col["source_file_cleaned"]; !ok {
		return nil, fmt.Errorf("%s sheet has no source_file_cleaned column", MetadataSheet)
	}

	store := &Store{byCleaned: make(map[string]int)}
	for rowIdx, row := range rows[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := Record{
			SourceFile:            get("source_file"),
			SourceFileCleaned:     get("source_file_cleaned"),
			RecordType:            get("record_type"),
			FemaleID:              get("female_id"),
			TargetTemperature:     get("target_temperature"),
			BacteriaGroup:         get("bacteria_group"),
			RecordFlagDescription: get("record_flag_description"),
			Comment:               get("comment"),
		}
		if rec.SourceFileCleaned == "" {
			continue // blank padding row
		}

		rec.DaysPostFertilization = parseOptionalInt(get("days_post_fertilization"))
		rec.FertilizationTime = parseOptionalTime(get("fertilization_time"), tzLocal)
		rec.StartTimeNewport = parseOptionalTime(get("start_time_newport"), tzLocal)

		rec.AtmPressureMb = round4(parseFloatOrNaN(get("atm_pressure_mb")))
		rec.NEggs = parseOptionalFloat(get("n_eggs"))
		rec.NEggsWeighed = parseOptionalFloat(get("n_eggs_weighed"))
		rec.MeasuredFreshWeightGrams = parseOptionalFloat(get("measured_fresh_weight_grams"))
		rec.AdjustedFreshWeightGrams = parseOptionalFloat(get("adjusted_fresh_weight_grams"))
		rec.VolRespirationChamberML = parseOptionalFloat(get("vol_respiration_chamber_ml"))

		if rec.AnalysisStartSeconds, err = strconv.Atoi(get("analysis_start_seconds")); err != nil {
			return nil, fmt.Errorf("row %d (%s): bad analysis_start_seconds: %w", rowIdx+2, rec.SourceFileCleaned, err)
		}
		if rec.AnalysisStopSeconds, err = strconv.Atoi(get("analysis_stop_seconds")); err != nil {
			return nil, fmt.Errorf("row %d (%s): bad analysis_stop_seconds: %w", rowIdx+2, rec.SourceFileCleaned, err)
		}
		if flag := get("record_flag"); flag != "" {
			if rec.RecordFlag, err = strconv.Atoi(flag); err != nil {
				return nil, fmt.Errorf("row %d (%s): bad record_flag: %w", rowIdx+2, rec.SourceFileCleaned, err)
			}
		}

		store.byCleaned[rec.SourceFileCleaned] = len(store.records)
		store.records = append(store.records, rec)
	}

	log.Printf("loaded %d metadata records from %s", len(store.records), path)
	return store, nil
}

// Lookup returns the metadata record whose cleaned-filename key equals
// cleaned exactly (case-sensitive). A miss wraps ErrNotFound.
func (s *Store) Lookup(cleaned string) (*Record, error) {
	i, ok := s.byCleaned[cleaned]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNotFound, cleaned)
	}
	return &s.records[i], nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int { return len(s.records) }

// Records returns the loaded records in sheet order.
func (s *Store) Records() []Record { return s.records }

// LoadNameMap reads the "name_map" worksheet: two columns, no header,
// raw stem in the first column and standardized name in the second.
func LoadNameMap(path string) (map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(NameMapSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", NameMapSheet, err)
	}

	m := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		m[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}
	return m, nil
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v = round4(v)
	return &v
}

func parseFloatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseOptionalTime(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(units.MetadataLayout, s, loc)
	if err != nil {
		return nil
	}
	return &t
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
