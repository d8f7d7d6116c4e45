package fitting

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/metadata"
	"github.com/coldwater-lab/o2report/internal/presens"
)

// FitAll runs Fit over every cleaned series file in folder, in filename
// order so repeated runs produce identical output. Each series is joined
// to its metadata row by the series' own cleaned-filename field, not the
// path on disk. A failed metadata lookup aborts the whole batch; an empty
// analysis window does not (it yields a no-data result like Fit does).
func FitAll(fsys fsutil.FileSystem, folder string, store *metadata.Store, cfg *config.PipelineConfig) ([]Result, []FittedSeries, error) {
	paths, err := fsys.Glob(filepath.Join(folder, "*.csv"))
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		log.Printf("no cleaned series files in %s", folder)
	}

	results := make([]Result, 0, len(paths))
	fittedAll := make([]FittedSeries, 0, len(paths))
	for _, path := range paths {
		series, err := presens.ReadCSV(fsys, path)
		if err != nil {
			return nil, nil, err
		}

		rec, err := store.Lookup(series.SourceFileCleaned())
		if err != nil {
			return nil, nil, fmt.Errorf("metadata for %s: %w", path, err)
		}

		result, fitted := Fit(series, WindowFor(rec), cfg)
		results = append(results, result)
		fittedAll = append(fittedAll, fitted)
	}

	return results, fittedAll, nil
}
