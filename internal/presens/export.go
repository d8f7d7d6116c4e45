package presens

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/units"
)

// Export converts every .txt instrument file in sourceFolder into a
// cleaned CSV in outputFolder. nameMap maps raw file stems to the
// analyst-assigned standardized names; a file whose stem has no mapping,
// or that fails to parse, is skipped and logged rather than failing the
// batch. The output filename is the first sample's local timestamp in
// compact form plus the mapped name's suffix after its first underscore:
// "20250301T031005_eggs_f01.csv".
//
// Returns the paths written, in the order the source files were visited.
func Export(fsys fsutil.FileSystem, sourceFolder, outputFolder string, nameMap map[string]string, cfg *config.PipelineConfig) ([]string, error) {
	paths, err := fsys.Glob(filepath.Join(sourceFolder, "*.txt"))
	if err != nil {
		return nil, err
	}

	if err := fsys.MkdirAll(outputFolder, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cleaned, ok := nameMap[stem]
		if !ok {
			log.Printf("skipping %s: no entry in name map", path)
			continue
		}

		series, err := ParseFile(fsys, path, cleaned, cfg)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}

		outPath := filepath.Join(outputFolder, outputName(series, cleaned))
		if err := WriteCSV(fsys, series, outPath); err != nil {
			return written, err
		}
		log.Printf("wrote %s (%d samples)", outPath, len(series.Records))
		written = append(written, outPath)
	}

	return written, nil
}

// outputName derives the cleaned filename: compact first-sample local
// timestamp, then the mapped name's suffix after the first underscore.
// A mapped name without an underscore is used whole.
func outputName(series *Series, cleaned string) string {
	stamp := series.Records[0].DatetimeLocal.Format(units.FileStampLayout)
	suffix := cleaned
	if _, rest, ok := strings.Cut(cleaned, "_"); ok {
		suffix = rest
	}
	return stamp + "_" + suffix + ".csv"
}
