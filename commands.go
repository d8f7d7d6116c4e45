package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coldwater-lab/o2report/internal/config"
	"github.com/coldwater-lab/o2report/internal/db"
	"github.com/coldwater-lab/o2report/internal/fitting"
	"github.com/coldwater-lab/o2report/internal/fsutil"
	"github.com/coldwater-lab/o2report/internal/metadata"
	"github.com/coldwater-lab/o2report/internal/plotting"
	"github.com/coldwater-lab/o2report/internal/presens"
	"github.com/coldwater-lab/o2report/internal/report"
)

// loadPipelineConfig returns the defaults unless an explicit config file was
// given on the command line.
func loadPipelineConfig(path string) (*config.PipelineConfig, error) {
	if path == "" {
		return config.DefaultPipelineConfig(), nil
	}
	return config.LoadPipelineConfig(path)
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	source := fs.String("source", "", "Folder containing raw sensor log files (*.txt)")
	out := fs.String("out", "", "Folder to write cleaned CSV files to")
	metadataPath := fs.String("metadata", "", "Metadata workbook with the file name map sheet")
	configPath := fs.String("config", "", "Optional pipeline config JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" || *out == "" || *metadataPath == "" {
		fs.Usage()
		return fmt.Errorf("-source, -out and -metadata are required")
	}

	cfg, err := loadPipelineConfig(*configPath)
	if err != nil {
		return err
	}
	nameMap, err := metadata.LoadNameMap(*metadataPath)
	if err != nil {
		return err
	}

	written, err := presens.Export(fsutil.OSFileSystem{}, *source, *out, nameMap, cfg)
	if err != nil {
		return err
	}
	log.Printf("cleaned %d file(s) into %s", len(written), *out)
	return nil
}

func runFit(args []string) error {
	fs := flag.NewFlagSet("fit", flag.ExitOnError)
	cleaned := fs.String("cleaned", "", "Folder containing cleaned CSV files")
	metadataPath := fs.String("metadata", "", "Metadata workbook describing each series")
	out := fs.String("out", ".", "Folder to write fit exports to")
	configPath := fs.String("config", "", "Optional pipeline config JSON file")
	dbPath := fs.String("db", "", "Optional SQLite file to archive results into")
	plotDir := fs.String("plots", "", "Optional folder to write per-series fit charts to")
	html := fs.Bool("html", false, "Also render interactive HTML charts (with -plots)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cleaned == "" || *metadataPath == "" {
		fs.Usage()
		return fmt.Errorf("-cleaned and -metadata are required")
	}

	cfg, err := loadPipelineConfig(*configPath)
	if err != nil {
		return err
	}
	store, err := metadata.Load(*metadataPath, cfg)
	if err != nil {
		return err
	}
	log.Printf("loaded metadata for %d series", store.Len())

	osfs := fsutil.OSFileSystem{}
	startedAt := time.Now()
	results, fitted, err := fitting.FitAll(osfs, *cleaned, store, cfg)
	if err != nil {
		return err
	}
	log.Printf("fitted %d series from %s", len(results), *cleaned)

	if err := osfs.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}
	if err := report.WriteResultsCSV(osfs, results, filepath.Join(*out, "fit_results.csv")); err != nil {
		return err
	}
	if err := report.WriteFittedCSV(osfs, fitted, filepath.Join(*out, "fit_series.csv")); err != nil {
		return err
	}
	if err := report.WriteResultsXLSX(results, filepath.Join(*out, "fit_results.xlsx")); err != nil {
		return err
	}

	if *dbPath != "" {
		if err := archiveResults(*dbPath, *cleaned, startedAt, results); err != nil {
			return err
		}
	}
	if *plotDir != "" {
		if err := writeCharts(osfs, *plotDir, results, fitted, *html); err != nil {
			return err
		}
	}
	return nil
}

func archiveResults(path, cleanedFolder string, startedAt time.Time, results []fitting.Result) error {
	archive, err := db.NewDB(path)
	if err != nil {
		return err
	}
	defer archive.Close()

	runID, err := archive.RecordRun(cleanedFolder, startedAt)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := archive.RecordFitResult(runID, r); err != nil {
			return err
		}
	}
	log.Printf("archived run %s (%d results) to %s", runID, len(results), path)
	return nil
}

func writeCharts(osfs fsutil.OSFileSystem, dir string, results []fitting.Result, fitted []fitting.FittedSeries, html bool) error {
	if err := osfs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plot folder: %w", err)
	}
	for i, r := range results {
		stem := filepath.Join(dir, r.SourceFile)
		if err := plotting.SaveFitPNG(fitted[i], r, stem+".png"); err != nil {
			return err
		}
		if !html {
			continue
		}
		f, err := os.Create(stem + ".html")
		if err != nil {
			return err
		}
		if err := plotting.RenderFitHTML(fitted[i], r, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	log.Printf("wrote charts for %d series to %s", len(results), dir)
	return nil
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	seriesPath := fs.String("series", "", "Cleaned CSV file to plot")
	out := fs.String("o", "", "Output file; .html renders an interactive chart (default: series name with .png)")
	start := fs.Int("start", 0, "Window start in seconds since the first sample")
	stop := fs.Int("stop", -1, "Window stop in seconds; -1 means the last sample")
	configPath := fs.String("config", "", "Optional pipeline config JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *seriesPath == "" {
		fs.Usage()
		return fmt.Errorf("-series is required")
	}

	cfg, err := loadPipelineConfig(*configPath)
	if err != nil {
		return err
	}
	series, err := presens.ReadCSV(fsutil.OSFileSystem{}, *seriesPath)
	if err != nil {
		return err
	}
	result, fitted := fitting.Fit(series, fitting.Window{Start: *start, Stop: *stop}, cfg)

	target := *out
	if target == "" {
		target = strings.TrimSuffix(*seriesPath, filepath.Ext(*seriesPath)) + ".png"
	}
	if strings.EqualFold(filepath.Ext(target), ".html") {
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		if err := plotting.RenderFitHTML(fitted, result, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else if err := plotting.SaveFitPNG(fitted, result, target); err != nil {
		return err
	}
	log.Printf("wrote %s", target)
	return nil
}
