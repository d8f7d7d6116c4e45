// Package plotting renders a fitted series for inspection: a static PNG
// with the regression line overlaid on the oxygen channel, and an
// interactive dual-axis HTML chart of oxygen and temperature.
package plotting

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/coldwater-lab/o2report/internal/fitting"
)

// SaveFitPNG writes a scatter of oxygen against elapsed seconds with the
// fitted line on top. An empty fitted series still produces a (blank)
// plot so batch plotting need not special-case no-data files.
func SaveFitPNG(fitted fitting.FittedSeries, result fitting.Result, path string) error {
	p := plot.New()
	p.Title.Text = result.SourceFile
	if v := result.Values; v != nil {
		p.Title.Text = fmt.Sprintf("%s (slope=%.5f r2=%.3f)", result.SourceFile, v.Slope, v.R2)
	}
	p.X.Label.Text = "time_seconds"
	p.Y.Label.Text = "oxygen (% air sat.)"

	obsPts := make(plotter.XYs, 0, len(fitted.Series.Records))
	fitPts := make(plotter.XYs, 0, len(fitted.Series.Records))
	for i, rec := range fitted.Series.Records {
		obsPts = append(obsPts, plotter.XY{X: float64(rec.TimeSeconds), Y: rec.Oxygen})
		if i < len(fitted.OxygenFitted) {
			fitPts = append(fitPts, plotter.XY{X: float64(rec.TimeSeconds), Y: fitted.OxygenFitted[i]})
		}
	}

	if len(obsPts) > 0 {
		scatter, err := plotter.NewScatter(obsPts)
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		scatter.GlyphStyle.Color = color.RGBA{R: 65, G: 105, B: 225, A: 255}
		p.Add(scatter)
		p.Legend.Add("oxygen", scatter)
	}

	if len(fitPts) > 0 {
		fitLine, err := plotter.NewLine(fitPts)
		if err != nil {
			return fmt.Errorf("failed to build fit line: %w", err)
		}
		fitLine.Width = vg.Points(1)
		fitLine.Color = color.RGBA{R: 220, G: 20, B: 60, A: 255}
		p.Add(fitLine)
		p.Legend.Add("fit", fitLine)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// RenderFitHTML renders an interactive scatter of the fitted window:
// oxygen and the fitted line on the primary axis, temperature on a
// secondary axis.
func RenderFitHTML(fitted fitting.FittedSeries, result fitting.Result, w io.Writer) error {
	oxygen := make([]opts.ScatterData, 0, len(fitted.Series.Records))
	temp := make([]opts.ScatterData, 0, len(fitted.Series.Records))
	fitLine := make([]opts.ScatterData, 0, len(fitted.Series.Records))
	for i, rec := range fitted.Series.Records {
		x := rec.TimeSeconds
		oxygen = append(oxygen, opts.ScatterData{Value: []interface{}{x, rec.Oxygen}})
		temp = append(temp, opts.ScatterData{Value: []interface{}{x, rec.Temperature}})
		if i < len(fitted.OxygenFitted) {
			fitLine = append(fitLine, opts.ScatterData{Value: []interface{}{x, fitted.OxygenFitted[i]}})
		}
	}

	subtitle := "no samples in analysis window"
	if v := result.Values; v != nil {
		subtitle = fmt.Sprintf("slope=%.5f r2=%.3f mean_temp=%.1f duration=%s", v.Slope, v.R2, v.MeanTemperature, v.Duration)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: result.SourceFile, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: result.SourceFile, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time_seconds", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "oxygen (% air sat.)", Scale: opts.Bool(true)}),
	)
	scatter.ExtendYAxis(opts.YAxis{Name: "temperature (°C)", Scale: opts.Bool(true)})

	scatter.AddSeries("oxygen", oxygen, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("fit", fitLine, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	scatter.AddSeries("temperature", temp, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4, YAxisIndex: 1}))

	return scatter.Render(w)
}
