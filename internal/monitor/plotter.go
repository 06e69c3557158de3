// Package monitor renders debug visualizations of analysis output:
// static PNG plots for offline inspection and an HTML chart for the
// server's debug endpoint. Nothing here affects verdicts.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tjl0830/gait-aware/internal/gait"
)

// SaveWindowErrorPlot writes a line plot of per-window reconstruction
// error to path (format chosen by extension, typically .png).
func SaveWindowErrorPlot(scores *gait.WindowScores, path string) error {
	p := plot.New()
	p.Title.Text = "Reconstruction Error per Window"
	p.X.Label.Text = "Window"
	p.Y.Label.Text = "Mean Squared Error"

	pts := make(plotter.XYs, len(scores.PerWindow))
	for i, e := range scores.PerWindow {
		pts[i].X = float64(i)
		pts[i].Y = e
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build window error series: %w", err)
	}
	p.Add(line, points)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save window error plot: %w", err)
	}
	return nil
}

// SaveJointErrorPlot writes a bar chart of per-joint error with the
// threshold table overlaid as a second series.
func SaveJointErrorPlot(result *gait.AnomalyResult, path string) error {
	p := plot.New()
	p.Title.Text = "Per-Joint Reconstruction Error"
	p.Y.Label.Text = "Mean Squared Error"

	errs := make(plotter.Values, len(result.JointErrors))
	thrs := make(plotter.Values, len(result.JointErrors))
	names := make([]string, len(result.JointErrors))
	for i, je := range result.JointErrors {
		errs[i] = je.Error
		thrs[i] = je.Threshold
		names[i] = je.Joint
	}

	errBars, err := plotter.NewBarChart(errs, vg.Points(12))
	if err != nil {
		return fmt.Errorf("failed to build joint error bars: %w", err)
	}
	errBars.Offset = -vg.Points(6)

	thrBars, err := plotter.NewBarChart(thrs, vg.Points(12))
	if err != nil {
		return fmt.Errorf("failed to build threshold bars: %w", err)
	}
	thrBars.Offset = vg.Points(6)

	p.Add(errBars, thrBars)
	p.Legend.Add("error", errBars)
	p.Legend.Add("threshold", thrBars)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save joint error plot: %w", err)
	}
	return nil
}
