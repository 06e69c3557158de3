package monitor

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tjl0830/gait-aware/internal/gait"
)

// RenderJointErrorChart writes an interactive HTML bar chart of joint
// errors against their thresholds. This backs the server's debug
// endpoint; it is a quick visual check, not a report.
func RenderJointErrorChart(w io.Writer, result *gait.AnomalyResult) error {
	names := make([]string, len(result.JointErrors))
	errs := make([]opts.BarData, len(result.JointErrors))
	thrs := make([]opts.BarData, len(result.JointErrors))
	for i, je := range result.JointErrors {
		names[i] = je.Joint
		errs[i] = opts.BarData{Value: je.Error}
		thrs[i] = opts.BarData{Value: je.Threshold}
	}

	verdict := "normal"
	if result.IsAbnormal {
		verdict = "abnormal"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Gait Joint Errors", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Per-Joint Reconstruction Error",
			Subtitle: fmt.Sprintf("verdict=%s worst=%s confidence=%.0f%%", verdict, result.WorstJoint, result.Confidence),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names)
	bar.AddSeries("error", errs)
	bar.AddSeries("threshold", thrs)

	return bar.Render(w)
}
