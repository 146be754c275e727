package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// renderCountPlot writes a grouped bar chart of per-category counts,
// one bar group per category, one bar per class.
func renderCountPlot(title, xLabel string, groups []GroupCount, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Accident Count"

	normal := make(plotter.Values, len(groups))
	serious := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		normal[i] = float64(g.Normal)
		serious[i] = float64(g.Serious)
		labels[i] = g.Category
	}

	width := vg.Points(12)

	normalBars, err := plotter.NewBarChart(normal, width)
	if err != nil {
		return err
	}
	normalBars.LineStyle.Width = vg.Length(0)
	normalBars.Color = plotutil.Color(0)
	normalBars.Offset = -width / 2

	seriousBars, err := plotter.NewBarChart(serious, width)
	if err != nil {
		return err
	}
	seriousBars.LineStyle.Width = vg.Length(0)
	seriousBars.Color = plotutil.Color(1)
	seriousBars.Offset = width / 2

	p.Add(normalBars, seriousBars)
	p.Legend.Add("0", normalBars)
	p.Legend.Add("1", seriousBars)
	p.Legend.Top = true
	p.NominalX(labels...)

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
