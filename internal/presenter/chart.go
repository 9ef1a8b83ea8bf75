package presenter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"weathercast/internal/models"
)

// ErrNotEnoughPoints is returned when fewer than two hourly readings are plottable.
var ErrNotEnoughPoints = errors.New("not enough hourly readings to plot")

type ChartOptions struct {
	Width  int
	Height int
}

var (
	seriesColor = drawing.ColorFromHex("ffa500")
	gridColor   = drawing.ColorFromHex("d0d0d0")
)

// RenderChart draws the hourly temperature series as an SVG line chart with
// axis labels, a legend and grid lines. Null readings are skipped.
func RenderChart(f *models.Forecast, opts ChartOptions) ([]byte, error) {
	xs := make([]time.Time, 0, len(f.Hourly))
	ys := make([]float64, 0, len(f.Hourly))
	for _, h := range f.Hourly {
		if math.IsNaN(h.Temperature) {
			continue
		}
		xs = append(xs, h.Time.UTC())
		ys = append(ys, h.Temperature)
	}
	if len(xs) < 2 {
		return nil, ErrNotEnoughPoints
	}

	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}

	grid := chart.Style{
		StrokeColor: gridColor,
		StrokeWidth: 1.0,
	}

	graph := chart.Chart{
		Title:  "Hourly Temperature Data",
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeHourValueFormatter,
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name: "Temperature (°C)",
			// a flat series would otherwise give a zero-height range
			Range:          &chart.ContinuousRange{Min: math.Floor(lo) - 1, Max: math.Ceil(hi) + 1},
			GridMajorStyle: grid,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Temperature",
				Style: chart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2.0,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	return buf.Bytes(), nil
}
