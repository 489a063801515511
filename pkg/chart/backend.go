package chart

import (
	"bytes"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

const (
	chartWidth  = 1200
	chartHeight = 600

	timeAxisFormat = "2006-01-02 15:04"
)

// Backend turns normalized series into encoded image bytes. It is the only
// seam to the plotting library; the Renderer owns everything else.
type Backend interface {
	// Render plots the series as connected, marked lines with a shared title,
	// grid, legend and time-formatted x-axis, and returns PNG bytes.
	// fallbackLabel names series whose scope is empty.
	Render(series []metrics.Series, fallbackLabel, title string) ([]byte, error)
}

// PNGBackend renders charts with go-chart.
type PNGBackend struct{}

var _ Backend = PNGBackend{}

func (PNGBackend) Render(series []metrics.Series, fallbackLabel, title string) ([]byte, error) {
	graph := gochart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: gochart.XAxis{
			Name:           "Time",
			ValueFormatter: gochart.TimeValueFormatterWithFormat(timeAxisFormat),
			GridMajorStyle: gochart.Style{
				StrokeColor: gochart.ColorAlternateGray,
				StrokeWidth: 1.0,
			},
		},
		YAxis: gochart.YAxis{
			Name: "Value",
			GridMajorStyle: gochart.Style{
				StrokeColor: gochart.ColorAlternateGray,
				StrokeWidth: 1.0,
			},
		},
	}

	for i, s := range series {
		xs := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = time.Unix(p.Timestamp, 0)
			ys[j] = p.Value
		}

		label := s.Scope
		if label == "" {
			label = fallbackLabel
		}

		color := gochart.GetDefaultColor(i)
		graph.Series = append(graph.Series, gochart.TimeSeries{
			Name:    label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2.0,
				DotColor:    color,
				DotWidth:    3.0,
			},
		})
	}

	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
