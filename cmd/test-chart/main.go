// test-chart serves the PNG chart renderer in a local test harness, letting
// you preview and tune the chart layout against synthetic series without a
// Datadog account.
//
// Usage:
//
//	go run ./cmd/test-chart
//
// Then open http://localhost:9199 in your browser.
package main

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/chart"
	"github.com/ddbridge/datadog-metrics-mcp/pkg/metrics"
)

func main() {
	backend := chart.PNGBackend{}

	http.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, harness)
	})
	http.HandleFunc("/chart.png", func(w http.ResponseWriter, r *http.Request) {
		img, err := backend.Render(sampleSeries(), "avg:system.cpu.user{*}", r.URL.Query().Get("title"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	})

	addr := "127.0.0.1:9199"
	fmt.Fprintf(os.Stderr, "Chart test harness: http://%s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// sampleSeries builds three sine-ish series over the last 24 hours, enough to
// exercise the legend, the grid and the per-series colors.
func sampleSeries() []metrics.Series {
	now := time.Now().Unix()
	series := make([]metrics.Series, 0, 3)
	for i, scope := range []string{"host:web-1", "host:web-2", "host:db-1"} {
		var points []metrics.Point
		for ts := now - 86400; ts <= now; ts += 600 {
			val := 40 + 20*math.Sin(float64(ts)/7200+float64(i)) + 5*float64(i)
			points = append(points, metrics.Point{Timestamp: ts, Value: val})
		}
		series = append(series, metrics.Series{Scope: scope, Points: points})
	}
	return series
}

const harness = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Chart Test Harness</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem; background: #f3f4f6; }
  img { max-width: 100%; border: 1px solid #d1d5db; background: #fff; }
  input { padding: 0.4rem; width: 24rem; }
</style>
</head>
<body>
<h1>Chart Test Harness</h1>
<p>
  <input id="title" placeholder="Chart title" value="CPU usage by host">
  <button onclick="reload()">Render</button>
</p>
<img id="chart" src="/chart.png?title=CPU%20usage%20by%20host">
<script>
function reload() {
  const title = encodeURIComponent(document.getElementById('title').value);
  document.getElementById('chart').src = '/chart.png?title=' + title + '&_=' + Date.now();
}
</script>
</body>
</html>
`
